package speckit

import "strings"

const (
	defaultBranchNameConstant                = "main"
	packageManifestMarkerFileConstant        = "package.json"
	readmeMarkerFileConstant                 = "README.md"
	colocatedModuleCandidateConstant         = "paths.sh"
	configDirectoryModuleCandidateConstant   = "../config/paths.sh"
	configurationDefaultBranchKeyConstant    = "default_branch"
	configurationMarkerFilesKeyConstant      = "marker_files"
	configurationModuleCandidatesKeyConstant = "module_candidates"
	configurationWorkingDirectoryKeyConstant = "working_directory"
	configurationKeySeparatorConstant        = "."
)

// CommandConfiguration captures the settings that steer path resolution.
type CommandConfiguration struct {
	DefaultBranch    string   `mapstructure:"default_branch"`
	MarkerFiles      []string `mapstructure:"marker_files"`
	ModuleCandidates []string `mapstructure:"module_candidates"`
	WorkingDirectory string   `mapstructure:"working_directory"`
}

// DefaultCommandConfiguration provides the baseline resolution settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		DefaultBranch:    defaultBranchNameConstant,
		MarkerFiles:      []string{packageManifestMarkerFileConstant, readmeMarkerFileConstant},
		ModuleCandidates: []string{colocatedModuleCandidateConstant, configDirectoryModuleCandidateConstant},
		WorkingDirectory: "",
	}
}

// DefaultConfigurationValues exposes the defaults keyed under rootKey for the configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationDefaultBranchKeyConstant:    defaults.DefaultBranch,
		rootKey + configurationKeySeparatorConstant + configurationMarkerFilesKeyConstant:      defaults.MarkerFiles,
		rootKey + configurationKeySeparatorConstant + configurationModuleCandidatesKeyConstant: defaults.ModuleCandidates,
		rootKey + configurationKeySeparatorConstant + configurationWorkingDirectoryKeyConstant: defaults.WorkingDirectory,
	}
}

// Sanitize trims values and restores defaults for anything left empty.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.DefaultBranch = strings.TrimSpace(configuration.DefaultBranch)
	if len(sanitized.DefaultBranch) == 0 {
		sanitized.DefaultBranch = defaults.DefaultBranch
	}

	sanitized.MarkerFiles = trimEntries(configuration.MarkerFiles)
	if len(sanitized.MarkerFiles) == 0 {
		sanitized.MarkerFiles = defaults.MarkerFiles
	}

	sanitized.ModuleCandidates = trimEntries(configuration.ModuleCandidates)
	if len(sanitized.ModuleCandidates) == 0 {
		sanitized.ModuleCandidates = defaults.ModuleCandidates
	}

	sanitized.WorkingDirectory = strings.TrimSpace(configuration.WorkingDirectory)
	return sanitized
}

func trimEntries(raw []string) []string {
	trimmed := make([]string, 0, len(raw))
	for _, entry := range raw {
		trimmedEntry := strings.TrimSpace(entry)
		if len(trimmedEntry) == 0 {
			continue
		}
		trimmed = append(trimmed, trimmedEntry)
	}
	return trimmed
}
