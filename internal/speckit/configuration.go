package speckit

import (
	"path/filepath"
	"strings"

	"github.com/temirov/speckit-paths/internal/layout"
)

const (
	branchSegmentSeparatorConstant = "/"
	currentSegmentConstant         = "."
	parentSegmentConstant          = ".."
	nullCharacterConstant          = "\x00"
	reasonEmptyConstant            = "name is empty"
	reasonAbsoluteConstant         = "name is an absolute path"
	reasonEmptySegmentConstant     = "name contains an empty path segment"
	reasonRelativeSegmentConstant  = "name contains a relative path segment"
	reasonNullCharacterConstant    = "name contains a NUL character"
	reasonBackslashConstant        = "name contains a backslash"
	reasonEscapesConstant          = "name escapes the specs directory"
)

// Configuration is the resolved path state handed to every consumer. It is
// built once by Service.Resolve and never mutated afterwards.
type Configuration struct {
	Directories   layout.Directories
	Variant       layout.Variant
	CurrentBranch string
	RootSource    Source
	BranchSource  Source
	// DetachedHead is set when git reported a detached HEAD and the branch came from a fallback.
	DetachedHead bool
}

// RepositoryRoot returns the resolved repository root.
func (configuration Configuration) RepositoryRoot() string {
	return configuration.Directories.RepositoryRoot
}

// IsMigrated reports whether the migrated layout was present at resolution time.
func (configuration Configuration) IsMigrated() bool {
	return configuration.Variant == layout.VariantMigrated
}

// CurrentDirectory returns the active directory of the requested kind.
func (configuration Configuration) CurrentDirectory(kind layout.DirectoryKind) (string, error) {
	return configuration.Directories.Select(configuration.Variant, kind)
}

// CurrentScriptsDirectory returns the active scripts directory.
func (configuration Configuration) CurrentScriptsDirectory() string {
	return configuration.mustSelect(layout.DirectoryKindScripts)
}

// CurrentTemplatesDirectory returns the active templates directory.
func (configuration Configuration) CurrentTemplatesDirectory() string {
	return configuration.mustSelect(layout.DirectoryKindTemplates)
}

// CurrentMemoryDirectory returns the active memory directory.
func (configuration Configuration) CurrentMemoryDirectory() string {
	return configuration.mustSelect(layout.DirectoryKindMemory)
}

// FeatureDirectory returns the specs subdirectory for branchName, or for the
// current branch when branchName is empty. Names that would leave the specs
// directory are rejected with InvalidBranchNameError.
func (configuration Configuration) FeatureDirectory(branchName string) (string, error) {
	if len(strings.TrimSpace(branchName)) == 0 {
		branchName = configuration.CurrentBranch
	}
	if validationError := ValidateBranchName(branchName); validationError != nil {
		return "", validationError
	}

	specsDirectory := configuration.Directories.SpecsDirectory
	featureDirectory := filepath.Join(specsDirectory, filepath.FromSlash(branchName))

	relativePath, relativeError := filepath.Rel(specsDirectory, featureDirectory)
	if relativeError != nil || relativePath == currentSegmentConstant || strings.HasPrefix(relativePath, parentSegmentConstant) {
		return "", InvalidBranchNameError{BranchName: branchName, Reason: reasonEscapesConstant}
	}
	return featureDirectory, nil
}

// Environment returns the published name/value pairs.
func (configuration Configuration) Environment() []layout.EnvironmentEntry {
	return configuration.Directories.Environment()
}

func (configuration Configuration) mustSelect(kind layout.DirectoryKind) string {
	selectedDirectory, _ := configuration.Directories.Select(configuration.Variant, kind)
	return selectedDirectory
}

// ValidateBranchName checks that branchName is usable as a relative path below
// the specs directory. Slash-separated names are allowed and nest.
func ValidateBranchName(branchName string) error {
	if len(strings.TrimSpace(branchName)) == 0 {
		return InvalidBranchNameError{BranchName: branchName, Reason: reasonEmptyConstant}
	}
	if strings.Contains(branchName, nullCharacterConstant) {
		return InvalidBranchNameError{BranchName: branchName, Reason: reasonNullCharacterConstant}
	}
	if strings.Contains(branchName, `\`) {
		return InvalidBranchNameError{BranchName: branchName, Reason: reasonBackslashConstant}
	}
	if strings.HasPrefix(branchName, branchSegmentSeparatorConstant) || filepath.IsAbs(branchName) || len(filepath.VolumeName(branchName)) > 0 {
		return InvalidBranchNameError{BranchName: branchName, Reason: reasonAbsoluteConstant}
	}
	for _, segment := range strings.Split(branchName, branchSegmentSeparatorConstant) {
		switch segment {
		case "":
			return InvalidBranchNameError{BranchName: branchName, Reason: reasonEmptySegmentConstant}
		case currentSegmentConstant, parentSegmentConstant:
			return InvalidBranchNameError{BranchName: branchName, Reason: reasonRelativeSegmentConstant}
		}
	}
	return nil
}
