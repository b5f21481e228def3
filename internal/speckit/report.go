package speckit

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/temirov/speckit-paths/internal/layout"
	"github.com/temirov/speckit-paths/internal/utils/flags"
)

const (
	reportHeaderConstant                = "Spec-Kit paths"
	reportEntryTemplateConstant         = "  %-22s %s\n"
	reportSectionTemplateConstant       = "%s:\n"
	reportDirectoriesSectionConstant    = "Directories"
	reportStateSectionConstant          = "State"
	reportActiveSectionConstant         = "Active directories"
	reportCurrentBranchLabelConstant    = "CURRENT_BRANCH"
	reportBranchSourceLabelConstant     = "BRANCH_SOURCE"
	reportRootSourceLabelConstant       = "ROOT_SOURCE"
	reportLayoutLabelConstant           = "LAYOUT"
	reportMigratedLabelConstant         = "MIGRATED"
	reportConfigFileLabelConstant       = "CONFIG_FILE"
	reportJSONIndentConstant            = "  "
	unsupportedReportFormatTemplate     = "unsupported output format %q (expected text, yaml, json, or toml)"
	reportEncodingErrorTemplateConstant = "unable to encode diagnostic report: %w"
	yamlShortAliasConstant              = "yml"
)

// ReportFormat selects the encoding of the diagnostic dump.
type ReportFormat string

// Supported report formats.
const (
	ReportFormatText ReportFormat = ReportFormat("text")
	ReportFormatYAML ReportFormat = ReportFormat("yaml")
	ReportFormatJSON ReportFormat = ReportFormat("json")
	ReportFormatTOML ReportFormat = ReportFormat("toml")
)

// ReportFormats lists the accepted report formats, text first.
func ReportFormats() []string {
	return []string{string(ReportFormatText), string(ReportFormatYAML), string(ReportFormatJSON), string(ReportFormatTOML)}
}

// ParseReportFormat converts user input into a ReportFormat. An empty value selects text.
func ParseReportFormat(value string) (ReportFormat, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return ReportFormatText, nil
	}
	if strings.EqualFold(trimmedValue, yamlShortAliasConstant) {
		return ReportFormatYAML, nil
	}
	matchedFormat, matched := flags.MatchChoice(trimmedValue, ReportFormats())
	if !matched {
		return "", fmt.Errorf(unsupportedReportFormatTemplate, value)
	}
	return ReportFormat(matchedFormat), nil
}

// DiagnosticReport is the serializable view of a Configuration.
type DiagnosticReport struct {
	Directories       layout.Directories `json:"directories" yaml:"directories" toml:"directories"`
	ActiveDirectories ActiveDirectories  `json:"active_directories" yaml:"active_directories" toml:"active_directories"`
	CurrentBranch     string             `json:"current_branch" yaml:"current_branch" toml:"current_branch"`
	BranchSource      string             `json:"branch_source" yaml:"branch_source" toml:"branch_source"`
	RootSource        string             `json:"root_source" yaml:"root_source" toml:"root_source"`
	Layout            string             `json:"layout" yaml:"layout" toml:"layout"`
	Migrated          bool               `json:"migrated" yaml:"migrated" toml:"migrated"`
	ConfigFile        string             `json:"config_file,omitempty" yaml:"config_file,omitempty" toml:"config_file,omitempty"`
}

// ActiveDirectories lists the directories selected for the resolved layout.
type ActiveDirectories struct {
	Scripts   string `json:"scripts" yaml:"scripts" toml:"scripts"`
	Templates string `json:"templates" yaml:"templates" toml:"templates"`
	Memory    string `json:"memory" yaml:"memory" toml:"memory"`
}

// Report builds the diagnostic view. configFile may be empty.
func (configuration Configuration) Report(configFile string) DiagnosticReport {
	return DiagnosticReport{
		Directories: configuration.Directories,
		ActiveDirectories: ActiveDirectories{
			Scripts:   configuration.CurrentScriptsDirectory(),
			Templates: configuration.CurrentTemplatesDirectory(),
			Memory:    configuration.CurrentMemoryDirectory(),
		},
		CurrentBranch: configuration.CurrentBranch,
		BranchSource:  string(configuration.BranchSource),
		RootSource:    string(configuration.RootSource),
		Layout:        string(configuration.Variant),
		Migrated:      configuration.IsMigrated(),
		ConfigFile:    configFile,
	}
}

// Write encodes the report to writer in the requested format.
func (report DiagnosticReport) Write(writer io.Writer, format ReportFormat) error {
	var encodeError error
	switch format {
	case ReportFormatText:
		encodeError = report.writeText(writer)
	case ReportFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(2)
		encodeError = encoder.Encode(report)
		if encodeError == nil {
			encodeError = encoder.Close()
		}
	case ReportFormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", reportJSONIndentConstant)
		encodeError = encoder.Encode(report)
	case ReportFormatTOML:
		encodeError = toml.NewEncoder(writer).Encode(report)
	default:
		return fmt.Errorf(unsupportedReportFormatTemplate, format)
	}
	if encodeError != nil {
		return fmt.Errorf(reportEncodingErrorTemplateConstant, encodeError)
	}
	return nil
}

func (report DiagnosticReport) writeText(writer io.Writer) error {
	var builder strings.Builder
	builder.WriteString(reportHeaderConstant + "\n")

	fmt.Fprintf(&builder, reportSectionTemplateConstant, reportDirectoriesSectionConstant)
	for _, entry := range report.Directories.Environment() {
		fmt.Fprintf(&builder, reportEntryTemplateConstant, entry.Name, entry.Value)
	}

	fmt.Fprintf(&builder, reportSectionTemplateConstant, reportActiveSectionConstant)
	fmt.Fprintf(&builder, reportEntryTemplateConstant, layout.DirectoryKindScripts, report.ActiveDirectories.Scripts)
	fmt.Fprintf(&builder, reportEntryTemplateConstant, layout.DirectoryKindTemplates, report.ActiveDirectories.Templates)
	fmt.Fprintf(&builder, reportEntryTemplateConstant, layout.DirectoryKindMemory, report.ActiveDirectories.Memory)

	fmt.Fprintf(&builder, reportSectionTemplateConstant, reportStateSectionConstant)
	fmt.Fprintf(&builder, reportEntryTemplateConstant, reportCurrentBranchLabelConstant, report.CurrentBranch)
	fmt.Fprintf(&builder, reportEntryTemplateConstant, reportBranchSourceLabelConstant, report.BranchSource)
	fmt.Fprintf(&builder, reportEntryTemplateConstant, reportRootSourceLabelConstant, report.RootSource)
	fmt.Fprintf(&builder, reportEntryTemplateConstant, reportLayoutLabelConstant, report.Layout)
	fmt.Fprintf(&builder, reportEntryTemplateConstant, reportMigratedLabelConstant, fmt.Sprintf("%t", report.Migrated))
	if len(report.ConfigFile) > 0 {
		fmt.Fprintf(&builder, reportEntryTemplateConstant, reportConfigFileLabelConstant, report.ConfigFile)
	}

	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}
