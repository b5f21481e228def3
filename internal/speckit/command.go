package speckit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/speckit-paths/internal/dependencies"
	"github.com/temirov/speckit-paths/internal/filesystem"
	"github.com/temirov/speckit-paths/internal/gitrepo"
	"github.com/temirov/speckit-paths/internal/layout"
	"github.com/temirov/speckit-paths/internal/utils"
	"github.com/temirov/speckit-paths/internal/utils/flags"
	pathutils "github.com/temirov/speckit-paths/internal/utils/path"
)

const (
	rootCommandUseConstant                  = "root"
	rootCommandShortDescriptionConstant     = "Print the repository root"
	branchCommandUseConstant                = "branch"
	branchCommandShortDescriptionConstant   = "Print the current branch name"
	branchCommandLongDescriptionConstant    = "branch asks git for the checked out branch, falls back to the HEAD file, and finally prints the configured default branch."
	featureCommandUseConstant               = "feature-dir [branch]"
	featureCommandShortDescriptionConstant  = "Print the feature directory for a branch"
	featureCommandLongDescriptionConstant   = "feature-dir joins the specs directory with the given branch name, or with the current branch when none is given. Names containing empty, '.' or '..' segments are rejected."
	migratedCommandUseConstant              = "is-migrated"
	migratedCommandShortDescriptionConstant = "Report whether the migrated layout is present"
	currentDirCommandUseConstant            = "current-dir <scripts|templates|memory>"
	currentDirCommandShortDescription       = "Print the active directory of a kind for the detected layout"
	envCommandUseConstant                   = "env"
	envCommandShortDescriptionConstant      = "Print export statements for every resolved path"
	envCommandLongDescriptionConstant       = "env prints POSIX export statements so shell scripts can load the paths with eval \"$(speckit-paths env)\". When the output is captured and the legacy layout is detected, a migration notice is written to standard error."
	debugCommandUseConstant                 = "debug"
	debugCommandShortDescriptionConstant    = "Print every resolved value and the migration status"
	locateCommandUseConstant                = "locate"
	locateCommandShortDescriptionConstant   = "Locate the shell configuration module relative to a directory"
	checkFlagNameConstant                   = "check"
	checkFlagUsageConstant                  = "Exit with an error when the migrated layout is absent."
	formatFlagNameConstant                  = "format"
	formatFlagDescriptionConstant           = "Encoding of the diagnostic report."
	fromFlagNameConstant                    = "from"
	fromFlagUsageConstant                   = "Directory the module candidates are relative to (defaults to the executable's directory)."
	notMigratedMessageConstant              = "migrated layout not detected"
	executableDirectoryErrorTemplate        = "unable to determine executable directory: %w"
	migrationNoticeLoggedMessageConstant    = "legacy layout in use"
	detachedHeadFallbackMessageConstant     = "HEAD is detached; using the fallback branch name"
)

// ErrNotMigrated is returned by is-migrated --check when the legacy layout is in use.
var ErrNotMigrated = errors.New(notMigratedMessageConstant)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// TerminalDetector reports whether writer is attached to a terminal.
type TerminalDetector func(writer io.Writer) bool

// CommandBuilder assembles the path resolver commands.
type CommandBuilder struct {
	LoggerProvider              LoggerProvider
	ConfigurationProvider       func() CommandConfiguration
	GitExecutor                 gitrepo.GitExecutor
	FileSystem                  filesystem.FileSystem
	TerminalDetector            TerminalDetector
	ExecutableDirectoryProvider func() (string, error)
	HomeExpander                *pathutils.HomeExpander

	service  *Service
	resolver *CachedResolver
}

// Build constructs every path resolver command.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   rootCommandUseConstant,
		Short: rootCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runRoot,
	}

	branchCommand := &cobra.Command{
		Use:   branchCommandUseConstant,
		Short: branchCommandShortDescriptionConstant,
		Long:  branchCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runBranch,
	}

	featureCommand := &cobra.Command{
		Use:   featureCommandUseConstant,
		Short: featureCommandShortDescriptionConstant,
		Long:  featureCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.runFeatureDirectory,
	}

	migratedCommand := &cobra.Command{
		Use:   migratedCommandUseConstant,
		Short: migratedCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runIsMigrated,
	}
	migratedCommand.Flags().Bool(checkFlagNameConstant, false, checkFlagUsageConstant)

	currentDirCommand := &cobra.Command{
		Use:       currentDirCommandUseConstant,
		Short:     currentDirCommandShortDescription,
		Args:      cobra.ExactArgs(1),
		ValidArgs: directoryKindNames(),
		RunE:      builder.runCurrentDirectory,
	}

	envCommand := &cobra.Command{
		Use:   envCommandUseConstant,
		Short: envCommandShortDescriptionConstant,
		Long:  envCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runEnvironment,
	}

	debugCommand := &cobra.Command{
		Use:   debugCommandUseConstant,
		Short: debugCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runDebug,
	}
	debugCommand.Flags().String(formatFlagNameConstant, string(ReportFormatText), flags.FormatChoiceUsage(string(ReportFormatText), ReportFormats(), formatFlagDescriptionConstant))

	locateCommand := &cobra.Command{
		Use:   locateCommandUseConstant,
		Short: locateCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runLocate,
	}
	locateCommand.Flags().String(fromFlagNameConstant, "", fromFlagUsageConstant)

	return []*cobra.Command{
		rootCommand,
		branchCommand,
		featureCommand,
		migratedCommand,
		currentDirCommand,
		envCommand,
		debugCommand,
		locateCommand,
	}, nil
}

func (builder *CommandBuilder) runRoot(command *cobra.Command, arguments []string) error {
	configuration, resolveError := builder.resolvePaths(command)
	if resolveError != nil {
		return resolveError
	}
	return printLine(command, configuration.RepositoryRoot())
}

func (builder *CommandBuilder) runBranch(command *cobra.Command, arguments []string) error {
	configuration, resolveError := builder.resolvePaths(command)
	if resolveError != nil {
		return resolveError
	}
	builder.warnDetachedHead(configuration)
	return printLine(command, configuration.CurrentBranch)
}

func (builder *CommandBuilder) runFeatureDirectory(command *cobra.Command, arguments []string) error {
	configuration, resolveError := builder.resolvePaths(command)
	if resolveError != nil {
		return resolveError
	}

	branchName := ""
	if len(arguments) > 0 {
		branchName = arguments[0]
	} else {
		builder.warnDetachedHead(configuration)
	}

	featureDirectory, featureError := configuration.FeatureDirectory(branchName)
	if featureError != nil {
		return featureError
	}
	return printLine(command, featureDirectory)
}

func (builder *CommandBuilder) runIsMigrated(command *cobra.Command, arguments []string) error {
	configuration, resolveError := builder.resolvePaths(command)
	if resolveError != nil {
		return resolveError
	}

	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	migrated := service.IsMigrated(configuration.Directories)
	if printError := printLine(command, strconv.FormatBool(migrated)); printError != nil {
		return printError
	}

	checkRequested, _ := command.Flags().GetBool(checkFlagNameConstant)
	if checkRequested && !migrated {
		return ErrNotMigrated
	}
	return nil
}

func (builder *CommandBuilder) runCurrentDirectory(command *cobra.Command, arguments []string) error {
	kind, kindError := layout.ParseDirectoryKind(arguments[0])
	if kindError != nil {
		return kindError
	}

	configuration, resolveError := builder.resolvePaths(command)
	if resolveError != nil {
		return resolveError
	}

	currentDirectory, selectError := configuration.CurrentDirectory(kind)
	if selectError != nil {
		return selectError
	}
	return printLine(command, currentDirectory)
}

func (builder *CommandBuilder) runEnvironment(command *cobra.Command, arguments []string) error {
	configuration, resolveError := builder.resolvePaths(command)
	if resolveError != nil {
		return resolveError
	}

	builder.warnDetachedHead(configuration)
	if exportError := WriteShellExports(command.OutOrStdout(), configuration.Environment()); exportError != nil {
		return exportError
	}

	if configuration.IsMigrated() || builder.isTerminal(command.OutOrStdout()) {
		return nil
	}

	builder.resolveLogger().Info(migrationNoticeLoggedMessageConstant, zap.String(logFieldRepositoryRootConstant, configuration.RepositoryRoot()))
	_, noticeError := fmt.Fprintln(command.ErrOrStderr(), MigrationNoticeMessage)
	return noticeError
}

func (builder *CommandBuilder) runDebug(command *cobra.Command, arguments []string) error {
	formatValue, _ := command.Flags().GetString(formatFlagNameConstant)
	reportFormat, formatError := ParseReportFormat(formatValue)
	if formatError != nil {
		return formatError
	}

	configuration, resolveError := builder.resolvePaths(command)
	if resolveError != nil {
		return resolveError
	}

	builder.warnDetachedHead(configuration)
	configurationFile, _ := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	return configuration.Report(configurationFile).Write(command.OutOrStdout(), reportFormat)
}

func (builder *CommandBuilder) runLocate(command *cobra.Command, arguments []string) error {
	baseDirectory, _ := command.Flags().GetString(fromFlagNameConstant)
	baseDirectory = builder.resolveHomeExpander().Expand(strings.TrimSpace(baseDirectory))
	if len(baseDirectory) == 0 {
		executableDirectory, executableError := builder.executableDirectory()
		if executableError != nil {
			return executableError
		}
		baseDirectory = executableDirectory
	}

	modulePath, locateError := LocateModule(
		commandContext(command),
		dependencies.ResolveFileSystem(builder.FileSystem),
		baseDirectory,
		builder.resolveConfiguration().ModuleCandidates,
	)
	if locateError != nil {
		return locateError
	}
	return printLine(command, modulePath)
}

// warnDetachedHead is called only by commands that print the branch name.
func (builder *CommandBuilder) warnDetachedHead(configuration Configuration) {
	if !configuration.DetachedHead {
		return
	}
	builder.resolveLogger().Warn(
		detachedHeadFallbackMessageConstant,
		zap.String(logFieldRepositoryRootConstant, configuration.RepositoryRoot()),
		zap.String(logFieldBranchConstant, configuration.CurrentBranch),
		zap.String(logFieldSourceConstant, string(configuration.BranchSource)),
	)
}

func (builder *CommandBuilder) resolvePaths(command *cobra.Command) (Configuration, error) {
	if builder.resolver == nil {
		service, serviceError := builder.resolveService()
		if serviceError != nil {
			return Configuration{}, serviceError
		}
		builder.resolver = NewCachedResolver(service)
	}
	return builder.resolver.Resolve(commandContext(command))
}

func (builder *CommandBuilder) resolveService() (*Service, error) {
	if builder.service != nil {
		return builder.service, nil
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger)
	if executorError != nil {
		return nil, executorError
	}

	repositoryInspector, inspectorError := dependencies.ResolveRepositoryInspector(gitExecutor)
	if inspectorError != nil {
		return nil, inspectorError
	}

	service, serviceError := NewService(ServiceDependencies{
		RepositoryInspector: repositoryInspector,
		FileSystem:          dependencies.ResolveFileSystem(builder.FileSystem),
		Logger:              logger,
	}, builder.resolveConfiguration())
	if serviceError != nil {
		return nil, serviceError
	}

	builder.service = service
	return service, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().Sanitize()
	}
	configuration.WorkingDirectory = builder.resolveHomeExpander().Expand(configuration.WorkingDirectory)
	return configuration
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander == nil {
		builder.HomeExpander = pathutils.NewHomeExpander()
	}
	return builder.HomeExpander
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) isTerminal(writer io.Writer) bool {
	if builder.TerminalDetector != nil {
		return builder.TerminalDetector(writer)
	}
	return IsTerminalWriter(writer)
}

func (builder *CommandBuilder) executableDirectory() (string, error) {
	if builder.ExecutableDirectoryProvider != nil {
		return builder.ExecutableDirectoryProvider()
	}
	executablePath, executableError := os.Executable()
	if executableError != nil {
		return "", fmt.Errorf(executableDirectoryErrorTemplate, executableError)
	}
	if resolvedPath, symlinkError := filepath.EvalSymlinks(executablePath); symlinkError == nil {
		executablePath = resolvedPath
	}
	return filepath.Dir(executablePath), nil
}

// IsTerminalWriter reports whether writer is an *os.File attached to a terminal.
func IsTerminalWriter(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func commandContext(command *cobra.Command) context.Context {
	if command == nil || command.Context() == nil {
		return context.Background()
	}
	return command.Context()
}

func printLine(command *cobra.Command, value string) error {
	_, printError := fmt.Fprintln(command.OutOrStdout(), value)
	return printError
}

func directoryKindNames() []string {
	kinds := layout.DirectoryKinds()
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, string(kind))
	}
	return names
}
