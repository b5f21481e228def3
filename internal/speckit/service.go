package speckit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/speckit-paths/internal/filesystem"
	"github.com/temirov/speckit-paths/internal/gitrepo"
	"github.com/temirov/speckit-paths/internal/layout"
)

const (
	repositoryInspectorMissingMessageConstant = "repository inspector not configured"
	fileSystemMissingMessageConstant          = "filesystem not configured"
	workingDirectoryErrorTemplateConstant     = "unable to determine working directory: %w"
	strategySkippedMessageConstant            = "resolution strategy did not apply"
	rootResolvedMessageConstant               = "repository root resolved"
	branchResolvedMessageConstant             = "current branch resolved"
	logFieldSourceConstant                    = "source"
	logFieldRepositoryRootConstant            = "repo_root"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldBranchConstant                    = "branch"
	logFieldReasonConstant                    = "reason"
	logFieldDetachedHeadConstant              = "detached_head"
)

// ErrRepositoryInspectorNotConfigured indicates the service lacks git access.
var ErrRepositoryInspectorNotConfigured = errors.New(repositoryInspectorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the service lacks filesystem access.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// RepositoryInspector exposes the git queries used during resolution.
type RepositoryInspector interface {
	TopLevel(executionContext context.Context, workingDirectory string) (string, error)
	CurrentBranch(executionContext context.Context, workingDirectory string) (string, error)
	MetadataDirectory(executionContext context.Context, workingDirectory string) (string, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	RepositoryInspector RepositoryInspector
	FileSystem          filesystem.FileSystem
	Logger              *zap.Logger
}

// Service resolves the repository root, the current branch, and the layout.
type Service struct {
	inspector     RepositoryInspector
	fileSystem    filesystem.FileSystem
	logger        *zap.Logger
	configuration CommandConfiguration
}

// NewService constructs a Service. Empty configuration fields fall back to defaults.
func NewService(dependencies ServiceDependencies, configuration CommandConfiguration) (*Service, error) {
	if dependencies.RepositoryInspector == nil {
		return nil, ErrRepositoryInspectorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inspector:     dependencies.RepositoryInspector,
		fileSystem:    dependencies.FileSystem,
		logger:        logger,
		configuration: configuration.Sanitize(),
	}, nil
}

// Resolve builds the Configuration snapshot: root, directories, layout, and branch.
func (service *Service) Resolve(executionContext context.Context) (Configuration, error) {
	repositoryRoot, rootSource, rootError := service.ResolveRepositoryRoot(executionContext)
	if rootError != nil {
		return Configuration{}, rootError
	}

	directories := layout.DeriveDirectories(repositoryRoot)
	currentBranch, branchSource, detachedHead := service.resolveBranch(executionContext, repositoryRoot)

	return Configuration{
		Directories:   directories,
		Variant:       layout.VariantFor(service.IsMigrated(directories)),
		CurrentBranch: currentBranch,
		RootSource:    rootSource,
		BranchSource:  branchSource,
		DetachedHead:  detachedHead,
	}, nil
}

// ResolveRepositoryRoot runs the root strategies from the configured working
// directory, or the process working directory when none is configured.
func (service *Service) ResolveRepositoryRoot(executionContext context.Context) (string, Source, error) {
	workingDirectory, workingDirectoryError := service.workingDirectory()
	if workingDirectoryError != nil {
		return "", "", workingDirectoryError
	}

	repositoryRoot, source, resolved := FirstMatch(executionContext, service.RootStrategies(workingDirectory))
	if !resolved {
		return "", "", RootResolutionError{WorkingDirectory: workingDirectory, MarkerFiles: service.configuration.MarkerFiles}
	}

	service.logger.Debug(
		rootResolvedMessageConstant,
		zap.String(logFieldRepositoryRootConstant, repositoryRoot),
		zap.String(logFieldSourceConstant, string(source)),
		zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
	)
	return repositoryRoot, source, nil
}

// RootStrategies lists the root strategies for workingDirectory in priority order.
func (service *Service) RootStrategies(workingDirectory string) []Strategy {
	return []Strategy{
		{
			Source: SourceGitQuery,
			Resolve: func(executionContext context.Context) (string, bool) {
				topLevel, topLevelError := service.inspector.TopLevel(executionContext, workingDirectory)
				if topLevelError != nil {
					service.logStrategySkipped(SourceGitQuery, topLevelError)
					return "", false
				}
				return service.absolute(topLevel)
			},
		},
		{
			Source: SourceDirectoryWalk,
			Resolve: func(context.Context) (string, bool) {
				return service.walkToMetadataDirectory(workingDirectory)
			},
		},
		{
			Source: SourceMarkerFiles,
			Resolve: func(context.Context) (string, bool) {
				if len(service.configuration.MarkerFiles) == 0 {
					return "", false
				}
				for _, markerFile := range service.configuration.MarkerFiles {
					if !filesystem.Exists(service.fileSystem, filepath.Join(workingDirectory, markerFile)) {
						return "", false
					}
				}
				return workingDirectory, true
			},
		},
	}
}

// ResolveCurrentBranch runs the branch strategies for repositoryRoot. It always
// produces a name; the configured default is the last resort.
func (service *Service) ResolveCurrentBranch(executionContext context.Context, repositoryRoot string) (string, Source) {
	branchName, source, _ := service.resolveBranch(executionContext, repositoryRoot)
	return branchName, source
}

// BranchStrategies lists the branch strategies for repositoryRoot in priority
// order. The configured default is applied by ResolveCurrentBranch when none match.
func (service *Service) BranchStrategies(repositoryRoot string) []Strategy {
	var detachedHead bool
	return service.branchStrategies(repositoryRoot, &detachedHead)
}

func (service *Service) resolveBranch(executionContext context.Context, repositoryRoot string) (string, Source, bool) {
	var detachedHead bool
	branchName, source, resolved := FirstMatch(executionContext, service.branchStrategies(repositoryRoot, &detachedHead))
	if !resolved {
		branchName, source = service.configuration.DefaultBranch, SourceDefault
	}

	service.logger.Debug(
		branchResolvedMessageConstant,
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldSourceConstant, string(source)),
		zap.Bool(logFieldDetachedHeadConstant, detachedHead),
	)
	return branchName, source, detachedHead
}

func (service *Service) branchStrategies(repositoryRoot string, detachedHead *bool) []Strategy {
	return []Strategy{
		{
			Source: SourceGitQuery,
			Resolve: func(executionContext context.Context) (string, bool) {
				branchName, branchError := service.inspector.CurrentBranch(executionContext, repositoryRoot)
				if branchError != nil {
					*detachedHead = errors.Is(branchError, gitrepo.ErrDetachedHead)
					service.logStrategySkipped(SourceGitQuery, branchError)
					return "", false
				}
				return branchName, true
			},
		},
		{
			Source: SourceHeadFile,
			Resolve: func(executionContext context.Context) (string, bool) {
				metadataDirectory, located := service.locateMetadataDirectory(executionContext, repositoryRoot)
				if !located {
					return "", false
				}
				headContent, readError := service.fileSystem.ReadFile(filepath.Join(metadataDirectory, gitrepo.HeadFileName))
				if readError != nil {
					service.logStrategySkipped(SourceHeadFile, readError)
					return "", false
				}
				return gitrepo.ParseHeadReference(headContent)
			},
		},
	}
}

// IsMigrated reports whether every migrated-layout directory exists. It is
// recomputed on each call.
func (service *Service) IsMigrated(directories layout.Directories) bool {
	for _, directory := range directories.MigratedDirectories() {
		if !filesystem.IsDirectory(service.fileSystem, directory) {
			return false
		}
	}
	return true
}

func (service *Service) workingDirectory() (string, error) {
	configuredDirectory := service.configuration.WorkingDirectory
	if len(configuredDirectory) == 0 {
		processDirectory, getwdError := service.fileSystem.Getwd()
		if getwdError != nil {
			return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, getwdError)
		}
		configuredDirectory = processDirectory
	}

	absoluteDirectory, absError := service.fileSystem.Abs(configuredDirectory)
	if absError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, absError)
	}
	return filepath.Clean(absoluteDirectory), nil
}

func (service *Service) walkToMetadataDirectory(startDirectory string) (string, bool) {
	currentDirectory := startDirectory
	for {
		if filesystem.Exists(service.fileSystem, filepath.Join(currentDirectory, gitrepo.MetadataDirectoryName)) {
			return currentDirectory, true
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", false
		}
		currentDirectory = parentDirectory
	}
}

// locateMetadataDirectory asks git first, then falls back to <root>/.git,
// following a "gitdir:" pointer when .git is a file.
func (service *Service) locateMetadataDirectory(executionContext context.Context, repositoryRoot string) (string, bool) {
	if metadataDirectory, lookupError := service.inspector.MetadataDirectory(executionContext, repositoryRoot); lookupError == nil {
		return metadataDirectory, true
	}

	metadataPath := filepath.Join(repositoryRoot, gitrepo.MetadataDirectoryName)
	if filesystem.IsDirectory(service.fileSystem, metadataPath) {
		return metadataPath, true
	}
	if !filesystem.IsRegularFile(service.fileSystem, metadataPath) {
		return "", false
	}

	pointerContent, readError := service.fileSystem.ReadFile(metadataPath)
	if readError != nil {
		return "", false
	}
	return gitrepo.ParseGitDirectoryPointer(pointerContent, repositoryRoot)
}

func (service *Service) absolute(path string) (string, bool) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return "", false
	}
	absolutePath, absError := service.fileSystem.Abs(trimmedPath)
	if absError != nil {
		return "", false
	}
	return filepath.Clean(absolutePath), true
}

func (service *Service) logStrategySkipped(source Source, reason error) {
	service.logger.Debug(
		strategySkippedMessageConstant,
		zap.String(logFieldSourceConstant, string(source)),
		zap.String(logFieldReasonConstant, reason.Error()),
	)
}
