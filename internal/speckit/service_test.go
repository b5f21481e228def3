package speckit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/speckit-paths/internal/filesystem"
	"github.com/temirov/speckit-paths/internal/gitrepo"
	"github.com/temirov/speckit-paths/internal/layout"
)

var errNotARepository = errors.New("fatal: not a git repository")

type stubRepositoryInspector struct {
	topLevel          string
	topLevelError     error
	branch            string
	branchError       error
	metadataDirectory string
	metadataError     error
	topLevelCalls     int
}

func (inspector *stubRepositoryInspector) TopLevel(context.Context, string) (string, error) {
	inspector.topLevelCalls++
	return inspector.topLevel, inspector.topLevelError
}

func (inspector *stubRepositoryInspector) CurrentBranch(context.Context, string) (string, error) {
	return inspector.branch, inspector.branchError
}

func (inspector *stubRepositoryInspector) MetadataDirectory(context.Context, string) (string, error) {
	return inspector.metadataDirectory, inspector.metadataError
}

func offlineInspector() *stubRepositoryInspector {
	return &stubRepositoryInspector{
		topLevelError: errNotARepository,
		branchError:   errNotARepository,
		metadataError: errNotARepository,
	}
}

func newTestService(testInstance *testing.T, inspector RepositoryInspector, logger *zap.Logger, configuration CommandConfiguration) *Service {
	testInstance.Helper()
	service, creationError := NewService(ServiceDependencies{
		RepositoryInspector: inspector,
		FileSystem:          filesystem.OSFileSystem{},
		Logger:              logger,
	}, configuration)
	require.NoError(testInstance, creationError)
	return service
}

func createDirectories(testInstance *testing.T, paths ...string) {
	testInstance.Helper()
	for _, path := range paths {
		require.NoError(testInstance, os.MkdirAll(path, 0o755))
	}
}

func writeFile(testInstance *testing.T, path string, content string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(testInstance, os.WriteFile(path, []byte(content), 0o600))
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	_, creationError := NewService(ServiceDependencies{FileSystem: filesystem.OSFileSystem{}}, CommandConfiguration{})
	require.ErrorIs(testInstance, creationError, ErrRepositoryInspectorNotConfigured)

	_, creationError = NewService(ServiceDependencies{RepositoryInspector: offlineInspector()}, CommandConfiguration{})
	require.ErrorIs(testInstance, creationError, ErrFileSystemNotConfigured)
}

func TestResolveRepositoryRoot(testInstance *testing.T) {
	testCases := []struct {
		name           string
		prepare        func(testInstance *testing.T, baseDirectory string) (workingDirectory string, inspector *stubRepositoryInspector)
		expectedRoot   func(baseDirectory string) string
		expectedSource Source
		expectedError  error
	}{
		{
			name: "git_query_from_nested_directory",
			prepare: func(testInstance *testing.T, baseDirectory string) (string, *stubRepositoryInspector) {
				nestedDirectory := filepath.Join(baseDirectory, "a", "b")
				createDirectories(testInstance, nestedDirectory)
				inspector := offlineInspector()
				inspector.topLevel, inspector.topLevelError = baseDirectory, nil
				return nestedDirectory, inspector
			},
			expectedRoot:   func(baseDirectory string) string { return baseDirectory },
			expectedSource: SourceGitQuery,
		},
		{
			name: "directory_walk_without_git",
			prepare: func(testInstance *testing.T, baseDirectory string) (string, *stubRepositoryInspector) {
				nestedDirectory := filepath.Join(baseDirectory, "a", "b")
				createDirectories(testInstance, nestedDirectory, filepath.Join(baseDirectory, gitrepo.MetadataDirectoryName))
				return nestedDirectory, offlineInspector()
			},
			expectedRoot:   func(baseDirectory string) string { return baseDirectory },
			expectedSource: SourceDirectoryWalk,
		},
		{
			name: "marker_files_in_working_directory",
			prepare: func(testInstance *testing.T, baseDirectory string) (string, *stubRepositoryInspector) {
				writeFile(testInstance, filepath.Join(baseDirectory, "package.json"), "{}")
				writeFile(testInstance, filepath.Join(baseDirectory, "README.md"), "# project")
				return baseDirectory, offlineInspector()
			},
			expectedRoot:   func(baseDirectory string) string { return baseDirectory },
			expectedSource: SourceMarkerFiles,
		},
		{
			name: "single_marker_is_not_enough",
			prepare: func(testInstance *testing.T, baseDirectory string) (string, *stubRepositoryInspector) {
				writeFile(testInstance, filepath.Join(baseDirectory, "package.json"), "{}")
				return baseDirectory, offlineInspector()
			},
			expectedError: ErrRepositoryRootNotFound,
		},
		{
			name: "nothing_found",
			prepare: func(testInstance *testing.T, baseDirectory string) (string, *stubRepositoryInspector) {
				return baseDirectory, offlineInspector()
			},
			expectedError: ErrRepositoryRootNotFound,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			baseDirectory := testInstance.TempDir()
			workingDirectory, inspector := testCase.prepare(testInstance, baseDirectory)

			service := newTestService(testInstance, inspector, nil, CommandConfiguration{WorkingDirectory: workingDirectory})
			repositoryRoot, source, resolveError := service.ResolveRepositoryRoot(context.Background())

			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
				var resolutionError RootResolutionError
				require.ErrorAs(testInstance, resolveError, &resolutionError)
				require.Equal(testInstance, workingDirectory, resolutionError.WorkingDirectory)
				return
			}

			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedRoot(baseDirectory), repositoryRoot)
			require.Equal(testInstance, testCase.expectedSource, source)
		})
	}
}

func TestResolveFailsWithoutRepository(testInstance *testing.T) {
	service := newTestService(testInstance, offlineInspector(), nil, CommandConfiguration{WorkingDirectory: testInstance.TempDir()})

	configuration, resolveError := service.Resolve(context.Background())
	require.ErrorIs(testInstance, resolveError, ErrRepositoryRootNotFound)
	require.Empty(testInstance, configuration.RepositoryRoot())
}

func TestResolveCurrentBranch(testInstance *testing.T) {
	testCases := []struct {
		name           string
		prepare        func(testInstance *testing.T, repositoryRoot string) *stubRepositoryInspector
		defaultBranch  string
		expectedBranch string
		expectedSource Source
	}{
		{
			name: "git_reports_branch",
			prepare: func(testInstance *testing.T, repositoryRoot string) *stubRepositoryInspector {
				inspector := offlineInspector()
				inspector.branch, inspector.branchError = "001-user-auth", nil
				return inspector
			},
			expectedBranch: "001-user-auth",
			expectedSource: SourceGitQuery,
		},
		{
			name: "head_file_when_git_unavailable",
			prepare: func(testInstance *testing.T, repositoryRoot string) *stubRepositoryInspector {
				writeFile(testInstance, filepath.Join(repositoryRoot, ".git", "HEAD"), "ref: refs/heads/002-payments\n")
				return offlineInspector()
			},
			expectedBranch: "002-payments",
			expectedSource: SourceHeadFile,
		},
		{
			name: "head_file_behind_gitdir_pointer",
			prepare: func(testInstance *testing.T, repositoryRoot string) *stubRepositoryInspector {
				writeFile(testInstance, filepath.Join(repositoryRoot, "worktrees", "main", "HEAD"), "ref: refs/heads/feature/nested\n")
				writeFile(testInstance, filepath.Join(repositoryRoot, ".git"), "gitdir: worktrees/main\n")
				return offlineInspector()
			},
			expectedBranch: "feature/nested",
			expectedSource: SourceHeadFile,
		},
		{
			name: "head_file_from_git_metadata_query",
			prepare: func(testInstance *testing.T, repositoryRoot string) *stubRepositoryInspector {
				metadataDirectory := filepath.Join(repositoryRoot, "custom-git-dir")
				writeFile(testInstance, filepath.Join(metadataDirectory, "HEAD"), "ref: refs/heads/003-search\n")
				inspector := offlineInspector()
				inspector.metadataDirectory, inspector.metadataError = metadataDirectory, nil
				return inspector
			},
			expectedBranch: "003-search",
			expectedSource: SourceHeadFile,
		},
		{
			name: "detached_head_uses_default",
			prepare: func(testInstance *testing.T, repositoryRoot string) *stubRepositoryInspector {
				writeFile(testInstance, filepath.Join(repositoryRoot, ".git", "HEAD"), "3f2a9c1d0e8b7a6f5e4d3c2b1a09f8e7d6c5b4a3\n")
				inspector := offlineInspector()
				inspector.branchError = fmt.Errorf("wrapped: %w", gitrepo.ErrDetachedHead)
				return inspector
			},
			expectedBranch: "main",
			expectedSource: SourceDefault,
		},
		{
			name: "no_git_uses_default",
			prepare: func(testInstance *testing.T, repositoryRoot string) *stubRepositoryInspector {
				return offlineInspector()
			},
			expectedBranch: "main",
			expectedSource: SourceDefault,
		},
		{
			name: "configured_default",
			prepare: func(testInstance *testing.T, repositoryRoot string) *stubRepositoryInspector {
				return offlineInspector()
			},
			defaultBranch:  "trunk",
			expectedBranch: "trunk",
			expectedSource: SourceDefault,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			repositoryRoot := testInstance.TempDir()
			inspector := testCase.prepare(testInstance, repositoryRoot)

			service := newTestService(testInstance, inspector, nil, CommandConfiguration{DefaultBranch: testCase.defaultBranch})
			branchName, source := service.ResolveCurrentBranch(context.Background(), repositoryRoot)

			require.Equal(testInstance, testCase.expectedBranch, branchName)
			require.Equal(testInstance, testCase.expectedSource, source)
		})
	}
}

func TestDetachedHeadIsRecordedWithoutWarning(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	inspector := offlineInspector()
	inspector.branchError = gitrepo.ErrDetachedHead
	repositoryRoot := testInstance.TempDir()
	createDirectories(testInstance, filepath.Join(repositoryRoot, ".git"))

	service := newTestService(testInstance, inspector, zap.New(observedCore), CommandConfiguration{WorkingDirectory: repositoryRoot})
	configuration, resolveError := service.Resolve(context.Background())
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "main", configuration.CurrentBranch)
	require.Equal(testInstance, SourceDefault, configuration.BranchSource)
	require.True(testInstance, configuration.DetachedHead)
	require.Empty(testInstance, observedLogs.FilterLevelExact(zapcore.WarnLevel).All())

	inspector.branchError = nil
	inspector.branch = "feature"
	configuration, resolveError = service.Resolve(context.Background())
	require.NoError(testInstance, resolveError)
	require.False(testInstance, configuration.DetachedHead)
}

func TestBranchStrategiesLeaveDefaultToResolver(testInstance *testing.T) {
	service := newTestService(testInstance, offlineInspector(), nil, CommandConfiguration{})
	strategies := service.BranchStrategies(testInstance.TempDir())

	sources := make([]Source, 0, len(strategies))
	for _, strategy := range strategies {
		sources = append(sources, strategy.Source)
	}
	require.Equal(testInstance, []Source{SourceGitQuery, SourceHeadFile}, sources)
}

func TestResolveIsIdempotent(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	writeFile(testInstance, filepath.Join(repositoryRoot, ".git", "HEAD"), "ref: refs/heads/002-payments\n")
	directories := layout.DeriveDirectories(repositoryRoot)
	createDirectories(testInstance, directories.MigratedDirectories()...)

	service := newTestService(testInstance, offlineInspector(), nil, CommandConfiguration{WorkingDirectory: filepath.Join(repositoryRoot, ".spec-kit")})

	firstConfiguration, firstError := service.Resolve(context.Background())
	require.NoError(testInstance, firstError)
	secondConfiguration, secondError := service.Resolve(context.Background())
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, firstConfiguration, secondConfiguration)
	require.Equal(testInstance, "002-payments", firstConfiguration.CurrentBranch)
	require.Equal(testInstance, layout.VariantMigrated, firstConfiguration.Variant)
}

func TestResolveSelectsLayoutVariant(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	createDirectories(testInstance, filepath.Join(repositoryRoot, ".git"))

	service := newTestService(testInstance, offlineInspector(), nil, CommandConfiguration{WorkingDirectory: repositoryRoot})

	legacyConfiguration, resolveError := service.Resolve(context.Background())
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, layout.VariantLegacy, legacyConfiguration.Variant)
	require.False(testInstance, legacyConfiguration.IsMigrated())
	require.Equal(testInstance, filepath.Join(repositoryRoot, "scripts"), legacyConfiguration.CurrentScriptsDirectory())
	require.Equal(testInstance, filepath.Join(repositoryRoot, "memory"), legacyConfiguration.CurrentMemoryDirectory())

	createDirectories(testInstance, legacyConfiguration.Directories.MigratedDirectories()...)

	require.True(testInstance, service.IsMigrated(legacyConfiguration.Directories))
	require.False(testInstance, legacyConfiguration.IsMigrated())

	migratedConfiguration, resolveError := service.Resolve(context.Background())
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, layout.VariantMigrated, migratedConfiguration.Variant)
	require.Equal(testInstance, filepath.Join(repositoryRoot, ".spec-kit", "scripts"), migratedConfiguration.CurrentScriptsDirectory())
	require.Equal(testInstance, filepath.Join(repositoryRoot, ".spec-kit", "templates"), migratedConfiguration.CurrentTemplatesDirectory())
	require.Equal(testInstance, filepath.Join(repositoryRoot, "docs", "memory"), migratedConfiguration.CurrentMemoryDirectory())
}

func TestMigrationRequiresSpecKitDirectoriesOnly(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	directories := layout.DeriveDirectories(repositoryRoot)
	createDirectories(testInstance, directories.SpecKitDirectory, directories.ScriptsDirectory, directories.TemplatesDirectory)

	service := newTestService(testInstance, offlineInspector(), nil, CommandConfiguration{})
	require.True(testInstance, service.IsMigrated(directories))
	require.NoDirExists(testInstance, directories.MemoryDirectory)
}

func TestPartialMigrationStaysLegacy(testInstance *testing.T) {
	sampleDirectories := layout.DeriveDirectories(testInstance.TempDir())
	testCases := []struct {
		name    string
		missing func(layout.Directories) string
	}{
		{name: "spec_kit", missing: func(directories layout.Directories) string { return directories.SpecKitDirectory }},
		{name: "scripts", missing: func(directories layout.Directories) string { return directories.ScriptsDirectory }},
		{name: "templates", missing: func(directories layout.Directories) string { return directories.TemplatesDirectory }},
	}
	require.Len(testInstance, sampleDirectories.MigratedDirectories(), len(testCases))

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryRoot := testInstance.TempDir()
			directories := layout.DeriveDirectories(repositoryRoot)
			createDirectories(testInstance, directories.MigratedDirectories()...)

			service := newTestService(testInstance, offlineInspector(), nil, CommandConfiguration{})
			require.True(testInstance, service.IsMigrated(directories))

			require.NoError(testInstance, os.RemoveAll(testCase.missing(directories)))
			require.False(testInstance, service.IsMigrated(directories))
		})
	}
}

func TestResolveUsesProcessWorkingDirectory(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	createDirectories(testInstance, filepath.Join(repositoryRoot, ".git"))
	previousWorkingDirectory, getwdError := os.Getwd()
	require.NoError(testInstance, getwdError)
	require.NoError(testInstance, os.Chdir(repositoryRoot))
	testInstance.Setenv("PWD", repositoryRoot)
	testInstance.Cleanup(func() { _ = os.Chdir(previousWorkingDirectory) })

	service := newTestService(testInstance, offlineInspector(), nil, CommandConfiguration{})
	configuration, resolveError := service.Resolve(context.Background())
	require.NoError(testInstance, resolveError)

	expectedRoot, evalError := filepath.EvalSymlinks(repositoryRoot)
	require.NoError(testInstance, evalError)
	actualRoot, evalError := filepath.EvalSymlinks(configuration.RepositoryRoot())
	require.NoError(testInstance, evalError)
	require.Equal(testInstance, expectedRoot, actualRoot)
}
