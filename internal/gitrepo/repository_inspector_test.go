package gitrepo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/speckit-paths/internal/execshell"
)

type stubGitExecutor struct {
	recorded []execshell.CommandDetails
	result   execshell.ExecutionResult
	err      error
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	if executor.err != nil {
		return execshell.ExecutionResult{}, executor.err
	}
	return executor.result, nil
}

func TestNewRepositoryInspectorRequiresExecutor(t *testing.T) {
	_, creationError := NewRepositoryInspector(nil)
	require.ErrorIs(t, creationError, ErrGitExecutorNotConfigured)
}

func TestTopLevelIssuesRevParse(t *testing.T) {
	executor := &stubGitExecutor{result: execshell.ExecutionResult{StandardOutput: "/tmp/repo\n"}}
	inspector, creationError := NewRepositoryInspector(executor)
	require.NoError(t, creationError)

	topLevel, lookupError := inspector.TopLevel(context.Background(), "/tmp/repo/nested/deeper")
	require.NoError(t, lookupError)
	require.Equal(t, filepath.FromSlash("/tmp/repo"), topLevel)

	require.Len(t, executor.recorded, 1)
	require.Equal(t, []string{"rev-parse", "--show-toplevel"}, executor.recorded[0].Arguments)
	require.Equal(t, "/tmp/repo/nested/deeper", executor.recorded[0].WorkingDirectory)
	require.Equal(t, "0", executor.recorded[0].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}

func TestTopLevelSurfacesFailures(t *testing.T) {
	inspector, _ := NewRepositoryInspector(&stubGitExecutor{err: errors.New("not a git repository")})
	_, lookupError := inspector.TopLevel(context.Background(), "/tmp")
	require.ErrorContains(t, lookupError, "not a git repository")

	inspector, _ = NewRepositoryInspector(&stubGitExecutor{})
	_, lookupError = inspector.TopLevel(context.Background(), "/tmp")
	require.ErrorIs(t, lookupError, ErrEmptyOutput)
}

func TestCurrentBranch(t *testing.T) {
	testCases := []struct {
		name           string
		output         string
		executionError error
		expectedBranch string
		expectedError  error
	}{
		{name: "named_branch", output: "001-login\n", expectedBranch: "001-login"},
		{name: "detached", output: "HEAD\n", expectedError: ErrDetachedHead},
		{name: "empty", output: "\n", expectedError: ErrEmptyOutput},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			executor := &stubGitExecutor{result: execshell.ExecutionResult{StandardOutput: testCase.output}}
			inspector, _ := NewRepositoryInspector(executor)

			branchName, lookupError := inspector.CurrentBranch(context.Background(), "/tmp/repo")
			require.Equal(t, []string{"rev-parse", "--abbrev-ref", "HEAD"}, executor.recorded[0].Arguments)
			if testCase.expectedError != nil {
				require.ErrorIs(t, lookupError, testCase.expectedError)
				require.Empty(t, branchName)
				return
			}
			require.NoError(t, lookupError)
			require.Equal(t, testCase.expectedBranch, branchName)
		})
	}
}

func TestMetadataDirectoryResolvesRelativeOutput(t *testing.T) {
	inspector, _ := NewRepositoryInspector(&stubGitExecutor{result: execshell.ExecutionResult{StandardOutput: ".git\n"}})

	metadataDirectory, lookupError := inspector.MetadataDirectory(context.Background(), filepath.FromSlash("/tmp/repo"))
	require.NoError(t, lookupError)
	require.Equal(t, filepath.FromSlash("/tmp/repo/.git"), metadataDirectory)
}
