package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/speckit-paths/internal/execshell"
)

const (
	gitRevParseSubcommandConstant       = "rev-parse"
	gitShowTopLevelFlagConstant         = "--show-toplevel"
	gitAbbrevRefFlagConstant            = "--abbrev-ref"
	gitDirectoryFlagConstant            = "--git-dir"
	gitHeadReferenceConstant            = "HEAD"
	gitExecutorMissingMessageConstant   = "git executor not configured"
	emptyOutputMessageConstant          = "git returned no output"
	detachedHeadMessageConstant         = "HEAD is detached"
	topLevelLookupErrorTemplateConstant = "unable to locate repository top level: %w"
	branchLookupErrorTemplateConstant   = "unable to resolve current branch: %w"
	gitDirectoryErrorTemplateConstant   = "unable to locate git metadata directory: %w"
	gitTerminalPromptEnvironmentName    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValue      = "0"
)

// ErrGitExecutorNotConfigured indicates the inspector was built without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrEmptyOutput indicates git succeeded but printed nothing.
var ErrEmptyOutput = errors.New(emptyOutputMessageConstant)

// ErrDetachedHead indicates the working tree is not on a named branch.
var ErrDetachedHead = errors.New(detachedHeadMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryInspector answers questions about the working tree containing a directory.
type RepositoryInspector struct {
	executor GitExecutor
}

// NewRepositoryInspector constructs a RepositoryInspector.
func NewRepositoryInspector(executor GitExecutor) (*RepositoryInspector, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryInspector{executor: executor}, nil
}

// TopLevel returns the top-level directory of the working tree containing workingDirectory.
func (inspector *RepositoryInspector) TopLevel(executionContext context.Context, workingDirectory string) (string, error) {
	output, executionError := inspector.revParse(executionContext, workingDirectory, gitShowTopLevelFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(topLevelLookupErrorTemplateConstant, executionError)
	}
	return filepath.Clean(filepath.FromSlash(output)), nil
}

// CurrentBranch returns the abbreviated name of the checked out branch. A
// detached HEAD yields ErrDetachedHead.
func (inspector *RepositoryInspector) CurrentBranch(executionContext context.Context, workingDirectory string) (string, error) {
	output, executionError := inspector.revParse(executionContext, workingDirectory, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", fmt.Errorf(branchLookupErrorTemplateConstant, executionError)
	}
	if output == gitHeadReferenceConstant {
		return "", fmt.Errorf(branchLookupErrorTemplateConstant, ErrDetachedHead)
	}
	return output, nil
}

// MetadataDirectory returns the absolute git metadata directory for workingDirectory.
func (inspector *RepositoryInspector) MetadataDirectory(executionContext context.Context, workingDirectory string) (string, error) {
	output, executionError := inspector.revParse(executionContext, workingDirectory, gitDirectoryFlagConstant)
	if executionError != nil {
		return "", fmt.Errorf(gitDirectoryErrorTemplateConstant, executionError)
	}
	metadataDirectory := filepath.FromSlash(output)
	if !filepath.IsAbs(metadataDirectory) {
		metadataDirectory = filepath.Join(workingDirectory, metadataDirectory)
	}
	return filepath.Clean(metadataDirectory), nil
}

func (inspector *RepositoryInspector) revParse(executionContext context.Context, workingDirectory string, arguments ...string) (string, error) {
	executionResult, executionError := inspector.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            append([]string{gitRevParseSubcommandConstant}, arguments...),
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentName: gitTerminalPromptDisabledValue},
	})
	if executionError != nil {
		return "", executionError
	}

	output := strings.TrimSpace(executionResult.StandardOutput)
	if len(output) == 0 {
		return "", ErrEmptyOutput
	}
	return output, nil
}
