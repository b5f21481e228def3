package speckit

import (
	"errors"
	"fmt"
	"strings"
)

const (
	repositoryRootNotFoundMessageConstant  = "repository root could not be determined"
	moduleNotFoundMessageConstant          = "configuration module not found"
	invalidBranchNameMessageConstant       = "invalid branch name"
	rootResolutionErrorTemplateConstant    = "%v from %s (no git work tree, no .git directory above it, and not all of %s present)"
	missingDependencyErrorTemplateConstant = "%v relative to %s (tried %s)"
	invalidBranchNameErrorTemplateConstant = "%v %q: %s"
	listSeparatorConstant                  = ", "
)

// ErrRepositoryRootNotFound indicates every root strategy failed.
var ErrRepositoryRootNotFound = errors.New(repositoryRootNotFoundMessageConstant)

// ErrModuleNotFound indicates no module candidate exists.
var ErrModuleNotFound = errors.New(moduleNotFoundMessageConstant)

// ErrInvalidBranchName indicates a branch name cannot be used as a feature directory.
var ErrInvalidBranchName = errors.New(invalidBranchNameMessageConstant)

// RootResolutionError is the fatal initialization failure.
type RootResolutionError struct {
	WorkingDirectory string
	MarkerFiles      []string
}

// Error describes where resolution started.
func (resolutionError RootResolutionError) Error() string {
	return fmt.Sprintf(rootResolutionErrorTemplateConstant, ErrRepositoryRootNotFound, resolutionError.WorkingDirectory, strings.Join(resolutionError.MarkerFiles, listSeparatorConstant))
}

// Unwrap allows errors.Is(err, ErrRepositoryRootNotFound).
func (resolutionError RootResolutionError) Unwrap() error {
	return ErrRepositoryRootNotFound
}

// MissingDependencyError reports that the module locator found nothing. Callers
// may recover by trying another location.
type MissingDependencyError struct {
	BaseDirectory string
	Candidates    []string
}

// Error lists the locations that were tried.
func (dependencyError MissingDependencyError) Error() string {
	return fmt.Sprintf(missingDependencyErrorTemplateConstant, ErrModuleNotFound, dependencyError.BaseDirectory, strings.Join(dependencyError.Candidates, listSeparatorConstant))
}

// Unwrap allows errors.Is(err, ErrModuleNotFound).
func (dependencyError MissingDependencyError) Unwrap() error {
	return ErrModuleNotFound
}

// InvalidBranchNameError reports a branch name rejected for use as a path segment.
type InvalidBranchNameError struct {
	BranchName string
	Reason     string
}

// Error names the branch and the reason.
func (branchError InvalidBranchNameError) Error() string {
	return fmt.Sprintf(invalidBranchNameErrorTemplateConstant, ErrInvalidBranchName, branchError.BranchName, branchError.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidBranchName).
func (branchError InvalidBranchNameError) Unwrap() error {
	return ErrInvalidBranchName
}
