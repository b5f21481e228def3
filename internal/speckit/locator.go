package speckit

import (
	"context"
	"path/filepath"

	"github.com/temirov/speckit-paths/internal/filesystem"
)

// LocateModule returns the first candidate, relative to baseDirectory, that
// exists as a regular file. Absolute candidates are used as given. When none
// exists the result is a MissingDependencyError.
func LocateModule(executionContext context.Context, fileSystem filesystem.FileSystem, baseDirectory string, candidates []string) (string, error) {
	strategies := make([]Strategy, 0, len(candidates))
	triedPaths := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		candidatePath := filepath.FromSlash(candidate)
		if !filepath.IsAbs(candidatePath) {
			candidatePath = filepath.Join(baseDirectory, candidatePath)
		}
		candidatePath = filepath.Clean(candidatePath)
		triedPaths = append(triedPaths, candidatePath)

		strategies = append(strategies, Strategy{
			Source: SourceModuleLocation,
			Resolve: func(context.Context) (string, bool) {
				return candidatePath, filesystem.IsRegularFile(fileSystem, candidatePath)
			},
		})
	}

	modulePath, _, located := FirstMatch(executionContext, strategies)
	if !located {
		return "", MissingDependencyError{BaseDirectory: baseDirectory, Candidates: triedPaths}
	}

	absolutePath, absError := fileSystem.Abs(modulePath)
	if absError != nil {
		return modulePath, nil
	}
	return absolutePath, nil
}
