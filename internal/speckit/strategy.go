package speckit

import "context"

// Source names the strategy that produced a resolved value.
type Source string

// Resolution sources, in the order they are attempted.
const (
	SourceGitQuery       Source = Source("git")
	SourceDirectoryWalk  Source = Source("directory-walk")
	SourceMarkerFiles    Source = Source("marker-files")
	SourceHeadFile       Source = Source("head-file")
	SourceDefault        Source = Source("default")
	SourceModuleLocation Source = Source("module-location")
)

// Strategy attempts to produce a value and reports whether it applied.
type Strategy struct {
	Source  Source
	Resolve func(executionContext context.Context) (string, bool)
}

// FirstMatch runs strategies in order and returns the first value produced.
// The boolean is false when no strategy applied.
func FirstMatch(executionContext context.Context, strategies []Strategy) (string, Source, bool) {
	for _, strategy := range strategies {
		if strategy.Resolve == nil {
			continue
		}
		if value, applied := strategy.Resolve(executionContext); applied {
			return value, strategy.Source, true
		}
	}
	return "", "", false
}
