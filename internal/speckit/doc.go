// Package speckit resolves the Spec-Kit repository paths.
//
// Service runs ordered strategy lists to find the repository root (git,
// a .git directory walk, marker files) and the current branch (git, the HEAD
// file, the configured default), then captures the result in an immutable
// Configuration. CachedResolver keeps one Configuration per process, and
// CommandBuilder exposes it through Cobra subcommands for shell callers.
package speckit
