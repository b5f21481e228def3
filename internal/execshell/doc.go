// Package execshell runs external tools for speckit-paths.
//
// ShellExecutor wraps a CommandRunner with zap logging and converts non-zero
// exits into CommandFailedError values. OSCommandRunner is the os/exec backed
// runner used outside of tests.
package execshell
