// Package cli constructs the speckit-paths command-line interface, wiring the
// Cobra command hierarchy, the configuration loader, and structured logging.
// Configuration is read from the embedded defaults, then speckit-paths.yaml in the
// working directory or $XDG_CONFIG_HOME/speckit, then SPECKIT_* variables.
package cli
