// Package utils exposes the helpers shared by the CLI and the resolver commands.
//
// ConfigurationLoader layers embedded defaults, an optional YAML file, and
// SPECKIT_* environment variables through Viper. LoggerFactory builds zap
// loggers that write to standard error so command output stays clean for eval.
package utils
