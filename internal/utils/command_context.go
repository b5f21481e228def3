package utils

import "context"

type commandContextKey string

const configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")

// CommandContextAccessor stores values shared between the root command and its subcommands.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file that was loaded.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath returns the recorded configuration file. The boolean is
// false when nothing was recorded or the recorded path is empty.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, _ := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	return configurationFilePath, len(configurationFilePath) > 0
}
