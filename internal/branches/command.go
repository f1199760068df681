package branches

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/prsync/internal/execshell"
	"github.com/temirov/prsync/internal/githubauth"
	"github.com/temirov/prsync/internal/githubcli"
	"github.com/temirov/prsync/internal/pullrequests"
	"github.com/temirov/prsync/internal/refs"
	"github.com/temirov/prsync/internal/ui"
	"github.com/temirov/prsync/internal/utils/flags"
)

const (
	commandUseConstant                    = "sync"
	commandShortDescriptionConstant       = "Mirror pull request heads onto pr-<number> branches"
	commandLongDescriptionConstant        = "sync lists every pull request of the repository, creates or moves pr-<number> branches to the head of open pull requests, and deletes the branches of closed ones."
	commandExecutionErrorTemplateConstant = "sync failed: %w"
	unknownStateFlagNameConstant          = "unknown-state"
	unknownStateFlagDescriptionConstant   = "Handling of pull requests in an unrecognized state"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// TokenProvider resolves the API token.
type TokenProvider func() (string, error)

// CommandBuilder assembles the Cobra command for the reconciliation pass.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	TokenProvider                TokenProvider
	GitHubExecutor               githubcli.GitHubCommandExecutor
	StatusOutput                 io.Writer
}

type commandFlagValues struct {
	repository         *flags.RepositoryFlagValues
	execution          *flags.ExecutionFlagValues
	unknownStatePolicy *string
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}

	unknownStatePolicyValue := string(UnknownStatePolicySkip)
	flagValues := commandFlagValues{
		repository:         flags.BindRepositoryFlags(command, flags.RepositoryFlagValues{}, flags.DefaultRepositoryFlagDefinitions()),
		execution:          flags.BindExecutionFlags(command, flags.ExecutionFlagValues{Concurrency: defaultConcurrencyConstant}),
		unknownStatePolicy: &unknownStatePolicyValue,
	}
	flags.AddChoiceFlag(
		command.Flags(),
		flagValues.unknownStatePolicy,
		unknownStateFlagNameConstant,
		string(UnknownStatePolicySkip),
		UnknownStatePolicyChoices(),
		unknownStateFlagDescriptionConstant,
	)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, flagValues)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, flagValues commandFlagValues) error {
	configuration := builder.applyFlagOverrides(command, builder.resolveConfiguration(), flagValues)
	if validationError := configuration.Validate(); validationError != nil {
		return validationError
	}

	token, tokenError := builder.resolveToken()
	if tokenError != nil {
		return ConfigurationError{Field: tokenFieldNameConstant, Message: tokenError.Error()}
	}

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	client, clientError := githubcli.NewClient(executor, token, githubcli.RetryPolicy{
		MaxRetries: configuration.MaxRetries,
		BaseDelay:  configuration.RetryBaseDelay,
	})
	if clientError != nil {
		return clientError
	}

	repository := githubcli.RepositoryIdentifier{Owner: configuration.Owner, Name: configuration.Repository}
	source, sourceError := pullrequests.NewSource(client, logger, configuration.PageSize)
	if sourceError != nil {
		return sourceError
	}
	mutator, mutatorError := refs.NewMutator(client, repository, logger)
	if mutatorError != nil {
		return mutatorError
	}

	statusOutput := builder.StatusOutput
	if statusOutput == nil {
		statusOutput = command.OutOrStdout()
	}

	service, serviceError := NewService(Dependencies{
		Lister:   source,
		Mutator:  mutator,
		Reporter: ui.NewStatusPrinter(statusOutput),
		Logger:   logger,
	})
	if serviceError != nil {
		return serviceError
	}

	_, synchronizeError := service.Synchronize(command.Context(), Options{
		Repository:         repository,
		DryRun:             configuration.DryRun,
		Concurrency:        configuration.Concurrency,
		UnknownStatePolicy: configuration.UnknownStatePolicy,
	})
	if synchronizeError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, synchronizeError)
	}

	return nil
}

func (builder *CommandBuilder) applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration, flagValues commandFlagValues) CommandConfiguration {
	flagSet := command.Flags()
	if flagSet.Changed(flags.OwnerFlagName) {
		configuration.Owner = flagValues.repository.Owner
	}
	if flagSet.Changed(flags.RepositoryFlagName) {
		configuration.Repository = flagValues.repository.Name
	}
	if flagSet.Changed(flags.DryRunFlagName) {
		configuration.DryRun = flagValues.execution.DryRun
	}
	if flagSet.Changed(flags.ConcurrencyFlagName) {
		configuration.Concurrency = flagValues.execution.Concurrency
	}
	if flagSet.Changed(unknownStateFlagNameConstant) {
		configuration.UnknownStatePolicy = UnknownStatePolicy(*flagValues.unknownStatePolicy)
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveToken() (string, error) {
	if builder.TokenProvider == nil {
		return githubauth.RequireToken()
	}
	return builder.TokenProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (githubcli.GitHubCommandExecutor, error) {
	if builder.GitHubExecutor != nil {
		return builder.GitHubExecutor, nil
	}

	var observer execshell.CommandEventObserver
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		consoleLogger := logger
		if builder.ConsoleLoggerProvider != nil {
			if providedLogger := builder.ConsoleLoggerProvider(); providedLogger != nil {
				consoleLogger = providedLogger
			}
		}
		observer = ui.NewConsoleCommandEventLogger(consoleLogger)
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observer)
	if creationError != nil {
		return nil, creationError
	}

	return shellExecutor, nil
}
