package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHumanReadableLoggingEnabled(t *testing.T) {
	testCases := []struct {
		name      string
		logFormat string
		expected  bool
	}{
		{name: "console", logFormat: "console", expected: true},
		{name: "console with spacing and case", logFormat: "  CONSOLE ", expected: true},
		{name: "structured", logFormat: "structured", expected: false},
		{name: "empty", logFormat: "", expected: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			application := &Application{configuration: ApplicationConfiguration{Common: ApplicationCommonConfiguration{LogFormat: testCase.logFormat}}}
			require.Equal(t, testCase.expected, application.humanReadableLoggingEnabled())
		})
	}
}

func TestPersistentFlagChangedInspectsRootFlags(t *testing.T) {
	application := NewApplication()
	syncCommand, _, findError := application.rootCommand.Find([]string{"sync"})
	require.NoError(t, findError)
	require.False(t, application.persistentFlagChanged(syncCommand, logLevelFlagNameConstant))

	require.NoError(t, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))
	require.True(t, application.persistentFlagChanged(syncCommand, logLevelFlagNameConstant))
	require.False(t, application.persistentFlagChanged(nil, logLevelFlagNameConstant))
}

func TestInitializeConfigurationAttachesRunContext(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	application := NewApplication()
	command := &cobra.Command{Use: "probe"}
	application.rootCommand.AddCommand(command)

	require.NoError(t, application.initializeConfiguration(command))

	runIdentifier, hasRunIdentifier := application.commandContextAccessor.RunIdentifier(command.Context())
	require.True(t, hasRunIdentifier)
	require.Len(t, runIdentifier, 36)

	_, hasConfigurationPath := application.commandContextAccessor.ConfigurationFilePath(command.Context())
	require.False(t, hasConfigurationPath)
}

func TestSyncLoggerInstanceToleratesNil(t *testing.T) {
	application := &Application{}
	require.NoError(t, application.syncLoggerInstance(nil))
	require.NoError(t, application.syncLoggerInstance(zap.NewNop()))
}

func TestRegisteredCommands(t *testing.T) {
	application := NewApplication()
	commandNames := []string{}
	for _, command := range application.rootCommand.Commands() {
		commandNames = append(commandNames, command.Name())
	}
	require.Contains(t, commandNames, "sync")
	require.Contains(t, commandNames, "config")
}
