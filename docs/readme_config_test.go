package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/prsync/cmd/cli"
	"github.com/temirov/prsync/internal/branches"
	"github.com/temirov/prsync/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	readmeSnippetFileNameConstant    = "config.yaml"
	parentDirectoryReferenceConstant = ".."
	configurationNameConstant        = "config"
	configurationTypeConstant        = "yaml"
	environmentPrefixConstant        = "PRSYNCDOCS"
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

func TestReadmeConfigurationParses(testInstance *testing.T) {
	snippetContent := readReadmeConfigurationSnippet(testInstance)

	testCases := []struct {
		name   string
		decode func(*testing.T) cli.ApplicationConfiguration
	}{
		{
			name: "yaml_decoding",
			decode: func(testInstance *testing.T) cli.ApplicationConfiguration {
				var applicationConfiguration cli.ApplicationConfiguration
				require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &applicationConfiguration))
				return applicationConfiguration
			},
		},
		{
			name: "configuration_loader",
			decode: func(testInstance *testing.T) cli.ApplicationConfiguration {
				configurationPath := filepath.Join(testInstance.TempDir(), readmeSnippetFileNameConstant)
				require.NoError(testInstance, os.WriteFile(configurationPath, []byte(snippetContent), 0o600))

				embeddedContent, embeddedType := cli.EmbeddedDefaultConfiguration()
				configurationLoader := utils.NewConfigurationLoader(configurationNameConstant, configurationTypeConstant, environmentPrefixConstant, nil)
				configurationLoader.SetEmbeddedConfiguration(embeddedContent, embeddedType)

				var applicationConfiguration cli.ApplicationConfiguration
				_, loadError := configurationLoader.LoadConfiguration(configurationPath, nil, &applicationConfiguration)
				require.NoError(testInstance, loadError)
				return applicationConfiguration
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			applicationConfiguration := testCase.decode(subtest)

			syncConfiguration := applicationConfiguration.Sync.Sanitize()
			require.NoError(subtest, syncConfiguration.Validate())
			require.Equal(subtest, "octo", syncConfiguration.Owner)
			require.Equal(subtest, "mirror", syncConfiguration.Repository)
			require.Equal(subtest, branches.UnknownStatePolicySkip, syncConfiguration.UnknownStatePolicy)
			require.Equal(subtest, 4, syncConfiguration.Concurrency)
			require.Equal(subtest, 3, syncConfiguration.MaxRetries)
			require.Equal(subtest, 500*time.Millisecond, syncConfiguration.RetryBaseDelay)

			_, loggerError := utils.NewLoggerFactory().CreateLogger(
				utils.LogLevel(applicationConfiguration.Common.LogLevel),
				utils.LogFormat(applicationConfiguration.Common.LogFormat),
			)
			require.NoError(subtest, loggerError)
		})
	}
}

func readReadmeConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	contentBytes, readError := os.ReadFile(filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant))
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	fenceEndRelativeIndex := strings.Index(contentText[headerIndex:], yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : headerIndex+fenceEndRelativeIndex])
}
