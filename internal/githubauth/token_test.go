package githubauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prsync/internal/githubauth"
)

func clearTokenEnvironment(testInstance *testing.T) {
	for _, key := range []string{githubauth.EnvAPIToken, githubauth.EnvGitHubCLIToken, githubauth.EnvGitHubToken, githubauth.EnvGitHubAPIToken} {
		testInstance.Setenv(key, "")
	}
}

func TestResolveTokenPreference(testInstance *testing.T) {
	testCases := []struct {
		name          string
		environment   map[string]string
		processValues map[string]string
		expectedToken string
		expectFound   bool
	}{
		{
			name:          "api token wins over gh token",
			processValues: map[string]string{githubauth.EnvAPIToken: "api", githubauth.EnvGitHubCLIToken: "gh"},
			expectedToken: "api",
			expectFound:   true,
		},
		{
			name:          "falls back to github token",
			processValues: map[string]string{githubauth.EnvGitHubToken: " github "},
			expectedToken: "github",
			expectFound:   true,
		},
		{
			name:          "explicit map wins over process environment",
			environment:   map[string]string{githubauth.EnvGitHubAPIToken: "mapped"},
			processValues: map[string]string{githubauth.EnvAPIToken: "api"},
			expectedToken: "mapped",
			expectFound:   true,
		},
		{
			name:          "blank values are ignored",
			environment:   map[string]string{githubauth.EnvAPIToken: "  "},
			processValues: map[string]string{githubauth.EnvGitHubCLIToken: "  "},
			expectFound:   false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			clearTokenEnvironment(testInstance)
			for key, value := range testCase.processValues {
				testInstance.Setenv(key, value)
			}

			token, found := githubauth.ResolveToken(testCase.environment)
			require.Equal(testInstance, testCase.expectFound, found)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}

func TestRequireTokenReportsMissingToken(testInstance *testing.T) {
	clearTokenEnvironment(testInstance)

	_, tokenError := githubauth.RequireToken()
	require.ErrorIs(testInstance, tokenError, githubauth.ErrTokenNotFound)
}
