package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMessagesForPullRequestListing(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGitHub,
		Details: CommandDetails{
			Arguments: []string{"api", "repos/octo/widgets/pulls", "-X", "GET", "-f", "state=all", "-f", "per_page=100", "-f", "page=3"},
		},
	}

	require.Equal(t, "Listing pull requests for octo/widgets (page 3)", formatter.BuildStartedMessage(command))
	require.Equal(t, "Listed pull requests for octo/widgets (page 3)", formatter.BuildSuccessMessage(command))
	require.Equal(t,
		"Failed to list pull requests for octo/widgets (page 3, exit code 1: gh: Bad credentials (HTTP 401))",
		formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "gh: Bad credentials (HTTP 401)\n"}),
	)
}

func TestBuildMessagesForReferenceOperations(t *testing.T) {
	formatter := CommandMessageFormatter{}

	lookupCommand := ShellCommand{
		Name:    CommandGitHub,
		Details: CommandDetails{Arguments: []string{"api", "repos/octo/widgets/git/ref/heads/pr-42", "-X", "GET"}},
	}
	createCommand := ShellCommand{
		Name: CommandGitHub,
		Details: CommandDetails{Arguments: []string{
			"api", "repos/octo/widgets/git/refs", "-X", "POST", "-f", "ref=refs/heads/pr-42", "-f", "sha=abc123",
		}},
	}
	deleteCommand := ShellCommand{
		Name:    CommandGitHub,
		Details: CommandDetails{Arguments: []string{"api", "repos/octo/widgets/git/refs/heads/pr-42", "-X", "DELETE"}},
	}

	require.Equal(t, "Looking up branch pr-42 in octo/widgets", formatter.BuildStartedMessage(lookupCommand))
	require.Equal(t,
		"Branch pr-42 does not exist in octo/widgets",
		formatter.BuildFailureMessage(lookupCommand, ExecutionResult{ExitCode: 1, StandardError: "gh: Not Found (HTTP 404)"}),
	)
	require.Equal(t, "Creating branch pr-42 in octo/widgets at abc123", formatter.BuildStartedMessage(createCommand))
	require.Equal(t, "Deleted branch pr-42 in octo/widgets", formatter.BuildSuccessMessage(deleteCommand))
	require.Equal(t,
		"Unable to delete branch pr-42 in octo/widgets: connection reset",
		formatter.BuildExecutionFailureMessage(deleteCommand, errors.New("connection reset")),
	)
}

func TestIsExpectedFailureOnlyMatchesMissingBranchLookups(t *testing.T) {
	formatter := CommandMessageFormatter{}
	notFound := ExecutionResult{ExitCode: 1, StandardError: "gh: Not Found (HTTP 404)"}

	lookupCommand := ShellCommand{
		Name:    CommandGitHub,
		Details: CommandDetails{Arguments: []string{"api", "repos/octo/widgets/git/ref/heads/pr-7", "-X", "GET"}},
	}
	deleteCommand := ShellCommand{
		Name:    CommandGitHub,
		Details: CommandDetails{Arguments: []string{"api", "repos/octo/widgets/git/refs/heads/pr-7", "-X", "DELETE"}},
	}

	require.True(t, formatter.IsExpectedFailure(lookupCommand, notFound))
	require.False(t, formatter.IsExpectedFailure(lookupCommand, ExecutionResult{ExitCode: 1, StandardError: "gh: Server Error (HTTP 502)"}))
	require.False(t, formatter.IsExpectedFailure(deleteCommand, notFound))
	require.False(t, formatter.IsExpectedFailure(lookupCommand, ExecutionResult{ExitCode: 0}))
}

func TestBuildGenericMessageForUnrecognizedCommands(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGitHub,
		Details: CommandDetails{Arguments: []string{"--version"}, WorkingDirectory: "/workspace"},
	}

	require.Equal(t, "Running gh --version (in /workspace)", formatter.BuildStartedMessage(command))
	require.Equal(t, "gh --version (in /workspace) failed with exit code 2", formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 2}))
}
