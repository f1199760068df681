package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	githubAPICommandNameConstant          = "api"
	githubMethodFlagConstant              = "-X"
	githubFieldFlagConstant               = "-f"
	githubFieldAssignmentSeparator        = "="
	githubRepositoryEndpointPrefix        = "repos/"
	githubPullsEndpointSuffixConstant     = "/pulls"
	githubReferenceLookupSegmentConstant  = "/git/ref/heads/"
	githubReferenceMutateSegmentConstant  = "/git/refs/heads/"
	githubReferenceCollectionSuffix       = "/git/refs"
	githubReferenceFieldNameConstant      = "ref"
	githubSHAFieldNameConstant            = "sha"
	githubPageFieldNameConstant           = "page"
	githubBranchReferencePrefixConstant   = "refs/heads/"
	githubNotFoundStatusMarkerConstant    = "HTTP 404"
	githubHTTPMethodGetConstant           = "GET"
	githubHTTPMethodPostConstant          = "POST"
	githubHTTPMethodDeleteConstant        = "DELETE"
	githubCurrentRepositoryLabelConstant  = "current repository"
	githubDefaultPageLabelConstant        = "1"
	githubRepositorySegmentCountConstant  = 2
	githubMinimumAPIArgumentCountConstant = 2
)

const (
	githubPullRequestPageStartTemplateConstant            = "Listing pull requests for %s (page %s)"
	githubPullRequestPageSuccessTemplateConstant          = "Listed pull requests for %s (page %s)"
	githubPullRequestPageFailureTemplateConstant          = "Failed to list pull requests for %s (page %s, exit code %d%s)"
	githubPullRequestPageExecutionFailureTemplateConstant = "Unable to list pull requests for %s (page %s): %s"
	githubReferenceLookupStartTemplateConstant            = "Looking up branch %s in %s"
	githubReferenceLookupSuccessTemplateConstant          = "Found branch %s in %s"
	githubReferenceLookupNotFoundTemplateConstant         = "Branch %s does not exist in %s"
	githubReferenceLookupFailureTemplateConstant          = "Failed to look up branch %s in %s (exit code %d%s)"
	githubReferenceLookupExecutionFailureTemplateConstant = "Unable to look up branch %s in %s: %s"
	githubReferenceCreateStartTemplateConstant            = "Creating branch %s in %s at %s"
	githubReferenceCreateSuccessTemplateConstant          = "Created branch %s in %s at %s"
	githubReferenceCreateFailureTemplateConstant          = "Failed to create branch %s in %s at %s (exit code %d%s)"
	githubReferenceCreateExecutionFailureTemplateConstant = "Unable to create branch %s in %s at %s: %s"
	githubReferenceDeleteStartTemplateConstant            = "Deleting branch %s in %s"
	githubReferenceDeleteSuccessTemplateConstant          = "Deleted branch %s in %s"
	githubReferenceDeleteFailureTemplateConstant          = "Failed to delete branch %s in %s (exit code %d%s)"
	githubReferenceDeleteExecutionFailureTemplateConstant = "Unable to delete branch %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// IsExpectedFailure reports non-zero exits that callers treat as a normal outcome,
// such as a branch lookup answered with HTTP 404.
func (formatter CommandMessageFormatter) IsExpectedFailure(command ShellCommand, result ExecutionResult) bool {
	if command.Name != CommandGitHub || result.ExitCode == 0 {
		return false
	}
	if !formatter.isReferenceLookup(command.Details.Arguments) {
		return false
	}
	return strings.Contains(result.StandardError, githubNotFoundStatusMarkerConstant)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGitHub || len(command.Details.Arguments) < githubMinimumAPIArgumentCountConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	if strings.TrimSpace(command.Details.Arguments[0]) != githubAPICommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	return formatter.describeGitHubAPICommand(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitHubAPICommand(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	endpoint := strings.TrimSpace(arguments[1])
	method := strings.ToUpper(findFlagValue(arguments, githubMethodFlagConstant))
	if len(method) == 0 {
		method = githubHTTPMethodGetConstant
	}
	repository := formatter.extractRepository(endpoint)
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)

	switch {
	case strings.HasSuffix(endpoint, githubPullsEndpointSuffixConstant):
		page := findFieldValue(arguments, githubPageFieldNameConstant)
		if len(page) == 0 {
			page = githubDefaultPageLabelConstant
		}
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubPullRequestPageStartTemplateConstant, repository, page)
		case messageStageSuccess:
			return fmt.Sprintf(githubPullRequestPageSuccessTemplateConstant, repository, page)
		case messageStageFailure:
			return fmt.Sprintf(githubPullRequestPageFailureTemplateConstant, repository, page, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubPullRequestPageExecutionFailureTemplateConstant, repository, page, formatter.describeFailure(failure))
		}
	case strings.Contains(endpoint, githubReferenceLookupSegmentConstant):
		branch := formatter.ensureValue(endpointSuffixAfter(endpoint, githubReferenceLookupSegmentConstant))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubReferenceLookupStartTemplateConstant, branch, repository)
		case messageStageSuccess:
			return fmt.Sprintf(githubReferenceLookupSuccessTemplateConstant, branch, repository)
		case messageStageFailure:
			if strings.Contains(result.StandardError, githubNotFoundStatusMarkerConstant) {
				return fmt.Sprintf(githubReferenceLookupNotFoundTemplateConstant, branch, repository)
			}
			return fmt.Sprintf(githubReferenceLookupFailureTemplateConstant, branch, repository, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubReferenceLookupExecutionFailureTemplateConstant, branch, repository, formatter.describeFailure(failure))
		}
	case strings.HasSuffix(endpoint, githubReferenceCollectionSuffix) && method == githubHTTPMethodPostConstant:
		branch := formatter.ensureValue(strings.TrimPrefix(findFieldValue(arguments, githubReferenceFieldNameConstant), githubBranchReferencePrefixConstant))
		sha := formatter.ensureValue(findFieldValue(arguments, githubSHAFieldNameConstant))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubReferenceCreateStartTemplateConstant, branch, repository, sha)
		case messageStageSuccess:
			return fmt.Sprintf(githubReferenceCreateSuccessTemplateConstant, branch, repository, sha)
		case messageStageFailure:
			return fmt.Sprintf(githubReferenceCreateFailureTemplateConstant, branch, repository, sha, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubReferenceCreateExecutionFailureTemplateConstant, branch, repository, sha, formatter.describeFailure(failure))
		}
	case strings.Contains(endpoint, githubReferenceMutateSegmentConstant) && method == githubHTTPMethodDeleteConstant:
		branch := formatter.ensureValue(endpointSuffixAfter(endpoint, githubReferenceMutateSegmentConstant))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubReferenceDeleteStartTemplateConstant, branch, repository)
		case messageStageSuccess:
			return fmt.Sprintf(githubReferenceDeleteSuccessTemplateConstant, branch, repository)
		case messageStageFailure:
			return fmt.Sprintf(githubReferenceDeleteFailureTemplateConstant, branch, repository, result.ExitCode, standardErrorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubReferenceDeleteExecutionFailureTemplateConstant, branch, repository, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) isReferenceLookup(arguments []string) bool {
	if len(arguments) < githubMinimumAPIArgumentCountConstant {
		return false
	}
	if strings.TrimSpace(arguments[0]) != githubAPICommandNameConstant {
		return false
	}
	return strings.Contains(arguments[1], githubReferenceLookupSegmentConstant)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

// extractRepository turns "repos/owner/name/..." into "owner/name".
func (formatter CommandMessageFormatter) extractRepository(endpoint string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(endpoint), githubRepositoryEndpointPrefix)
	segments := strings.Split(trimmed, "/")
	if len(segments) < githubRepositorySegmentCountConstant || len(segments[0]) == 0 || len(segments[1]) == 0 {
		return githubCurrentRepositoryLabelConstant
	}
	return segments[0] + "/" + segments[1]
}

func endpointSuffixAfter(endpoint string, marker string) string {
	markerIndex := strings.Index(endpoint, marker)
	if markerIndex < 0 {
		return emptyStringConstant
	}
	return endpoint[markerIndex+len(marker):]
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

// findFieldValue returns the value of a "-f name=value" pair.
func findFieldValue(arguments []string, fieldName string) string {
	fieldPrefix := fieldName + githubFieldAssignmentSeparator
	for index := 0; index+1 < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) != githubFieldFlagConstant {
			continue
		}
		candidate := strings.TrimSpace(arguments[index+1])
		if strings.HasPrefix(candidate, fieldPrefix) {
			return strings.TrimPrefix(candidate, fieldPrefix)
		}
	}
	return emptyStringConstant
}
