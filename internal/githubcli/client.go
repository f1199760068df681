package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/prsync/internal/execshell"
)

const (
	apiSubcommandConstant                   = "api"
	methodFlagConstant                      = "-X"
	fieldFlagConstant                       = "-f"
	httpMethodGetConstant                   = "GET"
	httpMethodPostConstant                  = "POST"
	httpMethodDeleteConstant                = "DELETE"
	pullRequestsEndpointTemplateConstant    = "repos/%s/%s/pulls"
	referenceLookupEndpointTemplateConstant = "repos/%s/%s/git/ref/heads/%s"
	referencesEndpointTemplateConstant      = "repos/%s/%s/git/refs"
	referenceEndpointTemplateConstant       = "repos/%s/%s/git/refs/heads/%s"
	stateFieldTemplateConstant              = "state=%s"
	perPageFieldTemplateConstant            = "per_page=%d"
	pageFieldTemplateConstant               = "page=%d"
	refFieldTemplateConstant                = "ref=refs/heads/%s"
	shaFieldTemplateConstant                = "sha=%s"
	branchReferencePrefixConstant           = "refs/heads/"
	stateAllValueConstant                   = "all"
	tokenEnvironmentVariableConstant        = "GH_TOKEN"
	promptDisabledEnvironmentVariable       = "GH_PROMPT_DISABLED"
	promptDisabledValueConstant             = "1"
	repositoryOwnerFieldNameConstant        = "owner"
	repositoryNameFieldNameConstant         = "repository"
	branchNameFieldNameConstant             = "branch"
	targetSHAFieldNameConstant              = "sha"
	pageFieldNameConstant                   = "page"
	pageSizeFieldNameConstant               = "page_size"
	requiredValueMessageConstant            = "value required"
	positiveValueMessageConstant            = "must be positive"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	tokenNotConfiguredMessageConstant       = "github api token not configured"
	repositoryIdentifierTemplateConstant    = "%s/%s"
	listPullRequestsOperationNameConstant   = OperationName("ListPullRequests")
	getReferenceOperationNameConstant       = OperationName("GetBranchReference")
	createReferenceOperationNameConstant    = OperationName("CreateBranchReference")
	deleteReferenceOperationNameConstant    = OperationName("DeleteBranchReference")
	defaultRetryBaseDelayConstant           = time.Second
)

// OperationName describes a named GitHub API call supported by the client.
type OperationName string

// RepositoryIdentifier names a hosted repository.
type RepositoryIdentifier struct {
	Owner string
	Name  string
}

// String renders the identifier as owner/name.
func (identifier RepositoryIdentifier) String() string {
	return fmt.Sprintf(repositoryIdentifierTemplateConstant, identifier.Owner, identifier.Name)
}

// Validate reports missing owner or name.
func (identifier RepositoryIdentifier) Validate() error {
	if len(strings.TrimSpace(identifier.Owner)) == 0 {
		return InvalidInputError{FieldName: repositoryOwnerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(identifier.Name)) == 0 {
		return InvalidInputError{FieldName: repositoryNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

// PullRequest is a pull request as returned by the listing endpoint. Title and AuthorLogin
// are nil when the API omits them.
type PullRequest struct {
	Number      int
	State       string
	HeadSHA     string
	Title       *string
	AuthorLogin *string
}

// Reference is a branch reference as returned by the git refs endpoints.
type Reference struct {
	BranchName string
	TargetSHA  string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RetryPolicy configures retries of transport-class failures. MaxRetries of zero disables retrying.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Client issues GitHub REST calls through gh api.
type Client struct {
	executor    GitHubCommandExecutor
	token       string
	retryPolicy RetryPolicy
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrTokenNotConfigured indicates the client was constructed without an API token.
	ErrTokenNotConfigured = errors.New(tokenNotConfiguredMessageConstant)
)

// NewClient constructs a client authenticating every call with token.
func NewClient(executor GitHubCommandExecutor, token string, retryPolicy RetryPolicy) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenNotConfigured
	}
	if retryPolicy.MaxRetries < 0 {
		retryPolicy.MaxRetries = 0
	}
	if retryPolicy.BaseDelay <= 0 {
		retryPolicy.BaseDelay = defaultRetryBaseDelayConstant
	}
	return &Client{executor: executor, token: trimmedToken, retryPolicy: retryPolicy}, nil
}

// ListPullRequestsPage returns one page of pull requests in every state.
func (client *Client) ListPullRequestsPage(executionContext context.Context, repository RepositoryIdentifier, page int, pageSize int) ([]PullRequest, error) {
	if validationError := repository.Validate(); validationError != nil {
		return nil, validationError
	}
	if page < 1 {
		return nil, InvalidInputError{FieldName: pageFieldNameConstant, Message: positiveValueMessageConstant}
	}
	if pageSize < 1 {
		return nil, InvalidInputError{FieldName: pageSizeFieldNameConstant, Message: positiveValueMessageConstant}
	}

	arguments := []string{
		apiSubcommandConstant,
		fmt.Sprintf(pullRequestsEndpointTemplateConstant, repository.Owner, repository.Name),
		methodFlagConstant, httpMethodGetConstant,
		fieldFlagConstant, fmt.Sprintf(stateFieldTemplateConstant, stateAllValueConstant),
		fieldFlagConstant, fmt.Sprintf(perPageFieldTemplateConstant, pageSize),
		fieldFlagConstant, fmt.Sprintf(pageFieldTemplateConstant, page),
	}

	executionResult, executionError := client.execute(executionContext, listPullRequestsOperationNameConstant, arguments)
	if executionError != nil {
		return nil, executionError
	}

	var response []struct {
		Number int     `json:"number"`
		State  string  `json:"state"`
		Title  *string `json:"title"`
		User   *struct {
			Login *string `json:"login"`
		} `json:"user"`
		Head struct {
			SHA string `json:"sha"`
		} `json:"head"`
	}

	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return nil, ResponseDecodingError{Operation: listPullRequestsOperationNameConstant, Cause: decodingError}
	}

	pullRequests := make([]PullRequest, 0, len(response))
	for _, pullRequestEntry := range response {
		var authorLogin *string
		if pullRequestEntry.User != nil {
			authorLogin = pullRequestEntry.User.Login
		}
		pullRequests = append(pullRequests, PullRequest{
			Number:      pullRequestEntry.Number,
			State:       pullRequestEntry.State,
			HeadSHA:     pullRequestEntry.Head.SHA,
			Title:       pullRequestEntry.Title,
			AuthorLogin: authorLogin,
		})
	}

	return pullRequests, nil
}

// GetBranchReference reads refs/heads/<branch>. An absent branch yields an error matching ErrReferenceNotFound.
func (client *Client) GetBranchReference(executionContext context.Context, repository RepositoryIdentifier, branchName string) (Reference, error) {
	if validationError := validateBranchInput(repository, branchName); validationError != nil {
		return Reference{}, validationError
	}

	arguments := []string{
		apiSubcommandConstant,
		fmt.Sprintf(referenceLookupEndpointTemplateConstant, repository.Owner, repository.Name, branchName),
		methodFlagConstant, httpMethodGetConstant,
	}

	executionResult, executionError := client.execute(executionContext, getReferenceOperationNameConstant, arguments)
	if executionError != nil {
		return Reference{}, executionError
	}

	return decodeReference(getReferenceOperationNameConstant, executionResult.StandardOutput)
}

// CreateBranchReference creates refs/heads/<branch> at targetSHA. A conflicting branch yields an error
// matching ErrReferenceAlreadyExists.
func (client *Client) CreateBranchReference(executionContext context.Context, repository RepositoryIdentifier, branchName string, targetSHA string) error {
	if validationError := validateBranchInput(repository, branchName); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(targetSHA)) == 0 {
		return InvalidInputError{FieldName: targetSHAFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{
		apiSubcommandConstant,
		fmt.Sprintf(referencesEndpointTemplateConstant, repository.Owner, repository.Name),
		methodFlagConstant, httpMethodPostConstant,
		fieldFlagConstant, fmt.Sprintf(refFieldTemplateConstant, branchName),
		fieldFlagConstant, fmt.Sprintf(shaFieldTemplateConstant, targetSHA),
	}

	_, executionError := client.execute(executionContext, createReferenceOperationNameConstant, arguments)
	return executionError
}

// DeleteBranchReference deletes refs/heads/<branch>. An absent branch yields an error matching ErrReferenceNotFound.
func (client *Client) DeleteBranchReference(executionContext context.Context, repository RepositoryIdentifier, branchName string) error {
	if validationError := validateBranchInput(repository, branchName); validationError != nil {
		return validationError
	}

	arguments := []string{
		apiSubcommandConstant,
		fmt.Sprintf(referenceEndpointTemplateConstant, repository.Owner, repository.Name, branchName),
		methodFlagConstant, httpMethodDeleteConstant,
	}

	_, executionError := client.execute(executionContext, deleteReferenceOperationNameConstant, arguments)
	return executionError
}

func (client *Client) execute(executionContext context.Context, operation OperationName, arguments []string) (execshell.ExecutionResult, error) {
	commandDetails := execshell.CommandDetails{
		Arguments: arguments,
		EnvironmentVariables: map[string]string{
			tokenEnvironmentVariableConstant:  client.token,
			promptDisabledEnvironmentVariable: promptDisabledValueConstant,
		},
	}

	var executionResult execshell.ExecutionResult
	retryError := client.withRetry(executionContext, func(attemptContext context.Context) error {
		result, executionError := client.executor.ExecuteGitHubCLI(attemptContext, commandDetails)
		if executionError != nil {
			return classifyExecutionError(operation, executionError)
		}
		executionResult = result
		return nil
	})
	if retryError != nil {
		return execshell.ExecutionResult{}, retryError
	}
	return executionResult, nil
}

func validateBranchInput(repository RepositoryIdentifier, branchName string) error {
	if validationError := repository.Validate(); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		return InvalidInputError{FieldName: branchNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func decodeReference(operation OperationName, payload string) (Reference, error) {
	var response struct {
		Ref    string `json:"ref"`
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	if decodingError := json.Unmarshal([]byte(payload), &response); decodingError != nil {
		return Reference{}, ResponseDecodingError{Operation: operation, Cause: decodingError}
	}
	if len(response.Object.SHA) == 0 {
		return Reference{}, ResponseDecodingError{Operation: operation, Cause: errors.New("reference object sha missing")}
	}
	return Reference{
		BranchName: strings.TrimPrefix(response.Ref, branchReferencePrefixConstant),
		TargetSHA:  response.Object.SHA,
	}, nil
}
