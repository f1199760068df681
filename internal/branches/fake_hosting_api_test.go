package branches_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/temirov/prsync/internal/execshell"
)

const (
	fakeOwnerConstant               = "octo"
	fakeRepositoryConstant          = "mirror"
	fakePullsEndpointConstant       = "repos/octo/mirror/pulls"
	fakeReferenceLookupPrefix       = "repos/octo/mirror/git/ref/heads/"
	fakeReferencesEndpointConstant  = "repos/octo/mirror/git/refs"
	fakeReferenceMutatePrefix       = "repos/octo/mirror/git/refs/heads/"
	fakeNotFoundErrorConstant       = "gh: Not Found (HTTP 404)"
	fakeAlreadyExistsErrorConstant  = "gh: Reference already exists (HTTP 422)"
	fakeDoesNotExistErrorConstant   = "gh: Reference does not exist (HTTP 422)"
	fakeServerErrorConstant         = "gh: Server Error (HTTP 502)"
	fakeBranchReferencePrefix       = "refs/heads/"
	fakeDefaultPerPageConstant      = 30
	fakeMutationCreateLabelConstant = "create"
	fakeMutationDeleteLabelConstant = "delete"
)

type fakePullRequest struct {
	Number int
	State  string
	Head   string
	Title  string
	Author string
}

// fakeHostingAPI answers gh api invocations from memory.
type fakeHostingAPI struct {
	mutex          sync.Mutex
	pullRequests   map[int]fakePullRequest
	branches       map[string]string
	mutations      []string
	listingFails   bool
	beforeCreate   func(api *fakeHostingAPI, branchName string)
	observedTokens map[string]struct{}
}

func newFakeHostingAPI(pullRequests []fakePullRequest, branches map[string]string) *fakeHostingAPI {
	api := &fakeHostingAPI{
		pullRequests:   make(map[int]fakePullRequest, len(pullRequests)),
		branches:       make(map[string]string, len(branches)),
		observedTokens: map[string]struct{}{},
	}
	for _, pullRequest := range pullRequests {
		api.pullRequests[pullRequest.Number] = pullRequest
	}
	for branchName, sha := range branches {
		api.branches[branchName] = sha
	}
	return api
}

func (api *fakeHostingAPI) setHead(number int, sha string) {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	pullRequest := api.pullRequests[number]
	pullRequest.Head = sha
	api.pullRequests[number] = pullRequest
}

func (api *fakeHostingAPI) setState(number int, state string) {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	pullRequest := api.pullRequests[number]
	pullRequest.State = state
	api.pullRequests[number] = pullRequest
}

func (api *fakeHostingAPI) branchSnapshot() map[string]string {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	snapshot := make(map[string]string, len(api.branches))
	for branchName, sha := range api.branches {
		snapshot[branchName] = sha
	}
	return snapshot
}

func (api *fakeHostingAPI) mutationLog() []string {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	return append([]string(nil), api.mutations...)
}

func (api *fakeHostingAPI) resetMutationLog() {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	api.mutations = nil
}

func (api *fakeHostingAPI) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return execshell.ExecutionResult{}, contextError
	}

	api.mutex.Lock()
	api.observedTokens[details.EnvironmentVariables["GH_TOKEN"]] = struct{}{}
	api.mutex.Unlock()

	arguments := details.Arguments
	if len(arguments) < 2 || arguments[0] != "api" {
		return api.fail(details, "gh: unsupported invocation")
	}
	endpoint := arguments[1]
	method := flagValue(arguments, "-X")
	fields := fieldValues(arguments)

	switch {
	case endpoint == fakePullsEndpointConstant && method == "GET":
		return api.listPullRequests(details, fields)
	case strings.HasPrefix(endpoint, fakeReferenceLookupPrefix) && method == "GET":
		return api.getReference(details, strings.TrimPrefix(endpoint, fakeReferenceLookupPrefix))
	case endpoint == fakeReferencesEndpointConstant && method == "POST":
		return api.createReference(details, strings.TrimPrefix(fields["ref"], fakeBranchReferencePrefix), fields["sha"])
	case strings.HasPrefix(endpoint, fakeReferenceMutatePrefix) && method == "DELETE":
		return api.deleteReference(details, strings.TrimPrefix(endpoint, fakeReferenceMutatePrefix))
	default:
		return api.fail(details, fakeNotFoundErrorConstant)
	}
}

func (api *fakeHostingAPI) listPullRequests(details execshell.CommandDetails, fields map[string]string) (execshell.ExecutionResult, error) {
	api.mutex.Lock()
	defer api.mutex.Unlock()

	if api.listingFails {
		return api.failLocked(details, fakeServerErrorConstant)
	}

	perPage := fakeDefaultPerPageConstant
	if parsed, parseError := strconv.Atoi(fields["per_page"]); parseError == nil {
		perPage = parsed
	}
	page := 1
	if parsed, parseError := strconv.Atoi(fields["page"]); parseError == nil {
		page = parsed
	}

	numbers := make([]int, 0, len(api.pullRequests))
	for number := range api.pullRequests {
		numbers = append(numbers, number)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(numbers)))

	type user struct {
		Login string `json:"login"`
	}
	type head struct {
		SHA string `json:"sha"`
	}
	type pullRequestPayload struct {
		Number int    `json:"number"`
		State  string `json:"state"`
		Title  string `json:"title"`
		User   user   `json:"user"`
		Head   head   `json:"head"`
	}

	payload := []pullRequestPayload{}
	start := (page - 1) * perPage
	for index := start; index < len(numbers) && index < start+perPage; index++ {
		pullRequest := api.pullRequests[numbers[index]]
		payload = append(payload, pullRequestPayload{
			Number: pullRequest.Number,
			State:  pullRequest.State,
			Title:  pullRequest.Title,
			User:   user{Login: pullRequest.Author},
			Head:   head{SHA: pullRequest.Head},
		})
	}

	encoded, _ := json.Marshal(payload)
	return execshell.ExecutionResult{StandardOutput: string(encoded)}, nil
}

func (api *fakeHostingAPI) getReference(details execshell.CommandDetails, branchName string) (execshell.ExecutionResult, error) {
	api.mutex.Lock()
	defer api.mutex.Unlock()

	sha, exists := api.branches[branchName]
	if !exists {
		return api.failLocked(details, fakeNotFoundErrorConstant)
	}
	return execshell.ExecutionResult{
		StandardOutput: fmt.Sprintf(`{"ref":"refs/heads/%s","object":{"sha":"%s","type":"commit"}}`, branchName, sha),
	}, nil
}

func (api *fakeHostingAPI) createReference(details execshell.CommandDetails, branchName string, sha string) (execshell.ExecutionResult, error) {
	if api.beforeCreate != nil {
		api.beforeCreate(api, branchName)
	}

	api.mutex.Lock()
	defer api.mutex.Unlock()

	api.mutations = append(api.mutations, fmt.Sprintf("%s %s %s", fakeMutationCreateLabelConstant, branchName, sha))
	if _, exists := api.branches[branchName]; exists {
		return api.failLocked(details, fakeAlreadyExistsErrorConstant)
	}
	api.branches[branchName] = sha
	return execshell.ExecutionResult{StandardOutput: "{}"}, nil
}

func (api *fakeHostingAPI) deleteReference(details execshell.CommandDetails, branchName string) (execshell.ExecutionResult, error) {
	api.mutex.Lock()
	defer api.mutex.Unlock()

	api.mutations = append(api.mutations, fmt.Sprintf("%s %s", fakeMutationDeleteLabelConstant, branchName))
	if _, exists := api.branches[branchName]; !exists {
		return api.failLocked(details, fakeDoesNotExistErrorConstant)
	}
	delete(api.branches, branchName)
	return execshell.ExecutionResult{}, nil
}

func (api *fakeHostingAPI) fail(details execshell.CommandDetails, standardError string) (execshell.ExecutionResult, error) {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	return api.failLocked(details, standardError)
}

func (api *fakeHostingAPI) failLocked(details execshell.CommandDetails, standardError string) (execshell.ExecutionResult, error) {
	result := execshell.ExecutionResult{ExitCode: 1, StandardError: standardError}
	return result, execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGitHub, Details: details},
		Result:  result,
	}
}

func flagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if arguments[index] == flag {
			return arguments[index+1]
		}
	}
	return ""
}

func fieldValues(arguments []string) map[string]string {
	values := map[string]string{}
	for index := 0; index < len(arguments)-1; index++ {
		if arguments[index] != "-f" {
			continue
		}
		name, value, found := strings.Cut(arguments[index+1], "=")
		if found {
			values[name] = value
		}
	}
	return values
}
