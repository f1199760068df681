package branches

import "fmt"

const pullRequestErrorTemplateConstant = "pull request #%d: %s: %v"

// Operations reported by PullRequestError.
const (
	OperationReadBranch = "read branch"
	OperationPlan       = "plan"
	OperationApply      = "apply"
)

// PullRequestError names the pull request and the step that failed while reconciling it.
type PullRequestError struct {
	Number    int
	Operation string
	Cause     error
}

// Error describes the failure.
func (pullRequestError PullRequestError) Error() string {
	return fmt.Sprintf(pullRequestErrorTemplateConstant, pullRequestError.Number, pullRequestError.Operation, pullRequestError.Cause)
}

// Unwrap exposes the underlying failure.
func (pullRequestError PullRequestError) Unwrap() error {
	return pullRequestError.Cause
}
