package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/prsync/internal/pullrequests"
)

const (
	branchNamePrefixConstant           = "pr-"
	unknownStateErrorTemplateConstant  = "pull request #%d has unrecognized state %q"
	invalidRecordErrorTemplateConstant = "pull request #%d is invalid: %s"
	invalidNumberMessageConstant       = "number must be at least 1"
	missingHeadSHAMessageConstant      = "open pull request has no head sha"
	noOpDescriptionConstant            = "no change"
	createDescriptionTemplateConstant  = "Creating %s at %s"
	updateDescriptionTemplateConstant  = "Updating %s to %s"
	deleteDescriptionTemplateConstant  = "Deleting %s"
)

// ActionKind enumerates corrective actions.
type ActionKind int

// Supported action kinds.
const (
	ActionNoOp ActionKind = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// String names the action kind for logs.
func (kind ActionKind) String() string {
	switch kind {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "noop"
	}
}

// BranchReference is a branch as observed on the remote.
type BranchReference struct {
	Name      string
	TargetSHA string
}

// Action is the corrective step for a single branch. TargetSHA is empty for NoOp and Delete.
type Action struct {
	Kind       ActionKind
	BranchName string
	TargetSHA  string
}

// Mutates reports whether applying the action changes the remote.
func (action Action) Mutates() bool {
	return action.Kind != ActionNoOp
}

// Describe renders the action as a status line.
func (action Action) Describe() string {
	switch action.Kind {
	case ActionCreate:
		return fmt.Sprintf(createDescriptionTemplateConstant, action.BranchName, action.TargetSHA)
	case ActionUpdate:
		return fmt.Sprintf(updateDescriptionTemplateConstant, action.BranchName, action.TargetSHA)
	case ActionDelete:
		return fmt.Sprintf(deleteDescriptionTemplateConstant, action.BranchName)
	default:
		return noOpDescriptionConstant
	}
}

// UnknownStateError reports a record whose state is neither open nor closed.
type UnknownStateError struct {
	Number        int
	ProviderState string
}

// Error describes the unknown state.
func (stateError UnknownStateError) Error() string {
	return fmt.Sprintf(unknownStateErrorTemplateConstant, stateError.Number, stateError.ProviderState)
}

// InvalidRecordError reports a record that cannot be reconciled.
type InvalidRecordError struct {
	Number int
	Reason string
}

// Error describes the invalid record.
func (recordError InvalidRecordError) Error() string {
	return fmt.Sprintf(invalidRecordErrorTemplateConstant, recordError.Number, recordError.Reason)
}

// BranchName returns the mirror branch name for a pull request number.
func BranchName(number int) string {
	return branchNamePrefixConstant + strconv.Itoa(number)
}

// ParseBranchName returns the pull request number mirrored by name, if name is a mirror branch.
func ParseBranchName(name string) (int, bool) {
	if !strings.HasPrefix(name, branchNamePrefixConstant) {
		return 0, false
	}
	digits := strings.TrimPrefix(name, branchNamePrefixConstant)
	if len(digits) == 0 || digits[0] == '0' || digits[0] == '+' || digits[0] == '-' {
		return 0, false
	}
	number, parseError := strconv.Atoi(digits)
	if parseError != nil || number < 1 {
		return 0, false
	}
	return number, true
}

// Plan computes the minimal action that makes current match record. current is nil when the
// branch is absent. SHA comparison is exact and case-sensitive.
func Plan(record pullrequests.Record, current *BranchReference) (Action, error) {
	if record.Number < 1 {
		return Action{}, InvalidRecordError{Number: record.Number, Reason: invalidNumberMessageConstant}
	}
	branchName := BranchName(record.Number)

	switch record.State {
	case pullrequests.StateOpen:
		if len(record.HeadSHA) == 0 {
			return Action{}, InvalidRecordError{Number: record.Number, Reason: missingHeadSHAMessageConstant}
		}
		if current == nil {
			return Action{Kind: ActionCreate, BranchName: branchName, TargetSHA: record.HeadSHA}, nil
		}
		if current.TargetSHA == record.HeadSHA {
			return Action{Kind: ActionNoOp, BranchName: branchName}, nil
		}
		return Action{Kind: ActionUpdate, BranchName: branchName, TargetSHA: record.HeadSHA}, nil
	case pullrequests.StateClosed:
		if current == nil {
			return Action{Kind: ActionNoOp, BranchName: branchName}, nil
		}
		return Action{Kind: ActionDelete, BranchName: branchName}, nil
	default:
		return Action{}, UnknownStateError{Number: record.Number, ProviderState: record.ProviderState}
	}
}
