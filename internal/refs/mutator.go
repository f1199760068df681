package refs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/prsync/internal/githubcli"
	"github.com/temirov/prsync/internal/reconcile"
)

const (
	clientNotConfiguredMessageConstant    = "reference client not configured"
	foreignBranchErrorTemplateConstant    = "branch %q is outside the pr-<number> namespace"
	unsupportedActionTemplateConstant     = "unsupported action kind %d"
	lookupFailedTemplateConstant          = "read %s: %w"
	deleteFailedTemplateConstant          = "delete %s: %w"
	createFailedTemplateConstant          = "create %s: %w"
	branchCreatedLogMessageConstant       = "branch created"
	branchDeletedLogMessageConstant       = "branch deleted"
	branchAlreadyAbsentLogMessageConstant = "branch already absent"
	branchUpdatedLogMessageConstant       = "branch updated"
	logFieldBranchNameConstant            = "branch"
	logFieldTargetSHAConstant             = "sha"
	logFieldRepositoryConstant            = "repository"
)

// ErrClientNotConfigured indicates the mutator was constructed without a reference client.
var ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)

// ForeignBranchError reports an attempt to touch a branch prsync does not own.
type ForeignBranchError struct {
	BranchName string
}

// Error describes the rejected branch.
func (branchError ForeignBranchError) Error() string {
	return fmt.Sprintf(foreignBranchErrorTemplateConstant, branchError.BranchName)
}

// ReferenceClient reads and writes branch references. githubcli.Client satisfies it.
type ReferenceClient interface {
	GetBranchReference(executionContext context.Context, repository githubcli.RepositoryIdentifier, branchName string) (githubcli.Reference, error)
	CreateBranchReference(executionContext context.Context, repository githubcli.RepositoryIdentifier, branchName string, targetSHA string) error
	DeleteBranchReference(executionContext context.Context, repository githubcli.RepositoryIdentifier, branchName string) error
}

// Mutator observes and changes pr-<N> branches of one repository.
type Mutator struct {
	client     ReferenceClient
	repository githubcli.RepositoryIdentifier
	logger     *zap.Logger
	locks      *keyedMutex
}

// NewMutator constructs a Mutator bound to repository.
func NewMutator(client ReferenceClient, repository githubcli.RepositoryIdentifier, logger *zap.Logger) (*Mutator, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if validationError := repository.Validate(); validationError != nil {
		return nil, validationError
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mutator{client: client, repository: repository, logger: logger, locks: newKeyedMutex()}, nil
}

// CurrentReference reads the branch. It returns nil and no error when the branch does not exist.
func (mutator *Mutator) CurrentReference(executionContext context.Context, branchName string) (*reconcile.BranchReference, error) {
	if _, owned := reconcile.ParseBranchName(branchName); !owned {
		return nil, ForeignBranchError{BranchName: branchName}
	}

	reference, lookupError := mutator.client.GetBranchReference(executionContext, mutator.repository, branchName)
	if lookupError != nil {
		if errors.Is(lookupError, githubcli.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(lookupFailedTemplateConstant, branchName, lookupError)
	}

	return &reconcile.BranchReference{Name: branchName, TargetSHA: reference.TargetSHA}, nil
}

// Apply performs action. Update deletes then re-creates the branch; if the create fails the branch
// stays absent until the next pass. Deleting an absent branch succeeds. NoOp makes no remote call.
// Create conflicts surface as errors matching githubcli.ErrReferenceAlreadyExists.
func (mutator *Mutator) Apply(executionContext context.Context, action reconcile.Action) error {
	if action.Kind == reconcile.ActionNoOp {
		return nil
	}
	if _, owned := reconcile.ParseBranchName(action.BranchName); !owned {
		return ForeignBranchError{BranchName: action.BranchName}
	}

	unlock := mutator.locks.Lock(action.BranchName)
	defer unlock()

	switch action.Kind {
	case reconcile.ActionCreate:
		if createError := mutator.create(executionContext, action); createError != nil {
			return createError
		}
		mutator.logger.Info(branchCreatedLogMessageConstant, mutator.actionFields(action)...)
		return nil
	case reconcile.ActionUpdate:
		if deleteError := mutator.delete(executionContext, action.BranchName); deleteError != nil {
			return deleteError
		}
		if createError := mutator.create(executionContext, action); createError != nil {
			return createError
		}
		mutator.logger.Info(branchUpdatedLogMessageConstant, mutator.actionFields(action)...)
		return nil
	case reconcile.ActionDelete:
		if deleteError := mutator.delete(executionContext, action.BranchName); deleteError != nil {
			return deleteError
		}
		mutator.logger.Info(branchDeletedLogMessageConstant, mutator.actionFields(action)...)
		return nil
	default:
		return fmt.Errorf(unsupportedActionTemplateConstant, action.Kind)
	}
}

func (mutator *Mutator) create(executionContext context.Context, action reconcile.Action) error {
	createError := mutator.client.CreateBranchReference(executionContext, mutator.repository, action.BranchName, action.TargetSHA)
	if createError != nil {
		return fmt.Errorf(createFailedTemplateConstant, action.BranchName, createError)
	}
	return nil
}

func (mutator *Mutator) delete(executionContext context.Context, branchName string) error {
	deleteError := mutator.client.DeleteBranchReference(executionContext, mutator.repository, branchName)
	if deleteError == nil {
		return nil
	}
	if errors.Is(deleteError, githubcli.ErrReferenceNotFound) {
		mutator.logger.Debug(branchAlreadyAbsentLogMessageConstant, zap.String(logFieldBranchNameConstant, branchName))
		return nil
	}
	return fmt.Errorf(deleteFailedTemplateConstant, branchName, deleteError)
}

func (mutator *Mutator) actionFields(action reconcile.Action) []zap.Field {
	fields := []zap.Field{
		zap.String(logFieldRepositoryConstant, mutator.repository.String()),
		zap.String(logFieldBranchNameConstant, action.BranchName),
	}
	if len(action.TargetSHA) > 0 {
		fields = append(fields, zap.String(logFieldTargetSHAConstant, action.TargetSHA))
	}
	return fields
}
