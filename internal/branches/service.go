package branches

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/prsync/internal/githubcli"
	"github.com/temirov/prsync/internal/pullrequests"
	"github.com/temirov/prsync/internal/reconcile"
	"github.com/temirov/prsync/internal/utils"
)

const (
	listerNotConfiguredMessageConstant    = "pull request lister not configured"
	mutatorNotConfiguredMessageConstant   = "branch mutator not configured"
	listPullRequestsErrorTemplateConstant = "list pull requests for %s: %w"
	passStartedLogMessageConstant         = "reconciliation pass started"
	passCompletedLogMessageConstant       = "reconciliation pass completed"
	passFailedLogMessageConstant          = "reconciliation pass failed"
	unknownStateSkippedLogMessageConstant = "skipping pull request with unrecognized state"
	conflictReplanLogMessageConstant      = "branch appeared concurrently; re-planning"
	actionPlannedLogMessageConstant       = "action planned"
	logFieldRunIdentifierConstant         = "run_id"
	logFieldRepositoryConstant            = "repository"
	logFieldPullRequestCountConstant      = "pull_requests"
	logFieldPullRequestNumberConstant     = "pull_request"
	logFieldProviderStateConstant         = "provider_state"
	logFieldActionConstant                = "action"
	logFieldBranchConstant                = "branch"
	logFieldDryRunConstant                = "dry_run"
	logFieldCreatedConstant               = "created"
	logFieldUpdatedConstant               = "updated"
	logFieldDeletedConstant               = "deleted"
	logFieldUnchangedConstant             = "unchanged"
	logFieldSkippedConstant               = "skipped"
)

var (
	// ErrListerNotConfigured indicates the service was constructed without a pull request lister.
	ErrListerNotConfigured = errors.New(listerNotConfiguredMessageConstant)
	// ErrMutatorNotConfigured indicates the service was constructed without a branch mutator.
	ErrMutatorNotConfigured = errors.New(mutatorNotConfiguredMessageConstant)
)

// PullRequestLister lists every pull request of a repository. pullrequests.Source satisfies it.
type PullRequestLister interface {
	ListAll(executionContext context.Context, repository githubcli.RepositoryIdentifier) ([]pullrequests.Record, error)
}

// BranchMutator observes and changes pr-<N> branches. refs.Mutator satisfies it.
type BranchMutator interface {
	CurrentReference(executionContext context.Context, branchName string) (*reconcile.BranchReference, error)
	Apply(executionContext context.Context, action reconcile.Action) error
}

// StatusReporter receives human-readable progress. ui.StatusPrinter satisfies it.
// PrintPullRequest receives a pull request together with every action taken for it so the
// reporter can keep them adjacent when records are processed concurrently.
type StatusReporter interface {
	PrintPullRequest(record pullrequests.Record, actions []reconcile.Action, dryRun bool)
	PrintSummary(summary reconcile.Summary)
}

// Dependencies bundles the collaborators of Service.
type Dependencies struct {
	Lister   PullRequestLister
	Mutator  BranchMutator
	Reporter StatusReporter
	Logger   *zap.Logger
}

// Options configures one reconciliation pass.
type Options struct {
	Repository         githubcli.RepositoryIdentifier
	DryRun             bool
	Concurrency        int
	UnknownStatePolicy UnknownStatePolicy
}

// Service runs reconciliation passes that mirror pull request heads onto pr-<N> branches.
type Service struct {
	lister   PullRequestLister
	mutator  BranchMutator
	reporter StatusReporter
	logger   *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Lister == nil {
		return nil, ErrListerNotConfigured
	}
	if dependencies.Mutator == nil {
		return nil, ErrMutatorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = discardReporter{}
	}
	return &Service{lister: dependencies.Lister, mutator: dependencies.Mutator, reporter: reporter, logger: logger}, nil
}

// Synchronize performs one pass: list every pull request, then plan and apply the corrective action
// for each pr-<N> branch. The first unrecoverable error cancels the remaining work and is returned
// together with the counts gathered so far.
func (service *Service) Synchronize(executionContext context.Context, options Options) (reconcile.Summary, error) {
	if validationError := options.Repository.Validate(); validationError != nil {
		return reconcile.Summary{}, validationError
	}
	policy, policyError := ParseUnknownStatePolicy(string(options.UnknownStatePolicy))
	if policyError != nil {
		return reconcile.Summary{}, ConfigurationError{Field: unknownStatePolicyFieldNameConstant, Message: policyError.Error()}
	}
	options.UnknownStatePolicy = policy
	if options.Concurrency < 1 {
		options.Concurrency = defaultConcurrencyConstant
	}

	runIdentifier, hasRunIdentifier := utils.NewCommandContextAccessor().RunIdentifier(executionContext)
	if !hasRunIdentifier {
		runIdentifier = uuid.NewString()
	}
	passLogger := service.logger.With(
		zap.String(logFieldRunIdentifierConstant, runIdentifier),
		zap.String(logFieldRepositoryConstant, options.Repository.String()),
	)

	records, listError := service.lister.ListAll(executionContext, options.Repository)
	if listError != nil {
		passLogger.Error(passFailedLogMessageConstant, zap.Error(listError))
		service.reporter.PrintSummary(reconcile.Summary{})
		return reconcile.Summary{}, fmt.Errorf(listPullRequestsErrorTemplateConstant, options.Repository, listError)
	}
	passLogger.Info(passStartedLogMessageConstant,
		zap.Int(logFieldPullRequestCountConstant, len(records)),
		zap.Bool(logFieldDryRunConstant, options.DryRun),
	)

	var summaryMutex sync.Mutex
	summary := reconcile.Summary{}

	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(options.Concurrency)
	for _, record := range records {
		if groupContext.Err() != nil {
			break
		}
		group.Go(func() error {
			recordSummary, reconcileError := service.reconcileRecord(groupContext, record, options, passLogger)
			summaryMutex.Lock()
			summary.Merge(recordSummary)
			summaryMutex.Unlock()
			return reconcileError
		})
	}
	passError := group.Wait()

	service.reporter.PrintSummary(summary)
	if passError != nil {
		passLogger.Error(passFailedLogMessageConstant, zap.Error(passError))
		return summary, passError
	}
	if contextError := executionContext.Err(); contextError != nil {
		passLogger.Error(passFailedLogMessageConstant, zap.Error(contextError))
		return summary, contextError
	}

	passLogger.Info(passCompletedLogMessageConstant,
		zap.Int(logFieldCreatedConstant, summary.Created),
		zap.Int(logFieldUpdatedConstant, summary.Updated),
		zap.Int(logFieldDeletedConstant, summary.Deleted),
		zap.Int(logFieldUnchangedConstant, summary.Unchanged),
		zap.Int(logFieldSkippedConstant, summary.Skipped),
	)
	return summary, nil
}

func (service *Service) reconcileRecord(executionContext context.Context, record pullrequests.Record, options Options, logger *zap.Logger) (reconcile.Summary, error) {
	recordSummary := reconcile.Summary{}
	var reportedActions []reconcile.Action
	defer func() {
		service.reporter.PrintPullRequest(record, reportedActions, options.DryRun)
	}()

	if record.State == pullrequests.StateUnknown {
		unknownStateError := reconcile.UnknownStateError{Number: record.Number, ProviderState: record.ProviderState}
		if options.UnknownStatePolicy == UnknownStatePolicyAbort {
			return recordSummary, PullRequestError{Number: record.Number, Operation: OperationPlan, Cause: unknownStateError}
		}
		logger.Warn(unknownStateSkippedLogMessageConstant,
			zap.Int(logFieldPullRequestNumberConstant, record.Number),
			zap.String(logFieldProviderStateConstant, record.ProviderState),
		)
		recordSummary.RecordSkipped()
		return recordSummary, nil
	}

	action, planError := service.planRecord(executionContext, record)
	if planError != nil {
		return recordSummary, planError
	}
	logger.Debug(actionPlannedLogMessageConstant,
		zap.Int(logFieldPullRequestNumberConstant, record.Number),
		zap.String(logFieldBranchConstant, action.BranchName),
		zap.Stringer(logFieldActionConstant, action.Kind),
	)

	reportedActions = append(reportedActions, action)
	if options.DryRun {
		recordSummary.Record(action.Kind)
		return recordSummary, nil
	}

	applyError := service.mutator.Apply(executionContext, action)
	if applyError != nil && errors.Is(applyError, githubcli.ErrReferenceAlreadyExists) {
		logger.Info(conflictReplanLogMessageConstant,
			zap.Int(logFieldPullRequestNumberConstant, record.Number),
			zap.String(logFieldBranchConstant, action.BranchName),
		)
		action, planError = service.planRecord(executionContext, record)
		if planError != nil {
			return recordSummary, planError
		}
		reportedActions = append(reportedActions, action)
		applyError = service.mutator.Apply(executionContext, action)
	}
	if applyError != nil {
		return recordSummary, PullRequestError{Number: record.Number, Operation: OperationApply, Cause: applyError}
	}

	recordSummary.Record(action.Kind)
	return recordSummary, nil
}

func (service *Service) planRecord(executionContext context.Context, record pullrequests.Record) (reconcile.Action, error) {
	current, readError := service.mutator.CurrentReference(executionContext, reconcile.BranchName(record.Number))
	if readError != nil {
		return reconcile.Action{}, PullRequestError{Number: record.Number, Operation: OperationReadBranch, Cause: readError}
	}
	action, planError := reconcile.Plan(record, current)
	if planError != nil {
		return reconcile.Action{}, PullRequestError{Number: record.Number, Operation: OperationPlan, Cause: planError}
	}
	return action, nil
}

type discardReporter struct{}

func (discardReporter) PrintPullRequest(pullrequests.Record, []reconcile.Action, bool) {}
func (discardReporter) PrintSummary(reconcile.Summary) {}
