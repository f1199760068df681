package pullrequests

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/prsync/internal/githubcli"
)

const (
	// DefaultPageSize is the number of pull requests requested per listing page.
	DefaultPageSize = 100
	// MaxPageSize is the largest page the pulls endpoint serves; larger requests are truncated to it.
	MaxPageSize = 100

	firstPageNumberConstant            = 1
	listPageErrorTemplateConstant      = "list pull requests page %d: %w"
	duplicateRecordLogMessageConstant  = "skipping duplicate pull request from shifted page"
	pageListedLogMessageConstant       = "pull request page listed"
	logFieldPullRequestNumberConstant  = "pull_request_number"
	logFieldPageNumberConstant         = "page"
	logFieldPageRecordCountConstant    = "record_count"
	logFieldRepositoryConstant         = "repository"
	listerNotConfiguredMessageConstant = "pull request lister not configured"
)

// ErrListerNotConfigured indicates the source was constructed without a page lister.
var ErrListerNotConfigured = errors.New(listerNotConfiguredMessageConstant)

// PageLister fetches a single page of pull requests. githubcli.Client satisfies it.
type PageLister interface {
	ListPullRequestsPage(executionContext context.Context, repository githubcli.RepositoryIdentifier, page int, pageSize int) ([]githubcli.PullRequest, error)
}

// Source enumerates every pull request of a repository.
type Source struct {
	lister   PageLister
	logger   *zap.Logger
	pageSize int
}

// NewSource constructs a Source. A non-positive pageSize selects DefaultPageSize and a pageSize
// above MaxPageSize is clamped so that a truncated page is never mistaken for the last one.
func NewSource(lister PageLister, logger *zap.Logger, pageSize int) (*Source, error) {
	if lister == nil {
		return nil, ErrListerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Source{lister: lister, logger: logger, pageSize: pageSize}, nil
}

// ListAll returns open and closed pull requests across all pages, in listing order.
// Listing stops at the first empty or short page. A pull request number that reappears on a
// later page (because new pull requests shifted the pagination window) keeps its first occurrence.
func (source *Source) ListAll(executionContext context.Context, repository githubcli.RepositoryIdentifier) ([]Record, error) {
	records := make([]Record, 0, source.pageSize)
	seenNumbers := make(map[int]struct{})

	for page := firstPageNumberConstant; ; page++ {
		pullRequests, listError := source.lister.ListPullRequestsPage(executionContext, repository, page, source.pageSize)
		if listError != nil {
			return nil, fmt.Errorf(listPageErrorTemplateConstant, page, listError)
		}

		source.logger.Debug(
			pageListedLogMessageConstant,
			zap.String(logFieldRepositoryConstant, repository.String()),
			zap.Int(logFieldPageNumberConstant, page),
			zap.Int(logFieldPageRecordCountConstant, len(pullRequests)),
		)

		for _, pullRequest := range pullRequests {
			if _, duplicate := seenNumbers[pullRequest.Number]; duplicate {
				source.logger.Debug(duplicateRecordLogMessageConstant, zap.Int(logFieldPullRequestNumberConstant, pullRequest.Number))
				continue
			}
			seenNumbers[pullRequest.Number] = struct{}{}
			records = append(records, newRecord(pullRequest))
		}

		if len(pullRequests) < source.pageSize {
			return records, nil
		}
	}
}

func newRecord(pullRequest githubcli.PullRequest) Record {
	return Record{
		Number:        pullRequest.Number,
		State:         ParseState(pullRequest.State),
		HeadSHA:       pullRequest.HeadSHA,
		Title:         pullRequest.Title,
		AuthorLogin:   pullRequest.AuthorLogin,
		ProviderState: pullRequest.State,
	}
}
