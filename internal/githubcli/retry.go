package githubcli

import (
	"context"
	"errors"

	"github.com/sethvargo/go-retry"
)

// withRetry runs attempt once, or retries transport-class failures with exponential backoff
// when the policy allows it. Context cancellation is never retried.
func (client *Client) withRetry(executionContext context.Context, attempt func(context.Context) error) error {
	if client.retryPolicy.MaxRetries == 0 {
		return attempt(executionContext)
	}

	backoff := retry.WithMaxRetries(uint64(client.retryPolicy.MaxRetries), retry.NewExponential(client.retryPolicy.BaseDelay))
	return retry.Do(executionContext, backoff, func(attemptContext context.Context) error {
		attemptError := attempt(attemptContext)
		if attemptError == nil {
			return nil
		}
		if errors.Is(attemptError, context.Canceled) || errors.Is(attemptError, context.DeadlineExceeded) {
			return attemptError
		}
		if errors.Is(attemptError, ErrTransport) {
			return retry.RetryableError(attemptError)
		}
		return attemptError
	})
}
