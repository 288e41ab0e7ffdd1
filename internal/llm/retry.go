package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sashabaranov/go-openai"

	"manualrag/internal/contextutil"
)

// errBadResponse marks well-formed HTTP exchanges whose content is unusable.
var errBadResponse = errors.New("unusable response")

// withRetry runs op with exponential backoff. Only transport failures, 429 and
// 5xx responses are retried; everything else is returned immediately.
func withRetry[T any](ctx context.Context, name string, maxTries uint, op func() (T, error)) (T, error) {
	logger := contextutil.LoggerFromContext(ctx)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 4 * time.Second

	return backoff.Retry(ctx, func() (T, error) {
		res, err := op()
		if err == nil {
			return res, nil
		}
		if !isRetryable(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.WarnContext(ctx, "retrying LLM request", "op", name, "wait", wait, "error", err)
		}),
	)
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	if errors.Is(err, errBadResponse) {
		return false
	}
	// Connection refused, resets and other transport failures.
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
