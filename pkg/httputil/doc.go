// Package httputil provides retry helpers for HTTP clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only when it
// fails with a [RetryableError]:
//
//	err := httputil.Retry(ctx, 4, 500*time.Millisecond, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Callers decide what counts as transient. The integrations client marks
// network errors, 5xx responses and 429 rate limiting as retryable; 4xx
// responses fail at once.
package httputil
