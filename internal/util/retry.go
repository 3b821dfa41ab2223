// Package util holds small shared helpers.
package util

import (
	"context"
	"time"

	"pdf-chat-go/internal/apperr"
	"pdf-chat-go/pkg/log"
)

// RetryRateLimited runs fn up to maxAttempts times. After a rate-limited
// failure it pauses for the upstream-indicated duration (or defaultBackoff
// when the service gave none) and tries again. Any other failure returns
// immediately. When the bound is exhausted the last rate-limited error is
// returned with its upstream detail intact.
func RetryRateLimited(ctx context.Context, maxAttempts int, defaultBackoff time.Duration, fn func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if defaultBackoff <= 0 {
		defaultBackoff = time.Second
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !apperr.Is(err, apperr.KindRateLimited) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		wait := apperr.RetryAfterOf(err)
		if wait <= 0 {
			wait = defaultBackoff
		}
		log.Warnf("[Retry] rate limited (attempt %d/%d), waiting %s before retrying", attempt, maxAttempts, wait)

		select {
		case <-ctx.Done():
			return apperr.Wrap(apperr.KindUpstreamUnavailable, "retry interrupted", ctx.Err())
		case <-time.After(wait):
		}
	}
	return err
}
