package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mwantia/nfosync/pkg/log"
	"github.com/mwantia/nfosync/pkg/metrics"
	"gorm.io/gorm"
)

// RetryConfig configures retry behavior for conflicting catalog writes
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the defaults used when none are configured
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isTransientError reports uniqueness races and SQLite lock contention,
// both of which succeed when the transaction is simply run again.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// withRetry runs fn until it succeeds, fails permanently, or retries run out.
// Every failure is returned as a *StoreError.
func withRetry(ctx context.Context, logger log.LoggerService, config RetryConfig, op string, fn func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Debug("Catalog %s succeeded on retry %d", op, attempt)
			}
			return nil
		}

		lastErr = err

		if !isTransientError(err) {
			return &StoreError{Op: op, Err: err}
		}

		// Don't sleep after the last attempt
		if attempt < config.MaxRetries {
			metrics.CatalogRetryAttempts.WithLabelValues(op).Inc()
			logger.Debug("Catalog %s conflicted, retrying in %v (attempt %d/%d): %v",
				op, backoff, attempt+1, config.MaxRetries, err)

			select {
			case <-ctx.Done():
				return &StoreError{Op: op, Err: ctx.Err()}
			case <-time.After(backoff):
			}

			// Exponential backoff with cap
			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logger.Warn("Catalog %s failed after %d retries: %v", op, config.MaxRetries, lastErr)
	metrics.CatalogRetryFailures.WithLabelValues(op).Inc()
	return &StoreError{Op: op, Err: lastErr}
}
