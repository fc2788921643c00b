package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error codes worth retrying. Two settlements against the same parent row
// can deadlock, and a sync sweep racing a foreground write can fail
// serialization.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// Retrier re-runs a storage operation with exponential backoff on transient
// PostgreSQL failures. Everything else, domain sentinels included, surfaces
// on the first attempt.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          *slog.Logger
}

func NewRetrier() *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          slog.Default(),
	}
}

// Retry runs operation, backing off while it keeps failing with a deadlock
// or serialization error, up to maxRetries re-runs.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialInterval
	policy.MaxInterval = r.maxInterval
	policy.MaxElapsedTime = r.maxElapsedTime

	retries := 0

	return backoff.Retry(func() error {
		err := operation()
		switch {
		case err == nil:
			return nil
		case !isTransient(err):
			return backoff.Permanent(err)
		}

		retries++
		if retries > r.maxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn("transient database error, retrying",
			"error", err,
			"retry", retries,
		)

		return err
	}, backoff.WithContext(policy, ctx))
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == pgErrDeadlock || pgErr.Code == pgErrSerializationFailure
}
