package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mandibook/mandiledger/internal/domain"
)

func fastRetrier() *Retrier {
	r := NewRetrier()
	r.initialInterval = 1 * time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = 50 * time.Millisecond

	return r
}

func TestRetrierRecoversFromDeadlock(t *testing.T) {
	r := fastRetrier()

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		// Two payments settling against the same buy row.
		if attempts == 1 {
			return &pgconn.PgError{Code: pgErrDeadlock}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierRecoversFromSerializationFailure(t *testing.T) {
	r := fastRetrier()

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &pgconn.PgError{Code: pgErrSerializationFailure}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrierGivesUpAfterMaxRetries(t *testing.T) {
	r := fastRetrier()
	r.maxRetries = 2

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrDeadlock}
	})

	if err == nil {
		t.Fatal("expected the deadlock to surface after retries ran out")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrierDoesNotRetryDomainErrors(t *testing.T) {
	r := fastRetrier()

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return domain.ErrAmountExceedsBalance
	})

	if !errors.Is(err, domain.ErrAmountExceedsBalance) {
		t.Fatalf("expected the domain error back, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}
