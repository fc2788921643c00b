package syncworker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mandibook/mandiledger/internal/domain"
)

type syncerStub struct {
	sweeps  atomic.Int32
	lastUID atomic.Value
	err     error
}

func (s *syncerStub) SyncData(ctx context.Context) (*domain.SyncLog, error) {
	s.sweeps.Add(1)
	if uid, ok := domain.UserIDFromContext(ctx); ok {
		s.lastUID.Store(uid)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &domain.SyncLog{Status: domain.SyncStatusOK}, nil
}

func TestWorkerSweepsOnStartAndInterval(t *testing.T) {
	stub := &syncerStub{}
	w := New(Config{
		Syncer:   stub,
		Interval: 10 * time.Millisecond,
		UserID:   "trader-1",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := w.Start(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	if got := stub.sweeps.Load(); got < 2 {
		t.Fatalf("expected at least 2 sweeps, got %d", got)
	}
	if uid, _ := stub.lastUID.Load().(string); uid != "trader-1" {
		t.Fatalf("expected session user in sweep context, got %q", uid)
	}
}

func TestWorkerIdlesWithoutSession(t *testing.T) {
	stub := &syncerStub{}
	w := New(Config{
		Syncer:   stub,
		Interval: time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := w.Start(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	if got := stub.sweeps.Load(); got != 0 {
		t.Fatalf("idle worker ran %d sweeps", got)
	}
}

type retrierStub struct {
	calls atomic.Int32
}

func (r *retrierStub) Retry(ctx context.Context, operation func() error) error {
	r.calls.Add(1)
	return operation()
}

func TestWorkerSweepsThroughRetrier(t *testing.T) {
	stub := &syncerStub{}
	retrier := &retrierStub{}
	w := New(Config{
		Syncer:   stub,
		Retrier:  retrier,
		Interval: 10 * time.Millisecond,
		UserID:   "trader-1",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	_ = w.Start(ctx)

	if retrier.calls.Load() == 0 {
		t.Fatal("expected sweeps to run through the retrier")
	}
	if stub.sweeps.Load() == 0 {
		t.Fatal("expected sweeps to reach the syncer")
	}
}

func TestWorkerKeepsRunningAfterFailedSweep(t *testing.T) {
	stub := &syncerStub{err: errors.New("mirror unreachable")}
	w := New(Config{
		Syncer:   stub,
		Interval: 10 * time.Millisecond,
		UserID:   "trader-1",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Millisecond)
	defer cancel()

	_ = w.Start(ctx)

	if got := stub.sweeps.Load(); got < 2 {
		t.Fatalf("worker stopped after a failed sweep, sweeps=%d", got)
	}
}
