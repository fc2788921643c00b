package syncworker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mandibook/mandiledger/internal/domain"
)

// Syncer runs one reconciliation sweep against the cloud mirror.
type Syncer interface {
	SyncData(ctx context.Context) (*domain.SyncLog, error)
}

// Retrier re-runs a sweep that failed transiently, such as on a database
// deadlock. Permanent failures surface immediately.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Worker periodically reconciles the local ledger with the cloud mirror.
// Every sweep is a full reconciliation, so a missed interval costs nothing
// but time.
type Worker struct {
	syncer   Syncer
	retrier  Retrier
	logger   *slog.Logger
	interval time.Duration
	userID   string
}

// Config for Worker.
type Config struct {
	Syncer   Syncer
	Retrier  Retrier // optional; nil means sweeps are not retried
	Logger   *slog.Logger
	Interval time.Duration
	UserID   string // session owner; empty means local-only, the worker idles
}

// New creates a new Worker.
func New(cfg Config) *Worker {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Worker{
		syncer:   cfg.Syncer,
		retrier:  cfg.Retrier,
		logger:   cfg.Logger,
		interval: cfg.Interval,
		userID:   cfg.UserID,
	}
}

// Start begins the periodic sync worker. It runs until the context is
// cancelled.
func (w *Worker) Start(ctx context.Context) error {
	if w.userID == "" {
		w.logger.Info("sync worker idle: no session configured")
		<-ctx.Done()
		return ctx.Err()
	}

	w.logger.Info("sync worker started",
		slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Sweep immediately on start
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sync worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	sweepCtx := domain.ContextWithUserID(ctx, w.userID)

	var log *domain.SyncLog
	var err error
	if w.retrier != nil {
		err = w.retrier.Retry(sweepCtx, func() error {
			log, err = w.syncer.SyncData(sweepCtx)
			return err
		})
	} else {
		log, err = w.syncer.SyncData(sweepCtx)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Error("sync sweep failed", slog.String("error", err.Error()))
		return
	}

	w.logger.Info("sync sweep finished",
		slog.String("status", log.Status),
		slog.Int("pushed", log.Pushed),
		slog.Int("pulled", log.Pulled),
		slog.Int("skipped", log.Skipped),
		slog.Int("failed", log.Failed))
}
