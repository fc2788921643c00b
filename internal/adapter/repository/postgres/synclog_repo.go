package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandibook/mandiledger/internal/domain"
)

// SyncLogRepository implements usecase.SyncLogRepository.
type SyncLogRepository struct {
	pool *pgxpool.Pool
}

// NewSyncLogRepository creates a new SyncLogRepository.
func NewSyncLogRepository(pool *pgxpool.Pool) *SyncLogRepository {
	return &SyncLogRepository{pool: pool}
}

// Create records a finished sweep. Runs outside any transaction so the
// record survives even when the sweep itself failed.
func (r *SyncLogRepository) Create(ctx context.Context, log *domain.SyncLog) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sync_logs
		(id, started_at, finished_at, pushed, pulled, skipped, failed, status, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		log.ID,
		timeToPgTimestamptz(log.StartedAt),
		timeToPgTimestamptz(log.FinishedAt),
		log.Pushed, log.Pulled, log.Skipped, log.Failed,
		log.Status, log.Detail,
	)

	return err
}

// ListRecent returns the latest sweeps, newest first.
func (r *SyncLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SyncLog, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, started_at, finished_at, pushed, pulled,
		skipped, failed, status, detail
		FROM sync_logs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.SyncLog
	for rows.Next() {
		var (
			log                  domain.SyncLog
			startedAt, finishedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&log.ID, &startedAt, &finishedAt, &log.Pushed, &log.Pulled,
			&log.Skipped, &log.Failed, &log.Status, &log.Detail); err != nil {
			return nil, err
		}
		log.StartedAt = pgTimestamptzToTime(startedAt)
		log.FinishedAt = pgTimestamptzToTime(finishedAt)
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
