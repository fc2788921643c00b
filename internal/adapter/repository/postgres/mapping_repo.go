package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
)

// MappingRepository implements usecase.MappingRepository.
type MappingRepository struct {
	pool *pgxpool.Pool
}

// NewMappingRepository creates a new MappingRepository.
func NewMappingRepository(pool *pgxpool.Pool) *MappingRepository {
	return &MappingRepository{pool: pool}
}

// Create inserts a remote-local mapping; re-creating the same pair is a no-op.
func (r *MappingRepository) Create(ctx context.Context, tx usecase.Transaction, mapping *domain.RemoteLocalMapping) error {
	_, err := txQuerier(tx).Exec(ctx, `INSERT INTO remote_local_mappings
		(remote_id, local_id, entity_type, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (remote_id) DO NOTHING`,
		mapping.RemoteID, mapping.LocalID, string(mapping.EntityType),
		timeToPgTimestamptz(mapping.CreatedAt))

	return err
}

// GetByRemoteID returns the mapping for a remote id, or nil when none exists.
func (r *MappingRepository) GetByRemoteID(ctx context.Context, remoteID string) (*domain.RemoteLocalMapping, error) {
	var (
		mapping    domain.RemoteLocalMapping
		entityType string
		createdAt  pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, `SELECT remote_id, local_id, entity_type, created_at
		FROM remote_local_mappings WHERE remote_id = $1`, remoteID).
		Scan(&mapping.RemoteID, &mapping.LocalID, &entityType, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	mapping.EntityType = domain.TransactionType(entityType)
	mapping.CreatedAt = pgTimestamptzToTime(createdAt)

	return &mapping, nil
}

// DeleteByLocalID removes any mapping pointing at a local transaction.
func (r *MappingRepository) DeleteByLocalID(ctx context.Context, tx usecase.Transaction, localID string) error {
	_, err := txQuerier(tx).Exec(ctx,
		`DELETE FROM remote_local_mappings WHERE local_id = $1`, localID)

	return err
}
