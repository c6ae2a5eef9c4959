package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"salesync/internal/domain/dataset"
	"salesync/internal/domain/entity"
)

func NewDatasetRepository(pool *pgxpool.Pool, log *slog.Logger) *DatasetRepository {
	return &DatasetRepository{
		pool: pool,
		log:  log,
	}
}

type DatasetRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// Upsert записывает все сущности одной транзакцией
func (r *DatasetRepository) Upsert(ctx context.Context, userID int, records []dataset.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO entities (user_id, kind, remote_id, payload, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (user_id, kind, remote_id) DO UPDATE SET
				payload = EXCLUDED.payload,
				updated_at = EXCLUDED.updated_at
		`, userID, string(rec.Kind), rec.RemoteID, []byte(rec.Payload))
	}

	br := tx.SendBatch(ctx, batch)
	for _, rec := range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("upsert %s %s: %w", rec.Kind, rec.RemoteID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *DatasetRepository) List(ctx context.Context, userID int) ([]dataset.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT kind, remote_id, payload, updated_at
		FROM entities
		WHERE user_id = $1
		ORDER BY updated_at, kind, remote_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var records []dataset.Record
	for rows.Next() {
		var (
			rec     dataset.Record
			kind    string
			payload []byte
		)
		if err := rows.Scan(&kind, &rec.RemoteID, &payload, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		rec.Kind = entity.Kind(kind)
		rec.Payload = payload
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}

	return records, nil
}
