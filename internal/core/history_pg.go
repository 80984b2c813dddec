package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool used by PostgresHistory.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const historySchema = `
CREATE TABLE IF NOT EXISTS import_history (
	id          UUID PRIMARY KEY,
	entity      TEXT NOT NULL,
	file_name   TEXT NOT NULL,
	actor       TEXT NOT NULL DEFAULT '',
	row_count   INTEGER NOT NULL,
	uploaded    INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	outcome     TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS import_history_entity_started_idx
	ON import_history (entity, started_at DESC);
`

// PostgresHistory stores import records in the import_history table.
type PostgresHistory struct {
	db DBTX
}

// NewPostgresHistory creates the table if needed.
func NewPostgresHistory(ctx context.Context, db DBTX) (*PostgresHistory, error) {
	if _, err := db.Exec(ctx, historySchema); err != nil {
		return nil, fmt.Errorf("create import_history: %w", err)
	}
	return &PostgresHistory{db: db}, nil
}

func (h *PostgresHistory) Record(ctx context.Context, rec ImportRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	_, err := h.db.Exec(ctx, `
		INSERT INTO import_history
			(id, entity, file_name, actor, row_count, uploaded, failed, outcome, message, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID.String(), rec.Entity, rec.FileName, rec.Actor,
		rec.Rows, rec.Uploaded, rec.Failed, rec.Outcome, rec.Message,
		rec.StartedAt, rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert import record: %w", err)
	}
	return nil
}

func (h *PostgresHistory) Recent(ctx context.Context, entity string, limit int) ([]ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := h.db.Query(ctx, `
		SELECT id::text, entity, file_name, actor, row_count, uploaded, failed, outcome, message, started_at, duration_ms
		FROM import_history
		WHERE $1 = '' OR entity = $1
		ORDER BY started_at DESC
		LIMIT $2`, entity, limit)
	if err != nil {
		return nil, fmt.Errorf("query import history: %w", err)
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var (
			rec        ImportRecord
			id         string
			durationMS int64
		)
		if err := rows.Scan(&id, &rec.Entity, &rec.FileName, &rec.Actor,
			&rec.Rows, &rec.Uploaded, &rec.Failed, &rec.Outcome, &rec.Message,
			&rec.StartedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scan import record: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse import record id: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (h *PostgresHistory) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := h.db.Exec(ctx, `DELETE FROM import_history WHERE started_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune import history: %w", err)
	}
	return tag.RowsAffected(), nil
}
