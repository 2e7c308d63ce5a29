package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS idea_records (
	id            UUID PRIMARY KEY,
	fingerprint   TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL,
	one_liner     TEXT NOT NULL,
	problem       TEXT NOT NULL,
	target_market TEXT NOT NULL,
	market_signal TEXT NOT NULL,
	revenue_model TEXT NOT NULL,
	source        JSONB NOT NULL DEFAULT '[]'::jsonb,
	category      TEXT NOT NULL DEFAULT 'Uncategorized',
	status        TEXT NOT NULL CHECK (status IN ('PICKED', 'RECYCLED')),
	picked_at     TIMESTAMPTZ,
	recycled_at   TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_idea_records_status ON idea_records (status, recycled_at DESC, created_at DESC);
`

const postgresRecordColumns = `id::text, fingerprint, title, one_liner, problem, target_market, market_signal,
	revenue_model, source, category, status, picked_at, recycled_at, created_at, updated_at`

// PostgresRepository stores idea records in PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a connection pool for cfg.URL
func NewPostgresRepository(ctx context.Context, cfg DatabaseConfig) (*PostgresRepository, error) {
	// Create connection pool config
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	// Set connection pool settings
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	LogDebug("Connected to PostgreSQL idea store")
	return &PostgresRepository{pool: pool}, nil
}

// Migrate creates the idea_records table if it does not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// FindByFingerprint returns the record with fingerprint
func (r *PostgresRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*IdeaRecord, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+postgresRecordColumns+" FROM idea_records WHERE fingerprint = $1", fingerprint)
	return scanPostgresRecord(row)
}

// GetByID returns the record with id
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*IdeaRecord, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+postgresRecordColumns+" FROM idea_records WHERE id::text = $1", id)
	return scanPostgresRecord(row)
}

// UpsertByFingerprint inserts or merges rec in a single statement
func (r *PostgresRepository) UpsertByFingerprint(ctx context.Context, rec *IdeaRecord) (bool, error) {
	var onConflict string
	switch rec.Status {
	case StatusPicked:
		onConflict = `DO UPDATE SET status = 'PICKED', picked_at = EXCLUDED.picked_at,
			recycled_at = NULL, updated_at = EXCLUDED.updated_at`
	case StatusRecycled:
		onConflict = `DO UPDATE SET title = EXCLUDED.title, one_liner = EXCLUDED.one_liner,
			problem = EXCLUDED.problem, target_market = EXCLUDED.target_market,
			market_signal = EXCLUDED.market_signal, revenue_model = EXCLUDED.revenue_model,
			source = EXCLUDED.source, category = EXCLUDED.category, status = 'RECYCLED',
			recycled_at = EXCLUDED.recycled_at, updated_at = EXCLUDED.updated_at
			WHERE idea_records.status <> 'PICKED'`
	default:
		return false, fmt.Errorf("unsupported status: %s", rec.Status)
	}

	query := `
		INSERT INTO idea_records (id, fingerprint, title, one_liner, problem, target_market,
		                          market_signal, revenue_model, source, category, status,
		                          picked_at, recycled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (fingerprint) ` + onConflict + `
		RETURNING id::text
	`

	var id string
	err := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.Fingerprint,
		rec.Title,
		rec.OneLiner,
		rec.Problem,
		rec.TargetMarket,
		rec.MarketSignal,
		rec.RevenueModel,
		rec.Source,
		rec.Category,
		string(rec.Status),
		rec.PickedAt,
		rec.RecycledAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert idea record: %w", err)
	}
	return true, nil
}

// ListByStatus returns every record in status, most recently recycled first
func (r *PostgresRepository) ListByStatus(ctx context.Context, status IdeaStatus) ([]*IdeaRecord, error) {
	query := "SELECT " + postgresRecordColumns + ` FROM idea_records
		WHERE status = $1
		ORDER BY recycled_at DESC NULLS LAST, created_at DESC`

	rows, err := r.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query idea records: %w", err)
	}
	defer rows.Close()

	records := make([]*IdeaRecord, 0)
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
		if err != nil {
			LogWarn("Skipping unreadable idea record: %v", err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return records, nil
}

// Ping checks the pool
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanPostgresRecord(row pgx.Row) (*IdeaRecord, error) {
	var (
		rec    IdeaRecord
		status string
	)
	err := row.Scan(
		&rec.ID,
		&rec.Fingerprint,
		&rec.Title,
		&rec.OneLiner,
		&rec.Problem,
		&rec.TargetMarket,
		&rec.MarketSignal,
		&rec.RevenueModel,
		&rec.Source,
		&rec.Category,
		&status,
		&rec.PickedAt,
		&rec.RecycledAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("idea record scan failed: %w", err)
	}
	rec.Status = IdeaStatus(status)
	return &rec, nil
}
