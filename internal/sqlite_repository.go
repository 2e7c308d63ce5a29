package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS idea_records (
	id            TEXT PRIMARY KEY,
	fingerprint   TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL,
	one_liner     TEXT NOT NULL,
	problem       TEXT NOT NULL,
	target_market TEXT NOT NULL,
	market_signal TEXT NOT NULL,
	revenue_model TEXT NOT NULL,
	source        TEXT NOT NULL DEFAULT '[]',
	category      TEXT NOT NULL DEFAULT 'Uncategorized',
	status        TEXT NOT NULL CHECK (status IN ('PICKED', 'RECYCLED')),
	picked_at     INTEGER,
	recycled_at   INTEGER,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_idea_records_status ON idea_records (status, recycled_at DESC, created_at DESC);
`

const sqliteRecordColumns = `id, fingerprint, title, one_liner, problem, target_market, market_signal,
	revenue_model, source, category, status, picked_at, recycled_at, created_at, updated_at`

// OpenIdeaDatabase opens (creating if needed) the SQLite idea database
func OpenIdeaDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StorageError{Path: path, Op: "mkdir", Err: err}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// SQLiteRepository stores idea records in SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over db
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Migrate creates the idea_records table if it does not exist
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// FindByFingerprint returns the record with fingerprint
func (r *SQLiteRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*IdeaRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sqliteRecordColumns+" FROM idea_records WHERE fingerprint = ?", fingerprint)
	return scanSQLiteRecord(row)
}

// GetByID returns the record with id
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*IdeaRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sqliteRecordColumns+" FROM idea_records WHERE id = ?", id)
	return scanSQLiteRecord(row)
}

// UpsertByFingerprint inserts or merges rec in a single statement
func (r *SQLiteRepository) UpsertByFingerprint(ctx context.Context, rec *IdeaRecord) (bool, error) {
	source, err := json.Marshal(rec.Source)
	if err != nil {
		return false, fmt.Errorf("failed to encode source: %w", err)
	}

	var onConflict string
	switch rec.Status {
	case StatusPicked:
		onConflict = `DO UPDATE SET status = 'PICKED', picked_at = excluded.picked_at,
			recycled_at = NULL, updated_at = excluded.updated_at`
	case StatusRecycled:
		onConflict = `DO UPDATE SET title = excluded.title, one_liner = excluded.one_liner,
			problem = excluded.problem, target_market = excluded.target_market,
			market_signal = excluded.market_signal, revenue_model = excluded.revenue_model,
			source = excluded.source, category = excluded.category, status = 'RECYCLED',
			recycled_at = excluded.recycled_at, updated_at = excluded.updated_at
			WHERE idea_records.status <> 'PICKED'`
	default:
		return false, fmt.Errorf("unsupported status: %s", rec.Status)
	}

	query := "INSERT INTO idea_records (" + sqliteRecordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint) ` + onConflict

	res, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Fingerprint,
		rec.Title,
		rec.OneLiner,
		rec.Problem,
		rec.TargetMarket,
		rec.MarketSignal,
		rec.RevenueModel,
		string(source),
		rec.Category,
		string(rec.Status),
		nullableMillis(rec.PickedAt),
		nullableMillis(rec.RecycledAt),
		rec.CreatedAt.UnixMilli(),
		rec.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert idea record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// ListByStatus returns every record in status, most recently recycled first
func (r *SQLiteRepository) ListByStatus(ctx context.Context, status IdeaStatus) ([]*IdeaRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+sqliteRecordColumns+` FROM idea_records
		WHERE status = ? ORDER BY recycled_at DESC, created_at DESC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records := make([]*IdeaRecord, 0)
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			// Log error but continue
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

// Ping checks the connection
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteRecord(row rowScanner) (*IdeaRecord, error) {
	var (
		rec                  IdeaRecord
		source, status       string
		pickedAt, recycledAt sql.NullInt64
		createdAt, updatedAt int64
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
		&source,
		&rec.Category,
		&status,
		&pickedAt,
		&recycledAt,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if err := json.Unmarshal([]byte(source), &rec.Source); err != nil {
		return nil, &ParseError{Source: "idea_records", Key: rec.ID, Err: err}
	}
	rec.Status = IdeaStatus(status)
	rec.PickedAt = millisPtr(pickedAt)
	rec.RecycledAt = millisPtr(recycledAt)
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &rec, nil
}

func nullableMillis(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func millisPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
