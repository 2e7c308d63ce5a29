package internal

import (
	"context"
	"fmt"
)

// IdeaRepository is the durable store of picked and recycled ideas. Upserts
// are keyed on fingerprint and must be atomic per row.
type IdeaRepository interface {
	// FindByFingerprint returns ErrRecordNotFound when no row matches
	FindByFingerprint(ctx context.Context, fingerprint string) (*IdeaRecord, error)
	// UpsertByFingerprint inserts rec or updates the row with its fingerprint.
	// A PICKED upsert updates only status, pickedAt and clears recycledAt.
	// A RECYCLED upsert overwrites every field unless the row is PICKED, in
	// which case nothing changes and applied is false.
	UpsertByFingerprint(ctx context.Context, rec *IdeaRecord) (applied bool, err error)
	// GetByID returns ErrRecordNotFound when no row matches
	GetByID(ctx context.Context, id string) (*IdeaRecord, error)
	// ListByStatus orders by recycledAt then createdAt, newest first
	ListByStatus(ctx context.Context, status IdeaStatus) ([]*IdeaRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// OpenRepository opens the repository selected by cfg and applies its schema
func OpenRepository(ctx context.Context, cfg DatabaseConfig) (IdeaRepository, error) {
	switch cfg.Driver {
	case "sqlite", "":
		db, err := OpenIdeaDatabase(cfg.Path)
		if err != nil {
			return nil, err
		}
		repo := NewSQLiteRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return repo, nil
	case "postgres":
		repo, err := NewPostgresRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
