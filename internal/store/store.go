package store

import (
	"context"
	"fmt"

	"github.com/telun/repodoc/internal/config"
	"github.com/telun/repodoc/internal/domain"
)

// Store is the process-wide registry of job records, addressed by id.
// Writes are whole-record replacements: the pipeline executing a job is its
// only writer, while status queries read concurrently. Implementations must
// never expose a partially-updated record to a reader.
type Store interface {
	// Put inserts or replaces the record for job.ID.
	Put(ctx context.Context, job *domain.Job) error

	// Get returns a snapshot of the record, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// List returns lightweight summaries without result payloads.
	List(ctx context.Context) ([]domain.JobSummary, error)
}

// New builds a Store from configuration. Driver "memory" is the default;
// "sqlite" and "postgres" persist records through GORM.
func New(cfg *config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite", "postgres":
		db, err := InitDB(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
