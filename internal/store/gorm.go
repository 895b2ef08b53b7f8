package store

import (
	"context"
	"errors"

	"github.com/telun/repodoc/internal/domain"
	"gorm.io/gorm"
)

// GormStore persists job records through GORM. Each Put saves the whole
// record, matching the atomic-replacement contract of the interface.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore bound to db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Put inserts or replaces the record for job.ID.
func (s *GormStore) Put(ctx context.Context, job *domain.Job) error {
	return s.db.WithContext(ctx).Save(job).Error
}

// Get returns the record, or domain.ErrNotFound.
func (s *GormStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// List returns lightweight summaries. Result payloads stay out of the
// query; only the columns a summary needs are selected.
func (s *GormStore) List(ctx context.Context) ([]domain.JobSummary, error) {
	var jobs []domain.Job
	err := s.db.WithContext(ctx).
		Select("id", "status", "input", "created_at").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.JobSummary, 0, len(jobs))
	for i := range jobs {
		summaries = append(summaries, jobs[i].Summary())
	}
	return summaries, nil
}
