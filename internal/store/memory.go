package store

import (
	"context"
	"sync"

	"github.com/telun/repodoc/internal/domain"
)

// MemoryStore keeps job records in a mutex-guarded map. Records are copied
// on the way in and out, so a reader always sees a consistent snapshot and
// can never observe a write in progress.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]domain.Job)}
}

// Put inserts or replaces the record for job.ID.
func (s *MemoryStore) Put(_ context.Context, job *domain.Job) error {
	snapshot := cloneJob(job)
	s.mu.Lock()
	s.jobs[job.ID] = *snapshot
	s.mu.Unlock()
	return nil
}

// Get returns a snapshot of the record, or domain.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneJob(&job), nil
}

// List returns lightweight summaries in no particular order.
func (s *MemoryStore) List(_ context.Context) ([]domain.JobSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.JobSummary, 0, len(s.jobs))
	for id := range s.jobs {
		job := s.jobs[id]
		summaries = append(summaries, job.Summary())
	}
	return summaries, nil
}

// cloneJob copies the record including its pointer fields, so callers on
// either side of the store cannot alias each other's data.
func cloneJob(j *domain.Job) *domain.Job {
	c := *j
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	if j.Error != nil {
		e := *j.Error
		c.Error = &e
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
