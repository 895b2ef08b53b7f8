package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/telun/repodoc/internal/artifact"
	"github.com/telun/repodoc/internal/domain"
	"github.com/telun/repodoc/internal/logger"
	"github.com/telun/repodoc/internal/store"
	"github.com/telun/repodoc/internal/vcs"
)

// Analyzer produces the structured inventory of an acquired working tree.
type Analyzer interface {
	Analyze(ctx context.Context, root string) (*domain.Analysis, error)
}

// Generator produces documentation text from an analysis.
type Generator interface {
	Generate(ctx context.Context, sub domain.Submission, an *domain.Analysis) (*domain.Documentation, error)
}

// OrchestratorConfig holds the orchestrator's tunables.
type OrchestratorConfig struct {
	// WorkspaceRoot is where per-job temporary working trees are created.
	// Empty means the OS temp dir.
	WorkspaceRoot string

	// CloneTimeout is the hard ceiling on the acquire stage.
	CloneTimeout time.Duration
}

// Orchestrator accepts submissions, creates job records, and runs each
// job's stage pipeline as an independent background goroutine. It is the
// only writer of a job's lifecycle fields; everyone else reads snapshots
// from the store.
type Orchestrator struct {
	store     store.Store
	vcs       vcs.Client
	analyzer  Analyzer
	generator Generator
	artifacts artifact.Store // nil when artifact upload is disabled
	cfg       OrchestratorConfig

	mu      sync.Mutex
	handles map[string]chan struct{}
}

// NewOrchestrator wires the orchestrator to its collaborators. artifacts
// may be nil to disable artifact upload.
func NewOrchestrator(
	st store.Store,
	vcsClient vcs.Client,
	an Analyzer,
	gen Generator,
	artifacts artifact.Store,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.CloneTimeout <= 0 {
		cfg.CloneTimeout = 60 * time.Second
	}
	return &Orchestrator{
		store:     st,
		vcs:       vcsClient,
		analyzer:  an,
		generator: gen,
		artifacts: artifacts,
		cfg:       cfg,
		handles:   make(map[string]chan struct{}),
	}
}

// Submit validates the submission, creates the job record in queued state,
// and schedules the pipeline. It returns a snapshot of the new record
// without waiting for the pipeline to start or finish.
func (o *Orchestrator) Submit(ctx context.Context, sub domain.Submission) (*domain.Job, error) {
	if err := normalize(&sub); err != nil {
		return nil, err
	}

	job := &domain.Job{
		ID:          uuid.New().String(),
		Status:      domain.JobStatusQueued,
		TotalStages: len(stages),
		Percentage:  0,
		Message:     "queued",
		Input:       sub,
		CreatedAt:   time.Now().UTC(),
	}

	if err := o.store.Put(ctx, job); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	o.mu.Lock()
	o.handles[job.ID] = done
	o.mu.Unlock()

	// The pipeline outlives the submission request, so it runs on a fresh
	// context carrying only the tracing fields.
	pipelineCtx := logger.WithFields(context.Background(), logger.Fields{
		logger.FieldComponent: "pipeline",
		logger.FieldJobID:     job.ID,
		logger.FieldRepo:      sub.RepoURL,
	})

	// Snapshot before the goroutine starts; from here on the pipeline owns
	// the record pointer exclusively.
	snapshot := *job

	go func() {
		defer close(done)
		o.run(pipelineCtx, job)
	}()

	logger.CtxInfo(ctx, "Job submitted: id=%s, repo=%s, mode=%s", job.ID, sub.RepoURL, sub.Mode)

	return &snapshot, nil
}

// Wait blocks until the job's pipeline goroutine has exited. Unknown ids
// return immediately. Used by tests and shutdown paths; the submission
// path never calls it.
func (o *Orchestrator) Wait(id string) {
	o.mu.Lock()
	done, ok := o.handles[id]
	o.mu.Unlock()
	if ok {
		<-done
	}
}

// Running reports whether the job's pipeline goroutine is still alive.
func (o *Orchestrator) Running(id string) bool {
	o.mu.Lock()
	done, ok := o.handles[id]
	o.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// normalize validates the submission in place, defaulting the project name
// and generation mode. It fails before any record is created.
func normalize(sub *domain.Submission) error {
	sub.RepoURL = strings.TrimSpace(sub.RepoURL)
	if sub.RepoURL == "" {
		return &domain.ValidationError{Field: "repoUrl", Reason: "is required"}
	}
	if !vcs.ValidReference(sub.RepoURL) {
		return &domain.ValidationError{Field: "repoUrl", Reason: "must use an accepted URL scheme"}
	}

	sub.ProjectName = strings.TrimSpace(sub.ProjectName)
	if sub.ProjectName == "" {
		sub.ProjectName = vcs.RepoName(sub.RepoURL)
	}
	if sub.ProjectName == "" {
		return &domain.ValidationError{Field: "projectName", Reason: "could not be derived from repoUrl"}
	}

	switch sub.Mode {
	case "":
		sub.Mode = domain.ModeStandard
	case domain.ModeStandard, domain.ModeAI:
	default:
		return &domain.ValidationError{Field: "mode", Reason: "must be \"standard\" or \"ai\""}
	}
	return nil
}
