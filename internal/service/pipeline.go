package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/telun/repodoc/internal/domain"
	"github.com/telun/repodoc/internal/logger"
)

// Pipeline stage names. These appear in job errors and progress snapshots.
const (
	StageInitialize = "initialize"
	StageAcquire    = "acquire"
	StageAnalyze    = "analyze"
	StageGenerate   = "generate"
	StageFinalize   = "finalize"
)

// stage is one ordered unit of pipeline work owning a fixed percentage
// band [from, to). The bands are pre-assigned, not measured: collaborator
// durations are unpredictable, so the bands trade precision for a progress
// signal that stays monotonic.
type stage struct {
	name     string
	from, to int
	startMsg string
	doneMsg  string
	run      func(ctx context.Context, o *Orchestrator, js *jobState) error
}

// jobState carries the working data handed from stage to stage. It is
// private to the single pipeline goroutine.
type jobState struct {
	job      *domain.Job
	workDir  string
	srcDir   string
	analysis *domain.Analysis
	doc      *domain.Documentation
}

var stages = []stage{
	{
		name: StageInitialize, from: 0, to: 5,
		startMsg: "Preparing workspace",
		doneMsg:  "Workspace ready",
		run: func(_ context.Context, o *Orchestrator, js *jobState) error {
			dir, err := os.MkdirTemp(o.cfg.WorkspaceRoot, "repodoc-*")
			if err != nil {
				return fmt.Errorf("workspace creation failed: %w", err)
			}
			js.workDir = dir
			js.srcDir = filepath.Join(dir, "src")
			return nil
		},
	},
	{
		name: StageAcquire, from: 5, to: 35,
		startMsg: "Cloning repository",
		doneMsg:  "Repository acquired",
		run: func(ctx context.Context, o *Orchestrator, js *jobState) error {
			// The clone ceiling is the one server-side timeout: an
			// unbounded clone is the dominant unrecoverable-hang risk.
			cloneCtx, cancel := context.WithTimeout(ctx, o.cfg.CloneTimeout)
			defer cancel()
			return o.vcs.Clone(cloneCtx, js.job.Input.RepoURL, js.srcDir)
		},
	},
	{
		name: StageAnalyze, from: 35, to: 65,
		startMsg: "Analyzing repository structure",
		doneMsg:  "Analysis complete",
		run: func(ctx context.Context, o *Orchestrator, js *jobState) error {
			analysis, err := o.analyzer.Analyze(ctx, js.srcDir)
			if err != nil {
				return err
			}
			js.analysis = analysis
			return nil
		},
	},
	{
		name: StageGenerate, from: 65, to: 95,
		startMsg: "Generating documentation",
		doneMsg:  "Documentation generated",
		run: func(ctx context.Context, o *Orchestrator, js *jobState) error {
			doc, err := o.generator.Generate(ctx, js.job.Input, js.analysis)
			if err != nil {
				return err
			}
			js.doc = doc
			return nil
		},
	},
	{
		name: StageFinalize, from: 95, to: 100,
		startMsg: "Finalizing",
		doneMsg:  "Documentation ready",
		run: func(ctx context.Context, o *Orchestrator, js *jobState) error {
			if o.artifacts != nil {
				key := fmt.Sprintf("jobs/%s/README.md", js.job.ID)
				reader := strings.NewReader(js.doc.Markdown)
				url, err := o.artifacts.Put(ctx, key, reader, int64(len(js.doc.Markdown)), "text/markdown")
				if err != nil {
					return fmt.Errorf("artifact upload failed: %w", err)
				}
				js.doc.ArtifactURL = url
			}
			return nil
		},
	},
}

// run executes the stage pipeline for one job. Every exit path releases
// the temporary working tree and leaves the record in a terminal state;
// nothing escapes this goroutine.
func (o *Orchestrator) run(ctx context.Context, job *domain.Job) {
	start := time.Now()
	js := &jobState{job: job}

	defer func() {
		if js.workDir != "" {
			if err := os.RemoveAll(js.workDir); err != nil {
				logger.CtxWarn(ctx, "Workspace cleanup failed: dir=%s, error=%v", js.workDir, err)
			}
		}
		if r := recover(); r != nil {
			o.fail(ctx, job, fmt.Errorf("stage panicked: %v", r))
		}
	}()

	for i, st := range stages {
		stageCtx := logger.SetStage(ctx, st.name)

		job.Status = domain.JobStatusProcessing
		job.Stage = st.name
		job.StageIndex = i + 1
		job.Percentage = st.from
		job.Message = st.startMsg
		if err := o.store.Put(stageCtx, job); err != nil {
			logger.CtxError(stageCtx, "Job record update failed: %v", err)
		}

		logger.CtxInfo(stageCtx, "Stage started: %d/%d", i+1, len(stages))
		stageStart := time.Now()

		if err := st.run(stageCtx, o, js); err != nil {
			logger.With(logger.Fields{
				logger.FieldDurationMs: time.Since(stageStart).Milliseconds(),
			}).Error(stageCtx, "Stage failed: %v", err)
			o.fail(stageCtx, job, err)
			return
		}

		logger.With(logger.Fields{
			logger.FieldDurationMs: time.Since(stageStart).Milliseconds(),
		}).Info(stageCtx, "Stage completed")

		// The terminal update owns the final stage's completion; 100% is
		// only ever visible together with completed status.
		if i < len(stages)-1 {
			job.Percentage = st.to
			job.Message = st.doneMsg
			if err := o.store.Put(stageCtx, job); err != nil {
				logger.CtxError(stageCtx, "Job record update failed: %v", err)
			}
		}
	}

	now := time.Now().UTC()
	job.Status = domain.JobStatusCompleted
	job.Percentage = 100
	job.Message = stages[len(stages)-1].doneMsg
	job.Result = js.doc
	job.CompletedAt = &now
	if err := o.store.Put(ctx, job); err != nil {
		logger.CtxError(ctx, "Job record update failed: %v", err)
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldStatus:     string(job.Status),
	}).Info(ctx, "Job completed")
}

// fail moves the job to its terminal failed state, preserving the stage
// name and the collaborator's failure text. Remaining stages never run.
func (o *Orchestrator) fail(ctx context.Context, job *domain.Job, cause error) {
	now := time.Now().UTC()
	job.Status = domain.JobStatusFailed
	job.Error = &domain.JobError{Stage: job.Stage, Cause: cause.Error()}
	job.Message = fmt.Sprintf("Failed during %s", job.Stage)
	job.CompletedAt = &now
	if err := o.store.Put(ctx, job); err != nil {
		logger.CtxError(ctx, "Job record update failed: %v", err)
	}
}
