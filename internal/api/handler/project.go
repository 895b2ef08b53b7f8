package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/telun/repodoc/internal/domain"
	"github.com/telun/repodoc/internal/logger"
	"github.com/telun/repodoc/internal/service"
	"github.com/telun/repodoc/internal/store"
)

// ProjectHandler exposes the job lifecycle over HTTP: submission through
// the orchestrator, status queries as pure reads against the store.
type ProjectHandler struct {
	orchestrator *service.Orchestrator
	store        store.Store
}

// NewProjectHandler creates a project handler.
func NewProjectHandler(orc *service.Orchestrator, st store.Store) *ProjectHandler {
	return &ProjectHandler{orchestrator: orc, store: st}
}

// SubmitRequest is the submission API request body.
type SubmitRequest struct {
	RepoURL     string `json:"repoUrl" binding:"required"`
	ProjectName string `json:"projectName"`
	Description string `json:"description"`
	Mode        string `json:"mode"`
}

// SubmitResponse acknowledges an accepted submission.
type SubmitResponse struct {
	ID     string           `json:"id"`
	Status domain.JobStatus `json:"status"`
}

// Submit handles POST /projects. Validation failures are rejected before
// any job record exists; on success the response returns immediately while
// the pipeline runs in the background.
func (h *ProjectHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.CtxWarn(ctx, "Invalid submission body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.orchestrator.Submit(ctx, domain.Submission{
		RepoURL:     req.RepoURL,
		ProjectName: req.ProjectName,
		Description: req.Description,
		Mode:        req.Mode,
	})
	if err != nil {
		if domain.IsValidation(err) {
			logger.CtxWarn(ctx, "Submission rejected: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.CtxError(ctx, "Submission failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	c.JSON(http.StatusAccepted, SubmitResponse{
		ID:     job.ID,
		Status: domain.JobStatusProcessing,
	})
}

// List handles GET /projects, returning lightweight summaries without
// result payloads.
func (h *ProjectHandler) List(c *gin.Context) {
	summaries, err := h.store.List(c.Request.Context())
	if err != nil {
		logger.CtxError(c.Request.Context(), "Listing jobs failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// Get handles GET /projects/:id, returning the full job record.
func (h *ProjectHandler) Get(c *gin.Context) {
	job, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetProgress handles GET /projects/:id/progress, returning the cheap
// pollable subset of the record.
func (h *ProjectHandler) GetProgress(c *gin.Context) {
	job, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, job.Progress(time.Now()))
}

func (h *ProjectHandler) renderLookupError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	logger.CtxError(c.Request.Context(), "Job lookup failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
}
