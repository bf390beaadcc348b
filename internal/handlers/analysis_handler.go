package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/airalabs/aira/internal/agent"
	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
)

var validate = validator.New()

// AnalysisService is the orchestrator surface the handler needs
type AnalysisService interface {
	Submit(ctx context.Context, query string) (*models.AnalysisJob, error)
	Cancel(jobID string) error
}

// AnalysisHandler handles analysis job API requests
type AnalysisHandler struct {
	service    AnalysisService
	jobStorage interfaces.JobStorage
	logger     arbor.ILogger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisService, jobStorage interfaces.JobStorage, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		service:    service,
		jobStorage: jobStorage,
		logger:     logger,
	}
}

// AnalyzeRequest is the submit payload
type AnalyzeRequest struct {
	Query string `json:"query" validate:"required,min=3"`
}

// AnalyzeHandler submits a new analysis job
// POST /api/analyze
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Query is required")
		return
	}

	job, err := h.service.Submit(r.Context(), req.Query)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to submit analysis job")
		WriteError(w, http.StatusInternalServerError, "Failed to submit analysis")
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// ListJobsHandler returns jobs, newest first
// GET /api/jobs?status=succeeded&limit=50
func (h *AnalysisHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := models.JobStatus(r.URL.Query().Get("status"))
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	jobs, err := h.jobStorage.List(r.Context(), status, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list jobs")
		WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetJobHandler returns a single job with its full reasoning transcript
// GET /api/jobs/{id}
func (h *AnalysisHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	jobID := pathSegment(r.URL.Path, 2)
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := h.jobStorage.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// CancelJobHandler requests cancellation of a running job
// POST /api/jobs/{id}/cancel
func (h *AnalysisHandler) CancelJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	jobID := pathSegment(r.URL.Path, 2)
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	if err := h.service.Cancel(jobID); err != nil {
		if errors.Is(err, agent.ErrJobNotRunning) {
			WriteError(w, http.StatusConflict, "Job is not running")
			return
		}
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to cancel job")
		WriteError(w, http.StatusInternalServerError, "Failed to cancel job")
		return
	}

	WriteSuccess(w, "Cancellation requested")
}

// pathSegment returns the nth segment of a trimmed URL path, or ""
func pathSegment(path string, n int) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if n >= len(parts) {
		return ""
	}
	return parts[n]
}
