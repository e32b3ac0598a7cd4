// Package handler contains the HTTP handlers for the analysis API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/logsage/logsage/internal/ai"
	"github.com/logsage/logsage/internal/api/response"
	"github.com/logsage/logsage/internal/store"
	"github.com/logsage/logsage/pkg/models"
)

// maxLogBytes bounds the request body for log submission endpoints.
const maxLogBytes = 10 << 20

// Analyzer defines the pipeline operations the handlers depend on.
type Analyzer interface {
	TriggerAnalysis(ctx context.Context, text string, opts ai.AnalyzeOptions) (*models.Job, error)
}

type analyzeRequest struct {
	Logs    string `json:"logs"`
	Format  string `json:"format"`
	Context string `json:"context"`
	UseAI   *bool  `json:"use_ai"`
}

// NewAnalyzeHandler returns the handler for POST /api/v1/analyze. It accepts
// raw log text, creates an async job and returns 202 with the job id.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxLogBytes)

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.Logs == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "logs is required", nil)
			return
		}

		format, err := models.ParseFormatKind(req.Format)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		useAI := true
		if req.UseAI != nil {
			useAI = *req.UseAI
		}

		job, err := svc.TriggerAnalysis(r.Context(), req.Logs, ai.AnalyzeOptions{
			Format:  format,
			Context: req.Context,
			UseAI:   useAI,
		})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to create analysis job", nil)
			return
		}

		response.Accepted(w, job)
	}
}

// NewPollJobHandler returns the handler for GET /api/v1/analyze/{jobID}.
// Completed jobs include the persisted analysis result inline.
func NewPollJobHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a UUID", nil)
			return
		}

		job, err := st.GetJob(r.Context(), jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load job", nil)
			return
		}

		payload := jobResponse{Job: job}
		if job.Status == models.JobStatusCompleted {
			result, err := st.GetAnalysisResultByJobID(r.Context(), jobID)
			if err == nil {
				payload.Result = result
			}
		}

		response.JSON(w, payload)
	}
}

type jobResponse struct {
	*models.Job
	Result *models.AnalysisResult `json:"result,omitempty"`
}
