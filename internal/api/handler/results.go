package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/logsage/logsage/internal/api/response"
	"github.com/logsage/logsage/internal/store"
)

// NewGetResultHandler returns the handler for GET /api/v1/results/{resultID}.
func NewGetResultHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resultID, err := uuid.Parse(chi.URLParam(r, "resultID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "resultID must be a UUID", nil)
			return
		}

		result, err := st.GetAnalysisResult(r.Context(), resultID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Analysis result not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load analysis result", nil)
			return
		}

		response.JSON(w, result)
	}
}
