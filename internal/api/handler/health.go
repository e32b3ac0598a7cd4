package handler

import (
	"net/http"

	"github.com/logsage/logsage/internal/api/response"
	"github.com/logsage/logsage/internal/cache"
	"github.com/logsage/logsage/internal/store"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// NewHealthHandler returns the handler for GET /api/v1/health. The endpoint
// reports degraded rather than failing when a dependency is down.
func NewHealthHandler(st store.Store, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := healthResponse{Status: "ok", Database: "ok", Cache: "ok"}

		if err := st.Ping(r.Context()); err != nil {
			health.Status = "degraded"
			health.Database = "unreachable"
		}
		if err := ca.Ping(r.Context()); err != nil {
			health.Status = "degraded"
			health.Cache = "unreachable"
		}

		response.JSON(w, health)
	}
}
