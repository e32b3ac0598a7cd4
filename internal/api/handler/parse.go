package handler

import (
	"encoding/json"
	"net/http"

	"github.com/logsage/logsage/internal/analysis"
	"github.com/logsage/logsage/internal/api/response"
	"github.com/logsage/logsage/internal/parser"
	"github.com/logsage/logsage/pkg/models"
)

type parseRequest struct {
	Logs   string `json:"logs"`
	Format string `json:"format"`
}

type parseResponse struct {
	Format    models.FormatKind  `json:"format"`
	Records   []models.LogRecord `json:"records"`
	Stats     parser.Stats       `json:"stats"`
	Anomalies []models.Anomaly   `json:"anomalies"`
}

// NewParseHandler returns the handler for POST /api/v1/parse. It runs the
// deterministic path only: parsing, statistics and anomaly detection, with
// no job, no persistence and no AI involvement.
func NewParseHandler(p *parser.Parser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxLogBytes)

		var req parseRequest
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

		records, resolved := p.ParseText(req.Logs, format)

		response.JSON(w, parseResponse{
			Format:    resolved,
			Records:   records,
			Stats:     parser.ComputeStats(records),
			Anomalies: analysis.IdentifyAnomalies(records, analysis.DefaultAnomalyOptions()),
		})
	}
}
