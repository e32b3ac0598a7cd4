package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/logsage/logsage/internal/ai"
	"github.com/logsage/logsage/internal/api/handler"
	"github.com/logsage/logsage/internal/parser"
	"github.com/logsage/logsage/internal/store"
	"github.com/logsage/logsage/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAnalyzer records the trigger call and returns a canned job.
type stubAnalyzer struct {
	lastText string
	lastOpts ai.AnalyzeOptions
	err      error
}

func (a *stubAnalyzer) TriggerAnalysis(_ context.Context, text string, opts ai.AnalyzeOptions) (*models.Job, error) {
	a.lastText = text
	a.lastOpts = opts
	if a.err != nil {
		return nil, a.err
	}
	now := time.Now().UTC()
	return &models.Job{
		ID:          uuid.New(),
		Status:      models.JobStatusPending,
		ContentHash: "stub-hash",
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// resultStore backs the poll and result handlers with in-memory fixtures.
type resultStore struct {
	jobs    map[uuid.UUID]*models.Job
	results map[uuid.UUID]*models.AnalysisResult
}

func newResultStore() *resultStore {
	return &resultStore{
		jobs:    map[uuid.UUID]*models.Job{},
		results: map[uuid.UUID]*models.AnalysisResult{},
	}
}

func (s *resultStore) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return job, nil
}

func (s *resultStore) GetAnalysisResult(_ context.Context, id uuid.UUID) (*models.AnalysisResult, error) {
	result, ok := s.results[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return result, nil
}

func (s *resultStore) GetAnalysisResultByJobID(_ context.Context, jobID uuid.UUID) (*models.AnalysisResult, error) {
	for _, result := range s.results {
		if result.JobID == jobID {
			return result, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *resultStore) Ping(context.Context) error                             { return nil }
func (s *resultStore) CreateAPIKey(context.Context, *models.APIKey) error     { return nil }
func (s *resultStore) GetAPIKeyByPrefix(context.Context, string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *resultStore) UpdateAPIKeyLastUsed(context.Context, uuid.UUID) error { return nil }
func (s *resultStore) ListAPIKeys(context.Context) ([]*models.APIKey, error) { return nil, nil }
func (s *resultStore) RevokeAPIKey(context.Context, uuid.UUID) error         { return store.ErrNotFound }
func (s *resultStore) CreateJob(context.Context, *models.Job) error          { return nil }
func (s *resultStore) UpdateJobStatus(context.Context, uuid.UUID, string, ...store.JobUpdateOption) error {
	return nil
}
func (s *resultStore) CreateAnalysisResult(context.Context, *models.AnalysisResult) error { return nil }
func (s *resultStore) GetLatestAnalysisResultByHash(context.Context, string) (*models.AnalysisResult, error) {
	return nil, store.ErrNotFound
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/", bytes.NewReader(buf))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// --- analyze handler ---

func TestAnalyzeHandler_Accepted(t *testing.T) {
	svc := &stubAnalyzer{}
	h := handler.NewAnalyzeHandler(svc)

	w := postJSON(t, h, map[string]any{
		"logs":    "2024-03-01 10:00:00 ERROR payment failed",
		"context": "billing incident",
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "2024-03-01 10:00:00 ERROR payment failed", svc.lastText)
	assert.Equal(t, models.FormatAuto, svc.lastOpts.Format)
	assert.Equal(t, "billing incident", svc.lastOpts.Context)
	assert.True(t, svc.lastOpts.UseAI, "use_ai defaults to true")

	var body struct {
		Data models.Job `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.JobStatusPending, body.Data.Status)
	assert.NotEqual(t, uuid.Nil, body.Data.ID)
}

func TestAnalyzeHandler_UseAIDisabled(t *testing.T) {
	svc := &stubAnalyzer{}
	h := handler.NewAnalyzeHandler(svc)

	w := postJSON(t, h, map[string]any{"logs": "a line", "use_ai": false})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.False(t, svc.lastOpts.UseAI)
}

func TestAnalyzeHandler_ExplicitFormat(t *testing.T) {
	svc := &stubAnalyzer{}
	h := handler.NewAnalyzeHandler(svc)

	w := postJSON(t, h, map[string]any{"logs": "a line", "format": "nginx"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, models.FormatNginx, svc.lastOpts.Format)
}

func TestAnalyzeHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing logs", `{"format":"json"}`},
		{"unknown format", `{"logs":"a line","format":"cobol"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewAnalyzeHandler(&stubAnalyzer{})
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAnalyzeHandler_ServiceError(t *testing.T) {
	svc := &stubAnalyzer{err: errors.New("db down")}
	h := handler.NewAnalyzeHandler(svc)

	w := postJSON(t, h, map[string]any{"logs": "a line"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- poll job handler ---

func pollJob(t *testing.T, st store.Store, jobID string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/v1/analyze/{jobID}", handler.NewPollJobHandler(st))

	req := httptest.NewRequest("GET", "/api/v1/analyze/"+jobID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPollJobHandler_Pending(t *testing.T) {
	st := newResultStore()
	job := &models.Job{ID: uuid.New(), Status: models.JobStatusPending, ContentHash: "h"}
	st.jobs[job.ID] = job

	w := pollJob(t, st, job.ID.String())

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Status string                 `json:"status"`
			Result *models.AnalysisResult `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.JobStatusPending, body.Data.Status)
	assert.Nil(t, body.Data.Result)
}

func TestPollJobHandler_CompletedIncludesResult(t *testing.T) {
	st := newResultStore()
	job := &models.Job{ID: uuid.New(), Status: models.JobStatusCompleted, ContentHash: "h"}
	st.jobs[job.ID] = job

	result := &models.AnalysisResult{
		ID:       uuid.New(),
		JobID:    job.ID,
		Severity: models.SeverityMedium,
	}
	st.results[result.ID] = result

	w := pollJob(t, st, job.ID.String())

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Status string                 `json:"status"`
			Result *models.AnalysisResult `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data.Result)
	assert.Equal(t, result.ID, body.Data.Result.ID)
	assert.Equal(t, models.SeverityMedium, body.Data.Result.Severity)
}

func TestPollJobHandler_Errors(t *testing.T) {
	st := newResultStore()

	t.Run("not a uuid", func(t *testing.T) {
		w := pollJob(t, st, "not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown job", func(t *testing.T) {
		w := pollJob(t, st, uuid.NewString())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// --- result handler ---

func TestGetResultHandler(t *testing.T) {
	st := newResultStore()
	result := &models.AnalysisResult{ID: uuid.New(), JobID: uuid.New(), Severity: models.SeverityError}
	st.results[result.ID] = result

	r := chi.NewRouter()
	r.Get("/api/v1/results/{resultID}", handler.NewGetResultHandler(st))

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/results/"+result.ID.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data models.AnalysisResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, result.ID, body.Data.ID)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/results/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// --- parse handler ---

func TestParseHandler(t *testing.T) {
	h := handler.NewParseHandler(parser.New(parser.Options{}))

	logs := `{"timestamp":"2024-03-01T10:00:00Z","level":"error","message":"Connection refused","service":"billing"}
{"timestamp":"2024-03-01T10:00:05Z","level":"info","message":"request served","service":"web"}`

	w := postJSON(t, h, map[string]any{"logs": logs})

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Format    models.FormatKind  `json:"format"`
			Records   []models.LogRecord `json:"records"`
			Stats     parser.Stats       `json:"stats"`
			Anomalies []models.Anomaly   `json:"anomalies"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, models.FormatJSON, body.Data.Format)
	require.Len(t, body.Data.Records, 2)
	assert.Equal(t, models.LevelError, body.Data.Records[0].Level)
	assert.Equal(t, "billing", body.Data.Records[0].Source)
	assert.Equal(t, 2, body.Data.Stats.TotalRecords)
	assert.Equal(t, 1, body.Data.Stats.LevelDistribution[models.LevelError])
	assert.Empty(t, body.Data.Anomalies)
}

func TestParseHandler_BadRequests(t *testing.T) {
	h := handler.NewParseHandler(parser.New(parser.Options{}))

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{oops"},
		{"missing logs", `{"format":"json"}`},
		{"unknown format", `{"logs":"x","format":"yaml"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

// --- key handlers ---

type keyAdminStore struct {
	*resultStore
	created *models.APIKey
	listed  []*models.APIKey
	revoked []uuid.UUID
}

func (s *keyAdminStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	s.created = key
	return nil
}

func (s *keyAdminStore) ListAPIKeys(context.Context) ([]*models.APIKey, error) {
	return s.listed, nil
}

func (s *keyAdminStore) RevokeAPIKey(_ context.Context, id uuid.UUID) error {
	for _, k := range s.listed {
		if k.ID == id {
			s.revoked = append(s.revoked, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func TestCreateKeyHandler(t *testing.T) {
	st := &keyAdminStore{resultStore: newResultStore()}
	h := handler.NewCreateKeyHandler(st)

	w := postJSON(t, h, map[string]any{"name": "ci-bot", "scopes": []string{"read", "write"}})

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data struct {
			models.APIKey
			Key string `json:"key"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "ci-bot", body.Data.Name)
	assert.Equal(t, []string{"read", "write"}, body.Data.Scopes)
	assert.True(t, strings.HasPrefix(body.Data.Key, "lsk_"))
	assert.Equal(t, body.Data.Key[:8], body.Data.KeyPrefix)

	// Only the hash is persisted, never the raw key.
	require.NotNil(t, st.created)
	assert.NotContains(t, st.created.KeyHash, body.Data.Key)
	assert.NotEmpty(t, st.created.KeyHash)
}

func TestCreateKeyHandler_DefaultScope(t *testing.T) {
	st := &keyAdminStore{resultStore: newResultStore()}
	h := handler.NewCreateKeyHandler(st)

	w := postJSON(t, h, map[string]any{"name": "reader"})

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, st.created)
	assert.Equal(t, []string{"read"}, st.created.Scopes)
}

func TestCreateKeyHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"scopes":["read"]}`},
		{"unknown scope", `{"name":"x","scopes":["superuser"]}`},
		{"invalid json", "{nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &keyAdminStore{resultStore: newResultStore()}
			h := handler.NewCreateKeyHandler(st)

			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, st.created)
		})
	}
}

func TestRevokeKeyHandler(t *testing.T) {
	existing := &models.APIKey{ID: uuid.New(), Name: "victim"}
	st := &keyAdminStore{resultStore: newResultStore(), listed: []*models.APIKey{existing}}

	r := chi.NewRouter()
	r.Delete("/api/v1/admin/keys/{keyID}", handler.NewRevokeKeyHandler(st))

	t.Run("revokes existing key", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/api/v1/admin/keys/"+existing.ID.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []uuid.UUID{existing.ID}, st.revoked)
	})

	t.Run("unknown key", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/api/v1/admin/keys/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/api/v1/admin/keys/whatever", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// --- health handler ---

type pingStore struct {
	*resultStore
	err error
}

func (s *pingStore) Ping(context.Context) error { return s.err }

type pingCache struct {
	err error
}

func (c *pingCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (c *pingCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (c *pingCache) Delete(context.Context, string) error                     { return nil }
func (c *pingCache) Ping(context.Context) error                               { return c.err }
func (c *pingCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name         string
		storeErr     error
		cacheErr     error
		wantStatus   string
		wantDatabase string
		wantCache    string
	}{
		{"all healthy", nil, nil, "ok", "ok", "ok"},
		{"database down", errors.New("refused"), nil, "degraded", "unreachable", "ok"},
		{"cache down", nil, errors.New("refused"), "degraded", "ok", "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(
				&pingStore{resultStore: newResultStore(), err: tt.storeErr},
				&pingCache{err: tt.cacheErr},
			)

			req := httptest.NewRequest("GET", "/api/v1/health", nil)
			w := httptest.NewRecorder()
			h(w, req)

			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				Data struct {
					Status   string `json:"status"`
					Database string `json:"database"`
					Cache    string `json:"cache"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Data.Status)
			assert.Equal(t, tt.wantDatabase, body.Data.Database)
			assert.Equal(t, tt.wantCache, body.Data.Cache)
		})
	}
}
