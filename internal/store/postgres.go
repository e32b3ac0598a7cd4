package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/logsage/logsage/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// --- Jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, status, content_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.Status, job.ContentHash, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, content_hash, result_id, error_message, created_at, updated_at
		 FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Status, &j.ContentHash, &j.ResultID, &j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	var params jobUpdateParams
	for _, opt := range opts {
		opt(&params)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $2,
		   error_message = COALESCE($3, error_message),
		   result_id = COALESCE($4, result_id),
		   updated_at = NOW()
		 WHERE id = $1`,
		id, status, params.ErrorMessage, params.ResultID)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Analysis Results ---

const analysisResultColumns = `id, job_id, content_hash, provider, severity, error_count, warning_count,
	critical_issues, error_patterns, affected_services, recommendations, root_causes,
	security_issues, performance_metrics, incident_timeline, created_at`

func (s *PostgresStore) CreateAnalysisResult(ctx context.Context, result *models.AnalysisResult) error {
	criticalIssues, err := json.Marshal(result.CriticalIssues)
	if err != nil {
		return fmt.Errorf("marshal critical issues: %w", err)
	}
	errorPatterns, err := json.Marshal(result.ErrorPatterns)
	if err != nil {
		return fmt.Errorf("marshal error patterns: %w", err)
	}
	affectedServices, err := json.Marshal(result.AffectedServices)
	if err != nil {
		return fmt.Errorf("marshal affected services: %w", err)
	}
	recommendations, err := json.Marshal(result.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	rootCauses, err := json.Marshal(result.RootCauses)
	if err != nil {
		return fmt.Errorf("marshal root causes: %w", err)
	}
	securityIssues, err := json.Marshal(result.SecurityIssues)
	if err != nil {
		return fmt.Errorf("marshal security issues: %w", err)
	}
	performanceMetrics, err := json.Marshal(result.PerformanceMetrics)
	if err != nil {
		return fmt.Errorf("marshal performance metrics: %w", err)
	}
	incidentTimeline, err := json.Marshal(result.IncidentTimeline)
	if err != nil {
		return fmt.Errorf("marshal incident timeline: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_results (`+analysisResultColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		result.ID, result.JobID, result.ContentHash, result.Provider, result.Severity,
		result.ErrorCount, result.WarningCount, criticalIssues, errorPatterns,
		affectedServices, recommendations, rootCauses, securityIssues,
		performanceMetrics, incidentTimeline, result.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create analysis result: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAnalysisResult(ctx context.Context, id uuid.UUID) (*models.AnalysisResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+analysisResultColumns+` FROM analysis_results WHERE id = $1`, id)
	return scanAnalysisResult(row)
}

func (s *PostgresStore) GetAnalysisResultByJobID(ctx context.Context, jobID uuid.UUID) (*models.AnalysisResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+analysisResultColumns+` FROM analysis_results WHERE job_id = $1`, jobID)
	return scanAnalysisResult(row)
}

func (s *PostgresStore) GetLatestAnalysisResultByHash(ctx context.Context, contentHash string) (*models.AnalysisResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+analysisResultColumns+` FROM analysis_results
		 WHERE content_hash = $1 ORDER BY created_at DESC LIMIT 1`, contentHash)
	return scanAnalysisResult(row)
}

func scanAnalysisResult(row pgx.Row) (*models.AnalysisResult, error) {
	var r models.AnalysisResult
	var criticalIssues, errorPatterns, affectedServices, recommendations []byte
	var rootCauses, securityIssues, performanceMetrics, incidentTimeline []byte

	err := row.Scan(&r.ID, &r.JobID, &r.ContentHash, &r.Provider, &r.Severity,
		&r.ErrorCount, &r.WarningCount, &criticalIssues, &errorPatterns,
		&affectedServices, &recommendations, &rootCauses, &securityIssues,
		&performanceMetrics, &incidentTimeline, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan analysis result: %w", err)
	}

	for _, field := range []struct {
		data []byte
		dst  any
	}{
		{criticalIssues, &r.CriticalIssues},
		{errorPatterns, &r.ErrorPatterns},
		{affectedServices, &r.AffectedServices},
		{recommendations, &r.Recommendations},
		{rootCauses, &r.RootCauses},
		{securityIssues, &r.SecurityIssues},
		{performanceMetrics, &r.PerformanceMetrics},
		{incidentTimeline, &r.IncidentTimeline},
	} {
		if err := json.Unmarshal(field.data, field.dst); err != nil {
			return nil, fmt.Errorf("unmarshal analysis result field: %w", err)
		}
	}
	return &r, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
