// Package ai orchestrates the two-tier analysis pipeline: deterministic
// statistics first, optional AI augmentation on top, with a guaranteed
// fallback to the deterministic result whenever the provider fails.
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/logsage/logsage/internal/analysis"
	"github.com/logsage/logsage/internal/cache"
	"github.com/logsage/logsage/internal/parser"
	"github.com/logsage/logsage/internal/store"
	"github.com/logsage/logsage/pkg/models"
)

// AnalyzeOptions control a single analysis request.
type AnalyzeOptions struct {
	// Format is the requested log format; auto-detect by default.
	Format models.FormatKind
	// Context is optional free text forwarded to the AI provider.
	Context string
	// UseAI enables the augmentation step. The deterministic analysis runs
	// either way.
	UseAI bool
}

// Service is the analysis pipeline. Stateless between requests apart from
// the injected cache; safe for concurrent use.
type Service struct {
	provider     models.AIProvider
	parser       *parser.Parser
	cache        cache.Cache
	store        store.Store
	timeout      time.Duration
	sampleBudget int
	cacheTTL     time.Duration
}

// NewService creates a new analysis Service. The store may be nil when job
// persistence is not needed (library and test use).
func NewService(provider models.AIProvider, p *parser.Parser, ca cache.Cache, st store.Store,
	timeout time.Duration, sampleBudget int, cacheTTL time.Duration) *Service {
	if sampleBudget <= 0 {
		sampleBudget = analysis.DefaultSampleBudget
	}
	return &Service{
		provider:     provider,
		parser:       p,
		cache:        ca,
		store:        st,
		timeout:      timeout,
		sampleBudget: sampleBudget,
		cacheTTL:     cacheTTL,
	}
}

// ContentHash returns the cache key hash for a log text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum)
}

// AnalyzeFile reads path and analyzes its contents. Invalid UTF-8 is
// replaced; only open/read failures are fatal.
func (s *Service) AnalyzeFile(ctx context.Context, path string, opts AnalyzeOptions) (*models.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", parser.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading log file %s: %w", path, err)
	}
	return s.AnalyzeText(ctx, strings.ToValidUTF8(string(data), "�"), opts)
}

// AnalyzeText runs the full pipeline over in-memory log text. It always
// returns a usable result for readable input: augmentation failures degrade
// to the deterministic analysis and are surfaced only as a recommendation.
func (s *Service) AnalyzeText(ctx context.Context, text string, opts AnalyzeOptions) (*models.AnalysisResult, error) {
	hash := ContentHash(text)

	if opts.UseAI {
		if cached := s.cacheLookup(ctx, hash); cached != nil {
			slog.Info("using cached analysis", "content_hash", hash)
			return cached, nil
		}
	}

	records, _ := s.parser.ParseText(text, opts.Format)
	if len(records) == 0 {
		return emptyResult(hash), nil
	}

	summary := analysis.Analyze(records)
	result := s.resultFromSummary(hash, records, summary)

	if opts.UseAI {
		s.augment(ctx, records, summary, opts.Context, result)
		s.cacheStore(ctx, hash, result)
	}

	slog.Info("completed analysis",
		"content_hash", hash,
		"severity", result.Severity,
		"errors", result.ErrorCount,
		"ai", opts.UseAI,
	)
	return result, nil
}

// resultFromSummary assembles the deterministic AnalysisResult.
func (s *Service) resultFromSummary(hash string, records []models.LogRecord, summary analysis.Summary) *models.AnalysisResult {
	return &models.AnalysisResult{
		ID:                 uuid.New(),
		ContentHash:        hash,
		Severity:           summary.Severity,
		ErrorCount:         summary.ErrorCount,
		WarningCount:       summary.WarningCount,
		CriticalIssues:     []string{},
		ErrorPatterns:      summary.ErrorPatterns,
		AffectedServices:   summary.AffectedServices,
		Recommendations:    summary.Recommendations,
		RootCauses:         []string{},
		SecurityIssues:     []string{},
		PerformanceMetrics: analysis.ExtractPerformanceMetrics(records),
		IncidentTimeline:   analysis.BuildIncidentTimeline(records),
		CreatedAt:          time.Now().UTC(),
	}
}

// augment calls the AI provider and merges its output into result. Counts,
// patterns and affected services are never overridden. Any provider failure
// leaves the deterministic result standing with a diagnostic recommendation.
func (s *Service) augment(ctx context.Context, records []models.LogRecord, summary analysis.Summary,
	extraContext string, result *models.AnalysisResult) {

	augmentCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		augmentCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	aug, err := s.provider.Augment(augmentCtx, models.AugmentRequest{
		Records:           analysis.PrepareSample(records, s.sampleBudget),
		TotalRecords:      len(records),
		ErrorCount:        summary.ErrorCount,
		WarningCount:      summary.WarningCount,
		LevelDistribution: summary.LevelDistribution,
		Context:           extraContext,
	})
	if err != nil {
		slog.Warn("ai augmentation failed, falling back to deterministic analysis",
			"provider", s.provider.Name(), "error", err)
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("AI analysis failed: %v", err))
		return
	}

	result.Provider = s.provider.Name()
	if aug.Severity.Valid() {
		result.Severity = aug.Severity
	}
	if len(aug.CriticalIssues) > 0 {
		result.CriticalIssues = aug.CriticalIssues
	}
	if len(aug.RootCauses) > 0 {
		result.RootCauses = aug.RootCauses
	}
	if len(aug.SecurityIssues) > 0 {
		result.SecurityIssues = aug.SecurityIssues
	}
	if len(aug.PerformanceMetrics) > 0 {
		result.PerformanceMetrics = aug.PerformanceMetrics
	}
	if len(aug.IncidentTimeline) > 0 {
		result.IncidentTimeline = aug.IncidentTimeline
	}
	if len(aug.Recommendations) > 0 {
		result.Recommendations = aug.Recommendations
	}
}

func (s *Service) cacheLookup(ctx context.Context, hash string) *models.AnalysisResult {
	data, ok, err := s.cache.Get(ctx, cache.AnalysisKey(hash))
	if err != nil || !ok {
		return nil
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		slog.Warn("dropping malformed cache entry", "content_hash", hash, "error", err)
		_ = s.cache.Delete(ctx, cache.AnalysisKey(hash))
		return nil
	}
	return &result
}

func (s *Service) cacheStore(ctx context.Context, hash string, result *models.AnalysisResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.AnalysisKey(hash), data, s.cacheTTL); err != nil {
		slog.Warn("caching analysis failed", "content_hash", hash, "error", err)
	}
}

// emptyResult is the short-circuit for input with no parseable records; the
// AI provider is never invoked on this path.
func emptyResult(hash string) *models.AnalysisResult {
	return &models.AnalysisResult{
		ID:                 uuid.New(),
		ContentHash:        hash,
		Severity:           models.SeverityInfo,
		CriticalIssues:     []string{},
		ErrorPatterns:      map[string]int{},
		AffectedServices:   []string{},
		Recommendations:    []string{"Log input appears to be empty or unparseable"},
		RootCauses:         []string{},
		SecurityIssues:     []string{},
		PerformanceMetrics: map[string]any{},
		IncidentTimeline:   []models.TimelineEvent{},
		CreatedAt:          time.Now().UTC(),
	}
}

// TriggerAnalysis creates a pending job and dispatches the pipeline in a
// background goroutine. Returns the job immediately.
func (s *Service) TriggerAnalysis(ctx context.Context, text string, opts AnalyzeOptions) (*models.Job, error) {
	if s.store == nil {
		return nil, fmt.Errorf("job persistence requires a store")
	}

	job := &models.Job{
		ID:          uuid.New(),
		Status:      models.JobStatusPending,
		ContentHash: ContentHash(text),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	go s.runAnalysis(text, opts, job.ID)

	return job, nil
}

// runAnalysis performs the actual analysis in a goroutine. It recovers from
// panics and always marks the job as completed or failed.
func (s *Service) runAnalysis(text string, opts AnalyzeOptions, jobID uuid.UUID) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in runAnalysis", "error", r, "job_id", jobID)
			_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed,
				store.WithErrorMessage(fmt.Sprintf("panic: %v", r)))
		}
	}()

	_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusRunning)

	result, err := s.AnalyzeText(ctx, text, opts)
	if err != nil {
		_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed,
			store.WithErrorMessage(err.Error()))
		return
	}

	result.JobID = jobID
	if err := s.store.CreateAnalysisResult(ctx, result); err != nil {
		_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed,
			store.WithErrorMessage(fmt.Sprintf("storing result: %v", err)))
		return
	}

	_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusCompleted,
		store.WithResultID(result.ID))
}
