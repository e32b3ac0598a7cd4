package analysis

import (
	"reflect"
	"strings"
	"testing"

	"github.com/logsage/logsage/pkg/models"
)

func makeRecords(level string, n int, message, source string) []models.LogRecord {
	records := make([]models.LogRecord, n)
	for i := range records {
		records[i] = models.LogRecord{Level: level, Message: message, Source: source}
	}
	return records
}

func TestAnalyze_SeverityLadder(t *testing.T) {
	tests := []struct {
		name     string
		records  []models.LogRecord
		expected models.Severity
	}{
		{
			name:     "no records is info",
			records:  nil,
			expected: models.SeverityInfo,
		},
		{
			name:     "clean logs are info",
			records:  makeRecords(models.LevelInfo, 20, "all good", "web"),
			expected: models.SeverityInfo,
		},
		{
			name:     "single error is medium",
			records:  makeRecords(models.LevelError, 1, "boom", "web"),
			expected: models.SeverityMedium,
		},
		{
			name:     "ten errors is still medium",
			records:  makeRecords(models.LevelError, 10, "boom", "web"),
			expected: models.SeverityMedium,
		},
		{
			name:     "eleven errors is error",
			records:  makeRecords(models.LevelError, 11, "boom", "web"),
			expected: models.SeverityError,
		},
		{
			name: "any critical record wins",
			records: append(
				makeRecords(models.LevelCritical, 1, "meltdown", "core"),
				makeRecords(models.LevelInfo, 50, "fine", "web")...),
			expected: models.SeverityCritical,
		},
		{
			name: "fatal counts as critical",
			records: append(
				makeRecords(models.LevelFatal, 1, "dead", "core"),
				makeRecords(models.LevelError, 20, "boom", "web")...),
			expected: models.SeverityCritical,
		},
		{
			name:     "five warnings stay info",
			records:  makeRecords(models.LevelWarning, 5, "hmm", "web"),
			expected: models.SeverityInfo,
		},
		{
			name:     "six warnings are warning",
			records:  makeRecords(models.LevelWarning, 6, "hmm", "web"),
			expected: models.SeverityWarning,
		},
		{
			name: "errors outrank warnings",
			records: append(
				makeRecords(models.LevelWarning, 10, "hmm", "web"),
				makeRecords(models.LevelError, 1, "boom", "web")...),
			expected: models.SeverityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Analyze(tt.records)
			if summary.Severity != tt.expected {
				t.Errorf("expected severity %s, got %s", tt.expected, summary.Severity)
			}
		})
	}
}

func TestAnalyze_Counts(t *testing.T) {
	records := append(
		makeRecords(models.LevelError, 3, "boom", "web"),
		makeRecords(models.LevelWarning, 2, "hmm", "web")...)
	records = append(records, makeRecords(models.LevelInfo, 5, "ok", "web")...)

	summary := Analyze(records)
	if summary.ErrorCount != 3 {
		t.Errorf("expected 3 errors, got %d", summary.ErrorCount)
	}
	if summary.WarningCount != 2 {
		t.Errorf("expected 2 warnings, got %d", summary.WarningCount)
	}
	if summary.LevelDistribution[models.LevelInfo] != 5 {
		t.Errorf("unexpected distribution %v", summary.LevelDistribution)
	}
}

func TestAnalyze_Patterns(t *testing.T) {
	records := []models.LogRecord{
		{Level: models.LevelError, Message: "Connection refused by upstream"},
		{Level: models.LevelError, Message: "process killed: out of memory"},
		{Level: models.LevelWarning, Message: "this module is deprecated"},
		// Info-level records never count, even with matching text.
		{Level: models.LevelInfo, Message: "connection refused but informational"},
	}

	summary := Analyze(records)

	if summary.ErrorPatterns["connection_refused"] != 1 {
		t.Errorf("expected connection_refused=1, got %v", summary.ErrorPatterns)
	}
	if summary.ErrorPatterns["memory_error"] != 1 {
		t.Errorf("expected memory_error=1, got %v", summary.ErrorPatterns)
	}
	if summary.ErrorPatterns["warning_deprecated"] != 1 {
		t.Errorf("expected warning_deprecated=1, got %v", summary.ErrorPatterns)
	}
}

func TestAnalyze_MessageCanHitMultiplePatterns(t *testing.T) {
	records := []models.LogRecord{
		{Level: models.LevelError, Message: "database connection timeout"},
	}
	summary := Analyze(records)

	if summary.ErrorPatterns["database_error"] != 1 {
		t.Errorf("expected database_error hit, got %v", summary.ErrorPatterns)
	}
	if summary.ErrorPatterns["performance_issue"] != 1 {
		t.Errorf("expected performance_issue hit, got %v", summary.ErrorPatterns)
	}
}

func TestAnalyze_AffectedServices(t *testing.T) {
	records := []models.LogRecord{
		{Level: models.LevelError, Message: "boom", Source: "billing"},
		{Level: models.LevelError, Message: "boom again", Source: "billing"},
		{Level: models.LevelCritical, Message: "down", Source: "auth"},
		{Level: models.LevelWarning, Message: "hmm", Source: "web"},
		{Level: models.LevelError, Message: "no source"},
	}

	summary := Analyze(records)
	expected := []string{"auth", "billing"}
	if !reflect.DeepEqual(summary.AffectedServices, expected) {
		t.Errorf("expected sorted services %v, got %v", expected, summary.AffectedServices)
	}
}

func TestAnalyze_Recommendations(t *testing.T) {
	records := []models.LogRecord{
		{Level: models.LevelError, Message: "Connection refused", Source: "billing"},
	}

	summary := Analyze(records)
	if len(summary.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
	if summary.Recommendations[0] != "Investigate 1 error(s) found in logs" {
		t.Errorf("unexpected first recommendation %q", summary.Recommendations[0])
	}

	joined := strings.Join(summary.Recommendations, "\n")
	if !strings.Contains(joined, "Check network connectivity and service availability") {
		t.Errorf("expected connectivity hint, got %v", summary.Recommendations)
	}
	if !strings.Contains(joined, "Focus attention on services: billing") {
		t.Errorf("expected service focus hint, got %v", summary.Recommendations)
	}
}

func TestAnalyze_RecommendationsNeverEmpty(t *testing.T) {
	summary := Analyze(makeRecords(models.LevelInfo, 3, "fine", "web"))
	if !reflect.DeepEqual(summary.Recommendations,
		[]string{"Logs appear healthy with no critical issues detected"}) {
		t.Errorf("expected healthy-logs message, got %v", summary.Recommendations)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	records := []models.LogRecord{
		{Level: models.LevelError, Message: "Connection refused", Source: "billing"},
		{Level: models.LevelError, Message: "disk full on /var", Source: "storage"},
		{Level: models.LevelWarning, Message: "deprecated call", Source: "web"},
		{Level: models.LevelInfo, Message: "ok", Source: "web"},
	}

	first := Analyze(records)
	second := Analyze(records)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical summaries, got\n%+v\n%+v", first, second)
	}
}
