package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity is the overall classification of a record set.
type Severity string

const (
	SeverityDebug    Severity = "debug"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityMedium   Severity = "medium"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the defined severity values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityDebug, SeverityInfo, SeverityWarning,
		SeverityMedium, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// TimelineEvent is one entry in an incident timeline, ordered by timestamp.
type TimelineEvent struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Source    string `json:"source"`
	Event     string `json:"event"`
}

// AnalysisResult is the output of the analysis pipeline.
//
// ErrorCount, WarningCount, ErrorPatterns and AffectedServices always come
// from the deterministic analyzer so they are reproducible and auditable
// regardless of AI availability. The remaining fields may be overridden by a
// successful augmentation.
type AnalysisResult struct {
	ID                 uuid.UUID       `db:"id"                  json:"id"`
	JobID              uuid.UUID       `db:"job_id"              json:"job_id"`
	ContentHash        string          `db:"content_hash"        json:"content_hash"`
	Provider           string          `db:"provider"            json:"provider,omitempty"`
	Severity           Severity        `db:"severity"            json:"severity"`
	ErrorCount         int             `db:"error_count"         json:"error_count"`
	WarningCount       int             `db:"warning_count"       json:"warning_count"`
	CriticalIssues     []string        `db:"critical_issues"     json:"critical_issues"`
	ErrorPatterns      map[string]int  `db:"error_patterns"      json:"error_patterns"`
	AffectedServices   []string        `db:"affected_services"   json:"affected_services"`
	Recommendations    []string        `db:"recommendations"     json:"recommendations"`
	RootCauses         []string        `db:"root_causes"         json:"root_causes"`
	SecurityIssues     []string        `db:"security_issues"     json:"security_issues"`
	PerformanceMetrics map[string]any  `db:"performance_metrics" json:"performance_metrics"`
	IncidentTimeline   []TimelineEvent `db:"incident_timeline"   json:"incident_timeline"`
	CreatedAt          time.Time       `db:"created_at"          json:"created_at"`
}

// Summary renders a short human-readable digest of the result.
func (r *AnalysisResult) Summary() string {
	parts := []string{fmt.Sprintf("Overall severity: %s", strings.ToUpper(string(r.Severity)))}

	if r.ErrorCount > 0 {
		parts = append(parts, fmt.Sprintf("%d errors detected", r.ErrorCount))
	}
	if r.WarningCount > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings found", r.WarningCount))
	}
	if len(r.CriticalIssues) > 0 {
		parts = append(parts, fmt.Sprintf("%d critical issues require attention", len(r.CriticalIssues)))
	}
	if len(r.AffectedServices) > 0 {
		services := strings.Join(headN(r.AffectedServices, 3), ", ")
		if extra := len(r.AffectedServices) - 3; extra > 0 {
			services += fmt.Sprintf(" (+%d more)", extra)
		}
		parts = append(parts, "Affected services: "+services)
	}
	if len(r.Recommendations) > 0 {
		parts = append(parts, fmt.Sprintf("%d recommendations provided", len(r.Recommendations)))
	}

	return strings.Join(parts, ". ") + "."
}

func headN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
