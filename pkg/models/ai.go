package models

import "context"

// AIProvider is the core interface that all AI integrations must implement.
// Never call specific AI providers directly; always inject this interface.
type AIProvider interface {
	// Augment asks the provider for a deeper interpretation of a bounded log
	// sample. Any error (transport, timeout, malformed response) is treated
	// identically by the pipeline: the deterministic result stands.
	Augment(ctx context.Context, req AugmentRequest) (Augmentation, error)
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}

// AugmentRequest is the input to an augmentation operation.
type AugmentRequest struct {
	// Records is a bounded, timestamp-ordered representative sample.
	Records []LogRecord
	// Deterministic summary statistics for the full record set.
	TotalRecords      int
	ErrorCount        int
	WarningCount      int
	LevelDistribution map[string]int
	// Context is optional caller-supplied free text.
	Context string
}

// Augmentation is the structured payload an AI provider returns. Empty
// fields mean "no opinion" and leave the deterministic value in place.
// Counts never appear here; the deterministic values always stand.
type Augmentation struct {
	Severity           Severity        `json:"severity,omitempty"`
	CriticalIssues     []string        `json:"critical_issues,omitempty"`
	RootCauses         []string        `json:"root_causes,omitempty"`
	SecurityIssues     []string        `json:"security_issues,omitempty"`
	PerformanceMetrics map[string]any  `json:"performance_metrics,omitempty"`
	IncidentTimeline   []TimelineEvent `json:"incident_timeline,omitempty"`
	Recommendations    []string        `json:"recommendations,omitempty"`
}
