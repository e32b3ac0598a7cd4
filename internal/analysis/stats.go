// Package analysis computes deterministic diagnostics over parsed log
// records: severity classification, pattern tallies, anomaly detection and
// representative sampling. Everything here is a pure function over its
// inputs; results are reproducible regardless of AI availability.
package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/logsage/logsage/pkg/models"
)

// namedPattern pairs a pattern name with its compiled regex. Tables of these
// are static data loaded at init; adding a pattern is a one-line change.
type namedPattern struct {
	name string
	re   *regexp.Regexp
}

// Error patterns checked against every error- and warning-level message.
var errorPatterns = []namedPattern{
	{"connection_refused", regexp.MustCompile(`(?i)connection refused|connection reset|connection timed out`)},
	{"memory_error", regexp.MustCompile(`(?i)out of memory|memory allocation|segmentation fault|oom`)},
	{"disk_error", regexp.MustCompile(`(?i)disk full|no space left|filesystem full|disk error`)},
	{"network_error", regexp.MustCompile(`(?i)network unreachable|host unreachable|dns resolution`)},
	{"authentication_error", regexp.MustCompile(`(?i)authentication failed|login failed|access denied`)},
	{"database_error", regexp.MustCompile(`(?i)database connection|sql error|deadlock|timeout`)},
	{"service_down", regexp.MustCompile(`(?i)service unavailable|service down|service not found`)},
	{"performance_issue", regexp.MustCompile(`(?i)timeout|slow query|high latency|response time`)},
}

// Warning patterns; tallied under a "warning_" prefixed name.
var warningPatterns = []namedPattern{
	{"deprecated", regexp.MustCompile(`(?i)deprecated|legacy|obsolete`)},
	{"resource_warning", regexp.MustCompile(`(?i)high cpu|high memory|disk usage|load average`)},
	{"configuration_warning", regexp.MustCompile(`(?i)configuration warning|config mismatch|invalid config`)},
	{"security_warning", regexp.MustCompile(`(?i)security warning|suspicious activity|failed login`)},
}

// Summary is the deterministic output of Analyze.
type Summary struct {
	Severity          models.Severity
	ErrorCount        int
	WarningCount      int
	LevelDistribution map[string]int
	ErrorPatterns     map[string]int
	AffectedServices  []string
	Recommendations   []string
}

// Analyze computes counts, overall severity, pattern tallies, affected
// services and recommendations for a record set. Pure and deterministic:
// the same records always produce the same summary.
func Analyze(records []models.LogRecord) Summary {
	levels := make(map[string]int)
	for _, rec := range records {
		levels[rec.Level]++
	}

	errorCount := 0
	warningCount := 0
	for _, rec := range records {
		if rec.IsErrorLevel() {
			errorCount++
		}
		if rec.IsWarningLevel() {
			warningCount++
		}
	}

	patterns := findPatterns(records)
	services := affectedServices(records)

	return Summary{
		Severity:          classifySeverity(levels, errorCount, warningCount),
		ErrorCount:        errorCount,
		WarningCount:      warningCount,
		LevelDistribution: levels,
		ErrorPatterns:     patterns,
		AffectedServices:  services,
		Recommendations:   recommend(errorCount, warningCount, patterns, services),
	}
}

// classifySeverity walks the severity ladder top-down; first match wins.
func classifySeverity(levels map[string]int, errorCount, warningCount int) models.Severity {
	switch {
	case levels[models.LevelCritical] > 0 || levels[models.LevelFatal] > 0:
		return models.SeverityCritical
	case errorCount > 10:
		return models.SeverityError
	case errorCount > 0:
		return models.SeverityMedium
	case warningCount > 5:
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}

// findPatterns tallies named pattern hits across error- and warning-level
// messages. Always returns a non-nil map.
func findPatterns(records []models.LogRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		if !rec.IsErrorLevel() && !rec.IsWarningLevel() {
			continue
		}
		for _, p := range errorPatterns {
			if p.re.MatchString(rec.Message) {
				counts[p.name]++
			}
		}
		for _, p := range warningPatterns {
			if p.re.MatchString(rec.Message) {
				counts["warning_"+p.name]++
			}
		}
	}
	return counts
}

// affectedServices returns the deduplicated, sorted sources of error-level
// records. Records without a source are excluded.
func affectedServices(records []models.LogRecord) []string {
	set := make(map[string]struct{})
	for _, rec := range records {
		if rec.IsErrorLevel() && rec.Source != "" {
			set[rec.Source] = struct{}{}
		}
	}
	services := make([]string, 0, len(set))
	for s := range set {
		services = append(services, s)
	}
	sort.Strings(services)
	return services
}

// recommend evaluates a fixed rule list in order. Never returns an empty
// slice: with nothing to report it emits a single healthy-logs message.
func recommend(errorCount, warningCount int, patterns map[string]int, services []string) []string {
	var recs []string

	if errorCount > 0 {
		recs = append(recs, fmt.Sprintf("Investigate %d error(s) found in logs", errorCount))
	}
	if warningCount > 5 {
		recs = append(recs, fmt.Sprintf("Review %d warning(s) that may indicate issues", warningCount))
	}

	if patterns["connection_refused"] > 0 {
		recs = append(recs, "Check network connectivity and service availability")
	}
	if patterns["memory_error"] > 0 {
		recs = append(recs, "Monitor memory usage and consider increasing allocation")
	}
	if patterns["disk_error"] > 0 {
		recs = append(recs, "Check disk space and clean up if necessary")
	}
	if patterns["authentication_error"] > 0 {
		recs = append(recs, "Review authentication configuration and credentials")
	}

	if len(services) > 0 {
		top := services
		if len(top) > 3 {
			top = top[:3]
		}
		recs = append(recs, "Focus attention on services: "+strings.Join(top, ", "))
	}

	if len(recs) == 0 {
		recs = append(recs, "Logs appear healthy with no critical issues detected")
	}
	return recs
}
