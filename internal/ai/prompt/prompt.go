// Package prompt builds augmentation prompts and decodes provider output.
// It is shared by every AI provider implementation.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/logsage/logsage/pkg/models"
)

// System is the system prompt sent with every augmentation request.
const System = `You are an expert DevOps engineer and SRE with deep experience in log analysis.
Analyze the provided logs systematically and identify:
- Critical issues that need immediate attention
- Root causes of errors and failures
- Security concerns or suspicious activities
- Performance bottlenecks and optimization opportunities
- Actionable recommendations prioritized by impact
Respond with a single JSON object with the keys: severity, critical_issues,
root_causes, security_issues, performance_metrics, incident_timeline,
recommendations. Severity must be one of debug, info, warning, medium,
error, critical.`

const maxMessageBytes = 500

// Build renders an augmentation request into the user prompt.
func Build(req models.AugmentRequest) string {
	var b strings.Builder

	b.WriteString("Analyze these system logs for errors, patterns, and issues:\n\n")
	for _, rec := range req.Records {
		ts := "UNKNOWN"
		if rec.Timestamp != nil {
			ts = rec.Timestamp.Format("2006-01-02 15:04:05")
		}
		source := ""
		if rec.Source != "" {
			source = " [" + rec.Source + "]"
		}
		fmt.Fprintf(&b, "%s %s%s %s\n", ts, rec.Level, source, truncate(rec.Message, maxMessageBytes))
	}

	fmt.Fprintf(&b, "\nBasic Statistics:\n- Total entries: %d\n- Error count: %d\n- Warning count: %d\n",
		req.TotalRecords, req.ErrorCount, req.WarningCount)
	if len(req.LevelDistribution) > 0 {
		dist, _ := json.Marshal(req.LevelDistribution)
		fmt.Fprintf(&b, "- Level distribution: %s\n", dist)
	}

	if req.Context != "" {
		fmt.Fprintf(&b, "\nAdditional context: %s\n", req.Context)
	}

	b.WriteString(`
Provide comprehensive analysis including:
1. Critical issues requiring immediate attention
2. Root cause analysis for errors
3. Security concerns or anomalies
4. Performance-related issues
5. Actionable recommendations for resolution
6. Timeline of significant events`)

	return b.String()
}

// Decode parses a provider's text output into an Augmentation. Models often
// wrap JSON in a markdown fence; that wrapping is stripped first.
func Decode(raw string) (models.Augmentation, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	}

	var aug models.Augmentation
	if err := json.Unmarshal([]byte(raw), &aug); err != nil {
		return models.Augmentation{}, fmt.Errorf("decoding augmentation: %w", err)
	}
	if aug.Severity != "" && !aug.Severity.Valid() {
		return models.Augmentation{}, fmt.Errorf("invalid severity %q in augmentation", aug.Severity)
	}
	return aug, nil
}

// truncate shortens s to maxBytes without splitting UTF-8 runes.
func truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
