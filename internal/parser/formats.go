package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/logsage/logsage/pkg/models"
)

// Per-format line parsers. Each is a pure function (line, lineNumber) →
// LogRecord. On structural mismatch they delegate to the generic parser so
// the caller always gets a record.

func parseJSONLine(line string, lineNumber int) models.LogRecord {
	trimmed := strings.TrimSpace(line)

	var data map[string]any
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		return parseGenericLine(line, lineNumber)
	}

	var ts *time.Time
	for _, field := range jsonTimestampFields {
		if v, ok := data[field]; ok {
			ts = parseTimestamp(stringify(v))
			break
		}
	}

	message := ""
	for _, field := range jsonMessageFields {
		if v, ok := data[field]; ok {
			message = stringify(v)
			break
		}
	}
	if message == "" {
		message = line
	}

	level := models.LevelInfo
	for _, field := range jsonLevelFields {
		if v, ok := data[field]; ok {
			level = strings.ToUpper(stringify(v))
			break
		}
	}

	source := ""
	for _, field := range jsonSourceFields {
		if v, ok := data[field]; ok && v != nil {
			source = stringify(v)
			break
		}
	}

	return models.LogRecord{
		Timestamp:  ts,
		Level:      level,
		Message:    message,
		Source:     source,
		RawLine:    line,
		LineNumber: lineNumber,
		Fields:     data,
	}
}

func parseSyslogLine(line string, lineNumber int) models.LogRecord {
	groups := matchGroups(reSyslog, line)
	if groups == nil {
		return parseGenericLine(line, lineNumber)
	}

	message := groups["message"]

	return models.LogRecord{
		Timestamp:  parseTimestamp(groups["timestamp"]),
		Level:      inferLevel(message),
		Message:    message,
		Source:     groups["process"],
		RawLine:    line,
		LineNumber: lineNumber,
		Fields:     toFields(groups),
	}
}

func parseNginxLine(line string, lineNumber int) models.LogRecord {
	return parseAccessLine(reNginxAccess, "nginx", line, lineNumber)
}

func parseApacheLine(line string, lineNumber int) models.LogRecord {
	return parseAccessLine(reApacheAccess, "apache", line, lineNumber)
}

// parseAccessLine handles the shared shape of nginx and apache access logs:
// bracketed local time, quoted request, numeric status. The level derives
// from the status code, not from message keywords.
func parseAccessLine(re *regexp.Regexp, source, line string, lineNumber int) models.LogRecord {
	groups := matchGroups(re, line)
	if groups == nil {
		return parseGenericLine(line, lineNumber)
	}

	ts := parseTimestamp(strings.Trim(groups["time_local"], "[]"))

	status, _ := strconv.Atoi(groups["status"])
	level := models.LevelInfo
	switch {
	case status >= 500:
		level = models.LevelError
	case status >= 400:
		level = models.LevelWarning
	}

	return models.LogRecord{
		Timestamp:  ts,
		Level:      level,
		Message:    fmt.Sprintf("%s -> %d", groups["request"], status),
		Source:     source,
		RawLine:    line,
		LineNumber: lineNumber,
		Fields:     toFields(groups),
	}
}

func parseDockerLine(line string, lineNumber int) models.LogRecord {
	groups := matchGroups(reDocker, line)
	if groups == nil {
		return parseGenericLine(line, lineNumber)
	}

	level := models.LevelInfo
	if groups["stream"] == "stderr" {
		level = models.LevelError
	}

	return models.LogRecord{
		Timestamp:  parseTimestamp(groups["timestamp"]),
		Level:      level,
		Message:    groups["message"],
		Source:     "docker:" + groups["tag"],
		RawLine:    line,
		LineNumber: lineNumber,
		Fields:     toFields(groups),
	}
}

func parseKubernetesLine(line string, lineNumber int) models.LogRecord {
	groups := matchGroups(reKubernetes, line)
	if groups == nil {
		return parseGenericLine(line, lineNumber)
	}

	return models.LogRecord{
		Timestamp:  parseTimestamp(groups["timestamp"]),
		Level:      strings.ToUpper(groups["level"]),
		Message:    groups["message"],
		Source:     "k8s:" + groups["component"],
		RawLine:    line,
		LineNumber: lineNumber,
		Fields:     toFields(groups),
	}
}

// parseGenericLine handles lines no structural pattern claims: sniff a
// timestamp anywhere in the line and infer the level from keywords.
func parseGenericLine(line string, lineNumber int) models.LogRecord {
	return models.LogRecord{
		Timestamp:  extractTimestamp(line),
		Level:      inferLevel(line),
		Message:    line,
		RawLine:    line,
		LineNumber: lineNumber,
	}
}

// extractTimestamp searches the line against the known timestamp shapes and
// parses the first hit. Returns nil when nothing parses.
func extractTimestamp(line string) *time.Time {
	for _, re := range reTimestamps {
		if loc := re.FindString(line); loc != "" {
			if ts := parseTimestamp(loc); ts != nil {
				return ts
			}
		}
	}
	return nil
}

// parseTimestamp tries the fixed layout list in order; first success wins.
// An unparseable value is never fatal, it simply yields no timestamp.
func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts
		}
	}
	return nil
}

// inferLevel scans the message for severity keywords, most severe first. A
// second pass flags bare crash/deprecation mentions before defaulting to INFO.
func inferLevel(message string) string {
	upper := strings.ToUpper(message)

	for _, entry := range levelKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(upper, kw) {
				return entry.level
			}
		}
	}

	for _, kw := range []string{"ERROR", "FAIL", "EXCEPTION", "CRASH"} {
		if strings.Contains(upper, kw) {
			return models.LevelError
		}
	}
	for _, kw := range []string{"WARN", "ALERT", "DEPRECATED"} {
		if strings.Contains(upper, kw) {
			return models.LevelWarning
		}
	}

	return models.LevelInfo
}

// matchGroups returns the named capture groups of re applied to line, or nil
// when the line does not match.
func matchGroups(re *regexp.Regexp, line string) map[string]string {
	match := re.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}

func toFields(groups map[string]string) map[string]any {
	fields := make(map[string]any, len(groups))
	for k, v := range groups {
		fields[k] = v
	}
	return fields
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
