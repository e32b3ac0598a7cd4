// Package parser turns raw log text of unknown provenance into normalized
// LogRecord sequences: format auto-detection, per-format structured
// extraction, and per-line fault isolation.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/logsage/logsage/pkg/models"
)

// Sentinel errors. Only these two cross the parser boundary: per-line
// failures are always recovered into fallback records.
var (
	ErrFileNotFound   = errors.New("log file not found")
	ErrInvalidPattern = errors.New("invalid custom pattern")
)

// detectSampleSize is how many non-empty lines feed format detection.
const detectSampleSize = 10

// Options tunes the parsing engine. The zero value uses the defaults.
type Options struct {
	// DetectThreshold is the minimum detection score; see DetectFormat.
	DetectThreshold float64
}

// Parser is the parsing engine. Safe for concurrent use after all custom
// patterns are registered.
type Parser struct {
	opts Options

	customNames    []string
	customPatterns map[string]*regexp.Regexp
}

// New creates a Parser with the given options.
func New(opts Options) *Parser {
	return &Parser{
		opts:           opts,
		customPatterns: make(map[string]*regexp.Regexp),
	}
}

// RegisterPattern adds a named custom regex used by the custom format.
// Invalid expressions fail here, at registration time, never during a parse.
func (p *Parser) RegisterPattern(name, expr string) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidPattern, name, err)
	}
	if _, exists := p.customPatterns[name]; !exists {
		p.customNames = append(p.customNames, name)
	}
	p.customPatterns[name] = re
	slog.Info("registered custom pattern", "name", name)
	return nil
}

// ParseFile reads and parses a log file. Invalid UTF-8 bytes are replaced,
// never fatal; only open/read failures surface as errors. Semantics are
// otherwise identical to ParseText.
func (p *Parser) ParseFile(path string, format models.FormatKind) ([]models.LogRecord, models.FormatKind, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, "", fmt.Errorf("reading log file %s: %w", path, err)
	}

	records, resolved := p.ParseText(strings.ToValidUTF8(string(data), "�"), format)
	slog.Info("parsed log file", "path", path, "records", len(records), "format", resolved)
	return records, resolved, nil
}

// ParseText parses in-memory log text. Blank lines are skipped but still
// counted against line numbering; output order is input order. The resolved
// concrete format is returned alongside the records (never auto).
func (p *Parser) ParseText(text string, format models.FormatKind) ([]models.LogRecord, models.FormatKind) {
	lines := strings.Split(text, "\n")

	if format == models.FormatAuto || format == "" {
		format = DetectFormat(sampleLines(lines, detectSampleSize), p.opts.DetectThreshold)
		slog.Debug("auto-detected log format", "format", format)
	}

	records := make([]models.LogRecord, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, p.parseLine(line, format, i+1))
	}
	return records, format
}

// parseLine dispatches to the format's line parser, converting any panic
// into a fallback UNKNOWN record so a malformed line never aborts the run.
func (p *Parser) parseLine(line string, format models.FormatKind, lineNumber int) (rec models.LogRecord) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("line parse failed", "line", lineNumber, "error", r)
			rec = models.LogRecord{
				Level:      models.LevelUnknown,
				Message:    strings.TrimSpace(line),
				RawLine:    line,
				LineNumber: lineNumber,
			}
		}
	}()

	switch format {
	case models.FormatJSON:
		return parseJSONLine(line, lineNumber)
	case models.FormatSyslog:
		return parseSyslogLine(line, lineNumber)
	case models.FormatNginx:
		return parseNginxLine(line, lineNumber)
	case models.FormatApache:
		return parseApacheLine(line, lineNumber)
	case models.FormatDocker:
		return parseDockerLine(line, lineNumber)
	case models.FormatKubernetes:
		return parseKubernetesLine(line, lineNumber)
	case models.FormatCustom:
		return p.parseCustomLine(line, lineNumber)
	default:
		return parseGenericLine(line, lineNumber)
	}
}

// parseCustomLine tries registered patterns in registration order; named
// capture groups become record fields. Falls back to the generic parser.
func (p *Parser) parseCustomLine(line string, lineNumber int) models.LogRecord {
	for _, name := range p.customNames {
		groups := matchGroups(p.customPatterns[name], line)
		if groups == nil {
			continue
		}

		rec := parseGenericLine(line, lineNumber)
		rec.Fields = toFields(groups)
		rec.Fields["pattern"] = name
		if msg, ok := groups["message"]; ok && msg != "" {
			rec.Message = msg
			rec.Level = inferLevel(msg)
		}
		if src, ok := groups["source"]; ok {
			rec.Source = src
		}
		if ts, ok := groups["timestamp"]; ok {
			if parsed := parseTimestamp(ts); parsed != nil {
				rec.Timestamp = parsed
			}
		}
		return rec
	}
	return parseGenericLine(line, lineNumber)
}

// sampleLines returns the first n non-empty lines for detection.
func sampleLines(lines []string, n int) []string {
	sample := make([]string, 0, n)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sample = append(sample, line)
		if len(sample) == n {
			break
		}
	}
	return sample
}

// TimeRange bounds the timestamps observed in a record set.
type TimeRange struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// Stats summarizes a parsed record set.
type Stats struct {
	TotalRecords            int            `json:"total_records"`
	LevelDistribution       map[string]int `json:"level_distribution"`
	UniqueSources           int            `json:"unique_sources"`
	TimestampsParsedPercent float64        `json:"timestamps_parsed_percent"`
	TimeRange               *TimeRange     `json:"time_range,omitempty"`
}

// ComputeStats derives summary statistics from parsed records.
func ComputeStats(records []models.LogRecord) Stats {
	stats := Stats{
		TotalRecords:      len(records),
		LevelDistribution: make(map[string]int),
	}
	if len(records) == 0 {
		return stats
	}

	sources := make(map[string]struct{})
	var first, last *time.Time
	withTimestamp := 0

	for _, rec := range records {
		stats.LevelDistribution[rec.Level]++
		if rec.Source != "" {
			sources[rec.Source] = struct{}{}
		}
		if rec.Timestamp == nil {
			continue
		}
		withTimestamp++
		if first == nil || rec.Timestamp.Before(*first) {
			first = rec.Timestamp
		}
		if last == nil || rec.Timestamp.After(*last) {
			last = rec.Timestamp
		}
	}

	stats.UniqueSources = len(sources)
	stats.TimestampsParsedPercent = float64(withTimestamp) / float64(len(records)) * 100
	if first != nil {
		stats.TimeRange = &TimeRange{
			Start:           *first,
			End:             *last,
			DurationMinutes: last.Sub(*first).Minutes(),
		}
	}
	return stats
}
