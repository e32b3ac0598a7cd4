// Package models contains shared data models used across the logsage codebase.
package models

import (
	"time"
)

// Normalized severity tokens carried on every LogRecord.
const (
	LevelCritical = "CRITICAL"
	LevelFatal    = "FATAL"
	LevelError    = "ERROR"
	LevelWarning  = "WARNING"
	LevelInfo     = "INFO"
	LevelDebug    = "DEBUG"
	LevelUnknown  = "UNKNOWN"
)

// LogRecord is one normalized log line. Records are created once by the
// parser and immutable afterwards; downstream consumers read them only.
type LogRecord struct {
	Timestamp  *time.Time     `json:"timestamp,omitempty"`
	Level      string         `json:"level"`
	Message    string         `json:"message"`
	Source     string         `json:"source,omitempty"`
	RawLine    string         `json:"raw_line"`
	LineNumber int            `json:"line_number"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// IsErrorLevel reports whether the record counts toward the error total.
func (r LogRecord) IsErrorLevel() bool {
	switch r.Level {
	case LevelError, LevelCritical, LevelFatal:
		return true
	}
	return false
}

// IsWarningLevel reports whether the record counts toward the warning total.
func (r LogRecord) IsWarningLevel() bool {
	return r.Level == LevelWarning || r.Level == "WARN"
}
