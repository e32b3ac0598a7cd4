package models

import "time"

// Anomaly kinds produced by the statistical analyzer.
const (
	AnomalyHighActivity = "high_activity"
	AnomalyErrorBurst   = "error_burst"
)

// Anomaly is a tagged variant: high_activity anomalies populate Timestamp,
// Count, Average and Deviation; error_burst anomalies populate StartTime,
// EndTime, ErrorCount and TimeSpanSeconds.
type Anomaly struct {
	Type string `json:"type"`

	Timestamp *time.Time `json:"timestamp,omitempty"`
	Count     int        `json:"count,omitempty"`
	Average   float64    `json:"average,omitempty"`
	Deviation float64    `json:"deviation,omitempty"`

	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	ErrorCount      int        `json:"error_count,omitempty"`
	TimeSpanSeconds float64    `json:"time_span_seconds,omitempty"`
}
