package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job tracks async analysis requests. The API returns a job_id on
// POST /api/v1/analyze; the client polls GET /api/v1/analyze/{job_id} until
// status is completed or failed.
type Job struct {
	ID           uuid.UUID  `db:"id"            json:"id"`
	Status       string     `db:"status"        json:"status"`
	ContentHash  string     `db:"content_hash"  json:"content_hash"`
	ResultID     *uuid.UUID `db:"result_id"     json:"result_id,omitempty"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}
