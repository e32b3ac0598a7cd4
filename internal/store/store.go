// Package store persists jobs, analysis results and API keys. Log content
// itself is never stored, only derived analysis keyed by content hash.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/logsage/logsage/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error

	CreateAnalysisResult(ctx context.Context, result *models.AnalysisResult) error
	GetAnalysisResult(ctx context.Context, id uuid.UUID) (*models.AnalysisResult, error)
	GetAnalysisResultByJobID(ctx context.Context, jobID uuid.UUID) (*models.AnalysisResult, error)
	GetLatestAnalysisResultByHash(ctx context.Context, contentHash string) (*models.AnalysisResult, error)
}

type jobUpdateParams struct {
	ErrorMessage *string
	ResultID     *uuid.UUID
}

type JobUpdateOption func(*jobUpdateParams)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.ErrorMessage = &msg
	}
}

func WithResultID(id uuid.UUID) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.ResultID = &id
	}
}
