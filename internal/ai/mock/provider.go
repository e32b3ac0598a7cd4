// Package mock provides a configurable AIProvider for tests.
package mock

import (
	"context"

	"github.com/logsage/logsage/internal/ai"
	"github.com/logsage/logsage/pkg/models"
)

// Provider implements models.AIProvider with injectable behavior.
type Provider struct {
	ProviderName string
	AugmentFunc  func(ctx context.Context, req models.AugmentRequest) (models.Augmentation, error)
	Calls        int
}

// New returns a mock provider that echoes a canned augmentation.
func New() *Provider {
	return &Provider{
		ProviderName: "mock",
		AugmentFunc: func(_ context.Context, _ models.AugmentRequest) (models.Augmentation, error) {
			return models.Augmentation{
				Severity:        models.SeverityMedium,
				RootCauses:      []string{"mock root cause"},
				Recommendations: []string{"mock recommendation"},
			}, nil
		},
	}
}

// NewFailing returns a mock provider whose Augment always fails with err.
func NewFailing(err error) *Provider {
	return &Provider{
		ProviderName: "mock",
		AugmentFunc: func(_ context.Context, _ models.AugmentRequest) (models.Augmentation, error) {
			return models.Augmentation{}, err
		},
	}
}

// NewTimeout returns a mock provider that blocks until the context expires.
func NewTimeout() *Provider {
	return &Provider{
		ProviderName: "mock",
		AugmentFunc: func(ctx context.Context, _ models.AugmentRequest) (models.Augmentation, error) {
			<-ctx.Done()
			return models.Augmentation{}, ai.ErrInferenceTimeout
		},
	}
}

func (p *Provider) Name() string { return p.ProviderName }

func (p *Provider) Augment(ctx context.Context, req models.AugmentRequest) (models.Augmentation, error) {
	p.Calls++
	return p.AugmentFunc(ctx, req)
}

var _ models.AIProvider = (*Provider)(nil)
