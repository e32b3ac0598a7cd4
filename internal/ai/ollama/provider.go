// Package ollama implements the AI provider backed by a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/logsage/logsage/internal/ai/prompt"
	"github.com/logsage/logsage/pkg/models"
)

var (
	ErrUnreachable = errors.New("ollama unreachable")
	ErrTimeout     = errors.New("ollama inference timeout")
)

// Provider talks to Ollama's /api/generate endpoint.
type Provider struct {
	baseURL string
	model   string
	client  *http.Client
}

// New creates an Ollama provider. Request deadlines come from the caller's
// context, so the underlying client has no timeout of its own.
func New(baseURL, model string) *Provider {
	return &Provider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

func (p *Provider) Name() string { return "ollama" }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (p *Provider) Augment(ctx context.Context, req models.AugmentRequest) (models.Augmentation, error) {
	body, err := json.Marshal(generateRequest{
		Model:  p.model,
		Prompt: prompt.Build(req),
		System: prompt.System,
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return models.Augmentation{}, fmt.Errorf("encoding generate request: %w", err)
	}

	u := fmt.Sprintf("%s/api/generate", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.Augmentation{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.Augmentation{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Augmentation{}, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return models.Augmentation{}, fmt.Errorf("decoding ollama response: %w", err)
	}

	return prompt.Decode(genResp.Response)
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

var _ models.AIProvider = (*Provider)(nil)
