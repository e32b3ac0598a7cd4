// Package openai implements the AI provider backed by the OpenAI chat
// completions API.
package openai

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

const defaultBaseURL = "https://api.openai.com"

var (
	ErrUnreachable = errors.New("openai unreachable")
	ErrTimeout     = errors.New("openai inference timeout")
)

// Provider talks to the /v1/chat/completions endpoint.
type Provider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates an OpenAI provider against the public API.
func New(apiKey, model string) *Provider {
	return &Provider{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
	}
}

func (p *Provider) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *Provider) Augment(ctx context.Context, req models.AugmentRequest) (models.Augmentation, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.Build(req)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return models.Augmentation{}, fmt.Errorf("encoding chat request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/chat/completions", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.Augmentation{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.Augmentation{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Augmentation{}, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return models.Augmentation{}, fmt.Errorf("decoding openai response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return models.Augmentation{}, fmt.Errorf("openai response contained no choices")
	}

	return prompt.Decode(chatResp.Choices[0].Message.Content)
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
