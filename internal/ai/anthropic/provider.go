// Package anthropic implements the AI provider backed by the Anthropic
// Messages API.
package anthropic

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

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	maxTokens      = 4096
)

var (
	ErrUnreachable = errors.New("anthropic unreachable")
	ErrTimeout     = errors.New("anthropic inference timeout")
)

// Provider talks to the /v1/messages endpoint.
type Provider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates an Anthropic provider against the public API.
func New(apiKey, model string) *Provider {
	return &Provider{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
	}
}

func (p *Provider) Name() string { return "anthropic" }

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *Provider) Augment(ctx context.Context, req models.AugmentRequest) (models.Augmentation, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    prompt.System,
		Messages: []message{
			{Role: "user", Content: prompt.Build(req)},
		},
	})
	if err != nil {
		return models.Augmentation{}, fmt.Errorf("encoding messages request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/messages", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.Augmentation{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.Augmentation{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Augmentation{}, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var msgResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return models.Augmentation{}, fmt.Errorf("decoding anthropic response: %w", err)
	}
	if len(msgResp.Content) == 0 {
		return models.Augmentation{}, fmt.Errorf("anthropic response contained no content blocks")
	}

	return prompt.Decode(msgResp.Content[0].Text)
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
