// Package vllm implements the AI provider backed by a vLLM server exposing
// the OpenAI-compatible chat completions API.
package vllm

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
	ErrUnreachable = errors.New("vllm unreachable")
	ErrTimeout     = errors.New("vllm inference timeout")
)

// Provider talks to a vLLM server's /v1/chat/completions endpoint.
type Provider struct {
	baseURL string
	model   string
	client  *http.Client
}

// New creates a vLLM provider. The model may be empty, in which case the
// server's default deployed model is used.
func New(baseURL, model string) *Provider {
	return &Provider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

func (p *Provider) Name() string { return "vllm" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []chatMessage `json:"messages"`
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
		return models.Augmentation{}, fmt.Errorf("decoding vllm response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return models.Augmentation{}, fmt.Errorf("vllm response contained no choices")
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
