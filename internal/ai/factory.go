package ai

import (
	"fmt"

	"github.com/logsage/logsage/internal/ai/anthropic"
	"github.com/logsage/logsage/internal/ai/ollama"
	"github.com/logsage/logsage/internal/ai/openai"
	"github.com/logsage/logsage/internal/ai/vllm"
	"github.com/logsage/logsage/internal/config"
	"github.com/logsage/logsage/pkg/models"
)

// NewProvider builds the AI provider selected by configuration.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.New(cfg.Ollama.BaseURL, cfg.Ollama.Model), nil
	case "vllm":
		return vllm.New(cfg.VLLM.BaseURL, cfg.VLLM.Model), nil
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nil
	case "anthropic":
		return anthropic.New(cfg.Anthropic.APIKey, cfg.Anthropic.Model), nil
	default:
		return nil, fmt.Errorf("unknown ai provider: %q", cfg.Provider)
	}
}
