package nodes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openobserve/swisspipe/pkg/models"
)

// AnthropicHandler adapts an AnthropicConfig node into an LLMRequest and
// dispatches it through an AnthropicProvider, per spec §4.4.
type AnthropicHandler struct {
	Base
	Client  *http.Client
	APIKey  string
	BaseURL string
}

func (h *AnthropicHandler) Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error) {
	cfg := config.Anthropic
	if cfg == nil {
		return models.Outcome{}, fmt.Errorf("anthropic node: missing config")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	temperature := 1.0
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	req := &models.LLMRequest{
		Provider:    models.LLMProviderAnthropic,
		Model:       cfg.Model,
		Instruction: cfg.SystemPrompt,
		Prompt:      cfg.UserPrompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	provider := NewAnthropicProvider(h.Client, h.APIKey, h.BaseURL)
	resp, err := provider.Execute(ctx, req)
	if err != nil {
		if llmErr, ok := err.(*models.LLMError); ok {
			return models.FailOutcome(classifyLLMError(llmErr), llmErr.Error()), nil
		}
		return models.FailOutcome(models.ErrorKindNetworkError, err.Error()), nil
	}

	out := map[string]any{
		"content":       resp.Content,
		"response_id":   resp.ResponseID,
		"model":         resp.Model,
		"finish_reason": resp.FinishReason,
		"usage": map[string]any{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}
	return models.ContinueOutcome(out), nil
}

func classifyLLMError(e *models.LLMError) models.ErrorKind {
	switch e.Code {
	case "429", "500", "502", "503", "504":
		return models.ErrorKindNetworkError
	default:
		return models.ErrorKindValidation
	}
}

func (h *AnthropicHandler) Validate(config *models.NodeConfig) error {
	cfg := config.Anthropic
	if cfg == nil {
		return fmt.Errorf("anthropic node: missing config")
	}
	if err := h.RequireString("model", cfg.Model); err != nil {
		return err
	}
	return h.RequireString("user_prompt", cfg.UserPrompt)
}
