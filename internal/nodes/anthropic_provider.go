package nodes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/openobserve/swisspipe/pkg/models"
)

// AnthropicProvider implements the LLM provider contract for Anthropic
// using direct HTTP calls against the Messages API. The teacher declares
// models.LLMProviderAnthropic pervasively (pkg/models/llm.go,
// pkg/executor/config/config.go, pkg/builder/node_llm.go,
// pkg/visualization/mermaid.go) but never ships a concrete provider — only
// llm_gemini.go (x-goog-api-key header) and llm_openai_responses.go exist.
// This is authored fresh against that same shape (request struct,
// context-bound http.Client, typed error response, LLMResponse conversion),
// targeting the Anthropic Messages API's x-api-key / anthropic-version
// headers instead.
type AnthropicProvider struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewAnthropicProvider builds an AnthropicProvider.
func NewAnthropicProvider(client *http.Client, apiKey, baseURL string) *AnthropicProvider {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return &AnthropicProvider{client: client, apiKey: apiKey, baseURL: baseURL}
}

const anthropicAPIVersion = "2023-06-01"

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicWireRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicWireResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Execute implements the pkg/executor/builtin.LLMProvider contract shape
// (Execute(ctx, *LLMRequest) (*LLMResponse, error)) against Anthropic.
func (p *AnthropicProvider) Execute(ctx context.Context, req *models.LLMRequest) (*models.LLMResponse, error) {
	wireReq := anthropicWireRequest{
		Model:       req.Model,
		System:      req.Instruction,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	data, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, &models.LLMError{
				Provider: models.LLMProviderAnthropic,
				Code:     fmt.Sprintf("%d", resp.StatusCode),
				Message:  errResp.Error.Message,
				Type:     errResp.Error.Type,
			}
		}
		return nil, &models.LLMError{
			Provider: models.LLMProviderAnthropic,
			Code:     fmt.Sprintf("%d", resp.StatusCode),
			Message:  string(respBody),
		}
	}

	var parsed anthropicWireResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}

	text := ""
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &models.LLMResponse{
		Content:      text,
		ResponseID:   parsed.ID,
		Model:        parsed.Model,
		FinishReason: parsed.StopReason,
		Usage: models.LLMUsage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}
