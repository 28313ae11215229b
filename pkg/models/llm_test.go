package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMRequest_JSONRoundTrip(t *testing.T) {
	req := LLMRequest{
		Provider:    LLMProviderAnthropic,
		Model:       "claude-3-5-sonnet-20241022",
		Instruction: "you are a helpful assistant",
		Prompt:      "summarize: {{ event.body }}",
		MaxTokens:   1024,
		Temperature: 0.7,
		Metadata:    map[string]interface{}{"node_id": "n1"},
	}

	b, err := json.Marshal(req)
	require.NoError(t, err)

	var got LLMRequest
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, req, got)
}

func TestLLMResponse_UsageTotals(t *testing.T) {
	resp := LLMResponse{
		Content: "ok",
		Model:   "claude-3-5-sonnet-20241022",
		Usage: LLMUsage{
			PromptTokens:     10,
			CompletionTokens: 5,
			TotalTokens:      15,
		},
		FinishReason: "stop",
	}

	assert.Equal(t, resp.Usage.PromptTokens+resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
}

func TestLLMError_Error(t *testing.T) {
	err := &LLMError{
		Provider: LLMProviderAnthropic,
		Code:     "overloaded_error",
		Message:  "the service is overloaded",
	}

	assert.Contains(t, err.Error(), "anthropic")
	assert.Contains(t, err.Error(), "overloaded")
}

func TestLLMTool_JSONShape(t *testing.T) {
	tool := LLMTool{
		Type: "function",
		Function: LLMFunctionTool{
			Name:        "lookup",
			Description: "look something up",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}

	b, err := json.Marshal(tool)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name":"lookup"`)
}
