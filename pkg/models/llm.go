package models

import "time"

// LLMProvider represents the LLM provider type. SwissPipe ships a single
// concrete provider (Anthropic); the type remains open so a future provider
// can be added without reshaping LLMRequest/LLMResponse.
type LLMProvider string

const (
	LLMProviderAnthropic LLMProvider = "anthropic"
)

// LLMRequest represents a request to an LLM, built from an AnthropicConfig
// node after template resolution.
type LLMRequest struct {
	Provider         LLMProvider            `json:"provider"`
	Model            string                 `json:"model"`
	Instruction      string                 `json:"instruction,omitempty"` // system prompt
	Prompt           string                 `json:"prompt"`                // user prompt
	MaxTokens        int                    `json:"max_tokens,omitempty"`
	Temperature      float64                `json:"temperature,omitempty"`
	TopP             float64                `json:"top_p,omitempty"`
	StopSequences    []string               `json:"stop_sequences,omitempty"`
	Tools            []LLMTool              `json:"tools,omitempty"`
	ProviderConfig   map[string]interface{} `json:"provider_config,omitempty"` // api_key, base_url
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// LLMTool represents a function tool available to the LLM.
type LLMTool struct {
	Type     string          `json:"type"` // "function"
	Function LLMFunctionTool `json:"function"`
}

// LLMFunctionTool represents a function definition.
type LLMFunctionTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// LLMResponse represents a response from an LLM.
type LLMResponse struct {
	Content      string                 `json:"content"`
	ResponseID   string                 `json:"response_id,omitempty"`
	Model        string                 `json:"model"`
	Usage        LLMUsage               `json:"usage"`
	ToolCalls    []LLMToolCall          `json:"tool_calls,omitempty"`
	FinishReason string                 `json:"finish_reason"` // "stop", "length", "tool_calls"
	CreatedAt    time.Time              `json:"created_at"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// LLMUsage represents token usage statistics.
type LLMUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// LLMToolCall represents a function call made by the LLM.
type LLMToolCall struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"` // "function"
	Function LLMFunctionCall `json:"function"`
}

// LLMFunctionCall represents a function call with arguments.
type LLMFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// LLMError represents an error from an LLM API.
type LLMError struct {
	Provider LLMProvider `json:"provider"`
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Type     string      `json:"type,omitempty"`
}

func (e *LLMError) Error() string {
	return "LLM error (" + string(e.Provider) + "): " + e.Message
}
