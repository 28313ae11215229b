package models

import (
	"encoding/json"
	"fmt"
)

// NodeKind discriminates the node_type tagged union.
type NodeKind string

const (
	NodeKindTrigger      NodeKind = "Trigger"
	NodeKindTransformer  NodeKind = "Transformer"
	NodeKindCondition    NodeKind = "Condition"
	NodeKindHttpRequest  NodeKind = "HttpRequest"
	NodeKindEmail        NodeKind = "Email"
	NodeKindDelay        NodeKind = "Delay"
	NodeKindHumanInLoop  NodeKind = "HumanInLoop"
	NodeKindAnthropic    NodeKind = "Anthropic"
	NodeKindOpenObserve  NodeKind = "OpenObserve"
)

// NodeConfig is the tagged-union node_type carried by a Node: a Kind
// discriminant plus exactly one populated kind-specific config. It marshals
// to/from the wire's single-key object form, e.g. {"Condition": {"script":
// "..."}}, per §6.
type NodeConfig struct {
	Kind NodeKind

	Trigger     *TriggerConfig
	Transformer *TransformerConfig
	Condition   *ConditionConfig
	HttpRequest *HttpRequestConfig
	Email       *EmailConfig
	Delay       *DelayConfig
	HumanInLoop *HumanInLoopConfig
	Anthropic   *AnthropicConfig
	OpenObserve *OpenObserveConfig
}

// TriggerConfig validates the ingestion HTTP method against an allow-list.
type TriggerConfig struct {
	AllowedMethods []string `json:"allowed_methods"`
	CronSchedule   string   `json:"cron_schedule,omitempty"`
}

// TransformerConfig runs a script in the JS sandbox, or (supplemented
// feature) a jq filter, against the current event.
type TransformerConfig struct {
	Mode   string `json:"mode,omitempty"` // "js" (default) or "jq"
	Script string `json:"script,omitempty"`
	Filter string `json:"filter,omitempty"`
}

// ConditionConfig runs a boolean-returning script against the current event.
type ConditionConfig struct {
	Script string `json:"script"`
}

// RetryConfig is shared by handlers that make outbound calls.
type RetryConfig struct {
	MaxAttempts       int     `json:"max_attempts"`
	InitialDelayMs    int     `json:"initial_delay_ms"`
	MaxDelayMs        int     `json:"max_delay_ms"`
	BackoffMultiplier float64 `json:"backoff_multiplier"`
	// RetryIf is an optional expr-lang/expr boolean expression evaluated
	// against {event, error} before a failed attempt is retried; error
	// exposes only error.message — e.g. `error.message contains "HTTP 5"`
	// to retry only 5xx responses. An empty
	// RetryIf retries on any retryable failure, same as before this field
	// existed.
	RetryIf string `json:"retry_if,omitempty"`
}

// HttpRequestLoopConfig configures HTTP-loop (poll/iterate) semantics.
type HttpRequestLoopConfig struct {
	MaxIterations int `json:"max_iterations"`
	IntervalMs    int `json:"interval_ms"`
}

type HttpRequestConfig struct {
	Method      string                 `json:"method"`
	URL         string                 `json:"url"`
	Headers     map[string]string      `json:"headers,omitempty"`
	TimeoutMs   int                    `json:"timeout_ms,omitempty"`
	RetryConfig *RetryConfig           `json:"retry_config,omitempty"`
	LoopConfig  *HttpRequestLoopConfig `json:"loop_config,omitempty"`
}

type EmailConfig struct {
	To               []string     `json:"to"`
	Cc               []string     `json:"cc,omitempty"`
	Bcc              []string     `json:"bcc,omitempty"`
	Subject          string       `json:"subject"`
	BodyTemplate     string       `json:"body_template"`
	TextBodyTemplate string       `json:"text_body_template,omitempty"`
	ReplyTo          string       `json:"reply_to,omitempty"`
	RetryConfig      *RetryConfig `json:"retry_config,omitempty"`
	FailureAction    string       `json:"failure_action,omitempty"`
}

type DelayConfig struct {
	DurationMs int64 `json:"duration_ms"`
}

type HumanInLoopConfig struct {
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	TimeoutMs     int64          `json:"timeout_ms"`
	TimeoutAction string         `json:"timeout_action"` // "approved" | "denied"
}

type AnthropicConfig struct {
	Model           string       `json:"model"`
	SystemPrompt    string       `json:"system_prompt,omitempty"`
	UserPrompt      string       `json:"user_prompt"`
	MaxTokens       int          `json:"max_tokens,omitempty"`
	Temperature     *float64     `json:"temperature,omitempty"`
	RetryConfig     *RetryConfig `json:"retry_config,omitempty"`
}

type OpenObserveConfig struct {
	URL               string       `json:"url"`
	AuthorizationHdr  string       `json:"authorization_header,omitempty"`
	RetryConfig       *RetryConfig `json:"retry_config,omitempty"`
	FailureAction     string       `json:"failure_action,omitempty"`
}

// MarshalJSON renders the tagged union as a single-key object, e.g.
// {"Condition": {"script": "..."}}.
func (nc NodeConfig) MarshalJSON() ([]byte, error) {
	var payload any
	switch nc.Kind {
	case NodeKindTrigger:
		payload = nc.Trigger
	case NodeKindTransformer:
		payload = nc.Transformer
	case NodeKindCondition:
		payload = nc.Condition
	case NodeKindHttpRequest:
		payload = nc.HttpRequest
	case NodeKindEmail:
		payload = nc.Email
	case NodeKindDelay:
		payload = nc.Delay
	case NodeKindHumanInLoop:
		payload = nc.HumanInLoop
	case NodeKindAnthropic:
		payload = nc.Anthropic
	case NodeKindOpenObserve:
		payload = nc.OpenObserve
	default:
		return nil, fmt.Errorf("%w: empty node kind", ErrInvalidNodeType)
	}
	return json.Marshal(map[string]any{string(nc.Kind): payload})
}

// UnmarshalJSON parses the single-key object form back into the tagged union.
func (nc *NodeConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("%w: node_type must have exactly one key, got %d", ErrInvalidNodeType, len(raw))
	}
	for kind, body := range raw {
		nc.Kind = NodeKind(kind)
		switch nc.Kind {
		case NodeKindTrigger:
			nc.Trigger = &TriggerConfig{}
			return json.Unmarshal(body, nc.Trigger)
		case NodeKindTransformer:
			nc.Transformer = &TransformerConfig{}
			return json.Unmarshal(body, nc.Transformer)
		case NodeKindCondition:
			nc.Condition = &ConditionConfig{}
			return json.Unmarshal(body, nc.Condition)
		case NodeKindHttpRequest:
			nc.HttpRequest = &HttpRequestConfig{}
			return json.Unmarshal(body, nc.HttpRequest)
		case NodeKindEmail:
			nc.Email = &EmailConfig{}
			return json.Unmarshal(body, nc.Email)
		case NodeKindDelay:
			nc.Delay = &DelayConfig{}
			return json.Unmarshal(body, nc.Delay)
		case NodeKindHumanInLoop:
			nc.HumanInLoop = &HumanInLoopConfig{}
			return json.Unmarshal(body, nc.HumanInLoop)
		case NodeKindAnthropic:
			nc.Anthropic = &AnthropicConfig{}
			return json.Unmarshal(body, nc.Anthropic)
		case NodeKindOpenObserve:
			nc.OpenObserve = &OpenObserveConfig{}
			return json.Unmarshal(body, nc.OpenObserve)
		default:
			return fmt.Errorf("%w: %s", ErrInvalidNodeType, kind)
		}
	}
	return nil
}
