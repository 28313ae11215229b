package nodes

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/openobserve/swisspipe/pkg/models"
)

// HTTPRequestHandler issues an outbound HTTP call, grounded on
// pkg/executor/builtin/http.go nearly 1:1 (method/url/headers/body build,
// binary-content-type detection, base64 fallback). The handler makes a
// single attempt. The engine retries a failed node only when the node's
// failure action is Retry; HttpRequestConfig has no failure_action field,
// so a failed request stops the execution and RetryConfig is not consulted.
type HTTPRequestHandler struct {
	Base
	Client *http.Client
}

var binaryContentPrefixes = []string{
	"image/", "audio/", "video/",
	"application/octet-stream", "application/pdf", "application/zip", "application/gzip",
}

func isBinaryContentType(contentType string) bool {
	for _, prefix := range binaryContentPrefixes {
		if len(contentType) >= len(prefix) && contentType[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

func (h *HTTPRequestHandler) Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error) {
	cfg := config.HttpRequest
	if cfg == nil {
		return models.Outcome{}, fmt.Errorf("http_request node: missing config")
	}

	var body io.Reader
	if raw, ok := event["body"]; ok && raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return models.FailOutcome(models.ErrorKindValidation, err.Error()), nil
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, body)
	if err != nil {
		return models.FailOutcome(models.ErrorKindValidation, err.Error()), nil
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return models.FailOutcome(models.ErrorKindNetworkError, err.Error()), nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.FailOutcome(models.ErrorKindNetworkError, err.Error()), nil
	}

	contentType := resp.Header.Get("Content-Type")
	out := map[string]any{
		"status":       resp.StatusCode,
		"headers":      resp.Header,
		"content_type": contentType,
	}
	if isBinaryContentType(contentType) {
		out["body"] = nil
		out["body_base64"] = base64.StdEncoding.EncodeToString(respBody)
		out["size"] = len(respBody)
	} else {
		var parsed any
		if len(respBody) > 0 {
			if err := json.Unmarshal(respBody, &parsed); err != nil {
				parsed = string(respBody)
			}
		}
		out["body"] = parsed
	}

	if resp.StatusCode >= 500 {
		return models.FailOutcome(models.ErrorKindNetworkError, fmt.Sprintf("HTTP %d", resp.StatusCode)), nil
	}
	if resp.StatusCode >= 400 {
		return models.FailOutcome(models.ErrorKindValidation, fmt.Sprintf("HTTP %d", resp.StatusCode)), nil
	}
	return models.ContinueOutcome(out), nil
}

var validHTTPMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

func (h *HTTPRequestHandler) Validate(config *models.NodeConfig) error {
	cfg := config.HttpRequest
	if cfg == nil {
		return fmt.Errorf("http_request node: missing config")
	}
	if !validHTTPMethods[cfg.Method] {
		return fmt.Errorf("invalid HTTP method: %s", cfg.Method)
	}
	return h.RequireString("url", cfg.URL)
}
