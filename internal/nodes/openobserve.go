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

// OpenObserveHandler POSTs the current event to an OpenObserve ingestion
// endpoint, grounded on pkg/executor/builtin/http.go's same POST-and-parse
// shape. failure_action defaults to Continue, per spec §4.4, since a
// telemetry sink being unreachable should not normally fail the workflow.
type OpenObserveHandler struct {
	Base
	Client *http.Client
}

func (h *OpenObserveHandler) Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error) {
	cfg := config.OpenObserve
	if cfg == nil {
		return models.Outcome{}, fmt.Errorf("openobserve node: missing config")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return models.FailOutcome(models.ErrorKindValidation, err.Error()), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(data))
	if err != nil {
		return models.FailOutcome(models.ErrorKindValidation, err.Error()), nil
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.AuthorizationHdr != "" {
		req.Header.Set("Authorization", cfg.AuthorizationHdr)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return h.onFailure(cfg, event, models.ErrorKindNetworkError, err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return h.onFailure(cfg, event, models.ErrorKindNetworkError, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
	return models.ContinueOutcome(event), nil
}

func (h *OpenObserveHandler) onFailure(cfg *models.OpenObserveConfig, event map[string]any, kind models.ErrorKind, msg string) (models.Outcome, error) {
	action := cfg.FailureAction
	if action == "" {
		action = string(models.FailureActionContinue)
	}
	if action == string(models.FailureActionContinue) {
		return models.ContinueOutcome(event), nil
	}
	return models.FailOutcome(kind, msg), nil
}

func (h *OpenObserveHandler) Validate(config *models.NodeConfig) error {
	cfg := config.OpenObserve
	if cfg == nil {
		return fmt.Errorf("openobserve node: missing config")
	}
	return h.RequireString("url", cfg.URL)
}
