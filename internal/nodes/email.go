package nodes

import (
	"context"
	"fmt"

	"github.com/openobserve/swisspipe/pkg/models"
)

// EmailHandler assembles and delivers a MIME message via SMTP, per spec
// §4.4. Templates in BodyTemplate/TextBodyTemplate/Subject are already
// resolved against the current event by the time the engine calls Execute.
type EmailHandler struct {
	Base
	Sender MailSender
}

func (h *EmailHandler) Execute(ctx context.Context, config *models.NodeConfig, event map[string]any) (models.Outcome, error) {
	cfg := config.Email
	if cfg == nil {
		return models.Outcome{}, fmt.Errorf("email node: missing config")
	}

	err := h.Sender.Send(cfg.To, cfg.Cc, cfg.Bcc, cfg.Subject, cfg.BodyTemplate, cfg.TextBodyTemplate, cfg.ReplyTo)
	if err != nil {
		if cfg.FailureAction == string(models.FailureActionContinue) {
			return models.ContinueOutcome(event), nil
		}
		return models.FailOutcome(models.ErrorKindNetworkError, err.Error()), nil
	}
	return models.ContinueOutcome(event), nil
}

func (h *EmailHandler) Validate(config *models.NodeConfig) error {
	cfg := config.Email
	if cfg == nil {
		return fmt.Errorf("email node: missing config")
	}
	if err := h.RequireNonEmptySlice("to", cfg.To); err != nil {
		return err
	}
	return h.RequireString("subject", cfg.Subject)
}
