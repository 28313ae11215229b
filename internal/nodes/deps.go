package nodes

import (
	"net/http"

	"github.com/openobserve/swisspipe/internal/jssandbox"
)

// MailSender is the subset of a go-mail client an EmailHandler needs. It is
// an interface so tests can substitute a capturing fake instead of talking
// to a real SMTP server.
type MailSender interface {
	Send(to, cc, bcc []string, subject, htmlBody, textBody, replyTo string) error
}

// Deps bundles every collaborator the built-in handlers need. Passed to
// NewDefaultRegistry so main.go wires concrete implementations once.
type Deps struct {
	Sandbox         *jssandbox.Sandbox
	HTTPClient      *http.Client
	MailSender      MailSender
	AnthropicAPIKey string
	AnthropicURL    string
}
