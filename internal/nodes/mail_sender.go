package nodes

import (
	"github.com/wneessen/go-mail"

	"github.com/openobserve/swisspipe/internal/config"
)

// SMTPMailSender is the production MailSender, grounded on the absence of
// any mail library in the teacher — sourced from the wider example pack
// (github.com/wneessen/go-mail) for MIME assembly and SMTP delivery, per
// spec §4.4.
type SMTPMailSender struct {
	cfg config.SMTPConfig
}

// NewSMTPMailSender builds a MailSender from SMTP configuration.
func NewSMTPMailSender(cfg config.SMTPConfig) *SMTPMailSender {
	return &SMTPMailSender{cfg: cfg}
}

func (s *SMTPMailSender) Send(to, cc, bcc []string, subject, htmlBody, textBody, replyTo string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to...); err != nil {
		return err
	}
	if len(cc) > 0 {
		if err := msg.Cc(cc...); err != nil {
			return err
		}
	}
	if len(bcc) > 0 {
		if err := msg.Bcc(bcc...); err != nil {
			return err
		}
	}
	if replyTo != "" {
		if err := msg.ReplyTo(replyTo); err != nil {
			return err
		}
	}
	msg.Subject(subject)
	if textBody != "" {
		msg.SetBodyString(mail.TypeTextPlain, textBody)
		if htmlBody != "" {
			msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)
		}
	} else {
		msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}
	return client.DialAndSend(msg)
}
