package mailer

import (
	"fmt"

	"github.com/wneessen/go-mail"
)

// Sender delivers HTML email. Services depend on this interface so tests can
// substitute a recording fake.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// Config holds SMTP connection details.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender is a go-mail backed implementation of Sender.
type SMTPSender struct {
	cfg Config
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{
		cfg: cfg,
	}
}

// Send delivers a single HTML message. A fresh client is dialed per send;
// the callers that need non-blocking delivery dispatch Send on a goroutine.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address %s: %w", s.cfg.From, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address %s: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return client.DialAndSend(msg)
}
