// Package mailer delivers transactional email. The lifecycle service only
// sees the Sender interface; SMTP is one implementation.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/triplog/triplog/internal/config"
)

// Message is one email to deliver. Template names a body template registered
// in this package; Variables feed it.
type Message struct {
	To        string
	Subject   string
	Template  string
	Variables map[string]any
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers messages through a plain SMTP relay.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *logrus.Logger
}

// NewSMTPSender builds a sender from the given configuration.
func NewSMTPSender(cfg config.SMTPConfig, logger *logrus.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send renders the message body and hands it to the relay. Context
// cancellation is honored before dialing; net/smtp itself does not take a
// context.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := render(msg.Template, msg.Variables)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	if s.cfg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", s.cfg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), s.cfg.Host)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, []byte(b.String())); err != nil {
		s.logger.WithError(err).WithField("to", msg.To).Error("email delivery failed")
		return err
	}

	s.logger.WithField("to", msg.To).WithField("template", msg.Template).Info("email sent")
	return nil
}
