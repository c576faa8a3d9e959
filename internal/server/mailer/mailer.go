// Package mailer delivers notification emails.
package mailer

import (
	"context"

	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/config"
)

type Attachment struct {
	Name    string
	Content []byte
}

type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer sends one message. Failures are returned to the caller and never
// retried here.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer when cfg.MailHost is set and a LogMailer
// otherwise.
func New(cfg *config.Config, logger logging.Logger) (Mailer, error) {
	if cfg.MailHost == "" {
		return NewLogMailer(logger), nil
	}
	return NewSMTPMailer(SMTPOptions{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		Username: cfg.MailUsername,
		Password: cfg.MailPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	})
}
