package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

// dialAndSend is a seam for tests.
var dialAndSend = func(ctx context.Context, c *mail.Client, msgs ...*mail.Msg) error {
	return c.DialAndSendWithContext(ctx, msgs...)
}

type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPMailer uses STARTTLS when the relay offers it and PLAIN auth when a
// username is configured.
type SMTPMailer struct {
	client   *mail.Client
	from     string
	fromName string
}

func NewSMTPMailer(opts SMTPOptions) (*SMTPMailer, error) {
	if opts.From == "" {
		return nil, errors.New("mail sender address is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if opts.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	}

	client, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: opts.From, fromName: opts.FromName}, nil
}

func (m *SMTPMailer) buildMsg(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()

	var err error
	if m.fromName != "" {
		err = out.FromFormat(m.fromName, m.from)
	} else {
		err = out.From(m.from)
	}
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}

	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, a := range msg.Attachments {
		if err := out.AttachReader(a.Name, bytes.NewReader(a.Content)); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Name, err)
		}
	}
	return out, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out, err := m.buildMsg(msg)
	if err != nil {
		return err
	}
	if err := dialAndSend(ctx, m.client, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
