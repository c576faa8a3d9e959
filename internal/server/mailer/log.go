package mailer

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/containerhub/internal/logging"
)

// LogMailer writes messages to the log instead of delivering them and keeps
// them in an in-memory outbox. Used when no SMTP relay is configured.
type LogMailer struct {
	logger logging.Logger

	mu     sync.Mutex
	outbox []Message
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Name)
	}
	m.logger.Info(ctx, "mail not delivered, no SMTP host configured",
		"to", msg.To, "subject", msg.Subject, "attachments", names)

	m.mu.Lock()
	m.outbox = append(m.outbox, msg)
	m.mu.Unlock()
	return nil
}

// Outbox returns a copy of every message passed to Send.
func (m *LogMailer) Outbox() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.outbox...)
}
