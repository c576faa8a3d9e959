package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMailer_SendRecords(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.NewJSONLogger(&buf, slog.LevelInfo))

	msg := Message{
		To:          "alice@example.com",
		Subject:     "Analysis results",
		Body:        "line",
		Attachments: []Attachment{{Name: "a.txt", Content: []byte("x")}},
	}
	require.NoError(t, m.Send(context.Background(), msg))

	out := m.Outbox()
	require.Len(t, out, 1)
	assert.Equal(t, msg, out[0])
	assert.Contains(t, buf.String(), "alice@example.com")
	assert.Contains(t, buf.String(), `"module":"mailer"`)
}

func TestLogMailer_CancelledContext(t *testing.T) {
	m := NewLogMailer(logging.NewDiscardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, m.Send(ctx, Message{To: "a@example.com"}))
	assert.Empty(t, m.Outbox())
}

func TestNew_SelectsImplementation(t *testing.T) {
	var cfg config.Config
	cfg.LoadDefaults()

	m, err := New(&cfg, logging.NewDiscardLogger())
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	cfg.MailHost = "smtp.example.com"
	m, err = New(&cfg, logging.NewDiscardLogger())
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)
}
