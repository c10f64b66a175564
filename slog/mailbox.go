package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/logiris"
)

// Ensure LoggingMailbox implements logiris.Mailbox.
var _ logiris.Mailbox = (*LoggingMailbox)(nil)

// LoggingMailbox wraps a Mailbox with logging.
type LoggingMailbox struct {
	next   logiris.Mailbox
	logger *slog.Logger
}

// NewLoggingMailbox creates a new LoggingMailbox.
func NewLoggingMailbox(next logiris.Mailbox, logger *slog.Logger) *LoggingMailbox {
	return &LoggingMailbox{next: next, logger: logger}
}

// ListMessages delegates to the wrapped mailbox and logs the operation.
func (m *LoggingMailbox) ListMessages(ctx context.Context, query, pageToken string) (ids []string, next string, err error) {
	defer func(begin time.Time) {
		m.logger.Info("list messages",
			"query", query,
			"count", len(ids),
			"more", next != "",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.ListMessages(ctx, query, pageToken)
}

// GetMessage delegates to the wrapped mailbox and logs the operation.
func (m *LoggingMailbox) GetMessage(ctx context.Context, id string) (msg *logiris.Message, err error) {
	defer func(begin time.Time) {
		attrs := []any{"id", id, "duration", time.Since(begin), "err", err}
		if msg != nil {
			attrs = append(attrs, "subject", msg.Subject)
		}
		m.logger.Debug("get message", attrs...)
	}(time.Now())
	return m.next.GetMessage(ctx, id)
}

// MarkRead delegates to the wrapped mailbox and logs the operation.
func (m *LoggingMailbox) MarkRead(ctx context.Context, ids ...string) (err error) {
	defer func(begin time.Time) {
		m.logger.Info("mark read",
			"count", len(ids),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.MarkRead(ctx, ids...)
}
