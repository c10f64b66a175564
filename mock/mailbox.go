package mock

import (
	"context"

	"github.com/fwojciec/logiris"
)

var _ logiris.Mailbox = (*Mailbox)(nil)

// Mailbox is a mock implementation of logiris.Mailbox.
type Mailbox struct {
	ListMessagesFn func(ctx context.Context, query, pageToken string) ([]string, string, error)
	GetMessageFn   func(ctx context.Context, id string) (*logiris.Message, error)
	MarkReadFn     func(ctx context.Context, ids ...string) error
}

func (m *Mailbox) ListMessages(ctx context.Context, query, pageToken string) ([]string, string, error) {
	return m.ListMessagesFn(ctx, query, pageToken)
}

func (m *Mailbox) GetMessage(ctx context.Context, id string) (*logiris.Message, error) {
	return m.GetMessageFn(ctx, id)
}

func (m *Mailbox) MarkRead(ctx context.Context, ids ...string) error {
	return m.MarkReadFn(ctx, ids...)
}
