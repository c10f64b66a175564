package logiris

import (
	"context"
	"time"
)

// LabelUnread is the mailbox label carried by unread messages.
const LabelUnread = "UNREAD"

// DefaultMailQuery selects recent unread Bloomberg newsletters.
const DefaultMailQuery = "from:bloomberg.com is:unread newer_than:2d"

// Message is a mailbox message with its full payload.
type Message struct {
	ID           string
	ThreadID     string
	LabelIDs     []string
	InternalDate time.Time
	Subject      string
	From         string
	Payload      *Payload
}

// Unread reports whether the message still carries the UNREAD label.
func (m *Message) Unread() bool {
	for _, l := range m.LabelIDs {
		if l == LabelUnread {
			return true
		}
	}
	return false
}

// Mailbox lists and reads messages from a mail provider.
type Mailbox interface {
	// ListMessages returns message IDs matching the provider query.
	// A non-empty next page token means more results are available.
	ListMessages(ctx context.Context, query, pageToken string) (ids []string, nextPageToken string, err error)

	// GetMessage returns the full message.
	// Returns ENOTFOUND if the message does not exist.
	GetMessage(ctx context.Context, id string) (*Message, error)

	// MarkRead removes the UNREAD label from the messages.
	MarkRead(ctx context.Context, ids ...string) error
}
