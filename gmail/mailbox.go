// Package gmail implements logiris.Mailbox on top of the Gmail API.
package gmail

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/logiris"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

const (
	user = "me"

	// DefaultPageSize is the number of message IDs requested per page.
	DefaultPageSize = 100

	// maxBatchModify is the API limit on IDs per batchModify call.
	maxBatchModify = 1000
)

// Ensure Mailbox implements logiris.Mailbox at compile time.
var _ logiris.Mailbox = (*Mailbox)(nil)

// Mailbox reads the signed-in user's messages. The caller builds the
// service with whatever credentials it holds.
type Mailbox struct {
	srv      *gmailv1.Service
	pageSize int64
}

// Option configures a Mailbox.
type Option func(*Mailbox)

// WithPageSize sets the number of message IDs requested per page.
func WithPageSize(n int64) Option {
	return func(m *Mailbox) {
		m.pageSize = n
	}
}

// NewMailbox creates a Mailbox backed by srv.
func NewMailbox(srv *gmailv1.Service, opts ...Option) *Mailbox {
	m := &Mailbox{srv: srv, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ListMessages implements logiris.Mailbox.
func (m *Mailbox) ListMessages(ctx context.Context, query, pageToken string) ([]string, string, error) {
	call := m.srv.Users.Messages.List(user).MaxResults(m.pageSize).Context(ctx)
	if query != "" {
		call = call.Q(query)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", wrapError(err, "listing messages")
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, resp.NextPageToken, nil
}

// GetMessage implements logiris.Mailbox.
func (m *Mailbox) GetMessage(ctx context.Context, id string) (*logiris.Message, error) {
	msg, err := m.srv.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err, "getting message "+id)
	}
	return FromMessage(msg), nil
}

// MarkRead implements logiris.Mailbox. A single ID uses modify; more use
// batchModify in chunks of the API limit.
func (m *Mailbox) MarkRead(ctx context.Context, ids ...string) error {
	switch len(ids) {
	case 0:
		return nil
	case 1:
		_, err := m.srv.Users.Messages.Modify(user, ids[0], &gmailv1.ModifyMessageRequest{
			RemoveLabelIds: []string{logiris.LabelUnread},
		}).Context(ctx).Do()
		if err != nil {
			return wrapError(err, "marking message read")
		}
		return nil
	}

	for start := 0; start < len(ids); start += maxBatchModify {
		end := min(start+maxBatchModify, len(ids))
		err := m.srv.Users.Messages.BatchModify(user, &gmailv1.BatchModifyMessagesRequest{
			Ids:            ids[start:end],
			RemoveLabelIds: []string{logiris.LabelUnread},
		}).Context(ctx).Do()
		if err != nil {
			return wrapError(err, "marking messages read")
		}
	}
	return nil
}

// FromMessage converts an API message into a logiris.Message.
func FromMessage(msg *gmailv1.Message) *logiris.Message {
	out := &logiris.Message{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		LabelIDs:     msg.LabelIds,
		InternalDate: time.UnixMilli(msg.InternalDate).UTC(),
		Payload:      &logiris.Payload{Snippet: msg.Snippet},
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "Subject":
				out.Subject = h.Value
			case "From":
				out.From = h.Value
			}
		}
		out.Payload.Part = *fromPart(msg.Payload)
	}
	return out
}

func fromPart(p *gmailv1.MessagePart) *logiris.Part {
	part := &logiris.Part{MimeType: p.MimeType}
	if p.Body != nil && (p.Body.Data != "" || p.Body.Size > 0) {
		part.Body = &logiris.PartBody{Data: p.Body.Data, Size: int(p.Body.Size)}
	}
	for _, child := range p.Parts {
		if child != nil {
			part.Parts = append(part.Parts, fromPart(child))
		}
	}
	return part
}

func wrapError(err error, op string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return logiris.Errorf(logiris.ENOTFOUND, "%s: not found", op)
		case http.StatusBadRequest:
			return logiris.Errorf(logiris.EINVALID, "%s: %s", op, gerr.Message)
		}
		return logiris.Errorf(logiris.EUPSTREAM, "%s: gmail status %d: %s", op, gerr.Code, gerr.Message)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return logiris.Errorf(logiris.EUPSTREAM, "%s: %v", op, err)
}
