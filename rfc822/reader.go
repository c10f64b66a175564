// Package rfc822 builds mailbox payload trees from raw RFC 822 messages,
// such as .eml exports, so they go through the same decoder as API messages.
package rfc822

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/payload"
)

// SnippetLength is the number of characters kept for a snippet.
const SnippetLength = 200

// ReadMessage parses a raw message. Part bodies are transfer-decoded,
// converted to UTF-8 and re-encoded as base64url.
func ReadMessage(r io.Reader) (*logiris.Message, error) {
	e, err := message.Read(r)
	if err != nil && !isRecoverable(err) {
		return nil, logiris.Errorf(logiris.EINVALID, "reading message: %v", err)
	}

	h := mail.Header{Header: e.Header}
	msg := &logiris.Message{}
	if id, err := h.MessageID(); err == nil {
		msg.ID = id
	}
	if subject, err := h.Subject(); err == nil {
		msg.Subject = subject
	}
	if from, err := h.Text("From"); err == nil {
		msg.From = from
	}
	if date, err := h.Date(); err == nil {
		msg.InternalDate = date.UTC()
	}

	root, err := readPart(e)
	if err != nil {
		return nil, err
	}
	msg.Payload = &logiris.Payload{Part: *root, Snippet: snippet(root)}
	return msg, nil
}

// ReadPayload parses a raw message and returns only its payload tree.
func ReadPayload(r io.Reader) (*logiris.Payload, error) {
	msg, err := ReadMessage(r)
	if err != nil {
		return nil, err
	}
	return msg.Payload, nil
}

func readPart(e *message.Entity) (*logiris.Part, error) {
	mimeType, _, err := e.Header.ContentType()
	if err != nil || mimeType == "" {
		mimeType = "text/plain"
	}
	part := &logiris.Part{MimeType: mimeType}

	if mr := e.MultipartReader(); mr != nil {
		for {
			child, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil && !isRecoverable(err) {
				return nil, logiris.Errorf(logiris.EINVALID, "reading %s part: %v", mimeType, err)
			}
			p, err := readPart(child)
			if err != nil {
				return nil, err
			}
			part.Parts = append(part.Parts, p)
		}
		return part, nil
	}

	body, err := io.ReadAll(e.Body)
	if err != nil {
		return nil, logiris.Errorf(logiris.EINVALID, "reading %s body: %v", mimeType, err)
	}
	part.Body = &logiris.PartBody{Data: payload.EncodeData(string(body)), Size: len(body)}
	return part, nil
}

// isRecoverable reports whether the entity is still usable despite err.
func isRecoverable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}

// snippet returns the start of the first text/plain leaf with whitespace
// collapsed.
func snippet(p *logiris.Part) string {
	if len(p.Parts) == 0 {
		if p.MimeType != payload.MimeTypePlain || !p.HasData() {
			return ""
		}
		text := strings.Join(strings.Fields(payload.DecodeData(p.Body.Data)), " ")
		if utf8.RuneCountInString(text) > SnippetLength {
			text = string([]rune(text)[:SnippetLength])
		}
		return text
	}
	for _, child := range p.Parts {
		if s := snippet(child); s != "" {
			return s
		}
	}
	return ""
}
