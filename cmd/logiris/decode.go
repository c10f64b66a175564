package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/goquery"
	"github.com/fwojciec/logiris/payload"
)

// gmailMessage is the subset of a Gmail API message read by decode.
type gmailMessage struct {
	Snippet string           `json:"snippet"`
	Payload *logiris.Payload `json:"payload"`
}

// Run executes the decode command.
func (c *DecodeCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	root, err := parsePayload(data)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", logiris.ErrorMessage(err))
		return err
	}

	if c.Links {
		// Links are read before sanitizing, which turns anchors into spans.
		links, err := goquery.ArticleLinks(payload.Decode(root).HTML, deps.Rules.Origin)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", logiris.ErrorMessage(err))
			return err
		}
		for _, l := range links {
			fmt.Fprintln(deps.Stdout, l)
		}
		return nil
	}

	out, err := deps.Render(deps.Pipeline.Email(root))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", logiris.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, out)
	return nil
}

// parsePayload accepts either a full message with a payload field or a
// bare payload object.
func parsePayload(data []byte) (*logiris.Payload, error) {
	var msg gmailMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, logiris.Errorf(logiris.EINVALID, "invalid message JSON: %v", err)
	}
	if msg.Payload != nil {
		if msg.Payload.Snippet == "" {
			msg.Payload.Snippet = msg.Snippet
		}
		return msg.Payload, nil
	}

	var root logiris.Payload
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, logiris.Errorf(logiris.EINVALID, "invalid payload JSON: %v", err)
	}
	if root.MimeType == "" && len(root.Parts) == 0 && !root.HasData() && root.Snippet == "" {
		return nil, logiris.Errorf(logiris.EINVALID, "no payload found")
	}
	return &root, nil
}
