package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/rfc822"
)

// Run executes the eml command.
func (c *EmlCmd) Run(deps *Dependencies) error {
	f, err := os.Open(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	defer f.Close()

	msg, err := rfc822.ReadMessage(f)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", logiris.ErrorMessage(err))
		return err
	}

	return printArticle(deps, &logiris.Article{
		Title:   msg.Subject,
		Content: deps.Pipeline.Email(msg.Payload),
	})
}
