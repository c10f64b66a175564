package main

import (
	"fmt"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/reader"
)

// Run executes the mail command.
func (c *MailCmd) Run(deps *Dependencies) error {
	progress := func(event reader.ProgressEvent) {
		switch event.Type {
		case reader.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d new messages\n", event.Total)
		case reader.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", event.ID, logiris.ErrorMessage(event.Error))
		}
	}

	token := c.PageToken
	var saved, skipped, failed, bytes int
	for page := 0; page < max(c.Pages, 1); page++ {
		result, err := deps.Reader.ReadInbox(deps.Ctx, c.Query, token, progress)
		if result != nil {
			saved += result.Saved
			bytes += result.Bytes
			skipped += result.Skipped
			failed += result.Failed
			if c.Print {
				for _, a := range result.Articles {
					if err := printArticle(deps, a); err != nil {
						return err
					}
				}
			}
			token = result.NextPageToken
		}
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", logiris.ErrorMessage(err))
			return err
		}
		if token == "" {
			break
		}
	}

	fmt.Fprintf(deps.Stdout, "  Saved %d articles (%s), skipped %d, failed %d\n",
		saved, reader.FormatBytes(bytes), skipped, failed)
	if token != "" {
		fmt.Fprintf(deps.Stdout, "  More messages: --page-token %s\n", token)
	}
	return nil
}

// printArticle writes an article title and its rendered content.
func printArticle(deps *Dependencies, a *logiris.Article) error {
	out, err := deps.Render(a.Content)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", logiris.ErrorMessage(err))
		return err
	}
	if a.Title != "" {
		fmt.Fprintf(deps.Stdout, "# %s\n\n", a.Title)
	}
	fmt.Fprintln(deps.Stdout, out)
	return nil
}
