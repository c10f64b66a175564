package main

import (
	"fmt"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/reader"
)

// maxTitleWidth bounds the source ID shown for untitled articles.
const maxTitleWidth = 60

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	articles, err := deps.Articles.FindArticles(deps.Ctx, logiris.ArticleFilter{
		Source: sourceFilter(c.Source),
		Limit:  c.Limit,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", logiris.ErrorMessage(err))
		return err
	}

	if len(articles) == 0 {
		fmt.Fprintln(deps.Stdout, "No articles found. Use 'logiris mail' or 'logiris page' to read some.")
		return nil
	}

	for _, a := range articles {
		title := a.Title
		if title == "" {
			title = reader.TruncateURL(a.SourceID, maxTitleWidth)
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %-4s  %s\n", a.ID, a.PublishedAt.Format("2006-01-02 15:04"), a.Source, title)
	}

	return nil
}

// sourceFilter maps the --source flag to a filter value. "all" means no
// filter.
func sourceFilter(source string) *logiris.Source {
	if source == "" || source == "all" {
		return nil
	}
	s := logiris.Source(source)
	return &s
}
