package main

import (
	"fmt"

	"github.com/fwojciec/logiris"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	articles, err := deps.Articles.FindArticles(deps.Ctx, logiris.ArticleFilter{Source: sourceFilter(c.Source)})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", logiris.ErrorMessage(err))
		return err
	}

	var failed int
	for _, a := range articles {
		if err := deps.Exporter.WriteArticle(deps.Ctx, a); err != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", a.ID, logiris.ErrorMessage(err))
		}
	}

	fmt.Fprintf(deps.Stdout, "Exported %d articles to %s\n", len(articles)-failed, c.Dir)
	if failed > 0 {
		return logiris.Errorf(logiris.EINTERNAL, "%d articles failed to export", failed)
	}
	return nil
}
