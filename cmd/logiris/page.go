package main

import (
	"fmt"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/extract"
)

// Run executes the page command. A failed read prints a rendered error
// block in place of the article and returns the error.
func (c *PageCmd) Run(deps *Dependencies) error {
	article, err := deps.Reader.ReadPage(deps.Ctx, c.URL, c.Cookies)
	if err != nil {
		if out, rerr := deps.Render(extract.RenderError(err, c.URL)); rerr == nil {
			fmt.Fprintln(deps.Stdout, out)
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", logiris.ErrorMessage(err))
		return err
	}

	return printArticle(deps, article)
}
