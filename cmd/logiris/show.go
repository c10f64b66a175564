package main

import (
	"fmt"

	"github.com/fwojciec/logiris"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	article, err := deps.Articles.FindArticleByID(deps.Ctx, c.ID)
	if err != nil {
		if logiris.ErrorCode(err) == logiris.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: article %q not found. Use 'logiris list' to see stored articles.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", logiris.ErrorMessage(err))
		}
		return err
	}

	return printArticle(deps, article)
}
