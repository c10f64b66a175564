package mock

import (
	"context"

	"github.com/fwojciec/logiris"
)

var _ logiris.ArticleWriter = (*ArticleWriter)(nil)

// ArticleWriter is a mock implementation of logiris.ArticleWriter.
type ArticleWriter struct {
	WriteArticleFn func(ctx context.Context, article *logiris.Article) error
}

func (w *ArticleWriter) WriteArticle(ctx context.Context, article *logiris.Article) error {
	return w.WriteArticleFn(ctx, article)
}
