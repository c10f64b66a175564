package logiris

import (
	"context"
	"time"
)

// Source identifies where an article came from.
type Source string

// Article sources.
const (
	SourceMail Source = "mail"
	SourceWeb  Source = "web"
)

// Article is a cleaned piece of content ready for display.
type Article struct {
	ID          string    `json:"id"`
	Source      Source    `json:"source"`
	SourceID    string    `json:"sourceId"` // message ID or page URL
	Title       string    `json:"title"`
	Content     string    `json:"content"` // HTML
	ContentHash string    `json:"contentHash"`
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the article contains invalid fields.
func (a *Article) Validate() error {
	if a.Source != SourceMail && a.Source != SourceWeb {
		return Errorf(EINVALID, "article source must be %q or %q", SourceMail, SourceWeb)
	}
	if a.SourceID == "" {
		return Errorf(EINVALID, "article source ID required")
	}
	return nil
}

// ArticleService represents a service for managing stored articles.
type ArticleService interface {
	// CreateArticle stores a new article, assigning ID, hash and CreatedAt.
	CreateArticle(ctx context.Context, article *Article) error

	// FindArticleByID retrieves an article by ID.
	// Returns ENOTFOUND if the article does not exist.
	FindArticleByID(ctx context.Context, id string) (*Article, error)

	// FindArticles retrieves articles matching the filter, newest first.
	FindArticles(ctx context.Context, filter ArticleFilter) ([]*Article, error)

	// DeleteArticle permanently removes an article.
	// Returns ENOTFOUND if the article does not exist.
	DeleteArticle(ctx context.Context, id string) error
}

// ArticleFilter represents a filter for FindArticles.
type ArticleFilter struct {
	ID       *string `json:"id"`
	Source   *Source `json:"source"`
	SourceID *string `json:"sourceId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ArticleWriter writes articles to an export target.
type ArticleWriter interface {
	WriteArticle(ctx context.Context, article *Article) error
}
