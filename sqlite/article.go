package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/logiris"
	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3"
)

// Compile-time interface verification.
var _ logiris.ArticleService = (*ArticleService)(nil)

const articleColumns = "id, source, source_id, title, content, content_hash, published_at, created_at"

// ArticleService implements logiris.ArticleService using SQLite.
type ArticleService struct {
	db *DB
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *DB) *ArticleService {
	return &ArticleService{db: db}
}

// HashContent returns the hex xxHash of content.
func HashContent(content string) string {
	b := binary.BigEndian.AppendUint64(nil, xxhash.Sum64String(content))
	return hex.EncodeToString(b)
}

// CreateArticle stores a new article. A second article for the same source
// and source ID is rejected with EINVALID.
func (s *ArticleService) CreateArticle(ctx context.Context, article *logiris.Article) error {
	if err := article.Validate(); err != nil {
		return err
	}

	article.ID = uuid.New().String()
	article.CreatedAt = time.Now().UTC().Truncate(time.Second)
	article.ContentHash = HashContent(article.Content)
	if article.PublishedAt.IsZero() {
		article.PublishedAt = article.CreatedAt
	}
	article.PublishedAt = article.PublishedAt.UTC().Truncate(time.Second)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, article.ID, article.Source, article.SourceID, article.Title, article.Content, article.ContentHash,
		formatTime(article.PublishedAt), formatTime(article.CreatedAt))

	if errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) {
		return logiris.Errorf(logiris.EINVALID, "article for %s %q already exists", article.Source, article.SourceID)
	}
	return err
}

// FindArticleByID retrieves an article by ID.
func (s *ArticleService) FindArticleByID(ctx context.Context, id string) (*logiris.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)

	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, logiris.Errorf(logiris.ENOTFOUND, "article not found")
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// FindArticles retrieves articles matching the filter, newest first.
func (s *ArticleService) FindArticles(ctx context.Context, filter logiris.ArticleFilter) ([]*logiris.Article, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + articleColumns + " FROM articles WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, *filter.Source)
	}
	if filter.SourceID != nil {
		query.WriteString(" AND source_id = ?")
		args = append(args, *filter.SourceID)
	}

	query.WriteString(" ORDER BY published_at DESC, created_at DESC, id")
	appendPage(&query, &args, filter)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*logiris.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

// DeleteArticle permanently removes an article.
func (s *ArticleService) DeleteArticle(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return logiris.Errorf(logiris.ENOTFOUND, "article not found")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*logiris.Article, error) {
	var a logiris.Article
	var publishedAt, createdAt string

	if err := row.Scan(&a.ID, &a.Source, &a.SourceID, &a.Title, &a.Content, &a.ContentHash,
		&publishedAt, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if a.PublishedAt, err = parseTime(publishedAt, "published_at"); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &a, nil
}
