// Package fs exports articles as files on disk.
package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/logiris"
)

// Ensure Writer implements logiris.ArticleWriter at compile time.
var _ logiris.ArticleWriter = (*Writer)(nil)

// File extensions by output format.
const (
	ExtHTML     = ".html"
	ExtMarkdown = ".md"
)

// URLToPath converts a page URL to a relative file path with the given
// extension.
// Example: https://www.bloomberg.com/news/articles/x → news/articles/x.html
func URLToPath(rawURL, ext string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", logiris.Errorf(logiris.EINVALID, "invalid article URL %q", rawURL)
	}

	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return "index" + ext, nil
	}
	if strings.HasSuffix(path, "/") {
		return path + "index" + ext, nil
	}
	return path + ext, nil
}

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ArticlePath returns where an article is written relative to the export
// directory. Web articles mirror their URL path under web/. Mail articles
// are named by publication date and message ID under mail/.
func ArticlePath(article *logiris.Article, ext string) (string, error) {
	if article.Source == logiris.SourceWeb {
		p, err := URLToPath(article.SourceID, ext)
		if err != nil {
			return "", err
		}
		return filepath.Join("web", filepath.FromSlash(p)), nil
	}

	name := strings.Trim(unsafeNameRe.ReplaceAllString(article.SourceID, "-"), "-.")
	if name == "" {
		return "", logiris.Errorf(logiris.EINVALID, "article source ID %q yields empty file name", article.SourceID)
	}
	return filepath.Join("mail", article.PublishedAt.UTC().Format("2006-01-02")+"-"+name+ext), nil
}

// FormatArticle formats an article body with YAML frontmatter.
func FormatArticle(article *logiris.Article, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(string(article.Source))
	b.WriteString("\nsource_id: ")
	b.WriteString(article.SourceID)
	b.WriteString("\ntitle: ")
	b.WriteString(article.Title)
	b.WriteString("\npublished: ")
	b.WriteString(article.PublishedAt.UTC().Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(body)
	return b.String()
}

// Option configures a Writer.
type Option func(*Writer)

// WithConverter writes articles as markdown produced by c instead of raw
// HTML.
func WithConverter(c logiris.Converter) Option {
	return func(w *Writer) {
		w.converter = c
	}
}

// Writer writes articles as files below a base directory.
type Writer struct {
	baseDir   string
	converter logiris.Converter
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string, opts ...Option) *Writer {
	w := &Writer{baseDir: baseDir}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteArticle writes an article to disk, replacing any previous export.
func (w *Writer) WriteArticle(ctx context.Context, article *logiris.Article) error {
	if err := article.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ext, body := ExtHTML, article.Content
	if w.converter != nil {
		md, err := w.converter.Convert(article.Content)
		if err != nil {
			return err
		}
		ext, body = ExtMarkdown, md
	}

	relPath, err := ArticlePath(article, ext)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(w.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, []byte(FormatArticle(article, body)), 0644)
}
