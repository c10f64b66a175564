package readability

import (
	"strings"

	"github.com/fwojciec/logiris"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements logiris.BodyExtractor and
// logiris.TitleExtractor at compile time.
var (
	_ logiris.BodyExtractor  = (*Extractor)(nil)
	_ logiris.TitleExtractor = (*Extractor)(nil)
)

// Extractor wraps go-readability to locate the article body with Mozilla's
// readability scoring instead of fixed selectors.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractBody returns the readable content of rawHTML, or
// logiris.ExtractionFailedHTML when nothing readable was found.
func (e *Extractor) ExtractBody(rawHTML string) string {
	article, ok := parse(rawHTML)
	if !ok || strings.TrimSpace(article.Content) == "" {
		return logiris.ExtractionFailedHTML
	}
	return article.Content
}

// ExtractTitle returns the article title readability detected.
func (e *Extractor) ExtractTitle(rawHTML string) string {
	article, ok := parse(rawHTML)
	if !ok {
		return ""
	}
	return strings.TrimSpace(article.Title)
}

func parse(rawHTML string) (readability.Article, bool) {
	if strings.TrimSpace(rawHTML) == "" {
		return readability.Article{}, false
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return readability.Article{}, false
	}
	return article, true
}
