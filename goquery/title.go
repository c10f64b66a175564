package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/logiris"
)

// Ensure TitleExtractor implements logiris.TitleExtractor at compile time.
var _ logiris.TitleExtractor = (*TitleExtractor)(nil)

// TitleExtractor finds the headline of a page by looking at the first h1,
// then the og:title meta tag, then the document title.
type TitleExtractor struct{}

// NewTitleExtractor creates a new TitleExtractor.
func NewTitleExtractor() *TitleExtractor {
	return &TitleExtractor{}
}

// ExtractTitle returns the headline with whitespace collapsed, or "".
func (e *TitleExtractor) ExtractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if title := collapse(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title := collapse(content); title != "" {
			return title
		}
	}
	return collapse(doc.Find("title").First().Text())
}

// Text renders an HTML fragment as plain text, one line per block element.
func Text(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", logiris.Errorf(logiris.EINVALID, "failed to parse HTML: %v", err)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, h1, h2, h3, h4, h5, h6, li, tr, pre, blockquote").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = collapse(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
