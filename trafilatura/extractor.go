package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/logiris"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements logiris.BodyExtractor and
// logiris.TitleExtractor at compile time.
var (
	_ logiris.BodyExtractor  = (*Extractor)(nil)
	_ logiris.TitleExtractor = (*Extractor)(nil)
)

// Extractor wraps go-trafilatura to locate the article body for pages whose
// markup the selector rules do not cover.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
		},
	}
}

// ExtractBody returns the main content of rawHTML as HTML, or
// logiris.ExtractionFailedHTML when trafilatura finds nothing.
func (e *Extractor) ExtractBody(rawHTML string) string {
	result, ok := e.extract(rawHTML)
	if !ok || result.ContentNode == nil {
		return logiris.ExtractionFailedHTML
	}
	body, err := renderChildren(result.ContentNode)
	if err != nil || strings.TrimSpace(body) == "" {
		return logiris.ExtractionFailedHTML
	}
	return body
}

// ExtractTitle returns the title from the page metadata.
func (e *Extractor) ExtractTitle(rawHTML string) string {
	result, ok := e.extract(rawHTML)
	if !ok {
		return ""
	}
	return strings.TrimSpace(result.Metadata.Title)
}

func (e *Extractor) extract(rawHTML string) (*trafilatura.ExtractResult, bool) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, false
	}
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil || result == nil {
		return nil, false
	}
	return result, true
}

// renderChildren renders the children of n, dropping trafilatura's wrapper
// element so the result is an inner region like the selector extractor's.
func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
