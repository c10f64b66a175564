package extract

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/payload"
)

// Ensure HeadingTitle implements logiris.TitleExtractor at compile time.
var _ logiris.TitleExtractor = HeadingTitle{}

// Ensure Pipeline and ProxyExtractor implement logiris.PageExtractor at
// compile time.
var (
	_ logiris.PageExtractor = (*Pipeline)(nil)
	_ logiris.PageExtractor = ProxyExtractor{}
)

var (
	headingRe = regexp.MustCompile(`(?is)<h1\b[^>]*>(.*?)</h1\s*>`)
	tagRe     = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// HeadingTitle takes the text of the first h1 element as the title.
type HeadingTitle struct{}

// ExtractTitle implements logiris.TitleExtractor.
func (HeadingTitle) ExtractTitle(doc string) string {
	m := headingRe.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	text := html.UnescapeString(tagRe.ReplaceAllString(m[1], ""))
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Pipeline chains the extraction stages for both input sources.
type Pipeline struct {
	Body      logiris.BodyExtractor
	Title     logiris.TitleExtractor
	Sanitizer *Sanitizer
	Truncator *Truncator

	boilerplate []string
	protected   []string
}

// NewPipeline builds the default pipeline for rules. Body and Title may be
// replaced afterwards to use a different extraction strategy.
func NewPipeline(rules logiris.Rules, opts ...Option) (*Pipeline, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	body, err := NewExtractor(rules.Selectors, opts...)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Body:        body,
		Title:       HeadingTitle{},
		Sanitizer:   NewSanitizer(rules.Origin),
		Truncator:   NewTruncator(rules),
		boilerplate: rules.BoilerplateMarkers(),
		protected:   rules.ProtectedMarkers(),
	}, nil
}

// Email decodes a mailbox payload and returns display-ready HTML.
func (p *Pipeline) Email(root *logiris.Payload) string {
	content := payload.Decode(root)
	return p.Clean(content.HTML)
}

// Page extracts the title and display-ready body from a raw article page.
func (p *Pipeline) Page(doc string) (title, body string) {
	title, body = p.Extract(doc)
	if body == logiris.ExtractionFailedHTML {
		return title, body
	}
	return title, p.truncate(body)
}

// Extract returns the title and sanitized body of a raw article page
// without removing trailing boilerplate.
func (p *Pipeline) Extract(doc string) (title, body string) {
	title = p.Title.ExtractTitle(doc)
	body = p.Body.ExtractBody(doc)
	if body == logiris.ExtractionFailedHTML {
		return title, body
	}
	return title, p.Sanitizer.Sanitize(body)
}

// Clean sanitizes html and removes trailing boilerplate.
func (p *Pipeline) Clean(html string) string {
	return p.truncate(p.Sanitizer.Sanitize(html))
}

func (p *Pipeline) truncate(html string) string {
	return p.Truncator.Truncate(html, p.boilerplate, p.protected)
}

// ProxyExtractor serves proxy requests. It extracts and sanitizes pages and
// leaves truncation to the consumer of the proxy response.
type ProxyExtractor struct {
	Pipeline *Pipeline
}

// Page implements logiris.PageExtractor.
func (e ProxyExtractor) Page(doc string) (title, body string) {
	return e.Pipeline.Extract(doc)
}

// ProxyResponse validates a proxy reply for url and returns its title and
// body. The body was extracted by the proxy; it is cleaned here like any
// other body. Failed replies become EUPSTREAM errors naming url.
func (p *Pipeline) ProxyResponse(resp *logiris.ProxyResponse, url string) (title, body string, err error) {
	switch {
	case resp == nil:
		return "", "", logiris.Errorf(logiris.EUPSTREAM, "fetching %s: empty proxy response", url)
	case resp.Error != "":
		return "", "", logiris.Errorf(logiris.EUPSTREAM, "fetching %s: %s", url, resp.Error)
	case !resp.Success:
		return "", "", logiris.Errorf(logiris.EUPSTREAM, "fetching %s: proxy reported failure", url)
	}

	body = resp.Body
	if strings.TrimSpace(body) == "" || body == logiris.ExtractionFailedHTML {
		return resp.Title, logiris.ExtractionFailedHTML, nil
	}
	return resp.Title, p.Clean(body), nil
}

// RenderError renders err as a visible HTML block that names url.
func RenderError(err error, url string) string {
	return fmt.Sprintf(
		`<div style="color:red"><p><strong>Failed to load the article.</strong></p><p>%s</p><p>%s</p></div>`,
		html.EscapeString(logiris.ErrorMessage(err)),
		html.EscapeString(url),
	)
}
