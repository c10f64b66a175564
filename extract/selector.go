// Package extract implements the string-level extraction pipeline: body
// selection, markup sanitizing, and boilerplate truncation.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/logiris"
	"golang.org/x/net/html"
)

// Ensure Extractor implements logiris.BodyExtractor at compile time.
var _ logiris.BodyExtractor = (*Extractor)(nil)

// CaptureMode controls how the end of a selected region is found.
type CaptureMode int

const (
	// CaptureNearest ends the region at the first closing tag of the same
	// element. Nested same-named elements end the region early.
	CaptureNearest CaptureMode = iota

	// CaptureBalanced counts element depth and ends the region at the
	// matching closing tag.
	CaptureBalanced
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithCaptureMode sets how region boundaries are found.
func WithCaptureMode(mode CaptureMode) Option {
	return func(e *Extractor) {
		e.mode = mode
	}
}

type compiledSelector struct {
	logiris.BodySelector
	open   *regexp.Regexp
	region *regexp.Regexp
}

// Extractor selects the main content region using an ordered list of
// body selectors.
type Extractor struct {
	selectors []compiledSelector
	mode      CaptureMode
}

// NewExtractor compiles the selectors. Selector order is priority order.
func NewExtractor(selectors []logiris.BodySelector, opts ...Option) (*Extractor, error) {
	e := &Extractor{mode: CaptureNearest}
	for _, opt := range opts {
		opt(e)
	}

	for _, s := range selectors {
		open := `<` + regexp.QuoteMeta(s.Tag) + `\b[^>]*`
		if s.Attr != "" {
			open += s.Attr + `[^>]*`
		}
		open += `>`

		openRe, err := regexp.Compile(`(?is)` + open)
		if err != nil {
			return nil, logiris.Errorf(logiris.EINVALID, "selector %s: %v", s.Name, err)
		}
		regionRe, err := regexp.Compile(`(?is)` + open + `(.*?)</` + regexp.QuoteMeta(s.Tag) + `\s*>`)
		if err != nil {
			return nil, logiris.Errorf(logiris.EINVALID, "selector %s: %v", s.Name, err)
		}
		e.selectors = append(e.selectors, compiledSelector{BodySelector: s, open: openRe, region: regionRe})
	}
	return e, nil
}

// ExtractBody returns the inner HTML of the first region longer than its
// selector's threshold. If no region passes, the longest region found is
// returned. If nothing matched at all, ExtractionFailedHTML is returned.
func (e *Extractor) ExtractBody(doc string) string {
	var best string
	var bestLen int
	found := false

	for _, s := range e.selectors {
		region, ok := e.capture(s, doc)
		if !ok {
			continue
		}
		n := utf8.RuneCountInString(region)
		if n > s.MinLength {
			return region
		}
		if !found || n > bestLen {
			best, bestLen, found = region, n, true
		}
	}

	if !found || strings.TrimSpace(best) == "" {
		return logiris.ExtractionFailedHTML
	}
	return best
}

func (e *Extractor) capture(s compiledSelector, doc string) (string, bool) {
	if e.mode == CaptureBalanced {
		return captureBalanced(s, doc)
	}
	m := s.region.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// captureBalanced finds the opening tag with the selector's pattern and then
// tokenizes forward, tracking depth of the same element, until the matching
// end tag. A region that is never closed does not match.
func captureBalanced(s compiledSelector, doc string) (string, bool) {
	loc := s.open.FindStringIndex(doc)
	if loc == nil {
		return "", false
	}
	start := loc[1]

	z := html.NewTokenizer(strings.NewReader(doc[start:]))
	offset := 0
	depth := 1
	for {
		tt := z.Next()
		raw := len(z.Raw())
		switch tt {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == s.Tag {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == s.Tag {
				depth--
				if depth == 0 {
					return doc[start : start+offset], true
				}
			}
		}
		offset += raw
	}
}
