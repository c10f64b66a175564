package extract

import (
	"regexp"
	"strings"
)

// strippedTags are removed together with everything between their opening
// and nearest closing tag.
var strippedTags = []string{"script", "style", "iframe", "button"}

var (
	rootRelativeSrcRe = regexp.MustCompile(`(?i)\bsrc="/([^"/][^"]*)"`)
	anchorOpenRe      = regexp.MustCompile(`(?i)<a(\s|>)`)
	anchorCloseRe     = regexp.MustCompile(`(?i)</a\s*>`)
)

// AccentSpan is the opening markup that replaces anchor tags.
const AccentSpan = `<span style="color:var(--accent-color)"`

// Sanitizer removes executable and interactive markup, absolutizes asset
// paths, and turns links into inert styled spans. It is safe for concurrent
// use.
type Sanitizer struct {
	stripped []*regexp.Regexp
	srcRepl  string
}

// NewSanitizer returns a Sanitizer that roots relative asset paths at origin.
func NewSanitizer(origin string) *Sanitizer {
	s := &Sanitizer{
		srcRepl: `src="` + strings.ReplaceAll(strings.TrimRight(origin, "/"), "$", "$$") + `/$1"`,
	}
	for _, tag := range strippedTags {
		s.stripped = append(s.stripped, regexp.MustCompile(`(?is)<`+tag+`\b[^>]*>.*?</`+tag+`\s*>`))
	}
	return s
}

// Sanitize rewrites html. Each rule is applied across the whole document.
func (s *Sanitizer) Sanitize(html string) string {
	for _, re := range s.stripped {
		html = re.ReplaceAllString(html, "")
	}
	html = rootRelativeSrcRe.ReplaceAllString(html, s.srcRepl)
	html = anchorOpenRe.ReplaceAllString(html, AccentSpan+"${1}")
	html = anchorCloseRe.ReplaceAllString(html, "</span>")
	return html
}
