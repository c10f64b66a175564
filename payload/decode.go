// Package payload decodes mailbox part trees into displayable text and HTML.
package payload

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/logiris"
	"golang.org/x/text/encoding/charmap"
)

// Mime types selected from leaf parts. Matching is exact.
const (
	MimeTypePlain = "text/plain"
	MimeTypeHTML  = "text/html"
)

// Decode walks the part tree depth-first and concatenates every text/plain
// and text/html leaf in traversal order. When no HTML is present the text is
// wrapped in a <pre> block; when neither is present the snippet is used.
// Decode never fails: malformed leaves contribute whatever could be decoded.
func Decode(root *logiris.Payload) *logiris.Content {
	if root == nil {
		return &logiris.Content{}
	}

	var text, html strings.Builder
	if len(root.Parts) == 0 {
		// Single-part message: the root itself is the only leaf.
		collect(&root.Part, &text, &html)
	} else {
		walk(root.Parts, &text, &html)
	}

	c := &logiris.Content{Text: text.String(), HTML: html.String()}
	switch {
	case c.HTML != "":
	case c.Text != "":
		c.HTML = "<pre>" + c.Text + "</pre>"
	default:
		c.HTML = root.Snippet
	}
	return c
}

func walk(parts []*logiris.Part, text, html *strings.Builder) {
	for _, p := range parts {
		if p == nil {
			continue
		}
		if len(p.Parts) > 0 {
			walk(p.Parts, text, html)
			continue
		}
		collect(p, text, html)
	}
}

func collect(p *logiris.Part, text, html *strings.Builder) {
	if !p.HasData() {
		return
	}
	switch p.MimeType {
	case MimeTypePlain:
		text.WriteString(DecodeData(p.Body.Data))
	case MimeTypeHTML:
		html.WriteString(DecodeData(p.Body.Data))
	}
}

// DecodeData decodes URL-safe base64 into text. Padding is optional and
// whitespace is ignored. Bytes that are not valid UTF-8 are reinterpreted as
// ISO-8859-1, one character per byte, so the result is always valid UTF-8.
func DecodeData(data string) string {
	if data == "" {
		return ""
	}
	b := decodeBase64(data)
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(s)
}

// EncodeData encodes text the way the mailbox API encodes part bodies.
func EncodeData(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

// decodeBase64 maps the URL-safe alphabet onto the standard one and decodes
// as much of the input as is well formed.
func decodeBase64(data string) []byte {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '-':
			return '+'
		case '_':
			return '/'
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, data)
	s = strings.TrimRight(s, "=")

	dst := make([]byte, base64.RawStdEncoding.DecodedLen(len(s)))
	n, _ := base64.RawStdEncoding.Decode(dst, []byte(s))
	return dst[:n]
}
