package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/logiris"
)

// Truncator cuts trailing boilerplate from a document while keeping known
// trailing sections intact. Positions and windows are measured in
// characters; byte offsets are only used for slicing.
type Truncator struct {
	headerTags    []string
	containerTags []string
	window        int
	closing       string
}

// NewTruncator returns a Truncator driven by the tag lists of rules.
func NewTruncator(rules logiris.Rules) *Truncator {
	window := rules.ProtectedWindow
	if window <= 0 {
		window = logiris.DefaultProtectedWindow
	}
	return &Truncator{
		headerTags:    rules.HeaderTags,
		containerTags: rules.ContainerTags,
		window:        window,
		closing:       rules.ClosingMarkup,
	}
}

// Truncate removes everything from the earliest boilerplate marker found in
// the second half of html. When a safe container boundary exists before the
// marker and past 40% of the document, the cut moves back to it and the
// closing markup is appended. Marker matching is case-insensitive.
func (t *Truncator) Truncate(html string, markers, protected []string) string {
	lower := foldCase(html)
	total := utf8.RuneCountInString(html)
	mid := byteOffset(lower, total/2)

	cut := -1
	for _, m := range markers {
		if m == "" {
			continue
		}
		if i := strings.Index(lower[mid:], foldCase(m)); i >= 0 && (cut < 0 || mid+i < cut) {
			cut = mid + i
		}
	}
	if cut < 0 {
		return html
	}

	protectedLower := make([]string, 0, len(protected))
	for _, p := range protected {
		if p != "" {
			protectedLower = append(protectedLower, foldCase(p))
		}
	}
	before := lower[:cut]

	boundary := -1
	for _, tag := range t.headerTags {
		if i := t.lastTag(before, tag, func(i int) bool {
			return t.isProtected(lower, i, protectedLower)
		}); i > boundary {
			boundary = i
		}
	}

	candidate := -1
	for _, tag := range t.containerTags {
		candidate = t.lastTag(before, tag, func(i int) bool {
			return (boundary < 0 || i <= boundary) && !t.isProtected(lower, i, protectedLower)
		})
		if candidate >= 0 {
			break
		}
	}

	// Strictly after the boundary. Since candidates are never past the
	// boundary, any protected header pins the cut to the marker.
	if candidate >= 0 && candidate > boundary && utf8.RuneCountInString(html[:candidate])*5 > total*2 {
		return html[:candidate] + t.closing
	}
	return html[:cut]
}

// lastTag returns the offset of the latest "<tag" in s that opens an element
// of exactly that name and satisfies ok, or -1.
func (t *Truncator) lastTag(s, tag string, ok func(int) bool) int {
	open := "<" + tag
	end := len(s)
	for end > 0 {
		i := strings.LastIndex(s[:end], open)
		if i < 0 {
			return -1
		}
		if isTagEnd(s, i+len(open)) && ok(i) {
			return i
		}
		end = i
	}
	return -1
}

func (t *Truncator) isProtected(lower string, i int, protected []string) bool {
	w := lower[i:]
	w = w[:byteOffset(w, t.window)]
	for _, p := range protected {
		if strings.Contains(w, p) {
			return true
		}
	}
	return false
}

// byteOffset returns the byte offset of the n-th character of s, or len(s)
// when s has fewer characters.
func byteOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}

func isTagEnd(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	switch s[i] {
	case ' ', '>', '/', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// foldCase lower-cases s without changing any byte offset. Runes whose
// lower-case form has a different encoded length are left as-is.
func foldCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
			i++
			continue
		}
		if l := unicode.ToLower(r); l != r && utf8.RuneLen(l) == size {
			b.WriteRune(l)
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}
