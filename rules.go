package logiris

import (
	"regexp"
	"strings"
)

// DefaultMinLength is the selector threshold used when none is configured.
// Regions at or below it are usually ad slots or teaser blocks.
const DefaultMinLength = 500

// DefaultProtectedWindow is how many characters after a header are
// inspected for a protected-section marker.
const DefaultProtectedWindow = 800

// BodySelector describes one candidate container for the main content.
// Selectors are tried in slice order; order is priority.
type BodySelector struct {
	// Name identifies the selector in logs and configuration.
	Name string `json:"name"`

	// Tag is the container element name, e.g. "div" or "article".
	Tag string `json:"tag"`

	// Attr is a regular expression fragment that must match inside the
	// opening tag, e.g. `class="[^"]*body-copy[^"]*"`. Empty matches any
	// opening tag of the element.
	Attr string `json:"attr,omitempty"`

	// MinLength is the number of characters a captured region must exceed
	// to be accepted without trying lower-priority selectors.
	MinLength int `json:"minLength"`
}

// MarkerKind tells the truncation heuristic what a marker triggers.
type MarkerKind string

// Marker kinds.
const (
	// MarkerBoilerplate marks the start of trailing boilerplate.
	MarkerBoilerplate MarkerKind = "boilerplate"

	// MarkerProtected identifies a legitimate trailing section that must
	// survive truncation.
	MarkerProtected MarkerKind = "protected"
)

// Marker is a literal, case-insensitive phrase and the behavior it triggers.
type Marker struct {
	Text string     `json:"text"`
	Kind MarkerKind `json:"kind"`
}

// Rules is the tunable configuration of the extraction heuristics.
type Rules struct {
	// Origin is prepended to root-relative asset paths.
	Origin string

	// Selectors are the body selectors in priority order.
	Selectors []BodySelector

	// Markers maps phrases to truncation behavior.
	Markers []Marker

	// HeaderTags are element names that can open a protected section.
	HeaderTags []string

	// ContainerTags are element names that are safe truncation points,
	// in priority order.
	ContainerTags []string

	// ProtectedWindow is the number of characters after a tag that are searched
	// for protected markers.
	ProtectedWindow int

	// ClosingMarkup is appended when the document is cut at a container.
	ClosingMarkup string
}

// DefaultRules returns the built-in rules for Bloomberg pages and newsletters.
func DefaultRules() Rules {
	return Rules{
		Origin: "https://www.bloomberg.com",
		Selectors: []BodySelector{
			{Name: "body-copy", Tag: "div", Attr: `class="[^"]*body-copy[^"]*"`, MinLength: DefaultMinLength},
			{Name: "article-body-component", Tag: "div", Attr: `data-component="article-body"`, MinLength: DefaultMinLength},
			{Name: "article-body", Tag: "div", Attr: `class="[^"]*article-body[^"]*"`, MinLength: DefaultMinLength},
			{Name: "article", Tag: "article", MinLength: DefaultMinLength},
		},
		Markers: []Marker{
			{Text: "Unsubscribe", Kind: MarkerBoilerplate},
			{Text: "Follow us", Kind: MarkerBoilerplate},
			{Text: "You received this message because", Kind: MarkerBoilerplate},
			{Text: "Like getting this newsletter?", Kind: MarkerBoilerplate},
			{Text: "Manage your newsletter subscriptions", Kind: MarkerBoilerplate},
			{Text: "Bloomberg L.P. 731 Lexington", Kind: MarkerBoilerplate},
			{Text: "Today's Points", Kind: MarkerProtected},
			{Text: "One More Thing", Kind: MarkerProtected},
		},
		HeaderTags:      []string{"h1", "h2", "h3", "h4", "table"},
		ContainerTags:   []string{"table", "tr", "div", "p"},
		ProtectedWindow: DefaultProtectedWindow,
		ClosingMarkup:   "</body></html>",
	}
}

// BoilerplateMarkers returns the texts of all boilerplate markers.
func (r Rules) BoilerplateMarkers() []string {
	return r.markerTexts(MarkerBoilerplate)
}

// ProtectedMarkers returns the texts of all protected-section markers.
func (r Rules) ProtectedMarkers() []string {
	return r.markerTexts(MarkerProtected)
}

func (r Rules) markerTexts(kind MarkerKind) []string {
	var texts []string
	for _, m := range r.Markers {
		if m.Kind == kind {
			texts = append(texts, m.Text)
		}
	}
	return texts
}

var tagNameRe = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Validate returns an error if the rules cannot drive the heuristics.
func (r Rules) Validate() error {
	if !strings.HasPrefix(r.Origin, "http://") && !strings.HasPrefix(r.Origin, "https://") {
		return Errorf(EINVALID, "origin must be an absolute http(s) URL, got %q", r.Origin)
	}
	if len(r.Selectors) == 0 {
		return Errorf(EINVALID, "at least one body selector required")
	}
	for i, s := range r.Selectors {
		if !tagNameRe.MatchString(s.Tag) {
			return Errorf(EINVALID, "selector %d (%s): invalid tag %q", i, s.Name, s.Tag)
		}
		if _, err := regexp.Compile(s.Attr); err != nil {
			return Errorf(EINVALID, "selector %d (%s): invalid attr pattern: %v", i, s.Name, err)
		}
		if s.MinLength < 0 {
			return Errorf(EINVALID, "selector %d (%s): negative min length", i, s.Name)
		}
	}
	for _, m := range r.Markers {
		if strings.TrimSpace(m.Text) == "" {
			return Errorf(EINVALID, "marker text required")
		}
		if m.Kind != MarkerBoilerplate && m.Kind != MarkerProtected {
			return Errorf(EINVALID, "marker %q: unknown kind %q", m.Text, m.Kind)
		}
	}
	for _, tag := range append(append([]string{}, r.HeaderTags...), r.ContainerTags...) {
		if !tagNameRe.MatchString(tag) {
			return Errorf(EINVALID, "invalid tag name %q", tag)
		}
	}
	if r.ProtectedWindow <= 0 {
		return Errorf(EINVALID, "protected window must be positive")
	}
	return nil
}
