package logiris

// ExtractionFailedHTML is returned in place of a body when no selector
// matched the document. It is rendered as-is, so it must stay valid HTML.
const ExtractionFailedHTML = `<p style="color:red">Failed to extract the article body. The extraction rules need adjusting.</p>`

// BodyExtractor locates the main content region of a raw HTML document.
type BodyExtractor interface {
	// ExtractBody returns the HTML of the main content region.
	// It never returns an empty string: when nothing matches, it returns
	// ExtractionFailedHTML.
	ExtractBody(html string) string
}

// TitleExtractor finds the headline of a raw HTML document.
type TitleExtractor interface {
	// ExtractTitle returns the plain-text title, or "" if none was found.
	ExtractTitle(html string) string
}

// PageExtractor turns a raw article page into its title and a
// display-ready body.
type PageExtractor interface {
	Page(html string) (title, body string)
}
