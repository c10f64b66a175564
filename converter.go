package logiris

// Converter converts HTML to another text representation.
type Converter interface {
	// Convert transforms a cleaned HTML fragment (e.g., a pipeline result)
	// into the target format.
	Convert(html string) (string, error)
}
