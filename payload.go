package logiris

// Part is one node of a MIME part tree as returned by the mailbox API.
// Leaf nodes carry Body data; container nodes carry Parts.
type Part struct {
	MimeType string    `json:"mimeType"`
	Body     *PartBody `json:"body,omitempty"`
	Parts    []*Part   `json:"parts,omitempty"`
}

// PartBody holds the base64url-encoded content of a leaf part.
type PartBody struct {
	Data string `json:"data,omitempty"`
	Size int    `json:"size,omitempty"`
}

// HasData reports whether the part carries body data.
func (p *Part) HasData() bool {
	return p != nil && p.Body != nil && p.Body.Data != ""
}

// Payload is the root of a message's part tree. The snippet is the short
// preview text the mailbox API attaches to every message.
type Payload struct {
	Part
	Snippet string `json:"snippet,omitempty"`
}

// Content is the decoded form of a Payload.
// HTML is never empty when Text or the payload snippet is non-empty.
type Content struct {
	Text string
	HTML string
}
