// Package logiris extracts, cleans, and normalizes newsletter and article
// content. Emails arrive as nested MIME part trees from a mailbox API; pages
// arrive as raw HTML fetched through a cookie-authenticated proxy. Both are
// reduced to a single HTML fragment that is safe to embed in a reader view.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gmail/, goquery/).
package logiris
