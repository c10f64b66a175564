package extract_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func truncate(html string) string {
	rules := logiris.DefaultRules()
	return extract.NewTruncator(rules).Truncate(html, rules.BoilerplateMarkers(), rules.ProtectedMarkers())
}

func TestTruncator_Truncate(t *testing.T) {
	t.Parallel()

	t.Run("ignores marker before midpoint", func(t *testing.T) {
		t.Parallel()

		doc := strings.Repeat("x", 300) + "Unsubscribe" + strings.Repeat("y", 689)
		require.Len(t, doc, 1000)

		assert.Equal(t, doc, truncate(doc))
	})

	t.Run("cuts at marker past midpoint", func(t *testing.T) {
		t.Parallel()

		doc := strings.Repeat("x", 800) + "Unsubscribe" + strings.Repeat("y", 189)

		assert.Equal(t, strings.Repeat("x", 800), truncate(doc))
	})

	t.Run("matches markers case-insensitively", func(t *testing.T) {
		t.Parallel()

		doc := strings.Repeat("x", 800) + "UNSUBSCRIBE here"

		assert.Equal(t, strings.Repeat("x", 800), truncate(doc))
	})

	t.Run("uses earliest marker in second half", func(t *testing.T) {
		t.Parallel()

		doc := strings.Repeat("a", 100) + "Follow us" + strings.Repeat("b", 500) +
			"Follow us" + strings.Repeat("c", 50) + "Unsubscribe" + strings.Repeat("d", 100)

		assert.Equal(t, doc[:strings.LastIndex(doc, "Follow us")], truncate(doc))
	})

	t.Run("returns document without markers unchanged", func(t *testing.T) {
		t.Parallel()

		doc := "<p>" + strings.Repeat("quiet ", 100) + "</p>"

		assert.Equal(t, doc, truncate(doc))
	})

	t.Run("cuts at enclosing container and closes document", func(t *testing.T) {
		t.Parallel()

		article := "<html><body><p>" + strings.Repeat("a", 600) + "</p>"
		doc := article + "<table><tr><td>Follow us</td></tr></table>"

		assert.Equal(t, article+"</body></html>", truncate(doc))
	})

	t.Run("cuts at marker when no container is past forty percent", func(t *testing.T) {
		t.Parallel()

		doc := "<p>" + strings.Repeat("a", 100) + "</p>" + strings.Repeat("b", 300) + "Follow us" + strings.Repeat("c", 50)

		assert.Equal(t, doc[:strings.Index(doc, "Follow us")], truncate(doc))
	})

	t.Run("prefers containers in priority order", func(t *testing.T) {
		t.Parallel()

		head := "<div>" + strings.Repeat("a", 500) + "</div>"
		doc := head + "<div><p>Unsubscribe</p></div>"

		// div outranks the later p.
		assert.Equal(t, head+"</body></html>", truncate(doc))
	})

	t.Run("does not mistake longer tag names for containers", func(t *testing.T) {
		t.Parallel()

		doc := "<p>" + strings.Repeat("a", 100) + "</p>" + strings.Repeat("b", 300) +
			"<pre>Follow us</pre>"

		assert.Equal(t, doc[:strings.Index(doc, "Follow us")], truncate(doc))
	})

	t.Run("preserves protected section before marker", func(t *testing.T) {
		t.Parallel()

		points := "Stocks rose. Bonds fell. The dollar was little changed against peers."
		doc := "<html><body><p>" + strings.Repeat("f", 880) + "</p>" +
			"<h2>Today's Points</h2><p>" + points + "</p>" +
			"<p>Follow us on social media</p>" +
			"<p>Bloomberg L.P. 731 Lexington Avenue, New York</p></body></html>"

		got := truncate(doc)

		assert.Equal(t, doc[:strings.Index(doc, "Follow us")], got)
		assert.Contains(t, got, "<h2>Today's Points</h2>")
		assert.Contains(t, got, points)
		assert.NotContains(t, got, "Follow us")
		assert.NotContains(t, got, "Lexington")
	})

	t.Run("protected table header pins cut to marker", func(t *testing.T) {
		t.Parallel()

		doc := "<div>" + strings.Repeat("a", 700) + "</div>" +
			"<table><tr><td>One More Thing</td></tr><tr><td>A closing note.</td></tr></table>" +
			"<div>You received this message because you subscribed.</div>"

		got := truncate(doc)

		assert.Equal(t, doc[:strings.Index(doc, "You received")], got)
		assert.Contains(t, got, "A closing note.")
	})

	t.Run("measures midpoint in characters", func(t *testing.T) {
		t.Parallel()

		doc := strings.Repeat("日", 400) + "Unsubscribe" + strings.Repeat("z", 589)
		require.Equal(t, 1000, utf8.RuneCountInString(doc))

		assert.Equal(t, doc, truncate(doc))
	})

	t.Run("measures container gate in characters", func(t *testing.T) {
		t.Parallel()

		doc := strings.Repeat("日", 300) + "<p>" + strings.Repeat("a", 200) + "Unsubscribe" + strings.Repeat("z", 486)
		require.Equal(t, 1000, utf8.RuneCountInString(doc))

		assert.Equal(t, doc[:strings.Index(doc, "Unsubscribe")], truncate(doc))
	})

	t.Run("handles multi-byte text before marker", func(t *testing.T) {
		t.Parallel()

		doc := strings.Repeat("Ä", 300) + "Unsubscribe" + strings.Repeat("z", 10)

		assert.Equal(t, strings.Repeat("Ä", 300), truncate(doc))
	})
}
