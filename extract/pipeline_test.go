package extract_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/extract"
	"github.com/fwojciec/logiris/mock"
	"github.com/fwojciec/logiris/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(t *testing.T) *extract.Pipeline {
	t.Helper()
	p, err := extract.NewPipeline(logiris.DefaultRules())
	require.NoError(t, err)
	return p
}

func TestNewPipeline(t *testing.T) {
	t.Parallel()

	rules := logiris.DefaultRules()
	rules.Origin = "ftp://example.test"

	_, err := extract.NewPipeline(rules)

	assert.Equal(t, logiris.EINVALID, logiris.ErrorCode(err))
}

func TestPipeline_Email(t *testing.T) {
	t.Parallel()

	t.Run("decodes sanitizes and truncates", func(t *testing.T) {
		t.Parallel()

		article := "<html><body><p>" + strings.Repeat("news ", 120) + "</p>"
		html := article + `<script>track()</script><table><tr><td><a href="https://x.test/u">Unsubscribe</a></td></tr></table></body></html>`
		root := &logiris.Payload{Part: logiris.Part{
			MimeType: "multipart/alternative",
			Parts: []*logiris.Part{
				{MimeType: "text/plain", Body: &logiris.PartBody{Data: payload.EncodeData("plain")}},
				{MimeType: "text/html", Body: &logiris.PartBody{Data: payload.EncodeData(html)}},
			},
		}}

		assert.Equal(t, article+"</body></html>", newPipeline(t).Email(root))
	})

	t.Run("renders plain text only messages", func(t *testing.T) {
		t.Parallel()

		root := &logiris.Payload{Part: logiris.Part{
			MimeType: "text/plain",
			Body:     &logiris.PartBody{Data: payload.EncodeData("hello")},
		}}

		assert.Equal(t, "<pre>hello</pre>", newPipeline(t).Email(root))
	})
}

func TestPipeline_Page(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and cleaned body", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("a", 600)
		doc := `<html><head><title>ignored</title></head><body>` +
			"<h1 class=\"headline\">Big <em>News</em>\n Today</h1>" +
			`<div class="body-copy fence"><p>` + text + `</p><script>x()</script><a href="/x">link</a><img src="/i.png"></div>` +
			`</body></html>`

		title, body := newPipeline(t).Page(doc)

		assert.Equal(t, "Big News Today", title)
		assert.Equal(t, `<p>`+text+`</p><span style="color:var(--accent-color)" href="/x">link</span><img src="https://www.bloomberg.com/i.png">`, body)
	})

	t.Run("returns placeholder when no body found", func(t *testing.T) {
		t.Parallel()

		title, body := newPipeline(t).Page("<html><body><p>teaser</p></body></html>")

		assert.Empty(t, title)
		assert.Equal(t, logiris.ExtractionFailedHTML, body)
	})

	t.Run("uses replaceable extractors", func(t *testing.T) {
		t.Parallel()

		p := newPipeline(t)
		p.Body = &mock.BodyExtractor{
			ExtractBodyFn: func(html string) string {
				return "<p>from mock</p>"
			},
		}
		p.Title = &mock.TitleExtractor{
			ExtractTitleFn: func(html string) string {
				return "Mock Title"
			},
		}

		title, body := p.Page("<html></html>")

		assert.Equal(t, "Mock Title", title)
		assert.Equal(t, "<p>from mock</p>", body)
	})
}

func TestProxyExtractor_Page(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 800)
	doc := `<h1>Stocks Rise</h1><article><p>` + text + `</p><script>x()</script><p>Unsubscribe here</p></article>`

	title, body := extract.ProxyExtractor{Pipeline: newPipeline(t)}.Page(doc)

	assert.Equal(t, "Stocks Rise", title)
	assert.Equal(t, `<p>`+text+`</p><p>Unsubscribe here</p>`, body)
}

func TestPipeline_ProxyResponse(t *testing.T) {
	t.Parallel()

	const url = "https://www.bloomberg.com/news/articles/x"

	t.Run("sanitizes successful body", func(t *testing.T) {
		t.Parallel()

		resp := &logiris.ProxyResponse{Success: true, Title: "T", Body: `<p>ok</p><script>alert(1)</script>`}

		title, body, err := newPipeline(t).ProxyResponse(resp, url)

		require.NoError(t, err)
		assert.Equal(t, "T", title)
		assert.Equal(t, "<p>ok</p>", body)
	})

	t.Run("removes trailing boilerplate from body", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("x", 800)
		resp := &logiris.ProxyResponse{Success: true, Body: text + "Unsubscribe from this list" + strings.Repeat("y", 174)}

		_, body, err := newPipeline(t).ProxyResponse(resp, url)

		require.NoError(t, err)
		assert.Equal(t, text, body)
	})

	t.Run("substitutes placeholder for empty body", func(t *testing.T) {
		t.Parallel()

		_, body, err := newPipeline(t).ProxyResponse(&logiris.ProxyResponse{Success: true}, url)

		require.NoError(t, err)
		assert.Equal(t, logiris.ExtractionFailedHTML, body)
	})

	t.Run("surfaces upstream failures with url", func(t *testing.T) {
		t.Parallel()

		for _, resp := range []*logiris.ProxyResponse{
			nil,
			{Error: "Fetch failed with status 403"},
			{Success: false},
		} {
			_, _, err := newPipeline(t).ProxyResponse(resp, url)

			require.Error(t, err)
			assert.Equal(t, logiris.EUPSTREAM, logiris.ErrorCode(err))
			assert.Contains(t, logiris.ErrorMessage(err), url)
		}
	})
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	t.Run("escapes message and url", func(t *testing.T) {
		t.Parallel()

		err := logiris.Errorf(logiris.EUPSTREAM, "fetching <bad>: status 500")

		got := extract.RenderError(err, "https://x.test/?a=1&b=2")

		assert.Contains(t, got, "fetching &lt;bad&gt;: status 500")
		assert.Contains(t, got, "https://x.test/?a=1&amp;b=2")
		assert.True(t, strings.HasPrefix(got, `<div style="color:red">`))
	})

	t.Run("hides internal error details", func(t *testing.T) {
		t.Parallel()

		got := extract.RenderError(errors.New("secret"), "https://x.test")

		assert.NotContains(t, got, "secret")
		assert.Contains(t, got, "Internal error.")
	})
}
