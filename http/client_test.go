package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/logiris"
	logirishttp "github.com/fwojciec/logiris/http"
	"github.com/fwojciec/logiris/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleURL = "https://www.bloomberg.com/news/articles/x"

func TestProxyClient_FetchArticle(t *testing.T) {
	t.Parallel()

	t.Run("posts request as JSON and decodes reply", func(t *testing.T) {
		t.Parallel()

		var got logiris.ProxyRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(`{"success":true,"title":"T","body":"<p>b</p>","url":"` + articleURL + `"}`))
		}))
		defer server.Close()

		resp, err := logirishttp.NewProxyClient(server.URL).FetchArticle(context.Background(), articleURL, "s=1")

		require.NoError(t, err)
		assert.Equal(t, logiris.ProxyRequest{URL: articleURL, Cookies: "s=1"}, got)
		assert.Equal(t, &logiris.ProxyResponse{Success: true, Title: "T", Body: "<p>b</p>", URL: articleURL}, resp)
	})

	t.Run("returns failed reply as-is", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"Exception: timeout"}`))
		}))
		defer server.Close()

		resp, err := logirishttp.NewProxyClient(server.URL).FetchArticle(context.Background(), articleURL, "")

		require.NoError(t, err)
		assert.Equal(t, "Exception: timeout", resp.Error)
		assert.False(t, resp.Success)
	})

	t.Run("wraps non-2xx status with proxy error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"Fetch failed with status 403"}`))
		}))
		defer server.Close()

		_, err := logirishttp.NewProxyClient(server.URL).FetchArticle(context.Background(), articleURL, "")

		assert.Equal(t, logiris.EUPSTREAM, logiris.ErrorCode(err))
		assert.Contains(t, logiris.ErrorMessage(err), articleURL)
		assert.Contains(t, logiris.ErrorMessage(err), "Fetch failed with status 403")
	})

	t.Run("wraps non-2xx status without body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := logirishttp.NewProxyClient(server.URL).FetchArticle(context.Background(), articleURL, "")

		assert.Equal(t, logiris.EUPSTREAM, logiris.ErrorCode(err))
		assert.Contains(t, logiris.ErrorMessage(err), "status 500")
	})

	t.Run("wraps malformed JSON", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>Moved</html>`))
		}))
		defer server.Close()

		_, err := logirishttp.NewProxyClient(server.URL).FetchArticle(context.Background(), articleURL, "")

		assert.Equal(t, logiris.EUPSTREAM, logiris.ErrorCode(err))
		assert.Contains(t, logiris.ErrorMessage(err), "malformed proxy response")
		assert.Contains(t, logiris.ErrorMessage(err), articleURL)
	})

	t.Run("wraps network errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		endpoint := server.URL
		server.Close()

		_, err := logirishttp.NewProxyClient(endpoint).FetchArticle(context.Background(), articleURL, "")

		assert.Equal(t, logiris.EUPSTREAM, logiris.ErrorCode(err))
		assert.Contains(t, logiris.ErrorMessage(err), articleURL)
	})

	t.Run("talks to Server end to end", func(t *testing.T) {
		t.Parallel()

		proxy := &logirishttp.Server{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url, cookies string) (string, error) {
					return "<h1>Hi</h1>", nil
				},
			},
			Extractor: &mock.PageExtractor{
				PageFn: func(html string) (string, string) {
					return "Hi", "<p>body</p>"
				},
			},
		}
		server := httptest.NewServer(proxy)
		defer server.Close()

		resp, err := logirishttp.NewProxyClient(server.URL).FetchArticle(context.Background(), articleURL, "s=1")

		require.NoError(t, err)
		assert.Equal(t, &logiris.ProxyResponse{Success: true, Title: "Hi", Body: "<p>body</p>", URL: articleURL}, resp)
	})
}
