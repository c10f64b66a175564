package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/logiris"
)

// maxErrorHTML is how much of a failed upstream response is echoed back.
const maxErrorHTML = 500

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 1 << 20

// Ensure Server implements http.Handler at compile time.
var _ http.Handler = (*Server)(nil)

// Server is the article proxy. It fetches a page with the caller's cookies
// and answers with the extracted title and body.
type Server struct {
	Fetcher   logiris.Fetcher
	Extractor logiris.PageExtractor

	// Limiter, if set, throttles upstream requests per host.
	Limiter logiris.DomainLimiter
}

// ServeHTTP handles GET and POST proxy requests and CORS preflight.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet, http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, &logiris.ProxyResponse{Error: "Method not allowed"})
		return
	}

	req, err := readRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, &logiris.ProxyResponse{Error: err.Error()})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, &logiris.ProxyResponse{Error: "URL is required"})
		return
	}
	target, err := url.Parse(req.URL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		writeJSON(w, http.StatusBadRequest, &logiris.ProxyResponse{Error: "URL must be an absolute http(s) URL"})
		return
	}

	ctx := r.Context()
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx, target.Host); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, &logiris.ProxyResponse{Error: err.Error()})
			return
		}
	}

	html, err := s.Fetcher.Fetch(ctx, req.URL, req.Cookies)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			writeJSON(w, http.StatusBadGateway, &logiris.ProxyResponse{
				Error: fmt.Sprintf("Fetch failed with status %d", statusErr.StatusCode),
				HTML:  truncateRunes(statusErr.Body, maxErrorHTML),
			})
			return
		}
		writeJSON(w, http.StatusBadGateway, &logiris.ProxyResponse{Error: err.Error()})
		return
	}

	title, body := s.Extractor.Page(html)
	writeJSON(w, http.StatusOK, &logiris.ProxyResponse{
		Success: true,
		Title:   title,
		Body:    body,
		URL:     req.URL,
	})
}

// readRequest takes url and cookies from query or form parameters, falling
// back to a JSON body. JSON bodies are accepted with any content type,
// including the text/plain that bookmarklets send.
func readRequest(r *http.Request) (*logiris.ProxyRequest, error) {
	isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
	if !isJSON {
		if err := r.ParseForm(); err == nil && r.Form.Get("url") != "" {
			return &logiris.ProxyRequest{URL: r.Form.Get("url"), Cookies: r.Form.Get("cookies")}, nil
		}
	}
	if q := r.URL.Query(); q.Get("url") != "" {
		return &logiris.ProxyRequest{URL: q.Get("url"), Cookies: q.Get("cookies")}, nil
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return &logiris.ProxyRequest{}, nil
	}

	var req logiris.ProxyRequest
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return &logiris.ProxyRequest{}, nil
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return &req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
