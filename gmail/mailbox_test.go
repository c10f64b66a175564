package gmail_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/gmail"
	"github.com/fwojciec/logiris/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func newMailbox(t *testing.T, handler http.Handler) *gmail.Mailbox {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmailv1.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return gmail.NewMailbox(svc)
}

func TestMailbox_ListMessages(t *testing.T) {
	t.Parallel()

	t.Run("passes query and page token", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, logiris.DefaultMailQuery, r.URL.Query().Get("q"))
			assert.Equal(t, "p1", r.URL.Query().Get("pageToken"))
			assert.Equal(t, "100", r.URL.Query().Get("maxResults"))
			_, _ = w.Write([]byte(`{"messages":[{"id":"a","threadId":"t"},{"id":"b","threadId":"t"}],"nextPageToken":"p2"}`))
		})

		ids, next, err := newMailbox(t, mux).ListMessages(context.Background(), logiris.DefaultMailQuery, "p1")

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids)
		assert.Equal(t, "p2", next)
	})

	t.Run("maps server errors to upstream", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"backend unavailable"}}`))
		})

		_, _, err := newMailbox(t, mux).ListMessages(context.Background(), "", "")

		assert.Equal(t, logiris.EUPSTREAM, logiris.ErrorCode(err))
	})
}

func TestMailbox_GetMessage(t *testing.T) {
	t.Parallel()

	t.Run("converts full message", func(t *testing.T) {
		t.Parallel()

		html := payload.EncodeData("<p>Good morning</p>")
		mux := http.NewServeMux()
		mux.HandleFunc("GET /gmail/v1/users/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "full", r.URL.Query().Get("format"))
			_, _ = w.Write([]byte(`{
				"id": "m1",
				"threadId": "t1",
				"labelIds": ["UNREAD", "INBOX"],
				"internalDate": "1700000000000",
				"snippet": "Good morning",
				"payload": {
					"mimeType": "multipart/alternative",
					"headers": [
						{"name": "Subject", "value": "Five Things to Start Your Day"},
						{"name": "From", "value": "Bloomberg <noreply@news.bloomberg.com>"}
					],
					"body": {"size": 0},
					"parts": [
						{"mimeType": "text/html", "body": {"data": "` + html + `", "size": 19}}
					]
				}
			}`))
		})

		msg, err := newMailbox(t, mux).GetMessage(context.Background(), "m1")

		require.NoError(t, err)
		assert.Equal(t, "m1", msg.ID)
		assert.Equal(t, "t1", msg.ThreadID)
		assert.True(t, msg.Unread())
		assert.Equal(t, time.UnixMilli(1700000000000).UTC(), msg.InternalDate)
		assert.Equal(t, "Five Things to Start Your Day", msg.Subject)
		assert.Equal(t, "Bloomberg <noreply@news.bloomberg.com>", msg.From)
		assert.Equal(t, "Good morning", msg.Payload.Snippet)
		assert.Equal(t, "<p>Good morning</p>", payload.Decode(msg.Payload).HTML)
	})

	t.Run("maps 404 to not found", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("GET /gmail/v1/users/me/messages/gone", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found."}}`))
		})

		_, err := newMailbox(t, mux).GetMessage(context.Background(), "gone")

		assert.Equal(t, logiris.ENOTFOUND, logiris.ErrorCode(err))
	})
}

func TestMailbox_MarkRead(t *testing.T) {
	t.Parallel()

	t.Run("modifies single message", func(t *testing.T) {
		t.Parallel()

		var got gmailv1.ModifyMessageRequest
		mux := http.NewServeMux()
		mux.HandleFunc("POST /gmail/v1/users/me/messages/m1/modify", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(`{"id":"m1"}`))
		})

		err := newMailbox(t, mux).MarkRead(context.Background(), "m1")

		require.NoError(t, err)
		assert.Equal(t, []string{"UNREAD"}, got.RemoveLabelIds)
	})

	t.Run("batch modifies several messages", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var got gmailv1.BatchModifyMessagesRequest
		mux := http.NewServeMux()
		mux.HandleFunc("POST /gmail/v1/users/me/messages/batchModify", func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			_ = json.Unmarshal(body, &got)
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		})

		err := newMailbox(t, mux).MarkRead(context.Background(), "a", "b", "c")

		require.NoError(t, err)
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"a", "b", "c"}, got.Ids)
		assert.Equal(t, []string{"UNREAD"}, got.RemoveLabelIds)
	})

	t.Run("does nothing without IDs", func(t *testing.T) {
		t.Parallel()

		err := newMailbox(t, http.NotFoundHandler()).MarkRead(context.Background())

		require.NoError(t, err)
	})
}

func TestFromMessage(t *testing.T) {
	t.Parallel()

	t.Run("handles message without payload", func(t *testing.T) {
		t.Parallel()

		msg := gmail.FromMessage(&gmailv1.Message{Id: "x", Snippet: "hi"})

		assert.Equal(t, "x", msg.ID)
		assert.Equal(t, "hi", payload.Decode(msg.Payload).HTML)
	})

	t.Run("keeps nested part order", func(t *testing.T) {
		t.Parallel()

		msg := gmail.FromMessage(&gmailv1.Message{
			Payload: &gmailv1.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmailv1.MessagePart{
					{MimeType: "multipart/alternative", Parts: []*gmailv1.MessagePart{
						{MimeType: "text/plain", Body: &gmailv1.MessagePartBody{Data: payload.EncodeData("one")}},
					}},
					{MimeType: "text/plain", Body: &gmailv1.MessagePartBody{Data: payload.EncodeData("two")}},
				},
			},
		})

		assert.Equal(t, "onetwo", payload.Decode(msg.Payload).Text)
	})
}
