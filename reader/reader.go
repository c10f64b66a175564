// Package reader turns mailbox messages and article pages into stored
// articles. It coordinates listing, fetching, extraction, and storage.
package reader

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/bloom"
	"github.com/fwojciec/logiris/extract"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of message details fetched at once.
const DefaultConcurrency = 8

// Reader orchestrates reading newsletters and article pages.
type Reader struct {
	Mailbox  logiris.Mailbox
	Articles logiris.ArticleService
	Pipeline *extract.Pipeline

	// Proxy, when set, fetches pages through the extraction proxy.
	// Otherwise Fetcher is used directly.
	Proxy   logiris.ProxyClient
	Fetcher logiris.Fetcher
	Limiter logiris.DomainLimiter

	// Seen holds message IDs handled in earlier runs. Optional.
	Seen *bloom.Filter

	// MarkRead marks stored messages as read in the mailbox.
	MarkRead bool

	Concurrency int
	RetryDelays []time.Duration
}

// Result holds the outcome of a mailbox read.
type Result struct {
	Articles      []*logiris.Article
	Saved         int
	Bytes         int
	Skipped       int
	Failed        int
	NextPageToken string
}

// ProgressEvent reports progress during a mailbox read.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	ID        string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting progress.
type ProgressFunc func(event ProgressEvent)

type fetchResult struct {
	position int
	id       string
	msg      *logiris.Message
	err      error
}

// ReadInbox reads one page of messages matching query, stores each unread
// newsletter as an article and returns what was saved. Messages are
// processed oldest first. A message that fails is counted and reported
// without stopping the others.
func (r *Reader) ReadInbox(ctx context.Context, query, pageToken string, progress ProgressFunc) (*Result, error) {
	if query == "" {
		query = logiris.DefaultMailQuery
	}

	ids, next, err := r.Mailbox.ListMessages(ctx, query, pageToken)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	result := &Result{NextPageToken: next}

	var pending []string
	for _, id := range ids {
		if r.Seen != nil && r.Seen.Test(id) {
			result.Skipped++
			continue
		}
		pending = append(pending, id)
	}

	total := len(pending)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	msgs := r.fetchMessages(ctx, pending, progress, result)

	slices.SortStableFunc(msgs, func(a, b *logiris.Message) int {
		return a.InternalDate.Compare(b.InternalDate)
	})

	var read []string
	for _, msg := range msgs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !msg.Unread() {
			result.Skipped++
			continue
		}

		exists, err := r.exists(ctx, logiris.SourceMail, msg.ID)
		if err != nil {
			result.Failed++
			continue
		}
		if exists {
			r.markSeen(msg.ID)
			result.Skipped++
			continue
		}

		article := &logiris.Article{
			Source:      logiris.SourceMail,
			SourceID:    msg.ID,
			Title:       msg.Subject,
			Content:     r.Pipeline.Email(msg.Payload),
			PublishedAt: msg.InternalDate,
		}
		if err := r.Articles.CreateArticle(ctx, article); err != nil {
			result.Failed++
			continue
		}

		r.markSeen(msg.ID)
		result.Articles = append(result.Articles, article)
		result.Saved++
		result.Bytes += len(article.Content)
		read = append(read, msg.ID)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	if r.MarkRead && len(read) > 0 {
		if err := r.Mailbox.MarkRead(ctx, read...); err != nil {
			return result, fmt.Errorf("mark read: %w", err)
		}
	}

	return result, nil
}

// fetchMessages retrieves message details concurrently. Failures are
// counted in result.
func (r *Reader) fetchMessages(ctx context.Context, ids []string, progress ProgressFunc, result *Result) []*logiris.Message {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan fetchResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, id := range ids {
			g.Go(func() error {
				msg, err := r.Mailbox.GetMessage(gctx, id)
				resultCh <- fetchResult{position: i, id: id, msg: msg, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	fetched := make([]*logiris.Message, len(ids))
	completed := 0
	for res := range resultCh {
		completed++
		if res.err == nil && res.msg == nil {
			res.err = logiris.Errorf(logiris.EUPSTREAM, "message %s: empty response", res.id)
		}
		if res.err != nil {
			result.Failed++
			if progress != nil {
				progress(ProgressEvent{Type: ProgressFailed, Completed: completed, Total: len(ids), ID: res.id, Error: res.err})
			}
			continue
		}
		fetched[res.position] = res.msg
		if progress != nil {
			progress(ProgressEvent{Type: ProgressCompleted, Completed: completed, Total: len(ids), ID: res.id})
		}
	}

	return slices.DeleteFunc(fetched, func(m *logiris.Message) bool { return m == nil })
}

// ReadPage fetches an article page, extracts it and stores it, replacing
// any earlier copy of the same URL. Upstream failures are returned as
// EUPSTREAM errors naming the URL.
func (r *Reader) ReadPage(ctx context.Context, rawURL, cookies string) (*logiris.Article, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, logiris.Errorf(logiris.EINVALID, "invalid article URL %q", rawURL)
	}

	var title, body string
	if r.Proxy != nil {
		resp, err := r.Proxy.FetchArticle(ctx, rawURL, cookies)
		if err != nil {
			return nil, err
		}
		if title, body, err = r.Pipeline.ProxyResponse(resp, rawURL); err != nil {
			return nil, err
		}
	} else {
		html, err := r.fetch(ctx, u.Host, rawURL, cookies)
		if err != nil {
			return nil, err
		}
		title, body = r.Pipeline.Page(html)
	}

	if err := r.replace(ctx, rawURL); err != nil {
		return nil, err
	}

	article := &logiris.Article{
		Source:   logiris.SourceWeb,
		SourceID: rawURL,
		Title:    title,
		Content:  body,
	}
	if err := r.Articles.CreateArticle(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (r *Reader) fetch(ctx context.Context, host, rawURL, cookies string) (string, error) {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx, host); err != nil {
			return "", err
		}
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, rawURL, func(ctx context.Context, url string) (string, error) {
		return r.Fetcher.Fetch(ctx, url, cookies)
	}, delays)
	switch {
	case err == nil:
		return html, nil
	case ctx.Err() != nil:
		return "", err
	case logiris.ErrorCode(err) == logiris.EINTERNAL:
		return "", logiris.Errorf(logiris.EUPSTREAM, "fetching %s: %v", rawURL, err)
	default:
		return "", err
	}
}

// replace removes a stored copy of the page at rawURL.
func (r *Reader) replace(ctx context.Context, rawURL string) error {
	source := logiris.SourceWeb
	existing, err := r.Articles.FindArticles(ctx, logiris.ArticleFilter{Source: &source, SourceID: &rawURL})
	if err != nil {
		return err
	}
	for _, a := range existing {
		if err := r.Articles.DeleteArticle(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) exists(ctx context.Context, source logiris.Source, sourceID string) (bool, error) {
	found, err := r.Articles.FindArticles(ctx, logiris.ArticleFilter{Source: &source, SourceID: &sourceID, Limit: 1})
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

func (r *Reader) markSeen(id string) {
	if r.Seen != nil {
		r.Seen.Add(id)
	}
}
