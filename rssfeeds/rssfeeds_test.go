package rssfeeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"articlevault/pipeline"
	"articlevault/types"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <link>https://example.com</link>
    <item>
      <title>First Post</title>
      <link>https://example.com/first</link>
      <author>alice@example.com (Alice)</author>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/second</link>
    </item>
    <item>
      <title>No Link Post</title>
    </item>
  </channel>
</rss>`

func TestFetchFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	subs, err := FetchFeed(context.Background(), server.URL, 10)
	if err != nil {
		t.Fatalf("FetchFeed error: %v", err)
	}
	// The item without a link is skipped.
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}
	if subs[0].URL != "https://example.com/first" || subs[0].Title != "First Post" {
		t.Fatalf("unexpected first submission: %+v", subs[0])
	}
	if subs[0].Source != "Example Feed" {
		t.Fatalf("feed title should become the source: %q", subs[0].Source)
	}
}

func TestFetchFeedHonorsMaxCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	subs, err := FetchFeed(context.Background(), server.URL, 1)
	if err != nil {
		t.Fatalf("FetchFeed error: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(subs))
	}
}

func TestFetchFeedBadSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := FetchFeed(context.Background(), server.URL, 10); err == nil {
		t.Fatal("expected error for a missing feed")
	}
}

func TestResolveFeedURL(t *testing.T) {
	if got := ResolveFeedURL("hn"); got != FeedPresets["hn"].URL {
		t.Fatalf("preset not resolved: %q", got)
	}
	direct := "https://example.com/rss.xml"
	if got := ResolveFeedURL(direct); got != direct {
		t.Fatalf("direct url should pass through: %q", got)
	}
}

type countingIngester struct {
	mu       sync.Mutex
	calls    int
	statuses map[string]pipeline.Status
	failURLs map[string]bool
}

func (c *countingIngester) Ingest(_ context.Context, sub types.Submission) (*pipeline.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.failURLs[sub.URL] {
		return nil, errors.New("extraction failed")
	}
	status := pipeline.StatusPersisted
	if s, ok := c.statuses[sub.URL]; ok {
		status = s
	}
	return &pipeline.Result{Status: status, Article: &types.Article{}}, nil
}

func TestIngestAllCountsOutcomes(t *testing.T) {
	subs := []types.Submission{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
		{URL: "https://example.com/c"},
		{URL: "https://example.com/d"},
	}
	ing := &countingIngester{
		statuses: map[string]pipeline.Status{"https://example.com/b": pipeline.StatusDuplicate},
		failURLs: map[string]bool{"https://example.com/c": true},
	}

	summary := IngestAll(context.Background(), ing, subs, 3)

	if ing.calls != len(subs) {
		t.Fatalf("expected %d ingest calls, got %d", len(subs), ing.calls)
	}
	if summary.Persisted != 2 || summary.Duplicates != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestIngestAllEmptyInput(t *testing.T) {
	summary := IngestAll(context.Background(), &countingIngester{}, nil, 0)
	if summary != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}
