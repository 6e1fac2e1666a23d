// Package extractor resolves a URL to its readable article content. Fetching
// and readability parsing are bounded by a single timeout; failures are
// terminal for the submission and are not retried here.
package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

const (
	// MinTextLength rejects pages whose extracted text is too short to be a
	// real article (boilerplate-only pages, paywalls, error pages).
	MinTextLength = 50

	defaultTimeout = 30 * time.Second
	userAgent      = "articlevault/1.0"
)

// ExtractionError reports why a URL could not be resolved to article text.
type ExtractionError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.URL, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Content is the readable payload extracted from a page.
type Content struct {
	Title    string
	Text     string
	HTML     string
	Excerpt  string
	Byline   string
	SiteName string
}

// Extractor fetches a URL and extracts its main readable content.
type Extractor struct {
	client *http.Client
}

// New builds an extractor; a nil client gets a default with the package
// timeout applied.
func New(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Extractor{client: client}
}

// Extract fetches the page and runs readability over it.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Content, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &ExtractionError{URL: pageURL, Reason: "invalid url", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &ExtractionError{URL: pageURL, Reason: "build request", Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &ExtractionError{URL: pageURL, Reason: "fetch failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ExtractionError{URL: pageURL, Reason: "unexpected status " + resp.Status}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, &ExtractionError{URL: pageURL, Reason: "not an HTML page: " + contentType}
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return nil, &ExtractionError{URL: pageURL, Reason: "readability failed", Err: err}
	}

	text := strings.TrimSpace(article.TextContent)
	if utf8.RuneCountInString(text) < MinTextLength {
		return nil, &ExtractionError{URL: pageURL, Reason: fmt.Sprintf("extracted text shorter than %d characters", MinTextLength)}
	}

	return &Content{
		Title:    strings.TrimSpace(article.Title),
		Text:     text,
		HTML:     article.Content,
		Excerpt:  article.Excerpt,
		Byline:   article.Byline,
		SiteName: article.SiteName,
	}, nil
}
