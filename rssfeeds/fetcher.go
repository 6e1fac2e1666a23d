package rssfeeds

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"articlevault/types"
)

// FetchFeed retrieves and parses an RSS/Atom feed, returning one submission
// per item. Submissions carry only the item URL and metadata; full content is
// resolved by the pipeline's extractor.
func FetchFeed(ctx context.Context, feedURL string, maxCount int) ([]types.Submission, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := min(len(feed.Items), maxCount)
	subs := make([]types.Submission, 0, count)

	for i := 0; i < count; i++ {
		item := feed.Items[i]
		if item.Link == "" {
			continue
		}

		author := ""
		if item.Author != nil {
			author = item.Author.Name
		}

		subs = append(subs, types.Submission{
			URL:    item.Link,
			Title:  item.Title,
			Author: author,
			Source: feed.Title,
		})
	}

	return subs, nil
}
