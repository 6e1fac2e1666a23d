// Package rssfeeds pulls articles from RSS/Atom feeds and runs them through
// the ingestion pipeline.
package rssfeeds

// FeedConfig represents the configuration for a single RSS feed
type FeedConfig struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FeedPresets maps friendly keys to RSS feed configurations
var FeedPresets = map[string]FeedConfig{
	"hn": {
		Name: "Hacker News",
		URL:  "https://hnrss.org/newest",
	},
	"tr": {
		Name: "Technology Review",
		URL:  "https://www.technologyreview.com/feed/",
	},
	"habr": {
		Name: "Habr",
		URL:  "https://habr.com/ru/rss/articles/",
	},
	"lobsters": {
		Name: "Lobsters",
		URL:  "https://lobste.rs/rss",
	},
}

// Default configuration values
const (
	DefaultFeedPreset = "hn"
	DefaultCount      = 10
)

// ResolveFeedURL resolves a feed identifier to a URL: preset names map to
// their configured URL, anything else is returned as-is.
func ResolveFeedURL(feedInput string) string {
	if config, exists := FeedPresets[feedInput]; exists {
		return config.URL
	}
	return feedInput
}
