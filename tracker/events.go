// Package tracker publishes and consumes article lifecycle events over
// Kafka. Publishing is best-effort: the pipeline treats a failed publish as
// a logged warning, never as an ingestion failure.
package tracker

import "time"

// EventTypePersisted is emitted once per newly stored article.
const EventTypePersisted = "article_persisted"

// ArticleEvent is the wire format for article lifecycle events.
type ArticleEvent struct {
	Type        string    `json:"type"`
	ArticleID   int64     `json:"article_id"`
	Fingerprint string    `json:"fingerprint"`
	Source      string    `json:"source,omitempty"`
	Language    string    `json:"language,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	SubmitterID int64     `json:"submitter_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
