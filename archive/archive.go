// Package archive writes persisted articles to object storage as JSON. The
// archive is a best-effort backup behind a pipeline hook; the database stays
// the source of truth.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"articlevault/pipeline"
	"articlevault/types"
)

// ObjectPutter is the storage surface the archiver needs; common.S3
// satisfies it.
type ObjectPutter interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
}

// Archiver uploads article snapshots to a bucket.
type Archiver struct {
	storage ObjectPutter
	bucket  string
	prefix  string
}

// New creates an archiver writing under prefix in bucket.
func New(storage ObjectPutter, bucket, prefix string) *Archiver {
	if prefix == "" {
		prefix = "articles"
	}
	return &Archiver{storage: storage, bucket: bucket, prefix: prefix}
}

// Key returns the object key for an article snapshot. Fingerprints are
// stable across duplicates, so re-archiving overwrites the same object.
func (a *Archiver) Key(article *types.Article) string {
	return fmt.Sprintf("%s/%s.json", a.prefix, article.Fingerprint)
}

// Archive uploads one article as an indented JSON document.
func (a *Archiver) Archive(ctx context.Context, article *types.Article) error {
	payload, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return fmt.Errorf("encode article %d: %w", article.ID, err)
	}

	key := a.Key(article)
	if err := a.storage.Put(ctx, a.bucket, key, bytes.NewReader(payload), "application/json"); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// Hook adapts the archiver to the pipeline's post-persist hook.
func (a *Archiver) Hook() pipeline.Hook {
	return pipeline.HookFunc(a.Archive)
}
