// Package pipeline runs a submission through resolution, fingerprinting,
// duplicate detection, categorization and persistence. A duplicate is a
// normal outcome, not an error: the result carries the already-stored
// article and StatusDuplicate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"articlevault/categorizer"
	"articlevault/classifier"
	"articlevault/extractor"
	"articlevault/fingerprint"
	"articlevault/store"
	"articlevault/types"
)

// Status is the terminal state of an ingestion run.
type Status string

const (
	StatusPersisted Status = "persisted"
	StatusDuplicate Status = "duplicate"
)

// Result is the ingestion outcome. For StatusDuplicate the Article is the
// previously stored one.
type Result struct {
	Status  Status         `json:"status"`
	Article *types.Article `json:"article"`
}

// ErrNoContent is returned when a submission carries neither text nor URL.
var ErrNoContent = errors.New("submission has neither text nor url")

// ArticleStore is the persistence surface the pipeline needs.
type ArticleStore interface {
	Insert(ctx context.Context, a *types.Article) (*types.Article, error)
	FindByFingerprint(ctx context.Context, fp string) (*types.Article, error)
}

// ContentExtractor resolves a URL into readable article content.
type ContentExtractor interface {
	Extract(ctx context.Context, pageURL string) (*extractor.Content, error)
}

// DuplicateFilter is the optional bloom fast path. A false MayContain skips
// the store lookup; a true one still requires it.
type DuplicateFilter interface {
	MayContain(ctx context.Context, fp string) (bool, error)
	Add(ctx context.Context, fp string) error
}

// Hook runs after an article is persisted (archival, event publishing).
// Hook failures are logged and never fail the ingestion.
type Hook interface {
	ArticlePersisted(ctx context.Context, a *types.Article) error
}

// Pipeline wires the ingestion stages together. Extractor and Store are
// required; Filter, Classifier, Catalog and Hooks are optional.
type Pipeline struct {
	store      ArticleStore
	extractor  ContentExtractor
	filter     DuplicateFilter
	classifier classifier.Classifier
	catalog    *categorizer.Catalog
	hooks      []Hook
	logger     *log.Logger
}

// Option configures optional pipeline stages.
type Option func(*Pipeline)

// WithFilter enables the bloom fast path.
func WithFilter(f DuplicateFilter) Option {
	return func(p *Pipeline) { p.filter = f }
}

// WithClassifier enables AI categorization.
func WithClassifier(c classifier.Classifier) Option {
	return func(p *Pipeline) { p.classifier = c }
}

// WithHooks registers post-persist hooks, run in order.
func WithHooks(hooks ...Hook) Option {
	return func(p *Pipeline) { p.hooks = append(p.hooks, hooks...) }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New builds a pipeline over the given store and extractor.
func New(st ArticleStore, ex ContentExtractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:      st,
		extractor:  ex,
		classifier: classifier.Unavailable(),
		catalog:    categorizer.DefaultCatalog(),
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest runs one submission through the pipeline.
//
// Stage order: resolve content, fingerprint, duplicate check, categorize,
// persist, post-persist hooks. Nothing is written before the persist stage,
// so a rejected submission leaves no trace.
func (p *Pipeline) Ingest(ctx context.Context, sub types.Submission) (*Result, error) {
	article, err := p.resolve(ctx, sub)
	if err != nil {
		return nil, err
	}

	fp, err := fingerprint.Generate(article.Text)
	if err != nil {
		return nil, err
	}
	article.Fingerprint = fp

	if existing, err := p.findDuplicate(ctx, fp); err != nil {
		return nil, err
	} else if existing != nil {
		return &Result{Status: StatusDuplicate, Article: existing}, nil
	}

	p.categorize(ctx, article)

	saved, err := p.store.Insert(ctx, article)
	if err != nil {
		var dup *store.DuplicateError
		if errors.As(err, &dup) {
			// Lost an insert race; same informational outcome as the
			// early duplicate check.
			if dup.Existing != nil {
				return &Result{Status: StatusDuplicate, Article: dup.Existing}, nil
			}
			existing, findErr := p.store.FindByFingerprint(ctx, fp)
			if findErr != nil || existing == nil {
				return nil, err
			}
			return &Result{Status: StatusDuplicate, Article: existing}, nil
		}
		return nil, err
	}

	p.afterPersist(ctx, saved)

	return &Result{Status: StatusPersisted, Article: saved}, nil
}

// resolve produces the unsaved article from the submission, extracting from
// the URL unless ForceText is set.
func (p *Pipeline) resolve(ctx context.Context, sub types.Submission) (*types.Article, error) {
	article := &types.Article{
		Title:       sub.Title,
		Text:        sub.Text,
		Source:      sub.Source,
		Author:      sub.Author,
		Language:    sub.Language,
		SubmitterID: sub.SubmitterID,
	}

	useURL := sub.URL != "" && !sub.ForceText
	if !useURL {
		if sub.Text == "" {
			return nil, ErrNoContent
		}
		return article, nil
	}

	content, err := p.extractor.Extract(ctx, sub.URL)
	if err != nil {
		return nil, err
	}

	article.Text = content.Text
	article.OriginalLink = sub.URL
	if article.Title == "" {
		article.Title = content.Title
	}
	if article.Source == "" {
		article.Source = content.SiteName
	}
	if article.Author == "" {
		article.Author = content.Byline
	}
	if article.Summary == "" {
		article.Summary = content.Excerpt
	}
	return article, nil
}

// findDuplicate checks the bloom fast path, then the store. Filter errors
// are logged and fall through to the store lookup.
func (p *Pipeline) findDuplicate(ctx context.Context, fp string) (*types.Article, error) {
	if p.filter != nil {
		may, err := p.filter.MayContain(ctx, fp)
		if err != nil {
			p.logger.Printf("pipeline: bloom check failed, falling back to store: %v", err)
		} else if !may {
			return nil, nil
		}
	}

	existing, err := p.store.FindByFingerprint(ctx, fp)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// categorize fills language and category fields in place. Classifier
// failures degrade to keyword categorization only.
func (p *Pipeline) categorize(ctx context.Context, article *types.Article) {
	if article.Language == "" {
		article.Language = categorizer.DetectLanguage(article.Text)
	}
	article.CategoriesAuto = p.catalog.Categorize(article.Text, article.Title, article.Language)

	result, err := p.classifier.Classify(ctx, article.Text, article.Title)
	if err != nil {
		p.logger.Printf("pipeline: classifier failed, keeping keyword categories: %v", err)
		return
	}
	if !result.Available {
		return
	}
	article.CategoriesAdvanced = result.Categories
	if article.Summary == "" && result.Categories != nil {
		article.Summary = result.Categories.Summary
	}
}

// afterPersist runs the best-effort stages: bloom insertion and hooks.
func (p *Pipeline) afterPersist(ctx context.Context, article *types.Article) {
	if p.filter != nil {
		if err := p.filter.Add(ctx, article.Fingerprint); err != nil {
			p.logger.Printf("pipeline: bloom add failed for article %d: %v", article.ID, err)
		}
	}
	for _, h := range p.hooks {
		if err := h.ArticlePersisted(ctx, article); err != nil {
			p.logger.Printf("pipeline: post-persist hook failed for article %d: %v", article.ID, err)
		}
	}
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, a *types.Article) error

func (f HookFunc) ArticlePersisted(ctx context.Context, a *types.Article) error { return f(ctx, a) }

var _ Hook = HookFunc(nil)

// String implements fmt.Stringer for log output.
func (r *Result) String() string {
	if r.Article == nil {
		return string(r.Status)
	}
	return fmt.Sprintf("%s (article %d)", r.Status, r.Article.ID)
}
