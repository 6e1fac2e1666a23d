// Package classifier provides AI-backed article categorization. It is an
// optional capability: when no API key is configured the Unavailable
// implementation is selected and callers degrade to keyword categorization
// without treating that as an error.
package classifier

import (
	"context"
	"fmt"
	"time"

	"articlevault/types"
)

// Result is the classifier output. Available is false for the sentinel
// implementation; Categories is only set when Available is true.
type Result struct {
	Available  bool
	Categories *types.AdvancedCategories
}

// Classifier produces a structured categorization for article text.
// Implementations must respect the context deadline.
type Classifier interface {
	Classify(ctx context.Context, text, title string) (*Result, error)
	Available() bool
}

// ServiceError indicates a configured classification service failed
// (timeout, quota, malformed response). Callers recover from it by keeping
// only the basic categorization.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("classification service: %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Config selects and parameterizes the classifier implementation.
type Config struct {
	OpenAIKey  string
	CohereKey  string
	BaseURL    string // OpenAI-compatible endpoint; defaults to api.openai.com
	ChatModel  string
	EmbedModel string
	Timeout    time.Duration
}

// New picks the implementation from configuration: a real HTTP-backed
// classifier when an OpenAI key is present, the sentinel otherwise.
func New(cfg Config) Classifier {
	if cfg.OpenAIKey == "" {
		return Unavailable()
	}
	return NewAIClassifier(cfg, newEmbeddingsProvider(cfg))
}

// Unavailable returns the no-op classifier used when the service is not
// configured.
func Unavailable() Classifier { return unavailableClassifier{} }

type unavailableClassifier struct{}

func (unavailableClassifier) Classify(context.Context, string, string) (*Result, error) {
	return &Result{Available: false}, nil
}

func (unavailableClassifier) Available() bool { return false }
