package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// EmbeddingsProvider abstracts a text->embedding generator. Implementations
// return one vector per input text, in input order.
type EmbeddingsProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

// newEmbeddingsProvider prefers Cohere when a key is configured, falling
// back to the OpenAI embeddings endpoint (which shares the chat key).
// Both providers carry their own request timeout.
func newEmbeddingsProvider(cfg Config) EmbeddingsProvider {
	if cfg.CohereKey != "" {
		model := cfg.EmbedModel
		if model == "" {
			model = "embed-english-v3.0"
		}
		client := cohereclient.NewClient(
			cohereclient.WithToken(cfg.CohereKey),
			cohereclient.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		)
		return &CohereEmbeddings{client: client, model: model}
	}

	model := cfg.EmbedModel
	if model == "" {
		model = "text-embedding-3-small"
	}
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &OpenAIEmbeddings{
		apiKey:   cfg.OpenAIKey,
		model:    model,
		endpoint: endpoint + "/embeddings",
		client:   &http.Client{Timeout: timeout},
	}
}

// CohereEmbeddings implements EmbeddingsProvider via the Cohere v2 Embed API.
type CohereEmbeddings struct {
	client *cohereclient.Client
	model  string
}

func (c *CohereEmbeddings) ModelName() string { return c.model }

func (c *CohereEmbeddings) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          texts,
		Model:          c.model,
		InputType:      cohere.EmbedInputTypeClassification,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, fmt.Errorf("cohere embed: %w", err)
	}
	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errors.New("cohere embed returned empty response")
	}

	raw := resp.Embeddings.Float
	if len(raw) != len(texts) {
		return nil, errors.New("cohere embedding count mismatch")
	}

	out := make([][]float32, len(raw))
	for i, vec := range raw {
		converted := make([]float32, len(vec))
		for j, v := range vec {
			converted[j] = float32(v)
		}
		out[i] = converted
	}
	return out, nil
}

// OpenAIEmbeddings implements EmbeddingsProvider via the OpenAI Embeddings
// API (POST /v1/embeddings).
type OpenAIEmbeddings struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func (o *OpenAIEmbeddings) ModelName() string { return o.model }

func (o *OpenAIEmbeddings) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	payload, err := json.Marshal(map[string]any{
		"input": texts,
		"model": o.model,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	client := o.client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai embeddings: status %d", resp.StatusCode)
	}

	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Data) != len(texts) {
		return nil, errors.New("embedding count mismatch")
	}

	out := make([][]float32, len(parsed.Data))
	for _, d := range parsed.Data {
		out[d.Index] = d.Embedding
	}
	return out, nil
}
