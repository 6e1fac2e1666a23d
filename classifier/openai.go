package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"articlevault/types"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultChatModel = "gpt-4o-mini"
	defaultTimeout   = 30 * time.Second

	// maxInputRunes keeps prompts inside model token limits.
	maxInputRunes = 6000
	maxKeywords   = 8
	maxSubcats    = 3
)

// primaryCategory is one entry of the classifier taxonomy. Descriptions are
// embedded once and compared against the article text by cosine similarity.
type primaryCategory struct {
	Key           string
	Description   string
	Subcategories []string
}

func defaultTaxonomy() []primaryCategory {
	return []primaryCategory{
		{Key: "AI", Description: "Machine learning, neural networks, large language models and applied AI", Subcategories: []string{"LLM", "NLP", "Computer Vision", "MLOps"}},
		{Key: "Programming", Description: "Programming languages, frameworks, algorithms and software engineering practice", Subcategories: []string{"Python", "Go", "JavaScript", "Testing", "Architecture"}},
		{Key: "Data", Description: "Data engineering, databases, analytics and data science", Subcategories: []string{"SQL", "Streaming", "Analytics"}},
		{Key: "DevOps", Description: "Deployment, infrastructure, containers, CI/CD and reliability", Subcategories: []string{"Kubernetes", "Observability", "CI/CD"}},
		{Key: "Business", Description: "Business processes, startups, management and strategy", Subcategories: []string{"Management", "Strategy", "Investment"}},
		{Key: "Other", Description: "Topics outside technology and business", Subcategories: []string{"General"}},
	}
}

// AIClassifier classifies articles with an OpenAI-compatible chat endpoint
// plus an embeddings provider for primary-category ranking.
type AIClassifier struct {
	apiKey    string
	baseURL   string
	chatModel string
	timeout   time.Duration
	client    *http.Client
	embedder  EmbeddingsProvider
	taxonomy  []primaryCategory

	mu              sync.Mutex
	taxonomyVectors [][]float32
}

// NewAIClassifier wires the HTTP-backed classifier. The embedder may come
// from Cohere or OpenAI; see newEmbeddingsProvider.
func NewAIClassifier(cfg Config, embedder EmbeddingsProvider) *AIClassifier {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &AIClassifier{
		apiKey:    cfg.OpenAIKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		chatModel: chatModel,
		timeout:   timeout,
		client:    &http.Client{Timeout: timeout},
		embedder:  embedder,
		taxonomy:  defaultTaxonomy(),
	}
}

func (c *AIClassifier) Available() bool { return true }

// Classify ranks the primary category by embedding similarity against the
// taxonomy descriptions, then asks the chat model for subcategories,
// keywords and a summary. Any upstream failure surfaces as *ServiceError.
func (c *AIClassifier) Classify(ctx context.Context, text, title string) (*Result, error) {
	content := title
	if content != "" {
		content += "\n\n"
	}
	content += text
	if runes := []rune(content); len(runes) > maxInputRunes {
		content = string(runes[:maxInputRunes])
	}

	primary, confidence, err := c.classifyPrimary(ctx, content)
	if err != nil {
		return nil, &ServiceError{Op: "primary classification", Err: err}
	}

	details, err := c.extractDetails(ctx, primary, content)
	if err != nil {
		return nil, &ServiceError{Op: "detail extraction", Err: err}
	}

	return &Result{
		Available: true,
		Categories: &types.AdvancedCategories{
			PrimaryCategory: primary.Key,
			Subcategories:   details.Subcategories,
			Keywords:        details.Keywords,
			Confidence:      clamp01(confidence),
			Summary:         details.Summary,
		},
	}, nil
}

// taxonomyEmbeddings returns the taxonomy description vectors, computing
// them on first use. Only success is cached: a failed attempt is retried on
// the next call. The cache is shared across requests, so it is built under
// its own deadline rather than the submitting request's context.
func (c *AIClassifier) taxonomyEmbeddings() ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.taxonomyVectors != nil {
		return c.taxonomyVectors, nil
	}

	descriptions := make([]string, len(c.taxonomy))
	for i, cat := range c.taxonomy {
		descriptions[i] = cat.Description
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	vectors, err := c.embedder.EmbedTexts(ctx, descriptions)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(c.taxonomy) {
		return nil, fmt.Errorf("expected %d taxonomy embeddings, got %d", len(c.taxonomy), len(vectors))
	}
	c.taxonomyVectors = vectors
	return vectors, nil
}

func (c *AIClassifier) classifyPrimary(ctx context.Context, content string) (primaryCategory, float64, error) {
	taxonomyVectors, err := c.taxonomyEmbeddings()
	if err != nil {
		return primaryCategory{}, 0, fmt.Errorf("embed taxonomy: %w", err)
	}

	vectors, err := c.embedder.EmbedTexts(ctx, []string{content})
	if err != nil {
		return primaryCategory{}, 0, fmt.Errorf("embed article: %w", err)
	}
	if len(vectors) != 1 {
		return primaryCategory{}, 0, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}

	bestIdx, bestSim := 0, float64(-1)
	for i, catVec := range taxonomyVectors {
		sim := cosineSimilarity(vectors[0], catVec)
		if sim > bestSim {
			bestIdx, bestSim = i, sim
		}
	}

	// Similarity scores between short descriptions and long articles land
	// low on the cosine scale; rescale into a usable confidence band.
	confidence := bestSim
	if confidence > 0.4 {
		confidence = math.Min(confidence*1.2, 0.95)
	} else if confidence < 0.25 {
		confidence = 0.25
	}

	return c.taxonomy[bestIdx], confidence, nil
}

type detailResult struct {
	Subcategories []string `json:"subcategories"`
	Keywords      []string `json:"keywords"`
	Summary       string   `json:"summary"`
}

func (c *AIClassifier) extractDetails(ctx context.Context, primary primaryCategory, content string) (*detailResult, error) {
	prompt := fmt.Sprintf(`The article below belongs to the %q category.
Pick up to %d subcategories from this list: %s.
Extract up to %d keywords and write a 2-3 sentence summary in the article's language.
Respond with JSON: {"subcategories": [...], "keywords": [...], "summary": "..."}

Article:
%s`, primary.Key, maxSubcats, strings.Join(primary.Subcategories, ", "), maxKeywords, content)

	raw, err := c.chatCompletion(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var details detailResult
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil, fmt.Errorf("malformed model response: %w", err)
	}

	details.Subcategories = intersect(details.Subcategories, primary.Subcategories, maxSubcats)
	if len(details.Keywords) > maxKeywords {
		details.Keywords = details.Keywords[:maxKeywords]
	}
	return &details, nil
}

func (c *AIClassifier) chatCompletion(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": c.chatModel,
		"messages": []map[string]string{
			{"role": "system", "content": "You classify articles. Respond only with valid JSON."},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
		"temperature":     0.2,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion: status %s", resp.Status)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	return parsed.Choices[0].Message.Content, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// intersect keeps values that appear in allowed, preserving input order.
func intersect(values, allowed []string, limit int) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}

	var out []string
	for _, v := range values {
		if _, ok := allowedSet[v]; ok {
			out = append(out, v)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
