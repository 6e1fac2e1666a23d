package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"articlevault/extractor"
	"articlevault/pipeline"
	"articlevault/store"
	"articlevault/types"
)

type fakeIngester struct {
	result *pipeline.Result
	err    error
	last   types.Submission
}

func (f *fakeIngester) Ingest(_ context.Context, sub types.Submission) (*pipeline.Result, error) {
	f.last = sub
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeReader struct {
	byID       map[int64]*types.Article
	byFp       map[string]*types.Article
	listResult []*types.Article
	lastFilter store.ListFilter
	stats      *store.Stats
}

func (f *fakeReader) FindByID(_ context.Context, id int64) (*types.Article, error) {
	return f.byID[id], nil
}

func (f *fakeReader) FindByFingerprint(_ context.Context, fp string) (*types.Article, error) {
	return f.byFp[fp], nil
}

func (f *fakeReader) List(_ context.Context, filter store.ListFilter) ([]*types.Article, error) {
	f.lastFilter = filter
	return f.listResult, nil
}

func (f *fakeReader) Stats(context.Context) (*store.Stats, error) {
	return f.stats, nil
}

type fakeWriter struct {
	counterID  int64
	counterUpd store.CounterUpdate
	categoryID int64
	category   string
	err        error
}

func (f *fakeWriter) UpdateCounters(_ context.Context, id int64, upd store.CounterUpdate) error {
	f.counterID, f.counterUpd = id, upd
	return f.err
}

func (f *fakeWriter) AddUserCategory(_ context.Context, id int64, category string) error {
	f.categoryID, f.category = id, category
	return f.err
}

func newTestRouter(ingester Ingester, reader ArticleReader, writer ArticleWriter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewServer(ingester, reader, writer))
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitArticlePersisted(t *testing.T) {
	ingester := &fakeIngester{result: &pipeline.Result{
		Status:  pipeline.StatusPersisted,
		Article: &types.Article{ID: 1, Fingerprint: strings.Repeat("a", 64), Text: "body"},
	}}
	router := newTestRouter(ingester, &fakeReader{}, &fakeWriter{})

	w := doJSON(t, router, http.MethodPost, "/api/articles", gin.H{"text": "body", "submitter_id": 3})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}
	if ingester.last.SubmitterID != 3 {
		t.Fatalf("submission not passed through: %+v", ingester.last)
	}

	var resp struct {
		Status  string        `json:"status"`
		Article types.Article `json:"article"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "persisted" || resp.Article.ID != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSubmitArticleDuplicateIsOK(t *testing.T) {
	existing := &types.Article{ID: 42, Fingerprint: strings.Repeat("b", 64)}
	ingester := &fakeIngester{result: &pipeline.Result{Status: pipeline.StatusDuplicate, Article: existing}}
	router := newTestRouter(ingester, &fakeReader{}, &fakeWriter{})

	w := doJSON(t, router, http.MethodPost, "/api/articles", gin.H{"text": "seen before"})
	if w.Code != http.StatusOK {
		t.Fatalf("duplicate must be 200, got %d: %s", w.Code, w.Body)
	}

	var resp struct {
		Status  string        `json:"status"`
		Article types.Article `json:"article"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "duplicate" || resp.Article.ID != 42 {
		t.Fatalf("unexpected duplicate response: %+v", resp)
	}
}

func TestSubmitArticleErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"no content", pipeline.ErrNoContent, http.StatusBadRequest},
		{"extraction", &extractor.ExtractionError{URL: "https://x", Reason: "too short"}, http.StatusUnprocessableEntity},
		{"persistence", &store.PersistenceError{Op: "insert"}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&fakeIngester{err: tc.err}, &fakeReader{}, &fakeWriter{})
			w := doJSON(t, router, http.MethodPost, "/api/articles", gin.H{"text": "x"})
			if w.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, w.Code, w.Body)
			}
		})
	}
}

func TestSubmitArticleRejectsBadJSON(t *testing.T) {
	router := newTestRouter(&fakeIngester{}, &fakeReader{}, &fakeWriter{})
	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListArticlesParsesFilters(t *testing.T) {
	reader := &fakeReader{listResult: []*types.Article{{ID: 1}, {ID: 2}}}
	router := newTestRouter(&fakeIngester{}, reader, &fakeWriter{})

	w := doJSON(t, router, http.MethodGet, "/api/articles?category=programming&submitter_id=7&search=go&limit=5&offset=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}

	got := reader.lastFilter
	want := store.ListFilter{Category: "programming", SubmitterID: 7, Search: "go", Limit: 5, Offset: 10}
	if got != want {
		t.Fatalf("filter mismatch: got %+v, want %+v", got, want)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected count 2, got %d", resp.Count)
	}
}

func TestListArticlesEmptyIsNotNull(t *testing.T) {
	router := newTestRouter(&fakeIngester{}, &fakeReader{}, &fakeWriter{})
	w := doJSON(t, router, http.MethodGet, "/api/articles", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"articles":[]`) {
		t.Fatalf("empty list should serialize as [], got %s", w.Body)
	}
}

func TestGetArticleByID(t *testing.T) {
	reader := &fakeReader{byID: map[int64]*types.Article{5: {ID: 5, Title: "stored"}}}
	router := newTestRouter(&fakeIngester{}, reader, &fakeWriter{})

	w := doJSON(t, router, http.MethodGet, "/api/articles/5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if w = doJSON(t, router, http.MethodGet, "/api/articles/999", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing article should be 404, got %d", w.Code)
	}
	if w = doJSON(t, router, http.MethodGet, "/api/articles/abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric id should be 400, got %d", w.Code)
	}
}

func TestGetArticleByFingerprint(t *testing.T) {
	fp := strings.Repeat("c", 64)
	reader := &fakeReader{byFp: map[string]*types.Article{fp: {ID: 8}}}
	router := newTestRouter(&fakeIngester{}, reader, &fakeWriter{})

	w := doJSON(t, router, http.MethodGet, "/api/articles/fingerprint/"+fp, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}

	if w = doJSON(t, router, http.MethodGet, "/api/articles/fingerprint/short", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("short fingerprint should be 400, got %d", w.Code)
	}
}

func TestUpdateCounters(t *testing.T) {
	writer := &fakeWriter{}
	router := newTestRouter(&fakeIngester{}, &fakeReader{}, writer)

	w := doJSON(t, router, http.MethodPatch, "/api/articles/3/counters", gin.H{"likes_count": 12, "views_count": 300})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	if writer.counterID != 3 {
		t.Fatalf("wrong article id: %d", writer.counterID)
	}
	if writer.counterUpd.Likes == nil || *writer.counterUpd.Likes != 12 {
		t.Fatalf("likes not passed: %+v", writer.counterUpd)
	}
	if writer.counterUpd.Comments != nil {
		t.Fatal("absent counter must stay nil")
	}

	if w = doJSON(t, router, http.MethodPatch, "/api/articles/3/counters", gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty update should be 400, got %d", w.Code)
	}
	if w = doJSON(t, router, http.MethodPatch, "/api/articles/3/counters", gin.H{"likes_count": -1}); w.Code != http.StatusBadRequest {
		t.Fatalf("negative counter should be 400, got %d", w.Code)
	}
}

func TestAddUserCategory(t *testing.T) {
	writer := &fakeWriter{}
	router := newTestRouter(&fakeIngester{}, &fakeReader{}, writer)

	w := doJSON(t, router, http.MethodPost, "/api/articles/4/categories", gin.H{"category": "reading-list"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	if writer.categoryID != 4 || writer.category != "reading-list" {
		t.Fatalf("category not passed: id=%d category=%q", writer.categoryID, writer.category)
	}

	if w = doJSON(t, router, http.MethodPost, "/api/articles/4/categories", gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing category should be 400, got %d", w.Code)
	}
}

func TestStatsAndHealth(t *testing.T) {
	reader := &fakeReader{stats: &store.Stats{Total: 10, ByCategory: map[string]int64{"programming": 4}}}
	router := newTestRouter(&fakeIngester{}, reader, &fakeWriter{})

	w := doJSON(t, router, http.MethodGet, "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"total_articles":10`) {
		t.Fatalf("unexpected stats payload: %s", w.Body)
	}

	if w = doJSON(t, router, http.MethodGet, "/api/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health should be 200, got %d", w.Code)
	}
}
