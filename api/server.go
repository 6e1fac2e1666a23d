// Package api exposes the ingestion pipeline and article store over HTTP.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"articlevault/pipeline"
	"articlevault/store"
	"articlevault/types"
)

// Ingester runs submissions through the pipeline.
type Ingester interface {
	Ingest(ctx context.Context, sub types.Submission) (*pipeline.Result, error)
}

// ArticleReader is the store surface the read endpoints need.
type ArticleReader interface {
	FindByID(ctx context.Context, id int64) (*types.Article, error)
	FindByFingerprint(ctx context.Context, fp string) (*types.Article, error)
	List(ctx context.Context, filter store.ListFilter) ([]*types.Article, error)
	Stats(ctx context.Context) (*store.Stats, error)
}

// ArticleWriter is the store surface the mutation endpoints need.
type ArticleWriter interface {
	UpdateCounters(ctx context.Context, id int64, upd store.CounterUpdate) error
	AddUserCategory(ctx context.Context, id int64, category string) error
}

// Server holds the handler dependencies.
type Server struct {
	ingester Ingester
	reader   ArticleReader
	writer   ArticleWriter
}

// NewServer wires the handlers to their dependencies.
func NewServer(ingester Ingester, reader ArticleReader, writer ArticleWriter) *Server {
	return &Server{ingester: ingester, reader: reader, writer: writer}
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches all article routes to the engine.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/api")
	g.POST("/articles", s.handleSubmitArticle)
	g.GET("/articles", s.handleListArticles)
	g.GET("/articles/:id", s.handleGetArticle)
	g.GET("/articles/fingerprint/:fingerprint", s.handleGetByFingerprint)
	g.PATCH("/articles/:id/counters", s.handleUpdateCounters)
	g.POST("/articles/:id/categories", s.handleAddCategory)
	g.GET("/stats", s.handleStats)
	g.GET("/health", s.handleHealth)
}
