package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"articlevault/extractor"
	"articlevault/fingerprint"
	"articlevault/pipeline"
	"articlevault/store"
	"articlevault/types"
)

// handleSubmitArticle runs a submission through the pipeline.
// POST /api/articles
// A duplicate is not an error: the response is 200 with status "duplicate"
// and the already-stored article.
func (s *Server) handleSubmitArticle(c *gin.Context) {
	var sub types.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.ingester.Ingest(c.Request.Context(), sub)
	if err != nil {
		s.respondIngestError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Status == pipeline.StatusDuplicate {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"status":  result.Status,
		"article": result.Article,
	})
}

func (s *Server) respondIngestError(c *gin.Context, err error) {
	var extErr *extractor.ExtractionError
	var persistErr *store.PersistenceError

	switch {
	case errors.Is(err, pipeline.ErrNoContent), errors.Is(err, fingerprint.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &extErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": extErr.Error(), "url": extErr.URL})
	case errors.As(err, &persistErr):
		log.Printf("api: ingestion persistence failure: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage temporarily unavailable"})
	default:
		log.Printf("api: ingestion failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
	}
}

// handleListArticles returns stored articles, newest first.
// GET /api/articles?category=&submitter_id=&search=&limit=&offset=
func (s *Server) handleListArticles(c *gin.Context) {
	filter := store.ListFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if v := c.Query("submitter_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submitter_id"})
			return
		}
		filter.SubmitterID = id
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	articles, err := s.reader.List(c.Request.Context(), filter)
	if err != nil {
		log.Printf("api: list articles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list articles"})
		return
	}
	if articles == nil {
		articles = []*types.Article{}
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}

// handleGetArticle returns one article by id.
// GET /api/articles/:id
func (s *Server) handleGetArticle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	article, err := s.reader.FindByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("api: get article %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, article)
}

// handleGetByFingerprint returns one article by its fingerprint.
// GET /api/articles/fingerprint/:fingerprint
func (s *Server) handleGetByFingerprint(c *gin.Context) {
	fp := c.Param("fingerprint")
	if len(fp) != 64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fingerprint must be 64 hex characters"})
		return
	}

	article, err := s.reader.FindByFingerprint(c.Request.Context(), fp)
	if err != nil {
		log.Printf("api: get by fingerprint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, article)
}

type counterRequest struct {
	Comments *int `json:"comments_count"`
	Likes    *int `json:"likes_count"`
	Views    *int `json:"views_count"`
}

// handleUpdateCounters overwrites the provided engagement counters.
// PATCH /api/articles/:id/counters
func (s *Server) handleUpdateCounters(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	var req counterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Comments == nil && req.Likes == nil && req.Views == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no counters provided"})
		return
	}
	for _, v := range []*int{req.Comments, req.Likes, req.Views} {
		if v != nil && *v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "counters must not be negative"})
			return
		}
	}

	upd := store.CounterUpdate{Comments: req.Comments, Likes: req.Likes, Views: req.Views}
	if err := s.writer.UpdateCounters(c.Request.Context(), id, upd); err != nil {
		log.Printf("api: update counters for %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update counters"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type categoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// handleAddCategory appends a user-defined category label.
// POST /api/articles/:id/categories
func (s *Server) handleAddCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.writer.AddUserCategory(c.Request.Context(), id, req.Category); err != nil {
		log.Printf("api: add category for %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

// handleStats returns aggregate article counts.
// GET /api/stats
func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.reader.Stats(c.Request.Context())
	if err != nil {
		log.Printf("api: stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// handleHealth is a liveness probe.
// GET /api/health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
