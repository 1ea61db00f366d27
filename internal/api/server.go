// Package api serves the search engine over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mfenderov/article-search/internal/search"
)

const (
	serviceName    = "Medium Article Similarity Search API"
	exampleQuery   = "/search?query=machine learning&limit=5"
	shutdownPeriod = 5 * time.Second
)

// ErrEngineRequired is returned by NewServer without a search engine.
var ErrEngineRequired = errors.New("search engine is required")

// Config holds HTTP server configuration.
type Config struct {
	Addr  string
	Rate  float64 // Requests per second across all clients, 0 disables limiting
	Burst int
}

// Server is the HTTP API over a search.Engine.
type Server struct {
	config  Config
	engine  *search.Engine
	limiter *rate.Limiter // nil if limiting disabled
}

// ArticleSummary is one entry in a search response.
type ArticleSummary struct {
	URL             string  `json:"url"`
	Title           string  `json:"title"`
	Claps           int     `json:"claps"`
	Author          string  `json:"author"`
	SimilarityScore float64 `json:"similarity_score"`
}

// SearchResponse represents the response for GET /search.
type SearchResponse struct {
	Query    string           `json:"query"`
	Count    int              `json:"count"`
	Articles []ArticleSummary `json:"articles"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Example string `json:"example,omitempty"`
}

// NewServer creates a new API server over engine.
func NewServer(config Config, engine *search.Engine) (*Server, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}

	s := &Server{config: config, engine: engine}
	if config.Rate > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = int(math.Ceil(config.Rate))
		}
		s.limiter = rate.NewLimiter(rate.Limit(config.Rate), burst)
	}
	return s, nil
}

// SetupRouter configures the Gin router with all API routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	if s.limiter != nil {
		router.Use(s.rateLimit)
	}

	router.GET("/", s.HandleInfo)
	router.GET("/search", s.HandleSearch)
	router.GET("/stats", s.HandleStats)
	router.GET("/article/:index", s.HandleArticle)
	router.POST("/reload", s.HandleReload)

	return router
}

func (s *Server) rateLimit(c *gin.Context) {
	if !s.limiter.Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "Rate limit exceeded"})
		return
	}
	c.Next()
}

// HandleInfo handles GET /.
func (s *Server) HandleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        serviceName,
		"description": "Find Medium articles similar to a text query using TF-IDF and cosine similarity",
		"endpoints": gin.H{
			"/search":         "Search for similar articles (query, limit)",
			"/stats":          "Dataset statistics",
			"/article/:index": "Article by corpus index",
			"/reload":         "Reload the corpus (POST)",
		},
		"total_articles": s.engine.Len(),
	})
}

// HandleSearch handles GET /search.
func (s *Server) HandleSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Query parameter is required",
			Example: exampleQuery,
		})
		return
	}

	limit := ParseLimit(c.Query("limit"))
	results, err := s.engine.Search(c.Request.Context(), query, limit)
	if errors.Is(err, search.ErrIndexNotBuilt) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Search index is not loaded"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Search failed: " + err.Error()})
		return
	}

	articles := make([]ArticleSummary, 0, len(results))
	for _, r := range results {
		articles = append(articles, ArticleSummary{
			URL:             r.Article.URL,
			Title:           r.Article.Title,
			Claps:           r.Article.Claps,
			Author:          r.Article.Author,
			SimilarityScore: math.Round(r.Score*10000) / 10000,
		})
	}

	c.JSON(http.StatusOK, SearchResponse{
		Query:    query,
		Count:    len(articles),
		Articles: articles,
	})
}

// ParseLimit reads the limit query parameter. Missing, non-integer or
// non-positive values give search.DefaultLimit; larger values are capped
// at search.MaxLimit.
func ParseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return search.DefaultLimit
	}
	return min(limit, search.MaxLimit)
}

// HandleStats handles GET /stats.
func (s *Server) HandleStats(c *gin.Context) {
	if s.engine.Len() == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No data available"})
		return
	}
	c.JSON(http.StatusOK, s.engine.Stats())
}

// HandleArticle handles GET /article/:index.
func (s *Server) HandleArticle(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Index must be an integer"})
		return
	}

	article, ok := s.engine.Article(index)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Article not found"})
		return
	}
	c.JSON(http.StatusOK, article)
}

// HandleReload handles POST /reload.
func (s *Server) HandleReload(c *gin.Context) {
	snap, err := s.engine.Reload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Reload failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_articles": len(snap.Articles),
		"vocabulary":     snap.Index.VocabularySize(),
		"source":         snap.Source,
		"loaded_at":      snap.LoadedAt,
	})
}

// ListenAndServe serves the API until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
