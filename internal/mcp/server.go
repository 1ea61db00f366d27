package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfenderov/article-search/internal/corpus"
	"github.com/mfenderov/article-search/internal/search"
	"github.com/mfenderov/article-search/internal/textproc"
)

// DefaultTopWords is the number of frequent words corpus_stats reports.
const DefaultTopWords = 20

// ErrEngineRequired is returned by NewServer without a search engine.
var ErrEngineRequired = errors.New("search engine is required")

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Server exposes the in-memory search engine as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	engine    *search.Engine
}

// SearchHit is one ranked article in a search_articles response.
type SearchHit struct {
	Rank            int     `json:"rank"`
	Index           int     `json:"index"`
	URL             string  `json:"url"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Claps           int     `json:"claps"`
	SimilarityScore float64 `json:"similarity_score"`
}

// StatsResponse is the corpus_stats payload.
type StatsResponse struct {
	corpus.Stats
	TopWords []textproc.WordCount `json:"top_words"`
}

// NewServer creates a new MCP server with search tools.
func NewServer(config Config, engine *search.Engine) (*Server, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		engine:    engine,
	}

	// Register search_articles tool
	searchTool := mcp.NewTool("search_articles",
		mcp.WithDescription("Find articles similar to a free-text query using TF-IDF cosine similarity. Falls back to the most-clapped articles when nothing matches."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results to return (default: %d, max: %d)", search.DefaultLimit, search.MaxLimit)),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	// Register get_article tool
	getTool := mcp.NewTool("get_article",
		mcp.WithDescription("Get a single article by its corpus index"),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based article index as returned by search_articles"),
		),
	)
	mcpServer.AddTool(getTool, s.getArticleHandler)

	// Register corpus_stats tool
	statsTool := mcp.NewTool("corpus_stats",
		mcp.WithDescription("Summary statistics and the most frequent words of the loaded corpus"),
		mcp.WithNumber("top",
			mcp.Description(fmt.Sprintf("Number of frequent words to include (default: %d)", DefaultTopWords)),
		),
	)
	mcpServer.AddTool(statsTool, s.statsHandler)

	return s, nil
}

func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := req.GetInt("limit", search.DefaultLimit)
	if limit < 1 {
		limit = search.DefaultLimit
	}

	hits, err := s.handleSearch(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(hits)
}

func (s *Server) getArticleHandler(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("index parameter is required"), nil
	}

	article, ok := s.engine.Article(index)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("article not found: %d", index)), nil
	}
	return jsonResult(article)
}

func (s *Server) statsHandler(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	top := req.GetInt("top", DefaultTopWords)
	if top < 0 {
		top = DefaultTopWords
	}
	return jsonResult(StatsResponse{
		Stats:    s.engine.Stats(),
		TopWords: s.engine.TopWords(top),
	})
}

// handleSearch runs the query and flattens the results.
func (s *Server) handleSearch(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	results, err := s.engine.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, SearchHit{
			Rank:            r.Rank,
			Index:           r.Article.ID,
			URL:             r.Article.URL,
			Title:           r.Article.Title,
			Author:          r.Article.Author,
			Claps:           r.Article.Claps,
			SimilarityScore: math.Round(r.Score*10000) / 10000,
		})
	}
	return hits, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
