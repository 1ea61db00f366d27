package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/article-search/internal/config"
	"github.com/mfenderov/article-search/internal/search"
)

var errEmptyQuery = errors.New("query must not be empty")

var (
	searchLimit   int
	searchFormat  string
	searchBackend string
)

// hit is the display form of one search result.
type hit struct {
	Rank            int     `json:"rank"`
	URL             string  `json:"url"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Claps           int     `json:"claps"`
	ReadingTime     string  `json:"reading_time"`
	SimilarityScore float64 `json:"similarity_score"`
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the corpus",
	Long: `Find the articles most similar to a query.

The memory backend (default) builds a TF-IDF index over the corpus and
ranks by cosine similarity. The elasticsearch backend queries the mirror
written by 'ingest' with BM25.

Examples:
  # Basic search
  article-search search "machine learning"

  # Limit results
  article-search search "python tips" --limit 5

  # JSON output for scripting
  article-search search "kubernetes" --format json

  # Compare with the Elasticsearch mirror
  article-search search "kubernetes" --backend elasticsearch`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (default search.default_limit)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
	searchCmd.Flags().StringVar(&searchBackend, "backend", "memory", "Search backend: memory or elasticsearch")
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := args[0]
	if strings.TrimSpace(query) == "" {
		return errEmptyQuery
	}
	cfg := GetConfig()

	limit := searchLimit
	if limit < 1 {
		limit = defaultLimit(cfg)
	}

	var (
		hits []hit
		err  error
	)
	switch searchBackend {
	case "memory":
		var engine *search.Engine
		engine, err = loadEngine(ctx, cfg)
		if err != nil {
			return err
		}
		hits, err = memorySearch(ctx, engine, query, limit)
	case "elasticsearch":
		hits, err = esSearch(ctx, cfg, query, limit)
	default:
		return fmt.Errorf("unknown backend %q (want memory or elasticsearch)", searchBackend)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return printHits(cmd.OutOrStdout(), hits, searchFormat)
}

func memorySearch(ctx context.Context, engine *search.Engine, query string, limit int) ([]hit, error) {
	results, err := engine.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, hit{
			Rank:            r.Rank,
			URL:             r.Article.URL,
			Title:           r.Article.Title,
			Author:          r.Article.Author,
			Claps:           r.Article.Claps,
			ReadingTime:     r.Article.ReadingTime,
			SimilarityScore: round4(r.Score),
		})
	}
	return hits, nil
}

func esSearch(ctx context.Context, cfg config.Config, query string, limit int) ([]hit, error) {
	esClient, err := newESClient(cfg)
	if err != nil {
		return nil, err
	}

	results, err := esClient.Search(ctx, query, min(limit, search.MaxLimit))
	if err != nil {
		return nil, err
	}

	hits := make([]hit, 0, len(results))
	for i, r := range results {
		hits = append(hits, hit{
			Rank:            i + 1,
			URL:             r.Article.URL,
			Title:           r.Article.Title,
			Author:          r.Article.Author,
			Claps:           r.Article.Claps,
			ReadingTime:     r.Article.ReadingTime,
			SimilarityScore: round4(r.Score),
		})
	}
	return hits, nil
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

func printHits(w io.Writer, hits []hit, format string) error {
	if format == "json" {
		output, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "Found %d results:\n\n", len(hits))
	for _, h := range hits {
		fmt.Fprintf(w, "─── Result %d ───\n", h.Rank)
		fmt.Fprintf(w, "Title:   %s\n", h.Title)
		fmt.Fprintf(w, "Author:  %s\n", h.Author)
		fmt.Fprintf(w, "Claps:   %d\n", h.Claps)
		fmt.Fprintf(w, "Score:   %.4f\n", h.SimilarityScore)
		fmt.Fprintf(w, "URL:     %s\n\n", h.URL)
	}
	return nil
}
