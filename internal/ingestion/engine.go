package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/article-search/internal/corpus"
	"github.com/mfenderov/article-search/internal/elasticsearch"
	"github.com/mfenderov/article-search/internal/events"
	"github.com/mfenderov/article-search/pkg/models"
)

// Indexer is the subset of the Elasticsearch client used for ingestion.
type Indexer interface {
	CreateIndex(ctx context.Context) error
	IndexArticles(ctx context.Context, articles []models.Article) (elasticsearch.BulkStats, error)
	Refresh(ctx context.Context) error
}

// Engine mirrors a corpus into Elasticsearch.
type Engine struct {
	indexer Indexer
}

// New creates a new ingestion engine.
func New(indexer Indexer) *Engine {
	return &Engine{indexer: indexer}
}

// Ingest loads every article of src and indexes it. An unavailable corpus
// is an error here: there is nothing to mirror.
func (e *Engine) Ingest(ctx context.Context, src corpus.Source) (*events.IngestionCompleteEvent, error) {
	start := time.Now()

	slog.Info("starting ingestion", "source", src.String())

	articles, err := corpus.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	// Ensure ES index exists
	if err := e.indexer.CreateIndex(ctx); err != nil {
		return nil, err
	}

	stats, err := e.indexer.IndexArticles(ctx, articles)
	if err != nil {
		return nil, err
	}

	// Refresh index to make articles searchable immediately
	if err := e.indexer.Refresh(ctx); err != nil {
		slog.Warn("failed to refresh index", "error", err)
	}

	result := &events.IngestionCompleteEvent{
		Source:   src.String(),
		Indexed:  int(stats.Indexed),
		Failed:   int(stats.Failed),
		Duration: time.Since(start),
	}
	slog.Info("ingestion complete",
		"source", result.Source,
		"indexed", result.Indexed,
		"failed", result.Failed,
		"duration", result.Duration)

	return result, nil
}
