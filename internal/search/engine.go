package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mfenderov/article-search/internal/corpus"
	"github.com/mfenderov/article-search/internal/textproc"
	"github.com/mfenderov/article-search/pkg/models"
)

// Snapshot is one loaded corpus together with its index.
type Snapshot struct {
	Articles []models.Article
	Index    *Index
	Source   string
	LoadedAt time.Time
}

// Engine serves queries from the most recently loaded snapshot. Reload
// builds a new snapshot and swaps it in; queries never block on a reload.
type Engine struct {
	source  corpus.Source
	opts    Options
	logger  *slog.Logger
	current atomic.Pointer[Snapshot]
}

// EngineOption configures an Engine.
type EngineOption func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an engine reading from source. No data is loaded until
// Reload is called.
func NewEngine(source corpus.Source, opts Options, options ...EngineOption) (*Engine, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	e := &Engine{
		source: source,
		opts:   opts,
		logger: slog.Default(),
	}
	for _, opt := range options {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Reload reads the corpus, builds a fresh index and publishes it. An
// unavailable corpus publishes an empty snapshot instead of failing; any
// other error leaves the current snapshot in place.
func (e *Engine) Reload(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	articles, err := corpus.Load(ctx, e.source)
	if errors.Is(err, corpus.ErrDataUnavailable) {
		e.logger.Warn("corpus unavailable, serving empty index", "source", e.source.String(), "error", err)
		articles = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	idx, err := Build(ctx, articles, e.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	snap := &Snapshot{
		Articles: articles,
		Index:    idx,
		Source:   e.source.String(),
		LoadedAt: time.Now(),
	}
	e.current.Store(snap)

	e.logger.Info("corpus loaded",
		"source", snap.Source,
		"articles", len(articles),
		"vocabulary", idx.VocabularySize(),
		"duration", time.Since(start))
	return snap, nil
}

// Snapshot returns the current snapshot, or nil before the first Reload.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Search queries the current snapshot. See Index.Query for ranking rules.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrIndexNotBuilt
	}

	results, err := snap.Index.Query(query, limit)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("search", "query", query, "limit", limit, "results", len(results))
	return results, nil
}

// Article returns the article at position i of the current snapshot.
func (e *Engine) Article(i int) (models.Article, bool) {
	snap := e.current.Load()
	if snap == nil || i < 0 || i >= len(snap.Articles) {
		return models.Article{}, false
	}
	return snap.Articles[i], true
}

// Len returns the number of articles in the current snapshot.
func (e *Engine) Len() int {
	snap := e.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.Articles)
}

// Stats summarizes the current snapshot.
func (e *Engine) Stats() corpus.Stats {
	snap := e.current.Load()
	if snap == nil {
		return corpus.Stats{}
	}
	return corpus.ComputeStats(snap.Articles)
}

// TopWords returns the n most frequent words of the current snapshot.
func (e *Engine) TopWords(n int) []textproc.WordCount {
	snap := e.current.Load()
	if snap == nil {
		return nil
	}
	return corpus.TopWords(snap.Articles, n)
}
