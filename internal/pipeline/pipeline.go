package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mfenderov/article-search/internal/corpus"
	"github.com/mfenderov/article-search/internal/events"
	"github.com/mfenderov/article-search/internal/extractor"
	"github.com/mfenderov/article-search/internal/processor"
	"github.com/mfenderov/article-search/internal/scraper"
	"github.com/mfenderov/article-search/internal/storage"
	"github.com/mfenderov/article-search/pkg/models"
)

// Archive stores scraped articles and corpus snapshots. Implemented by
// storage.Client.
type Archive interface {
	PutArticle(ctx context.Context, prefix, filename, content string) error
	PutMetadata(ctx context.Context, prefix string, meta storage.ScrapeMetadata) error
	PutSnapshot(ctx context.Context, name, filePath string) error
}

// Config holds pipeline configuration.
type Config struct {
	Scraper  scraper.Config
	Output   string // Corpus CSV to append to
	Resume   bool   // Skip URLs already present in Output
	Limit    int    // Maximum number of URLs to fetch, 0 for all
	Snapshot string // Snapshot name uploaded after the run, empty to skip
}

// Result holds pipeline execution results.
type Result struct {
	RunID     string
	Prefix    string
	Requested int
	Skipped   int
	Fetched   int
	Written   int
	Blocked   int
	Failed    int
	Duration  time.Duration
	Errors    []error
}

// CompleteEvent describes the finished run for downstream consumers.
func (r *Result) CompleteEvent(output string) events.ScrapeCompleteEvent {
	return events.ScrapeCompleteEvent{
		RunID:     r.RunID,
		Output:    output,
		Prefix:    r.Prefix,
		Articles:  r.Written,
		Timestamp: time.Now(),
	}
}

// Pipeline orchestrates fetching, extraction and persistence.
type Pipeline struct {
	config    Config
	scraper   *scraper.Scraper
	processor *processor.Processor
	archive   Archive // nil if archiving disabled
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithArchive stores every written article and the final corpus in archive.
func WithArchive(archive Archive) Option {
	return func(p *Pipeline) {
		p.archive = archive
	}
}

// New creates a new Pipeline with the given configuration.
func New(config Config, opts ...Option) (*Pipeline, error) {
	if config.Output == "" {
		return nil, errors.New("output path is required")
	}

	p := &Pipeline{
		config:    config,
		scraper:   scraper.New(config.Scraper),
		processor: processor.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run scrapes urls and appends one row per extracted article to the
// output corpus. Rows are flushed as they are written, so an interrupted
// run keeps its progress and a resumed run skips those URLs.
func (p *Pipeline) Run(ctx context.Context, urls []string) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}

	todo, err := p.pending(ctx, urls, result)
	if err != nil {
		return nil, err
	}

	if p.archive != nil {
		result.Prefix = storage.RunPrefix(result.RunID)
	}

	slog.Info("starting scrape", "run_id", result.RunID, "urls", len(todo), "skipped", result.Skipped)

	writer, err := corpus.NewWriter(p.config.Output, p.config.Resume)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	meta := storage.ScrapeMetadata{RunID: result.RunID}

	// Extraction worker (consumer)
	pages := make(chan events.PageFetchedEvent)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for page := range pages {
			archived, err := p.handle(ctx, writer, page, result)
			if err != nil {
				result.Errors = append(result.Errors, err)
				continue
			}
			if archived != nil {
				meta.Articles = append(meta.Articles, *archived)
			}
		}
	}()

	// Fetch pages (producer)
	stats, scrapeErr := p.scraper.Scrape(ctx, todo, func(page scraper.Page) {
		pages <- events.PageFetchedEvent{
			URL:         page.URL,
			Body:        page.Body,
			ContentType: page.ContentType,
			FetchedAt:   page.FetchedAt,
		}
	})

	// Close channel and wait for extraction to complete
	close(pages)
	<-done

	result.Fetched = stats.Fetched
	result.Failed = stats.Failed

	if p.archive != nil {
		p.finishArchive(ctx, meta, result)
	}

	result.Duration = time.Since(start)
	slog.Info("scrape complete",
		"run_id", result.RunID,
		"written", result.Written,
		"blocked", result.Blocked,
		"failed", result.Failed,
		"duration", result.Duration)

	return result, scrapeErr
}

// pending drops duplicates and, when resuming, URLs already in the output.
func (p *Pipeline) pending(ctx context.Context, urls []string, result *Result) ([]string, error) {
	seen := make(map[string]bool)
	if p.config.Resume {
		existing, err := corpus.ScrapedURLs(ctx, p.config.Output)
		if err != nil {
			return nil, err
		}
		seen = existing
	}

	var todo []string
	for _, u := range urls {
		result.Requested++
		if seen[u] {
			result.Skipped++
			continue
		}
		seen[u] = true
		todo = append(todo, u)
	}

	if p.config.Limit > 0 && len(todo) > p.config.Limit {
		todo = todo[:p.config.Limit]
	}
	return todo, nil
}

func (p *Pipeline) handle(ctx context.Context, writer *corpus.Writer, page events.PageFetchedEvent, result *Result) (*storage.ArchivedArticle, error) {
	article, err := extractor.Extract(page.URL, page.Body)
	if errors.Is(err, extractor.ErrBlocked) {
		slog.Warn("blocked by bot protection", "url", page.URL)
		result.Blocked++
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := writer.Append(article); err != nil {
		return nil, err
	}
	result.Written++
	slog.Debug("article written", "url", article.URL, "title", article.Title, "claps", article.Claps)

	if p.archive == nil {
		return nil, nil
	}

	doc, err := p.processor.Document(article, string(page.Body))
	if err != nil {
		return nil, err
	}
	filename := models.GenerateArticleID(article.URL) + ".md"
	if err := p.archive.PutArticle(ctx, result.Prefix, filename, doc); err != nil {
		return nil, fmt.Errorf("failed to archive %s: %w", article.URL, err)
	}
	return &storage.ArchivedArticle{URL: article.URL, Title: article.Title, File: filename}, nil
}

func (p *Pipeline) finishArchive(ctx context.Context, meta storage.ScrapeMetadata, result *Result) {
	meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	meta.ArticleCount = len(meta.Articles)
	meta.Failed = result.Failed
	if err := p.archive.PutMetadata(ctx, result.Prefix, meta); err != nil {
		result.Errors = append(result.Errors, err)
	}

	if p.config.Snapshot == "" {
		return
	}
	if err := p.archive.PutSnapshot(ctx, p.config.Snapshot, p.config.Output); err != nil {
		result.Errors = append(result.Errors, err)
		return
	}
	slog.Info("snapshot uploaded", "name", p.config.Snapshot)
}

// ReadURLs reads one URL per line. Blank lines and lines starting with #
// are ignored.
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URLs: %w", err)
	}
	return urls, nil
}
