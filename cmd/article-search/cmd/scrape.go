package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/article-search/internal/config"
	"github.com/mfenderov/article-search/internal/corpus"
	"github.com/mfenderov/article-search/internal/events"
	"github.com/mfenderov/article-search/internal/ingestion"
	"github.com/mfenderov/article-search/internal/pipeline"
	"github.com/mfenderov/article-search/internal/scraper"
	"github.com/mfenderov/article-search/internal/textproc"
)

var (
	scrapeURLs      []string
	scrapeInput     string
	scrapeNoResume  bool
	scrapeLimit     int
	scrapeArchive   bool
	scrapeIngest    bool
	scrapeAnyDomain bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape article URLs into the corpus",
	Long: `Fetch article pages, extract their fields and append one row per
article to the corpus CSV. Rows are written as soon as each page is
extracted, so an interrupted run can be resumed.

Examples:
  # Scrape a single article
  article-search scrape --url https://medium.com/@someone/some-article-123

  # Scrape a list of URLs, one per line
  article-search scrape --input urls.txt --limit 100

  # Start over instead of resuming
  article-search scrape --input urls.txt --no-resume

  # Archive pages to S3 and mirror the corpus into Elasticsearch
  article-search scrape --input urls.txt --archive --ingest`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringSliceVar(&scrapeURLs, "url", nil, "URL to scrape (repeatable)")
	scrapeCmd.Flags().StringVar(&scrapeInput, "input", "", "file with one URL per line")
	scrapeCmd.Flags().BoolVar(&scrapeNoResume, "no-resume", false, "truncate the corpus instead of skipping already scraped URLs")
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "maximum number of URLs to scrape (0 for all)")
	scrapeCmd.Flags().BoolVar(&scrapeArchive, "archive", false, "store each article as Markdown in S3 and upload the corpus snapshot")
	scrapeCmd.Flags().BoolVar(&scrapeIngest, "ingest", false, "mirror the corpus into Elasticsearch after scraping")
	scrapeCmd.Flags().BoolVar(&scrapeAnyDomain, "any-domain", false, "accept URLs outside Medium domains")
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	slog.Debug("scrape command starting", "verbose", verbose, "archive", scrapeArchive, "ingest", scrapeIngest)

	urls, err := scrapeTargets()
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to scrape - use --url or --input")
	}

	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	if !scrapeIngest {
		result, err := p.Run(ctx, urls)
		if result != nil {
			printScrapeResult(result)
		}
		return err
	}
	return runScrapeWithIngest(ctx, cfg, p, urls)
}

// scrapeTargets collects URLs from flags and the input file, dropping
// those outside Medium unless --any-domain is set.
func scrapeTargets() ([]string, error) {
	urls := append([]string(nil), scrapeURLs...)
	if scrapeInput != "" {
		f, err := os.Open(scrapeInput)
		if err != nil {
			return nil, fmt.Errorf("failed to open URL list: %w", err)
		}
		defer f.Close()

		fromFile, err := pipeline.ReadURLs(f)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}

	if scrapeAnyDomain {
		return urls, nil
	}

	valid := urls[:0]
	for _, u := range urls {
		if !textproc.ValidateURL(u) {
			slog.Warn("skipping non-Medium URL", "url", u)
			continue
		}
		valid = append(valid, u)
	}
	return valid, nil
}

func newPipeline(ctx context.Context, cfg config.Config) (*pipeline.Pipeline, error) {
	pipelineConfig := pipeline.Config{
		Scraper: scraper.Config{
			Delay:       cfg.Scraper.Delay,
			Timeout:     cfg.Scraper.Timeout,
			UserAgent:   cfg.Scraper.UserAgent,
			Parallelism: cfg.Scraper.Parallelism,
			FollowLinks: cfg.Scraper.FollowLinks,
			MaxDepth:    cfg.Scraper.MaxDepth,
		},
		Output: cfg.Corpus.Path,
		Resume: !scrapeNoResume,
		Limit:  scrapeLimit,
	}

	var opts []pipeline.Option
	if scrapeArchive {
		storageClient, err := newStorageClient(cfg)
		if err != nil {
			return nil, err
		}
		if err := storageClient.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket: %w", err)
		}
		pipelineConfig.Snapshot = cfg.Corpus.Snapshot
		opts = append(opts, pipeline.WithArchive(storageClient))
	}

	p, err := pipeline.New(pipelineConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	return p, nil
}

// runScrapeWithIngest uses channels to coordinate scraping and ingestion
func runScrapeWithIngest(ctx context.Context, cfg config.Config, p *pipeline.Pipeline, urls []string) error {
	esClient, err := newESClient(cfg)
	if err != nil {
		return err
	}
	engine := ingestion.New(esClient)

	// Event channel for scrape completion
	scrapeEvents := make(chan events.ScrapeCompleteEvent)
	done := make(chan struct{})

	// Start ingestion worker (consumer)
	go func() {
		defer close(done)
		for event := range scrapeEvents {
			fmt.Printf("Ingesting: %s (run %s, %d new articles)\n", event.Output, event.RunID, event.Articles)

			result, err := engine.Ingest(ctx, corpus.FileSource{Path: event.Output})
			if err != nil {
				fmt.Printf("  Error: %v\n", err)
				continue
			}
			fmt.Printf("  Indexed: %d, Failed: %d, Duration: %v\n", result.Indexed, result.Failed, result.Duration)
		}
	}()

	// Scrape URLs (producer)
	result, scrapeErr := p.Run(ctx, urls)
	if result != nil {
		printScrapeResult(result)
		if scrapeErr == nil {
			scrapeEvents <- result.CompleteEvent(cfg.Corpus.Path)
		}
	}

	// Close channel and wait for ingestion to complete
	close(scrapeEvents)
	<-done

	return scrapeErr
}

func printScrapeResult(result *pipeline.Result) {
	fmt.Printf("Run:       %s\n", result.RunID)
	fmt.Printf("Requested: %d (skipped %d already scraped)\n", result.Requested, result.Skipped)
	fmt.Printf("Fetched:   %d, Failed: %d, Blocked: %d\n", result.Fetched, result.Failed, result.Blocked)
	fmt.Printf("Written:   %d articles in %v\n", result.Written, result.Duration)
	if result.Prefix != "" {
		fmt.Printf("Archive:   %s\n", result.Prefix)
	}
	for _, e := range result.Errors {
		fmt.Printf("  Warning: %v\n", e)
	}
}
