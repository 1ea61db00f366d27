package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/article-search/internal/ingestion"
)

var ingestRecreate bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Mirror the corpus into Elasticsearch",
	Long: `Index every article of the corpus into Elasticsearch so it can be
queried with 'search --backend elasticsearch'. Articles are keyed by URL,
so re-running ingestion updates documents in place.

Examples:
  # Ingest the local corpus
  article-search ingest

  # Ingest a snapshot stored in S3, dropping the old index first
  ARTICLESEARCH_CORPUS_SNAPSHOT=latest.csv article-search ingest --recreate`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(&ingestRecreate, "recreate", false, "delete the index before ingesting")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	slog.Debug("ingest command starting", "index", cfg.Elasticsearch.Index, "recreate", ingestRecreate)

	src, err := corpusSource(cfg)
	if err != nil {
		return err
	}

	esClient, err := newESClient(cfg)
	if err != nil {
		return err
	}
	if !esClient.Ping(ctx) {
		return fmt.Errorf("elasticsearch not reachable at %v", cfg.Elasticsearch.Addresses)
	}
	if ingestRecreate {
		if err := esClient.DeleteIndex(ctx); err != nil {
			return fmt.Errorf("failed to delete index: %w", err)
		}
	}

	fmt.Printf("Ingesting: %s\n", src)

	result, err := ingestion.New(esClient).Ingest(ctx, src)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Indexed: %d\n", result.Indexed)
	fmt.Printf("  Failed: %d\n", result.Failed)
	fmt.Printf("  Duration: %v\n", result.Duration)

	return nil
}
