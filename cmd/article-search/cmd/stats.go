package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/article-search/internal/corpus"
	"github.com/mfenderov/article-search/internal/textproc"
)

var (
	statsTop    int
	statsFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Long: `Summarize the corpus: article and clap totals, unique authors, articles
with images and the most frequent words.

Examples:
  article-search stats
  article-search stats --top 50 --format json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVar(&statsTop, "top", 20, "Number of frequent words to show")
	statsCmd.Flags().StringVar(&statsFormat, "format", "text", "Output format: text or json")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := corpusSource(GetConfig())
	if err != nil {
		return err
	}
	articles, err := corpus.Load(ctx, src)
	if err != nil {
		return err
	}

	stats := corpus.ComputeStats(articles)
	words := corpus.TopWords(articles, statsTop)

	out := cmd.OutOrStdout()
	if statsFormat == "json" {
		output, err := json.MarshalIndent(struct {
			corpus.Stats
			TopWords []textproc.WordCount `json:"top_words"`
		}{stats, words}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Corpus:               %s\n", src)
	fmt.Fprintf(out, "Total articles:       %d\n", stats.TotalArticles)
	fmt.Fprintf(out, "Total claps:          %d\n", stats.TotalClaps)
	fmt.Fprintf(out, "Average claps:        %.2f\n", stats.AvgClaps)
	fmt.Fprintf(out, "Unique authors:       %d\n", stats.UniqueAuthors)
	fmt.Fprintf(out, "Articles with images: %d\n", stats.ArticlesWithImages)
	if len(words) > 0 {
		fmt.Fprintf(out, "\nTop %d words:\n", len(words))
		for _, w := range words {
			fmt.Fprintf(out, "  %-20s %d\n", w.Word, w.Count)
		}
	}
	return nil
}
