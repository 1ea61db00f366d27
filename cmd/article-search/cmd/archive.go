package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/article-search/internal/storage"
)

var archiveFile string

var archiveCmd = &cobra.Command{
	Use:   "archive [run-id]",
	Short: "Show an archived scrape run",
	Long: `Show the metadata and stored pages of a scrape run archived with
'scrape --archive'.

Examples:
  # List the pages of a run
  article-search archive 0b6c0f3e-6f1f-4d7e-9a43-1d1f0c9d1e2a

  # Print one archived page as Markdown
  article-search archive 0b6c0f3e-6f1f-4d7e-9a43-1d1f0c9d1e2a --file 3f2a9c1b7d4e5f60.md`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVar(&archiveFile, "file", "", "print a single archived page")
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storageClient, err := newStorageClient(GetConfig())
	if err != nil {
		return err
	}

	prefix := storage.RunPrefix(args[0])
	out := cmd.OutOrStdout()

	if archiveFile != "" {
		content, err := storageClient.GetArticle(ctx, prefix, archiveFile)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, content)
		return nil
	}

	meta, err := storageClient.GetMetadata(ctx, prefix)
	if err != nil {
		return err
	}
	files, err := storageClient.ListArticles(ctx, prefix)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run:      %s\n", meta.RunID)
	fmt.Fprintf(out, "Time:     %s\n", meta.Timestamp)
	fmt.Fprintf(out, "Articles: %d (failed %d)\n", meta.ArticleCount, meta.Failed)
	fmt.Fprintf(out, "Stored:   %d files\n\n", len(files))
	for _, a := range meta.Articles {
		fmt.Fprintf(out, "  %s  %s\n      %s\n", a.File, a.Title, a.URL)
	}
	return nil
}
