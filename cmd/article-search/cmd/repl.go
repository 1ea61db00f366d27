package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/article-search/internal/search"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Search the corpus interactively",
	Long: `Load the corpus once and answer queries read from standard input.

Type a query and press enter. 'reload' rereads the corpus, 'quit' or
'exit' leaves.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (default search.default_limit)")
}

func runRepl(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	engine, err := loadEngine(ctx, cfg)
	if err != nil {
		return err
	}

	limit := searchLimit
	if limit < 1 {
		limit = defaultLimit(cfg)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %d articles. Type 'quit' to exit.\n", engine.Len())
	return repl(ctx, engine, cmd.InOrStdin(), out, limit)
}

func repl(ctx context.Context, engine *search.Engine, in io.Reader, out io.Writer, limit int) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		query := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(query) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "reload":
			snap, err := engine.Reload(ctx)
			if err != nil {
				fmt.Fprintf(out, "Reload failed: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Loaded %d articles.\n", len(snap.Articles))
			continue
		}

		hits, err := memorySearch(ctx, engine, query, limit)
		if err != nil {
			fmt.Fprintf(out, "Search failed: %v\n", err)
			continue
		}
		if err := printHits(out, hits, "text"); err != nil {
			return err
		}
	}
}
