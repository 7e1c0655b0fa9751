package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/insight/catalog"
	"github.com/c360studio/insight/search"
)

// NewSearchCmd builds the natural-language product search command.
func NewSearchCmd(app *App) *cobra.Command {
	var (
		query       string
		catalogPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the product catalog with natural language",
		Long: `Search translates a plain-English request into product filters using an
LLM function call, then filters the catalog locally.

With --query it runs once and exits; without it, it starts an interactive
prompt. Examples:

  insight search -q "electronics under $100 that are in stock"
  insight search -q "top 3 cheapest books" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Setup(); err != nil {
				return err
			}

			cfg := app.Config()
			path := cfg.Catalog.Path
			if catalogPath != "" {
				path = catalogPath
			}

			store, err := catalog.NewStore(path, catalog.WithStoreLogger(app.Logger()))
			if err != nil {
				return err
			}

			opts := []search.Option{search.WithLogger(app.Logger())}
			if app.Calls() != nil {
				opts = append(opts, search.WithCallStore(app.Calls()))
			}
			searcher := search.New(app.Client(), store, opts...)

			if query != "" {
				return runSearchOnce(cmd.Context(), searcher, query, asJSON)
			}
			return runSearchREPL(cmd.Context(), searcher, store, cfg.Catalog.Watch, asJSON)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Run a single query and exit")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog file (overrides config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

func runSearchOnce(ctx context.Context, searcher *search.Searcher, query string, asJSON bool) error {
	result, err := searcher.Search(ctx, query)
	if err != nil {
		return err
	}
	return printSearchResult(result, asJSON)
}

// runSearchREPL reads queries from stdin until EOF or an exit command.
// The catalog file is watched for changes while the session is open.
func runSearchREPL(ctx context.Context, searcher *search.Searcher, store *catalog.Store, watch, asJSON bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if watch {
		if err := store.Watch(ctx); err != nil {
			// Hot reload is a convenience; a search session works without it.
			fmt.Fprintf(os.Stderr, "catalog watch disabled: %v\n", err)
		}
	}

	fmt.Printf("Product search over %d products. Describe what you want, or type 'exit'.\n", store.Len())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit", "q":
			return nil
		}

		result, err := searcher.Search(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
			continue
		}
		if err := printSearchResult(result, asJSON); err != nil {
			return err
		}
	}
}

func printSearchResult(result *search.Result, asJSON bool) error {
	if asJSON {
		out, err := search.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	fmt.Print(search.FormatText(result))
	return nil
}
