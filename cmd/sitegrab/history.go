package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/sitegrab/internal/config"
	"github.com/nao1215/sitegrab/internal/database"
	"github.com/nao1215/sitegrab/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command inspects crawl results stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored crawl history",
		Long: `History lists crawls previously saved with 'sitegrab crawl --save'.

Without flags it prints one line per stored crawl, newest first. Use
--seed to restrict the listing to one seed URL, and --id to print a
single crawl in detail, including its per-page records.

Examples:
  # List the most recent crawls
  sitegrab history

  # List all crawls of one seed
  sitegrab history --seed https://example.com/ --limit 0

  # Show one crawl with its pages
  sitegrab history --id 5

  # Machine-readable output
  sitegrab history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().StringP("seed", "s", "",
		"Only list crawls of this seed URL")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of crawls to list (0 lists all)")

	// Detail flags
	cmd.Flags().Int64P("id", "i", 0,
		"Show a single crawl by ID (use the listing to find IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	// Database location
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	seed, err := cmd.Flags().GetString("seed")
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if id > 0 {
		return showCrawl(ctx, db, id, jsonOutput)
	}

	return listCrawlHistory(ctx, db, seed, limit, jsonOutput)
}

// listCrawlHistory lists stored crawl summaries, newest first.
func listCrawlHistory(ctx context.Context, db *database.CrawlDB, seed string, limit int, jsonOutput bool) error {
	crawls, err := db.ListCrawls(ctx, seed, limit)
	if err != nil {
		return fmt.Errorf("failed to list crawls: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(crawls)
	}

	if len(crawls) == 0 {
		if seed != "" {
			fmt.Printf("No crawl history found for %s\n", seed)
		} else {
			fmt.Println("No crawl history found.")
		}
		fmt.Println("\nUse 'sitegrab crawl --save <url>' to record a crawl.")
		return nil
	}

	if seed != "" {
		fmt.Printf("Crawl history for %s (%d crawls):\n\n", seed, len(crawls))
	} else {
		fmt.Printf("Crawl history (%d crawls):\n\n", len(crawls))
	}

	fmt.Printf("  %-6s  %-20s  %-6s  %-7s  %-7s  %s\n",
		"ID", "Date", "Pages", "Failed", "Images", "Seed")
	fmt.Println("  " + strings.Repeat("-", 76))

	for _, crawl := range crawls {
		fmt.Printf("  %-6d  %-20s  %-6d  %-7d  %-7d  %s\n",
			crawl.ID,
			crawl.StartedAt.Format("2006-01-02 15:04:05"),
			crawl.PageCount,
			crawl.FailedCount,
			crawl.ImagesSaved,
			crawl.Seed,
		)
	}

	fmt.Println("\nUse 'sitegrab history --id <id>' to see the pages of a crawl.")

	return nil
}

// showCrawl prints one stored crawl with its page records.
func showCrawl(ctx context.Context, db *database.CrawlDB, id int64, jsonOutput bool) error {
	crawlReport, err := db.GetCrawlReport(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get crawl %d: %w", id, err)
	}
	if crawlReport == nil {
		return fmt.Errorf("crawl with ID %d not found", id)
	}

	// JSON mode emits the full stored report
	if jsonOutput {
		writer := report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
		_, err := writer.Write(crawlReport)
		return err
	}

	pages, err := db.ListPages(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list pages of crawl %d: %w", id, err)
	}

	fmt.Printf("Crawl %d: %s\n", id, crawlReport.Seed)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nStarted:   %s\n", crawlReport.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Finished:  %s\n", crawlReport.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Max depth: %d\n", crawlReport.MaxDepth)
	fmt.Printf("Pages:     %d (%d failed)\n", crawlReport.PageCount(), crawlReport.FailedCount())
	fmt.Printf("Images:    %d saved, %d failed\n", crawlReport.ImagesSaved, crawlReport.ImagesFailed)

	if len(pages) > 0 {
		fmt.Printf("\n  %-5s  %-6s  %-30s  %s\n", "Depth", "Status", "Title", "URL")
		fmt.Println("  " + strings.Repeat("-", 76))

		for _, page := range pages {
			title := page.Title
			if title == "" && page.FetchError != "" {
				title = "(fetch failed)"
			}
			fmt.Printf("  %-5d  %-6d  %-30s  %s\n",
				page.Depth,
				page.StatusCode,
				truncate(title, 30),
				page.URL,
			)
		}
	}

	return nil
}

// truncate shortens s to at most n characters for table display.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
