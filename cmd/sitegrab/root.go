// Package main provides the entry point for the sitegrab CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitegrab.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitegrab",
		Short: "Recursive web crawler that archives page text and images",
		Long: `Sitegrab crawls a website starting from a seed URL, following links on
the pages it visits up to a configurable depth. For every page it
stores the readable text and downloads the referenced images into a
per-site directory tree under the data directory.

Crawls are depth-first and single-threaded: the first link on a page is
fully explored before the second. Multiple seed URLs can be crawled
concurrently while each individual crawl stays sequential.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
