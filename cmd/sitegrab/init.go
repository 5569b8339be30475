package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/sitegrab/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/sitegrab.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
// This command generates a starter configuration file.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a configuration file template",
		Long: `Init writes a starter configuration file with commented examples.

The file configures per-site crawl settings such as custom user agents,
extra request headers, crawl depth, and image handling. By default the
file is written to .sitegrab in the current directory, where the crawl
command finds it automatically.

Examples:
  # Create .sitegrab in the current directory
  sitegrab init

  # Create the file at a custom location
  sitegrab init -o config/sitegrab.yaml

  # Overwrite an existing file
  sitegrab init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output path for the configuration file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Refuse to clobber an existing file unless forced
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/sitegrab.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure site-specific settings such as:")
	fmt.Println("  - Custom user agents and request headers per host")
	fmt.Println("  - Crawl depth overrides for large or shallow sites")
	fmt.Println("  - Skipping image downloads for specific hosts")

	return nil
}
