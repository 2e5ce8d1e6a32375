package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the question index",
	Long:  `Commands for building and inspecting the vector index used for query ranking.`,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-embed every question and publish a new index",
	Long: `Rebuild embeds every stored question and publishes a new index
generation. Queries keep using the previous generation until the new one
is complete, and a failed rebuild leaves it in place.`,
	Args: cobra.NoArgs,
	RunE: runIndexRebuild,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the loaded index generation",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

func init() {
	indexStatusCmd.Flags().BoolVar(&indexJSON, "json", false, "output status as JSON")
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	start := time.Now()
	status, err := indexService.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	cmd.Printf("Indexed %d question(s) in %s\n", status.Entries, time.Since(start).Round(time.Millisecond))
	printIndexStatus(cmd, status)
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	status := indexService.IndexStatus()
	if indexJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	printIndexStatus(cmd, status)
	return nil
}

func printIndexStatus(cmd *cobra.Command, status domain.IndexStatus) {
	if !status.Loaded {
		cmd.Println("Index: not loaded (run 'waec index rebuild')")
		return
	}
	cmd.Println("Index:")
	cmd.Printf("  Generation: %s\n", status.Generation)
	cmd.Printf("  Entries:    %d\n", status.Entries)
	cmd.Printf("  Dimensions: %d\n", status.Dimensions)
	if status.Model != "" {
		cmd.Printf("  Model:      %s\n", status.Model)
	}
	if !status.BuiltAt.IsZero() {
		cmd.Printf("  Built:      %s\n", status.BuiltAt.Local().Format(time.DateTime))
	}
}
