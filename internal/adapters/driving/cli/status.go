package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus and index status",
	Long:  `Show how many papers and questions are stored, broken down by subject and year, and which index generation is loaded.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	Corpus domain.CorpusStats  `json:"corpus"`
	Index  *domain.IndexStatus `json:"index,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	stats, err := corpusService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	out := statusOutput{Corpus: stats}
	if indexService != nil {
		status := indexService.IndexStatus()
		out.Index = &status
	}

	if statusJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Corpus:")
	cmd.Printf("  Papers:    %d\n", stats.RawDocuments)
	cmd.Printf("  Questions: %d\n", stats.Questions)
	printCounts(cmd, "By subject", stats.BySubject)
	printCounts(cmd, "By year", stats.ByYear)
	cmd.Println()
	if out.Index != nil {
		printIndexStatus(cmd, *out.Index)
	}
	return nil
}

func printCounts(cmd *cobra.Command, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	cmd.Printf("  %s:\n", title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		cmd.Printf("    %-16s %d\n", k, counts[k])
	}
}
