package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

var (
	retrieveSubject string
	retrieveYear    int
	retrieveK       int
	retrieveJSON    bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Find past questions",
	Long: `Retrieve past questions most relevant to a query.

With a query, questions are ranked by embedding distance. Without one,
questions matching --subject and --year are listed in stored order.

Examples:
  waec retrieve "photosynthesis in green plants"
  waec retrieve "balancing redox equations" --subject chemistry -k 10
  waec retrieve --subject physics --year 2014`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().StringVarP(&retrieveSubject, "subject", "s", "", "only questions from this subject")
	retrieveCmd.Flags().IntVarP(&retrieveYear, "year", "y", 0, "only questions from this exam year")
	retrieveCmd.Flags().IntVarP(&retrieveK, "limit", "k", 0, "maximum number of results (0 = default)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}

	req := buildRequest(query, retrieveSubject, retrieveYear, retrieveK)
	results, err := retrievalService.Retrieve(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		if results == nil {
			results = []domain.RetrievalResult{}
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printResults(cmd, results)
	return nil
}

func buildRequest(query, subject string, year, k int) domain.RetrieveRequest {
	req := domain.RetrieveRequest{Query: strings.TrimSpace(query), K: k}
	if subject != "" {
		req.Filter.Subject = &subject
	}
	if year != 0 {
		req.Filter.Year = &year
	}
	return req
}

func printResults(cmd *cobra.Command, results []domain.RetrievalResult) {
	if len(results) == 0 {
		cmd.Println("No questions found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		q := r.Question
		cmd.Printf("[%d] %s %s Q%d", i+1, q.Subject, domain.YearKey(q.Year), q.Number)
		if r.Ranked {
			cmd.Printf("  (distance %.4f)", r.Distance)
		}
		cmd.Println()
		cmd.Printf("    %s\n", q.Stem)
		for _, opt := range q.Options {
			cmd.Printf("      %s) %s\n", opt.Letter, opt.Text)
		}
		cmd.Printf("    source: %s\n", q.DocumentSource)
		cmd.Println()
	}
}
