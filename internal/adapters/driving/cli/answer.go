package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	answerSubject     string
	answerYear        int
	answerK           int
	answerShowContext bool
)

var answerCmd = &cobra.Command{
	Use:   "answer [question]",
	Short: "Answer a question using retrieved past questions",
	Long: `Retrieve past questions related to the question and ask the
configured LLM to answer with them as context.

Requires an LLM provider (see 'waec settings set llm.provider ollama').`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswer,
}

func init() {
	answerCmd.Flags().StringVarP(&answerSubject, "subject", "s", "", "only use context from this subject")
	answerCmd.Flags().IntVarP(&answerYear, "year", "y", 0, "only use context from this exam year")
	answerCmd.Flags().IntVarP(&answerK, "limit", "k", 0, "number of context questions (0 = default)")
	answerCmd.Flags().BoolVar(&answerShowContext, "context", false, "also print the retrieved questions")
	rootCmd.AddCommand(answerCmd)
}

func runAnswer(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured (set llm.provider)")
	}

	req := buildRequest(args[0], answerSubject, answerYear, answerK)
	answer, err := answerService.Answer(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	cmd.Println(answer.Text)
	if answerShowContext {
		cmd.Println()
		printResults(cmd, answer.Context)
	}
	if answer.Model != "" {
		cmd.Printf("\n(%s, %d context question(s))\n", answer.Model, len(answer.Context))
	}
	return nil
}
