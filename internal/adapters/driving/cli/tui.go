package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the question bank in an interactive terminal UI",
	Long: `Launch the interactive terminal UI.

Type a query and press Enter. Filters can be mixed into the query:
  subject:physics year:2014 k:10 newton's laws

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Search / Open question
  /, n     - New search
  a        - Answer the last query with the LLM
  s        - Corpus and index status
  Esc      - Back
  ?        - Help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts collects the configured services for the TUI.
func tuiPorts() *tui.Ports {
	return &tui.Ports{
		Retrieval: retrievalService,
		Index:     indexService,
		Corpus:    corpusService,
		Answer:    answerService,
	}
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("panic in TUI: %v", r)
		}
	}()

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		if errors.Is(err, tui.ErrMissingRetrievalService) {
			return errors.New("retrieval service not configured")
		}
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
