package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored papers grouped by year",
	Long: `Write every stored paper as JSON to <out>/<year>/<content-hash>.json.
Papers without a year go under <out>/unknown_year.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "waec_export", "output directory")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportTo == nil {
		return errors.New("export not configured")
	}

	n, err := exportTo(cmd.Context(), exportOut)
	if err != nil {
		return fmt.Errorf("export failed after %d paper(s): %w", n, err)
	}
	cmd.Printf("Exported %d paper(s) to %s\n", n, exportOut)
	return nil
}
