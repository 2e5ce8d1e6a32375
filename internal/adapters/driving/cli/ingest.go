package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/watch"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest exam papers into the corpus",
	Long: `Ingest exam papers from files or directories.

Directories are walked recursively; hidden files and unsupported formats
are skipped. Re-ingesting a paper updates its stored records in place.

With --watch, the given directories are watched after the initial scan
and new or changed papers are ingested as they appear. Stop with Ctrl+C.

Run 'waec index rebuild' afterwards to make new questions searchable
by query.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching directories for new papers")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}
	if normaliser == nil {
		return errors.New("normaliser registry not configured")
	}

	ctx := cmd.Context()
	var (
		reports  []watch.Report
		watchers []*watch.Watcher
	)

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}

		if !info.IsDir() {
			if ingestWatch {
				return fmt.Errorf("--watch needs directories, %s is a file", path)
			}
			reports = append(reports, watch.New(path, normaliser, ingestionService).IngestFile(ctx, path))
			continue
		}

		w := watch.New(path, normaliser, ingestionService, watch.WithReporter(func(r watch.Report) {
			printReport(cmd, r)
		}))
		scanned, err := w.Scan(ctx)
		reports = append(reports, scanned...)
		if err != nil {
			return err
		}
		watchers = append(watchers, w)
	}

	failed := 0
	questions := 0
	for _, r := range reports {
		printReport(cmd, r)
		if r.Err != nil {
			failed++
		}
		questions += r.Questions()
	}
	cmd.Printf("\n%d file(s), %d question(s) stored", len(reports), questions)
	if failed > 0 {
		cmd.Printf(", %d failed", failed)
	}
	cmd.Println()

	if ingestWatch {
		g, gctx := errgroup.WithContext(ctx)
		for _, w := range watchers {
			g.Go(func() error { return w.Run(gctx) })
		}
		return g.Wait()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(reports))
	}
	return nil
}

func printReport(cmd *cobra.Command, r watch.Report) {
	if r.Err != nil {
		cmd.Printf("  FAIL %s: %v\n", r.Path, r.Err)
		return
	}
	cmd.Printf("  ok   %s (%d question(s), %d document(s))\n", r.Path, r.Questions(), len(r.Results))
}
