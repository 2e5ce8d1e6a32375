// Package cli implements the waec command line.
package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/watch"
	"github.com/UceeCode/waec-ai/internal/core/ports/driving"
	"github.com/UceeCode/waec-ai/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

// Services wired in by main. Commands check for nil and report the missing
// service instead of panicking.
var (
	ingestionService driving.IngestionService
	retrievalService driving.RetrievalService
	indexService     driving.IndexService
	corpusService    driving.CorpusService
	answerService    driving.AnswerService
	settingsService  driving.SettingsService
	normaliser       watch.Normalisers
	exportTo         func(ctx context.Context, dir string) (int, error)
	serverAddr       string
	openIndex        func(ctx context.Context) error
	indexOnce        = new(sync.Once)
)

// indexAnnotation marks commands that read the vector index. The index is
// loaded before such a command runs, at most once per process.
const indexAnnotation = "waec/needs-index"

// Services groups everything the commands call.
type Services struct {
	Ingestion   driving.IngestionService
	Retrieval   driving.RetrievalService
	Index       driving.IndexService
	Corpus      driving.CorpusService
	Answer      driving.AnswerService
	Settings    driving.SettingsService
	Normalisers watch.Normalisers

	// ExportTo writes every raw document into an archive rooted at dir.
	ExportTo func(ctx context.Context, dir string) (int, error)

	// ServerAddr is the default listen address for "serve".
	ServerAddr string

	// OpenIndex loads the persisted vector index. Commands that never touch
	// the index (version, settings, ingest) do not call it.
	OpenIndex func(ctx context.Context) error
}

var rootCmd = &cobra.Command{
	Use:   "waec",
	Short: "WAEC past-question corpus and retrieval",
	Long: `waec turns WAEC past-question papers into a searchable corpus.

Papers (PDF, HTML, Markdown or plain text) are split into questions,
tagged with subject and year, and stored. Questions can then be
retrieved by free-text query, optionally filtered by subject and year.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		if _, ok := cmd.Annotations[indexAnnotation]; ok {
			loadIndex(cmd.Context())
		}
	},
}

// usesIndex tags cmd so the index is loaded before it runs.
func usesIndex(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[indexAnnotation] = "true"
}

// loadIndex opens the index once. A failure leaves the index empty; the
// command still runs and reports what it can.
func loadIndex(ctx context.Context) {
	if openIndex == nil {
		return
	}
	indexOnce.Do(func() {
		if err := openIndex(ctx); err != nil {
			logger.Warn("index not loaded: %v", err)
		}
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	for _, cmd := range []*cobra.Command{
		retrieveCmd, answerCmd, indexStatusCmd, statusCmd, serveCmd, mcpServeCmd, tuiCmd,
	} {
		usesIndex(cmd)
	}
}

// SetVersion sets the version reported by "waec version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices installs the services used by every command.
func SetServices(s Services) {
	ingestionService = s.Ingestion
	retrievalService = s.Retrieval
	indexService = s.Index
	corpusService = s.Corpus
	answerService = s.Answer
	settingsService = s.Settings
	normaliser = s.Normalisers
	exportTo = s.ExportTo
	serverAddr = s.ServerAddr
	openIndex = s.OpenIndex
	indexOnce = new(sync.Once)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
