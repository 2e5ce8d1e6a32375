package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API.

Routes:
  GET  /healthz
  GET  /api/v1/questions?q=&subject=&year=&k=
  POST /api/v1/documents
  POST /api/v1/index/rebuild
  GET  /api/v1/status
  POST /api/v1/answer

The listen address defaults to server.addr from settings.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	addr := serveAddr
	if addr == "" {
		addr = serverAddr
	}
	if addr == "" {
		addr = ":8080"
	}

	ports := &httpapi.Ports{
		Retrieval: retrievalService,
		Index:     indexService,
		Ingestion: ingestionService,
		Corpus:    corpusService,
		Answer:    answerService,
	}
	if normaliser != nil {
		ports.Normalisers = normaliser
	}

	server, err := httpapi.NewServer(ports)
	if err != nil {
		return err
	}
	return server.ListenAndServe(cmd.Context(), addr)
}
