package cli

import (
	"github.com/spf13/cobra"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question bank to MCP clients",
	Long: `Serve retrieve_questions and corpus_status to MCP clients, plus
answer_question when an LLM is configured.

Without --addr the server speaks JSON-RPC over stdin/stdout, which is what
desktop assistants expect:

  {
    "mcpServers": {
      "waec": {"command": "/path/to/waec", "args": ["mcp", "serve"]}
    }
  }

With --addr it serves the streamable HTTP transport instead:

  waec mcp serve --addr :8090`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "serve HTTP on this address instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval: retrievalService,
		Index:     indexService,
		Corpus:    corpusService,
		Answer:    answerService,
	})
	if err != nil {
		return err
	}

	if mcpAddr == "" {
		return server.Run(cmd.Context())
	}
	cmd.PrintErrf("MCP server listening on %s\n", mcpAddr)
	return server.RunHTTP(cmd.Context(), mcpAddr)
}
