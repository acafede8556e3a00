package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plancheck/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the ask, evaluate_section, upload_text and
check_registration tools and the plancheck://rubric resource. By default it
communicates over stdio using JSON-RPC.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default)
  plancheck mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  plancheck mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "plancheck": {
        "command": "/path/to/plancheck",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	if chatService == nil {
		return unavailable("chat")
	}

	ports := &mcp.Ports{
		Chat:         chatService,
		Upload:       uploadService,
		Registration: registrationService,
		Guideline:    guidelineService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	watchPrompts(cmd.Context())

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
