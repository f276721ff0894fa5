package cli

import (
	mcpadapter "github.com/silenceobjects/sentinel/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the Sentinel MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(g))
	return cmd
}

func newMCPServeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start Sentinel MCP server (stdio)",
		Long:  "Start the Sentinel MCP server using stdio transport. This lets coding assistants run guards and read the compliance report before they commit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpadapter.NewSentinelMCPServer(g.path, g.config)
			return server.ServeStdio(s)
		},
	}
}
