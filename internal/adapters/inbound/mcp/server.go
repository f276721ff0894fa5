package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewSentinelMCPServer creates a new MCP server with all Sentinel tools and
// resources registered. repoPath is any directory inside the repository to
// check; configPath may be empty.
func NewSentinelMCPServer(repoPath, configPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"sentinel",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, repoPath, configPath)
	registerResources(s, repoPath, configPath)

	return s
}
