package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	configURI  = "sentinel://config"
	historyURI = "sentinel://history"
)

// registerResources registers all Sentinel MCP resources on the given server.
func registerResources(s *server.MCPServer, repoPath, configPath string) {
	// 1. sentinel://config - effective configuration
	s.AddResource(
		mcplib.NewResource(
			configURI,
			"Configuration",
			mcplib.WithResourceDescription("Effective sentinel configuration after file and environment overrides"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(repoPath, configPath),
	)

	// 2. sentinel://history - recorded scores
	s.AddResource(
		mcplib.NewResource(
			historyURI,
			"Score History",
			mcplib.WithResourceDescription("Compliance scores recorded by previous report runs"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(repoPath, configPath),
	)
}

func handleConfigResource(repoPath, configPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		rt, err := build(repoPath, configPath, nil)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		defer rt.Close()
		return jsonResource(configURI, rt.Config)
	}
}

func handleHistoryResource(repoPath, configPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		rt, err := build(repoPath, configPath, nil)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		defer rt.Close()

		entries, err := rt.Service.History()
		if err != nil {
			return nil, err
		}
		return jsonResource(historyURI, entries)
	}
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
