package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/silenceobjects/sentinel/internal/adapters/outbound/report"
	"github.com/silenceobjects/sentinel/internal/bootstrap"
	"github.com/silenceobjects/sentinel/internal/domain"
)

// registerTools registers all Sentinel MCP tools on the given server.
func registerTools(s *server.MCPServer, repoPath, configPath string) {
	// 1. sentinel_run_guard
	s.AddTool(
		mcplib.NewTool("sentinel_run_guard",
			mcplib.WithDescription("Run one guard against the pending changes and return its result and findings as JSON"),
			mcplib.WithString("guard",
				mcplib.Required(),
				mcplib.Description("Guard name: terminology, contracts, dependency, closed-module, type-safety, security or build"),
			),
		),
		handleRunGuard(repoPath, configPath),
	)

	// 2. sentinel_report
	s.AddTool(
		mcplib.NewTool("sentinel_report",
			mcplib.WithDescription("Run every enabled guard and return the compliance report with its Markdown rendering"),
			mcplib.WithNumber("min_score", mcplib.Description("Override the minimum passing score")),
			mcplib.WithBoolean("include_build", mcplib.Description("Also run the build guard (slow)")),
		),
		handleReport(repoPath, configPath),
	)

	// 3. sentinel_policy
	s.AddTool(
		mcplib.NewTool("sentinel_policy",
			mcplib.WithDescription("Return the rulebook: forbidden terms with suggestions, closed and protected modules, frozen API directory"),
			mcplib.WithString("path", mcplib.Description("Classify a repository path as closed, protected or open")),
			mcplib.WithString("term", mcplib.Description("Look up the replacement for a forbidden term")),
		),
		handlePolicy(),
	)
}

func build(repoPath, configPath string, override func(*domain.SentinelConfig)) (*bootstrap.Runtime, error) {
	return bootstrap.Build(bootstrap.Params{
		Path:       repoPath,
		ConfigPath: configPath,
		LogOutput:  io.Discard,
		Override:   override,
	})
}

type findingResult struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

type guardRunResult struct {
	Result   domain.GuardResult `json:"result"`
	Findings []findingResult    `json:"findings"`
}

func handleRunGuard(repoPath, configPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		raw, err := request.RequireString("guard")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		name, err := domain.ParseGuardName(raw)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		rt, err := build(repoPath, configPath, nil)
		if err != nil {
			return errorResult(fmt.Sprintf("setup failed: %v", err)), nil
		}
		defer rt.Close()

		run, err := rt.Service.RunGuard(ctx, name)
		if err != nil {
			return errorResult(fmt.Sprintf("guard failed: %v", err)), nil
		}

		out := guardRunResult{Result: run.Result, Findings: make([]findingResult, 0, len(run.Findings))}
		for _, f := range run.Findings {
			out.Findings = append(out.Findings, findingResult{Location: f.Location(), Message: f.Message()})
		}
		return jsonResult(out)
	}
}

type reportResult struct {
	domain.ComplianceReport
	Status   string `json:"status"`
	Markdown string `json:"markdown"`
}

func handleReport(repoPath, configPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		override := func(c *domain.SentinelConfig) {
			if _, ok := args["min_score"]; ok {
				c.Scoring.MinimumScore = int(request.GetFloat("min_score", float64(c.Scoring.MinimumScore)))
			}
			if request.GetBool("include_build", false) {
				c.Guards.Build = true
			}
		}

		rt, err := build(repoPath, configPath, override)
		if err != nil {
			return errorResult(fmt.Sprintf("setup failed: %v", err)), nil
		}
		defer rt.Close()

		rep, _, err := rt.Service.RunAll(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("report failed: %v", err)), nil
		}

		return jsonResult(reportResult{
			ComplianceReport: *rep,
			Status:           report.StatusLine(*rep),
			Markdown:         report.RenderMarkdown(*rep, rt.Config.Output.MaxViolationsPerGuard),
		})
	}
}

type policyResult struct {
	Terms            []domain.ForbiddenTerm `json:"terms"`
	ClosedModules    []string               `json:"closed_modules"`
	ProtectedModules []string               `json:"protected_modules"`
	FrozenAPIDir     string                 `json:"frozen_api_dir"`
	Dependencies     map[string][]string    `json:"module_dependencies"`
	Path             *pathLookup            `json:"path,omitempty"`
	Term             *termLookup            `json:"term,omitempty"`
}

type pathLookup struct {
	Path      string `json:"path"`
	Module    string `json:"module,omitempty"`
	Closed    bool   `json:"closed"`
	Protected bool   `json:"protected"`
}

type termLookup struct {
	Term       string `json:"term"`
	Suggestion string `json:"suggestion"`
}

func handlePolicy() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		p := domain.DefaultPolicy()
		out := policySummary(p)
		if path := request.GetString("path", ""); path != "" {
			out.Path = &pathLookup{
				Path:      path,
				Module:    p.ModuleFor(path),
				Closed:    p.IsClosed(path),
				Protected: p.IsProtected(path),
			}
		}
		if term := request.GetString("term", ""); term != "" {
			out.Term = &termLookup{Term: term, Suggestion: p.Suggestion(term)}
		}
		return jsonResult(out)
	}
}

func policySummary(p domain.Policy) policyResult {
	out := policyResult{
		ClosedModules:    p.ClosedModules,
		ProtectedModules: p.ProtectedModules,
		FrozenAPIDir:     p.FrozenAPIDir,
		Dependencies:     p.ModuleDependencies,
	}
	out.Terms = append(out.Terms, p.Terms...)
	sort.Slice(out.Terms, func(i, j int) bool { return out.Terms[i].Term < out.Terms[j].Term })
	return out
}

// jsonResult marshals v into an indented JSON text result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns an error content result.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
