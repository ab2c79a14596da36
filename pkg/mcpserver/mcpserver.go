// Package mcpserver exposes the skill registry as MCP tools over stdio so
// that agent runtimes can list, fetch, and match skills natively instead of
// shelling out to the CLI.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/skillworks/skillctl/pkg/registry"
	"github.com/skillworks/skillctl/pkg/router"
	"github.com/skillworks/skillctl/pkg/skill"
	"github.com/skillworks/skillctl/pkg/version"
)

// Service implements the MCP tool handlers on top of a registry
type Service struct {
	registry *registry.Registry
}

// NewService creates a Service
func NewService(reg *registry.Registry) *Service {
	return &Service{registry: reg}
}

// Server builds the MCP server with the registry tools registered
func (s *Service) Server() *server.MCPServer {
	srv := server.NewMCPServer("skillctl", version.Get().Version,
		server.WithToolCapabilities(false),
	)

	srv.AddTool(mcp.NewTool("list_skills",
		mcp.WithDescription("List all registered skills with their names, descriptions, and priorities."),
	), s.handleListSkills)

	srv.AddTool(mcp.NewTool("get_skill",
		mcp.WithDescription("Fetch a skill's full markdown instructions by name."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The skill name, including any org/repo/ bundle prefix."),
		),
	), s.handleGetSkill)

	srv.AddTool(mcp.NewTool("match_skills",
		mcp.WithDescription("Rank skills against a free-text task description. Returns an empty list when nothing matches."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The task description to match against skill descriptions."),
		),
	), s.handleMatchSkills)

	return srv
}

// ServeStdio runs the MCP server on stdin/stdout until the client
// disconnects.
func (s *Service) ServeStdio() error {
	return server.ServeStdio(s.Server())
}

// entrySummary is the JSON shape returned by list_skills and match_skills
type entrySummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Score       int    `json:"score,omitempty"`
}

func (s *Service) handleListSkills(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skills := s.registry.Discover(ctx)

	summaries := make([]entrySummary, 0, len(skills))
	for _, name := range skill.SortedNames(skills) {
		entry := skills[name]
		summaries = append(summaries, entrySummary{
			Name:        entry.Name,
			Description: entry.Description,
			Priority:    entry.Priority().String(),
		})
	}

	return jsonResult(summaries)
}

func (s *Service) handleGetSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := request.GetArguments()["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("missing required argument 'name'"), nil
	}

	entry, err := s.registry.Get(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(entry.Content), nil
}

func (s *Service) handleMatchSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := request.GetArguments()["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("missing required argument 'query'"), nil
	}

	results := router.Match(s.registry.Discover(ctx), query)

	summaries := make([]entrySummary, 0, len(results))
	for _, res := range results {
		summaries = append(summaries, entrySummary{
			Name:        res.Skill.Name,
			Description: res.Skill.Description,
			Priority:    res.Skill.Priority().String(),
			Score:       res.Score,
		})
	}

	return jsonResult(summaries)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode result")
	}
	return mcp.NewToolResultText(string(out)), nil
}
