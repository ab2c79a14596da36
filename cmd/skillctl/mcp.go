package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skillworks/skillctl/pkg/mcpserver"
	"github.com/skillworks/skillctl/pkg/presenter"
	"github.com/skillworks/skillctl/pkg/registry"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the skill registry over MCP on stdio",
	Long: `Start an MCP server on stdin/stdout exposing the skill registry to agent
runtimes as tools: list_skills, get_skill, and match_skills.

Intended to be launched by an MCP client, for example:

  {"command": "skillctl", "args": ["mcp"]}`,
	Run: func(_ *cobra.Command, _ []string) {
		reg, err := registry.New()
		if err != nil {
			presenter.Error(err, "Failed to initialize skill registry")
			os.Exit(1)
		}

		if err := mcpserver.NewService(reg).ServeStdio(); err != nil {
			presenter.Error(err, "MCP server failed")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
