package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillworks/skillctl/pkg/presenter"
	"github.com/skillworks/skillctl/pkg/registry"
)

// ShowConfig holds configuration for the show command
type ShowConfig struct {
	Metadata bool
	Path     bool
}

// NewShowConfig creates a new ShowConfig with default values
func NewShowConfig() *ShowConfig {
	return &ShowConfig{}
}

var showCmd = &cobra.Command{
	Use:   "show <skill-name>",
	Short: "Print a skill's instructions",
	Long: `Print the markdown instructions of a registered skill.

Examples:
  skillctl show optimizing-streamlit-performance
  skillctl show myorg/skills/deploy-app
  skillctl show optimizing-streamlit-performance --metadata`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getShowConfigFromFlags(cmd)
		showSkill(cmd, args[0], config)
	},
}

func init() {
	defaults := NewShowConfig()
	showCmd.Flags().BoolP("metadata", "m", defaults.Metadata, "Print the skill's YAML frontmatter instead of its instructions")
	showCmd.Flags().Bool("path", defaults.Path, "Print the path to the skill's SKILL.md file")
	rootCmd.AddCommand(showCmd)
}

func getShowConfigFromFlags(cmd *cobra.Command) *ShowConfig {
	config := NewShowConfig()
	if metadata, err := cmd.Flags().GetBool("metadata"); err == nil {
		config.Metadata = metadata
	}
	if path, err := cmd.Flags().GetBool("path"); err == nil {
		config.Path = path
	}
	return config
}

func showSkill(cmd *cobra.Command, name string, config *ShowConfig) {
	ctx := cmd.Context()

	reg, err := registry.New()
	if err != nil {
		presenter.Error(err, "Failed to initialize skill registry")
		os.Exit(1)
	}

	entry, err := reg.Get(ctx, name)
	if err != nil {
		presenter.Error(err, "Skill not found")
		os.Exit(1)
	}

	switch {
	case config.Path:
		fmt.Println(entry.Path)
	case config.Metadata:
		encoded, err := entry.Frontmatter().Encode()
		if err != nil {
			presenter.Error(err, "Failed to encode frontmatter")
			os.Exit(1)
		}
		fmt.Print(encoded)
	default:
		fmt.Print(entry.Content)
	}
}
