package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillworks/skillctl/pkg/installer"
	"github.com/skillworks/skillctl/pkg/presenter"
)

// RemoveConfig holds configuration for the remove command
type RemoveConfig struct {
	Global bool
}

// NewRemoveConfig creates a new RemoveConfig with default values
func NewRemoveConfig() *RemoveConfig {
	return &RemoveConfig{}
}

var removeCmd = &cobra.Command{
	Use:   "remove <skill-name | owner/repo>",
	Short: "Remove an installed skill or bundle",
	Long: `Remove an installed standalone skill by name, or an installed bundle by
its owner/repo name. Names containing a slash or @ are treated as bundles.

Examples:
  skillctl remove my-skill
  skillctl remove myorg/streamlit-skills
  skillctl remove myorg/streamlit-skills -g`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getRemoveConfigFromFlags(cmd)
		removeSkill(args[0], config)
	},
}

func init() {
	defaults := NewRemoveConfig()
	removeCmd.Flags().BoolP("global", "g", defaults.Global, "Remove from the global ~/.skillctl directory instead of the local ./.skillctl directory")
	rootCmd.AddCommand(removeCmd)
}

func getRemoveConfigFromFlags(cmd *cobra.Command) *RemoveConfig {
	config := NewRemoveConfig()
	if global, err := cmd.Flags().GetBool("global"); err == nil {
		config.Global = global
	}
	return config
}

func removeSkill(name string, config *RemoveConfig) {
	remover, err := installer.NewRemover(installer.WithGlobal(config.Global))
	if err != nil {
		presenter.Error(err, "Failed to initialize remover")
		os.Exit(1)
	}

	if strings.ContainsAny(name, "/@") {
		if err := remover.RemoveBundle(name); err != nil {
			presenter.Error(err, "Failed to remove bundle")
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Removed bundle %s", name))
		return
	}

	if err := remover.RemoveSkill(name); err != nil {
		presenter.Error(err, "Failed to remove skill")
		os.Exit(1)
	}
	presenter.Success(fmt.Sprintf("Removed skill %s", name))
}
