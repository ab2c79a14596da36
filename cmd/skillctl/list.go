package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillworks/skillctl/pkg/installer"
	"github.com/skillworks/skillctl/pkg/presenter"
	"github.com/skillworks/skillctl/pkg/registry"
	"github.com/skillworks/skillctl/pkg/skill"
)

// ListConfig holds configuration for the list command
type ListConfig struct {
	Patterns []string
	Bundles  bool
	Global   bool
}

// NewListConfig creates a new ListConfig with default values
func NewListConfig() *ListConfig {
	return &ListConfig{}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered skills",
	Long: `List all registered skills with their names, priorities, and descriptions.

Skills are discovered from ./.skillctl and ~/.skillctl, local directories
first. With --bundles, lists installed skill bundles instead.

Examples:
  skillctl list
  skillctl list --pattern 'streamlit-*'
  skillctl list --bundles -g`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getListConfigFromFlags(cmd)
		if config.Bundles {
			listBundles(config)
			return
		}
		listSkills(cmd, config)
	},
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().StringSliceP("pattern", "p", defaults.Patterns, "Only list skills whose names match the glob pattern (repeatable)")
	listCmd.Flags().Bool("bundles", defaults.Bundles, "List installed skill bundles instead of individual skills")
	listCmd.Flags().BoolP("global", "g", defaults.Global, "With --bundles, list bundles from the global ~/.skillctl directory")
	rootCmd.AddCommand(listCmd)
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()
	if patterns, err := cmd.Flags().GetStringSlice("pattern"); err == nil {
		config.Patterns = patterns
	}
	if bundles, err := cmd.Flags().GetBool("bundles"); err == nil {
		config.Bundles = bundles
	}
	if global, err := cmd.Flags().GetBool("global"); err == nil {
		config.Global = global
	}
	return config
}

func listSkills(cmd *cobra.Command, config *ListConfig) {
	ctx := cmd.Context()

	reg, err := registry.New()
	if err != nil {
		presenter.Error(err, "Failed to initialize skill registry")
		os.Exit(1)
	}

	skills := reg.Discover(ctx)
	if len(config.Patterns) > 0 {
		skills, err = registry.FilterByPatterns(skills, config.Patterns)
		if err != nil {
			presenter.Error(err, "Invalid skill name pattern")
			os.Exit(1)
		}
	}

	if len(skills) == 0 {
		presenter.Info("No skills found")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPRIORITY\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t--------\t-----------")

	for _, name := range skill.SortedNames(skills) {
		entry := skills[name]
		description := entry.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Name, entry.Priority(), description)
	}
	tw.Flush()
}

func listBundles(config *ListConfig) {
	remover, err := installer.NewRemover(installer.WithGlobal(config.Global))
	if err != nil {
		presenter.Error(err, "Failed to initialize bundle lister")
		os.Exit(1)
	}

	bundles, err := remover.ListBundles()
	if err != nil {
		presenter.Error(err, "Failed to list bundles")
		os.Exit(1)
	}

	if len(bundles) == 0 {
		presenter.Info("No bundles installed")
		return
	}

	for _, bundle := range bundles {
		fmt.Println(bundle)
	}
}
