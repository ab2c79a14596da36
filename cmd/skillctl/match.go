package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillworks/skillctl/pkg/presenter"
	"github.com/skillworks/skillctl/pkg/registry"
	"github.com/skillworks/skillctl/pkg/router"
)

// MatchConfig holds configuration for the match command
type MatchConfig struct {
	Limit int
}

// NewMatchConfig creates a new MatchConfig with default values
func NewMatchConfig() *MatchConfig {
	return &MatchConfig{
		Limit: 0,
	}
}

var matchCmd = &cobra.Command{
	Use:   "match <query>...",
	Short: "Rank skills against a task description",
	Long: `Rank registered skills against a free-text task description. Skills are
scored on name, keyword, and description overlap; ties break on declared
priority. An empty result is not an error.

Examples:
  skillctl match my app is slow and reruns too much
  skillctl match "deploy to community cloud" --limit 3`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getMatchConfigFromFlags(cmd)
		matchSkills(cmd, strings.Join(args, " "), config)
	},
}

func init() {
	defaults := NewMatchConfig()
	matchCmd.Flags().IntP("limit", "n", defaults.Limit, "Maximum number of results to show (0 for all)")
	rootCmd.AddCommand(matchCmd)
}

func getMatchConfigFromFlags(cmd *cobra.Command) *MatchConfig {
	config := NewMatchConfig()
	if limit, err := cmd.Flags().GetInt("limit"); err == nil {
		config.Limit = limit
	}
	return config
}

func matchSkills(cmd *cobra.Command, query string, config *MatchConfig) {
	ctx := cmd.Context()

	reg, err := registry.New()
	if err != nil {
		presenter.Error(err, "Failed to initialize skill registry")
		os.Exit(1)
	}

	results := router.Match(reg.Discover(ctx), query)
	if len(results) == 0 {
		presenter.Info("No matching skills")
		return
	}

	if config.Limit > 0 && len(results) > config.Limit {
		results = results[:config.Limit]
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tPRIORITY\tNAME\tDESCRIPTION")
	fmt.Fprintln(tw, "-----\t--------\t----\t-----------")

	for _, res := range results {
		description := res.Skill.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", res.Score, res.Skill.Priority(), res.Skill.Name, description)
	}
	tw.Flush()
}
