package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillworks/skillctl/pkg/lint"
	"github.com/skillworks/skillctl/pkg/presenter"
)

// LintConfig holds configuration for the lint command
type LintConfig struct {
	MaxLines int
}

// NewLintConfig creates a new LintConfig with default values
func NewLintConfig() *LintConfig {
	return &LintConfig{
		MaxLines: lint.DefaultMaxLines,
	}
}

var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Validate skill directories",
	Long: `Validate skill directories under the given path (default: current
directory). If the path itself contains a SKILL.md, only that skill is
checked; otherwise every immediate subdirectory is treated as a skill.

Checks frontmatter syntax, name and description rules, duplicate names,
relative link targets, and recommended file size. Exits non-zero when any
error-severity finding is reported.

Examples:
  skillctl lint
  skillctl lint ./.skillctl/skills
  skillctl lint ./my-skill --max-lines 300`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		config := getLintConfigFromFlags(cmd)
		lintSkills(cmd, root, config)
	},
}

func init() {
	defaults := NewLintConfig()
	lintCmd.Flags().Int("max-lines", defaults.MaxLines, "Recommended maximum SKILL.md line count before warning")
	rootCmd.AddCommand(lintCmd)
}

func getLintConfigFromFlags(cmd *cobra.Command) *LintConfig {
	config := NewLintConfig()
	if maxLines, err := cmd.Flags().GetInt("max-lines"); err == nil {
		config.MaxLines = maxLines
	}
	return config
}

func lintSkills(cmd *cobra.Command, root string, config *LintConfig) {
	ctx := cmd.Context()

	linter := lint.New(lint.WithMaxLines(config.MaxLines))
	result, err := linter.Run(ctx, root)
	if err != nil {
		presenter.Error(err, "Failed to lint skills")
		os.Exit(1)
	}

	for _, finding := range result.Warnings() {
		presenter.Warning(finding.String())
	}
	errorFindings := result.Errors()
	for _, finding := range errorFindings {
		fmt.Fprintln(os.Stderr, finding.String())
	}

	if len(errorFindings) > 0 {
		presenter.Error(errors.Errorf("%d problem(s) found", len(errorFindings)), "Lint failed")
		os.Exit(1)
	}
	presenter.Success("All skills pass lint checks")
}
