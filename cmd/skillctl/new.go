package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillworks/skillctl/pkg/presenter"
	"github.com/skillworks/skillctl/pkg/scaffold"
)

// NewCmdConfig holds configuration for the new command
type NewCmdConfig struct {
	Dir            string
	Description    string
	License        string
	Impact         string
	Category       string
	Keywords       string
	WithScripts    bool
	WithReferences bool
	WithAssets     bool
}

// NewNewCmdConfig creates a new NewCmdConfig with default values
func NewNewCmdConfig() *NewCmdConfig {
	return &NewCmdConfig{
		Dir: ".",
	}
}

var newCmd = &cobra.Command{
	Use:   "new <skill-name>",
	Short: "Scaffold a new skill directory",
	Long: `Scaffold a new skill directory with a SKILL.md template. The skill name
must be lowercase letters, digits, and hyphens, at most 64 characters.

Examples:
  skillctl new deploy-fastapi-app
  skillctl new caching-patterns --description "Use when caching expensive work" --impact high
  skillctl new testing-guide --scripts --references`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getNewCmdConfigFromFlags(cmd)
		newSkill(args[0], config)
	},
}

func init() {
	defaults := NewNewCmdConfig()
	newCmd.Flags().StringP("dir", "C", defaults.Dir, "Parent directory to create the skill in")
	newCmd.Flags().StringP("description", "d", defaults.Description, "Skill description (used for matching; defaults to a placeholder)")
	newCmd.Flags().String("license", defaults.License, "License tag for the skill")
	newCmd.Flags().String("impact", defaults.Impact, "Priority impact (critical, high, medium, low)")
	newCmd.Flags().String("category", defaults.Category, "Topical category")
	newCmd.Flags().String("keywords", defaults.Keywords, "Comma-separated trigger keywords")
	newCmd.Flags().Bool("scripts", defaults.WithScripts, "Create a scripts/ subdirectory")
	newCmd.Flags().Bool("references", defaults.WithReferences, "Create a references/ subdirectory")
	newCmd.Flags().Bool("assets", defaults.WithAssets, "Create an assets/ subdirectory")
	rootCmd.AddCommand(newCmd)
}

func getNewCmdConfigFromFlags(cmd *cobra.Command) *NewCmdConfig {
	config := NewNewCmdConfig()
	if dir, err := cmd.Flags().GetString("dir"); err == nil {
		config.Dir = dir
	}
	if description, err := cmd.Flags().GetString("description"); err == nil {
		config.Description = description
	}
	if license, err := cmd.Flags().GetString("license"); err == nil {
		config.License = license
	}
	if impact, err := cmd.Flags().GetString("impact"); err == nil {
		config.Impact = impact
	}
	if category, err := cmd.Flags().GetString("category"); err == nil {
		config.Category = category
	}
	if keywords, err := cmd.Flags().GetString("keywords"); err == nil {
		config.Keywords = keywords
	}
	if scripts, err := cmd.Flags().GetBool("scripts"); err == nil {
		config.WithScripts = scripts
	}
	if references, err := cmd.Flags().GetBool("references"); err == nil {
		config.WithReferences = references
	}
	if assets, err := cmd.Flags().GetBool("assets"); err == nil {
		config.WithAssets = assets
	}
	return config
}

func newSkill(name string, config *NewCmdConfig) {
	path, err := scaffold.Create(config.Dir, scaffold.Options{
		Name:           name,
		Description:    config.Description,
		License:        config.License,
		Impact:         config.Impact,
		Category:       config.Category,
		Keywords:       config.Keywords,
		WithScripts:    config.WithScripts,
		WithReferences: config.WithReferences,
		WithAssets:     config.WithAssets,
	})
	if err != nil {
		presenter.Error(err, "Failed to scaffold skill")
		os.Exit(1)
	}
	presenter.Success(fmt.Sprintf("Created skill at %s", path))
}
