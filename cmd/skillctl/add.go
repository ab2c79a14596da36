package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillworks/skillctl/pkg/installer"
	"github.com/skillworks/skillctl/pkg/presenter"
)

// AddConfig holds configuration for the add command
type AddConfig struct {
	Global bool
	Force  bool
	Local  bool
}

// NewAddConfig creates a new AddConfig with default values
func NewAddConfig() *AddConfig {
	return &AddConfig{}
}

var addCmd = &cobra.Command{
	Use:   "add <owner/repo[@ref] | path>",
	Short: "Install skills from a GitHub repository or local directory",
	Long: `Install skills from a GitHub repository. The repository is cloned with the
gh CLI and every directory containing a SKILL.md is installed as part of an
owner@repo bundle. Bundle skills are addressed as owner/repo/skill-name.

With --local, the argument is a local skill directory that is copied into
the standalone skills directory instead.

Examples:
  skillctl add myorg/streamlit-skills
  skillctl add myorg/streamlit-skills@v1.2.0
  skillctl add myorg/streamlit-skills -g --force
  skillctl add --local ./my-skill`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getAddConfigFromFlags(cmd)
		addSkills(cmd, args[0], config)
	},
}

func init() {
	defaults := NewAddConfig()
	addCmd.Flags().BoolP("global", "g", defaults.Global, "Install to the global ~/.skillctl directory instead of the local ./.skillctl directory")
	addCmd.Flags().BoolP("force", "f", defaults.Force, "Overwrite an existing installation")
	addCmd.Flags().Bool("local", defaults.Local, "Treat the argument as a local skill directory instead of a repository")
	rootCmd.AddCommand(addCmd)
}

func getAddConfigFromFlags(cmd *cobra.Command) *AddConfig {
	config := NewAddConfig()
	if global, err := cmd.Flags().GetBool("global"); err == nil {
		config.Global = global
	}
	if force, err := cmd.Flags().GetBool("force"); err == nil {
		config.Force = force
	}
	if local, err := cmd.Flags().GetBool("local"); err == nil {
		config.Local = local
	}
	return config
}

func addSkills(cmd *cobra.Command, source string, config *AddConfig) {
	ctx := cmd.Context()

	inst, err := installer.New(
		installer.WithGlobal(config.Global),
		installer.WithForce(config.Force),
	)
	if err != nil {
		presenter.Error(err, "Failed to initialize installer")
		os.Exit(1)
	}

	if config.Local {
		name, err := inst.InstallLocal(ctx, source)
		if err != nil {
			presenter.Error(err, "Failed to install skill")
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Installed skill %s", name))
		return
	}

	repo, ref := installer.ParseRepoRef(source)
	result, err := inst.Install(ctx, repo, ref)
	if err != nil {
		presenter.Error(err, "Failed to install skills")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Installed bundle %s with %d skill(s)",
		installer.BundleNameToUserFacing(result.BundleName), len(result.Skills)))
	for _, name := range result.Skills {
		presenter.Info("  " + name)
	}
}
