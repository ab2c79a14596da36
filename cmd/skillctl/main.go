package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillworks/skillctl/pkg/logger"
	"github.com/skillworks/skillctl/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLCTL")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillctl")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "skillctl",
	Short: "Manage, lint, and route agent skills",
	Long: `skillctl manages agent skills: directories containing a SKILL.md file
with YAML frontmatter that teaches an AI assistant how to perform a task.

Skills are discovered from the repo-local ./.skillctl directory and the
user-global ~/.skillctl directory, including bundles installed from GitHub
repositories. Besides listing and inspecting skills, skillctl can lint a
skill corpus, match skills against a task description, scaffold new skills,
and serve the registry over HTTP or MCP.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			presenter.Warning(fmt.Sprintf("invalid log level %q, using default", viper.GetString("log_level")))
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
		os.Exit(1)
	},
}

func main() {
	// Add global flags
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "auto", "Log format (json, text, auto)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational output")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
