package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skillworks/skillctl/pkg/logger"
	"github.com/skillworks/skillctl/pkg/presenter"
	"github.com/skillworks/skillctl/pkg/registry"
	"github.com/skillworks/skillctl/pkg/server"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Host  string
	Port  int
	Watch bool
}

// NewServeConfig creates a new ServeConfig with default values
func NewServeConfig() *ServeConfig {
	return &ServeConfig{
		Host:  "localhost",
		Port:  8080,
		Watch: false,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the skill registry over HTTP",
	Long: `Start a local HTTP server exposing the skill registry as a JSON API for
agent runtimes:

  GET /api/skills        list registered skills
  GET /api/skills/{name} fetch a skill's full instructions
  GET /api/match?q=...   rank skills against a task description

With --watch, skill directories are watched for changes and the registry
cache is refreshed automatically.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		config := getServeConfigFromFlags(cmd)
		runServeCommand(ctx, config)
	},
}

func init() {
	defaults := NewServeConfig()
	serveCmd.Flags().String("host", defaults.Host, "Host to bind the server to")
	serveCmd.Flags().Int("port", defaults.Port, "Port to bind the server to")
	serveCmd.Flags().Bool("watch", defaults.Watch, "Watch skill directories and refresh the registry on changes")
	rootCmd.AddCommand(serveCmd)
}

func getServeConfigFromFlags(cmd *cobra.Command) *ServeConfig {
	config := NewServeConfig()
	if host, err := cmd.Flags().GetString("host"); err == nil {
		config.Host = host
	}
	if port, err := cmd.Flags().GetInt("port"); err == nil {
		config.Port = port
	}
	if watch, err := cmd.Flags().GetBool("watch"); err == nil {
		config.Watch = watch
	}
	return config
}

func runServeCommand(ctx context.Context, config *ServeConfig) {
	reg, err := registry.New()
	if err != nil {
		presenter.Error(err, "Failed to initialize skill registry")
		os.Exit(1)
	}

	serverConfig := &server.Config{
		Host: config.Host,
		Port: config.Port,
	}
	srv, err := server.New(serverConfig, reg)
	if err != nil {
		presenter.Error(err, "Invalid server configuration")
		os.Exit(1)
	}

	// Create a context that cancels on interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if config.Watch {
		if err := srv.Watch(ctx, reg.Dirs()...); err != nil {
			presenter.Error(err, "Failed to watch skill directories")
			os.Exit(1)
		}
	}

	go func() {
		<-ctx.Done()
		if err := srv.Stop(context.Background()); err != nil {
			logger.G(ctx).WithError(err).Error("failed to stop server")
		}
	}()

	presenter.Success(fmt.Sprintf("Skill registry server starting on http://%s:%d", config.Host, config.Port))
	presenter.Info("Press Ctrl+C to stop the server")

	if err := srv.Start(ctx); err != nil {
		presenter.Error(err, "Server failed")
		os.Exit(1)
	}

	presenter.Info("Server stopped")
}
