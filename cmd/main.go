package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sbilibin2017/gw-auth-manager/internal/config"
	"github.com/sbilibin2017/gw-auth-manager/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-auth-manager API
// @version 1.0.0
// @description Simple auth manager issuing JWT access tokens
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "gw-auth-manager",
		Short:        "Simple auth manager issuing access tokens",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.env", "Path to configuration file")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if err := logger.Initialize(cfg.LogLevel, cfg.LogEncoding); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return cfg, nil
	}

	rootCmd.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newUsersCmd(load),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			printBuildInfo(cmd.OutOrStdout())
		},
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo(w io.Writer) {
	fmt.Fprintf(w, "Version: %s\nCommit: %s\nBuild date: %s\n", buildVersion, buildCommit, buildDate)
}
