package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/bearer-mcp/internal/config"
	"github.com/bryanwahyu/bearer-mcp/internal/logging"
)

var (
	// Global flags
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bearer-mcp",
	Short: "MCP server exposing the Bearer security scanner",
	Long: `bearer-mcp exposes the Bearer static-analysis CLI as Model Context Protocol
tools: repository and path scans, version, rule documentation and config init.

Run without a subcommand to serve over the configured transport.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("config load error: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	defaultPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "path to config.yaml (env CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	serveCmd.Flags().StringVar(&transportFlag, "transport", "", "transport to serve: stdio or sse (env MCP_TRANSPORT)")
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "print full MCP tool schemas as JSON")
	callCmd.Flags().StringArrayVar(&callArgs, "arg", nil, "tool argument as key=value (repeatable)")

	rootCmd.AddCommand(serveCmd, toolsCmd, callCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
