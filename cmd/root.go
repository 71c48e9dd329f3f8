package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/modinstall/internal/config"
	"github.com/agentic-research/modinstall/internal/ctxlog"
)

var (
	logLevel     string
	logFormat    string
	configPath   string
	downloadsDir string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to an HCL config file (default $"+config.EnvConfig+")")
	rootCmd.PersistentFlags().StringVar(&downloadsDir, "downloads", "", "Directory holding the mod archives")
}

var rootCmd = &cobra.Command{
	Use:           "modinstall",
	Short:         "modinstall: install game mod archives into a configs tree",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := ctxlog.New(cmd.OutOrStdout(), logLevel, logFormat)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
}

// loadConfig resolves the layout and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if downloadsDir != "" {
		cfg.DownloadsDir = downloadsDir
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command and exits non-zero on any failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var usage *UsageError
		switch {
		case errors.As(err, &usage):
			fmt.Fprintln(os.Stderr, "Error:", usage.Msg)
			fmt.Fprint(os.Stderr, usage.Cmd.UsageString())
		case errors.Is(err, ErrInstallFailed):
			// The report has already been printed.
		default:
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
