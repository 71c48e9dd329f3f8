package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentic-research/modinstall/api"
	"github.com/agentic-research/modinstall/internal/batch"
	"github.com/agentic-research/modinstall/internal/ctxlog"
)

// ErrInstallFailed is returned after a report with errors has been printed.
var ErrInstallFailed = errors.New("mod installation failed")

var installCmd = &cobra.Command{
	Use:   "install <gameDirectory> [resetFlag]",
	Short: "Install every archive from the downloads directory into <gameDirectory>/configs",
	Long: `Install every archive from the downloads directory into <gameDirectory>/configs.

resetFlag 1 restores configs from configs_backup first and takes a fresh
backup; 0 (the default) only backs up configs when no backup exists yet.`,
	Args: func(cmd *cobra.Command, args []string) error {
		_, _, err := parseInstallArgs(cmd, args)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		gameDir, reset, err := parseInstallArgs(cmd, args)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ctxlog.FromContext(ctx).Info("starting installation",
			"game_dir", gameDir,
			"reset", reset,
			"downloads", cfg.DownloadsDir)

		report := batch.Run(ctx, gameDir, reset, cfg)
		printReport(cmd.OutOrStdout(), report)
		if !report.Success() {
			return ErrInstallFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func printReport(w io.Writer, report *api.Report) {
	if len(report.Messages) > 0 {
		_, _ = fmt.Fprintln(w, "\nIssues encountered during mod installation:")
		for _, m := range report.Messages {
			_, _ = fmt.Fprintf(w, "- %s\n", m)
		}
	}
	verdict := "completed successfully"
	if !report.Success() {
		verdict = "failed"
	}
	_, _ = fmt.Fprintf(w, "\nMod installation %s\n", verdict)
}
