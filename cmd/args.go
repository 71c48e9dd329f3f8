package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// UsageError reports malformed command-line arguments.
type UsageError struct {
	Cmd *cobra.Command
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usageErrorf(cmd *cobra.Command, format string, args ...any) error {
	return &UsageError{Cmd: cmd, Msg: fmt.Sprintf(format, args...)}
}

// parseInstallArgs accepts `<gameDir> [resetFlag]` as well as the older
// single-argument form where the flag follows the directory after a space.
func parseInstallArgs(cmd *cobra.Command, args []string) (gameDir string, reset bool, err error) {
	if len(args) < 1 || len(args) > 2 {
		return "", false, usageErrorf(cmd, "expected <gameDirectory> [resetFlag], got %d arguments", len(args))
	}

	gameDir = args[0]
	flag := "0"
	if len(args) == 2 {
		flag = strings.TrimSpace(args[1])
		if flag != "0" && flag != "1" {
			return "", false, usageErrorf(cmd, "resetFlag must be 0 or 1, got %q", args[1])
		}
	} else if i := strings.LastIndex(gameDir, " "); i >= 0 {
		if tail := gameDir[i+1:]; tail == "0" || tail == "1" {
			gameDir, flag = gameDir[:i], tail
		}
	}

	gameDir = cleanGameDir(gameDir)
	if gameDir == "" {
		return "", false, usageErrorf(cmd, "game directory is empty")
	}
	return gameDir, flag == "1", nil
}

// cleanGameDir strips surrounding quotes and trailing separators, which
// Windows shells tend to leave on a quoted directory argument.
func cleanGameDir(dir string) string {
	dir = strings.Trim(dir, `"`)
	trimmed := strings.TrimRight(dir, `\/`)
	if trimmed == "" && dir != "" {
		return dir[:1]
	}
	return trimmed
}
