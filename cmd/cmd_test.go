package cmd

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/modinstall/api"
	"github.com/agentic-research/modinstall/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvDownloadsDir, "")
	t.Setenv(config.EnvConfigsDir, "")
	t.Setenv(config.EnvBackupDir, "")

	logLevel, logFormat, configPath, downloadsDir = "info", "text", "", ""
	inspectJSON, inspectQuery = false, ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	out, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
}

var weaponsMod = map[string]string{
	"Instructions.txt":               `Copy and Paste the "Weapons" folder(s): > "Weapons" subfolder(s): > "player"`,
	"Weapons/gun.json":               "gun",
	"Weapons/unused/skin.json":       "skin",
	"Replacement Files/Extra/x.json": "x",
}

func TestInstall_Succeeds(t *testing.T) {
	game := t.TempDir()
	dl := t.TempDir()
	writeZip(t, filepath.Join(dl, "weapons.zip"), weaponsMod)

	out, err := execute(t, "install", game, "--downloads", dl)
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(game, "configs", "player", "gun.json"))
	require.NoError(t, err)
	assert.Equal(t, "gun", string(data))
	assert.Contains(t, out, "Issues encountered during mod installation:")
	assert.Contains(t, out, "- warning: [weapons.zip]")
	assert.True(t, strings.HasSuffix(out, "Mod installation completed successfully\n"), out)
}

func TestInstall_FailureExitsWithError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	out, err := execute(t, "install", missing+" 1", "--downloads", t.TempDir())
	require.ErrorIs(t, err, ErrInstallFailed)
	assert.Contains(t, out, "- fatal: game directory "+missing+" does not exist")
	assert.Contains(t, out, "Mod installation failed")
}

func TestInstall_UsageError(t *testing.T) {
	_, err := execute(t, "install", "/games/co", "yes")

	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Contains(t, usage.Msg, "resetFlag must be 0 or 1")
}

func TestInstall_InvalidConfig(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`configs_dir = "a/b"`), 0o644))

	_, err := execute(t, "install", t.TempDir(), "--downloads", t.TempDir(), "--config", cfgFile)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestInspect_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weapons.zip")
	writeZip(t, path, weaponsMod)

	out, err := execute(t, "inspect", path, "--json", "--log-level", "error")
	require.NoError(t, err, out)

	var plan api.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, "weapons.zip", plan.Archive)
	assert.True(t, plan.InstructionsFound)
	assert.Equal(t, "Replacement Files", plan.ReplacementDir)
	assert.Equal(t, []api.Placement{{Source: "Weapons/gun.json", Dest: "player/gun.json"}}, plan.Placements)
	assert.NotEmpty(t, plan.Warnings)
	assert.Empty(t, plan.Error)

	// Nothing next to the archive was created.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInspect_Query(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weapons.zip")
	writeZip(t, path, weaponsMod)

	out, err := execute(t, "inspect", path, "--query", "$.placements[*].dest", "--log-level", "error")
	require.NoError(t, err, out)
	assert.Equal(t, "\"player/gun.json\"\n", out)
}

func TestInspect_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weapons.zip")
	writeZip(t, path, weaponsMod)

	out, err := execute(t, "inspect", path, "--log-level", "error")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Mapping: Weapons -> player")
	assert.Contains(t, out, "Planned copies (1):")
	assert.Contains(t, out, "Weapons/gun.json -> player/gun.json")
}
