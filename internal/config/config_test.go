package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/modinstall/internal/placement"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modinstall.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "configs", c.ConfigsDir)
	assert.Equal(t, "configs_backup", c.BackupDir)
	assert.Equal(t, "temp", c.ScratchDir)
	assert.Equal(t, "Instructions.txt", c.InstructionsFile)
	assert.Equal(t, "Replacement Files", c.ReplacementDir)
	assert.Equal(t, ".zip", c.ArchiveExt)
	if home, err := os.UserHomeDir(); err == nil {
		assert.Equal(t, filepath.Join(home, "Downloads", "Cubic_Odyssey"), c.DownloadsDir)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
downloads_dir = "/srv/mods"
configs_dir   = "cfg"

variant "armor" {
  from = "mk1"
  to   = "mk2"
}
`)
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvDownloadsDir, "")
	t.Setenv(EnvConfigsDir, "")
	t.Setenv(EnvBackupDir, "cfg_old")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/mods", c.DownloadsDir)
	assert.Equal(t, "cfg", c.ConfigsDir)
	assert.Equal(t, "cfg_old", c.BackupDir)
	assert.Equal(t, "temp", c.ScratchDir)
	assert.Equal(t, []Variant{{Fragment: "armor", From: "mk1", To: "mk2"}}, c.Variants)
}

func TestLoad_ConfigFromEnvironment(t *testing.T) {
	path := writeConfig(t, `scratch_dir = "work"`)
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDownloadsDir, "/tmp/dl")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "work", c.ScratchDir)
	assert.Equal(t, "/tmp/dl", c.DownloadsDir)
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv(EnvDownloadsDir, "/tmp/dl")

	_, err := Load(writeConfig(t, `configs_dir = `))
	assert.ErrorContains(t, err, "decode config")

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"ok", func(*Config) {}, ""},
		{"no downloads", func(c *Config) { c.DownloadsDir = "" }, "downloads directory"},
		{"nested configs", func(c *Config) { c.ConfigsDir = "a/b" }, "plain name"},
		{"dotdot backup", func(c *Config) { c.BackupDir = ".." }, "plain name"},
		{"empty scratch", func(c *Config) { c.ScratchDir = "" }, "scratch_dir is empty"},
		{"same dirs", func(c *Config) { c.BackupDir = "Configs" }, "both"},
		{"ext", func(c *Config) { c.ArchiveExt = "zip" }, "must start with a dot"},
		{"variant", func(c *Config) { c.Variants = []Variant{{Fragment: "x"}} }, "needs a label"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			c.DownloadsDir = "/dl"
			tt.mutate(&c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestRules(t *testing.T) {
	c := Default()
	c.Variants = []Variant{{Fragment: "armor", From: "mk1", To: "mk2"}}

	rules := c.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, []string{"Armor mk1", "Armor mk2"}, placement.Candidates("Armor mk1", rules))

	r := c.Resolver()
	assert.Equal(t, "Instructions.txt", r.InstructionsFile)
	assert.Equal(t, "Replacement Files", r.ReplacementName)
}
