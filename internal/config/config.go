// Package config resolves the installer layout from defaults, an optional
// HCL file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"

	"github.com/agentic-research/modinstall/internal/placement"
)

// Environment variables read by Load.
const (
	EnvConfig       = "MODINSTALL_CONFIG"
	EnvDownloadsDir = "MODINSTALL_DOWNLOADS_DIR"
	EnvConfigsDir   = "MODINSTALL_CONFIGS_DIR"
	EnvBackupDir    = "MODINSTALL_BACKUP_DIR"
)

// Variant adds a name-variant rule: source folder names containing Fragment
// are also tried with From and To swapped.
type Variant struct {
	Fragment string `hcl:"fragment,label"`
	From     string `hcl:"from"`
	To       string `hcl:"to"`
}

// Config is the installer layout.
type Config struct {
	// DownloadsDir holds the pending archives.
	DownloadsDir string `hcl:"downloads_dir,optional"`
	// ConfigsDir and BackupDir are names inside the game directory.
	ConfigsDir string `hcl:"configs_dir,optional"`
	BackupDir  string `hcl:"backup_dir,optional"`
	// ScratchDir is a name inside DownloadsDir, recreated per archive.
	ScratchDir       string    `hcl:"scratch_dir,optional"`
	InstructionsFile string    `hcl:"instructions_file,optional"`
	ReplacementDir   string    `hcl:"replacement_dir,optional"`
	ArchiveExt       string    `hcl:"archive_ext,optional"`
	Variants         []Variant `hcl:"variant,block"`
}

// Default returns the built-in layout.
func Default() Config {
	c := Config{
		ConfigsDir:       "configs",
		BackupDir:        "configs_backup",
		ScratchDir:       "temp",
		InstructionsFile: "Instructions.txt",
		ReplacementDir:   "Replacement Files",
		ArchiveExt:       ".zip",
	}
	if home, err := os.UserHomeDir(); err == nil {
		c.DownloadsDir = filepath.Join(home, "Downloads", "Cubic_Odyssey")
	}
	return c
}

// Load builds the layout. path names an HCL file; when empty,
// MODINSTALL_CONFIG is consulted and a missing variable means no file.
// Environment variables, after loading any .env file, override both.
// The result is not validated; callers apply their own overrides first and
// then call Validate.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	c := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return c, err
		}
	}
	c.ApplyEnv(os.Getenv)
	return c, nil
}

// LoadFile overlays the attributes set in the HCL file at path. The file
// name must end in .hcl or .json.
func (c *Config) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var f Config
	if err := hclsimple.Decode(path, src, nil, &f); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	c.merge(f)
	return nil
}

func (c *Config) merge(f Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.DownloadsDir, f.DownloadsDir)
	set(&c.ConfigsDir, f.ConfigsDir)
	set(&c.BackupDir, f.BackupDir)
	set(&c.ScratchDir, f.ScratchDir)
	set(&c.InstructionsFile, f.InstructionsFile)
	set(&c.ReplacementDir, f.ReplacementDir)
	set(&c.ArchiveExt, f.ArchiveExt)
	c.Variants = append(c.Variants, f.Variants...)
}

// ApplyEnv overrides directories from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvDownloadsDir)); v != "" {
		c.DownloadsDir = v
	}
	if v := strings.TrimSpace(getenv(EnvConfigsDir)); v != "" {
		c.ConfigsDir = v
	}
	if v := strings.TrimSpace(getenv(EnvBackupDir)); v != "" {
		c.BackupDir = v
	}
}

// Validate checks that the layout is usable.
func (c Config) Validate() error {
	var errs []error
	if c.DownloadsDir == "" {
		errs = append(errs, errors.New("downloads directory is not set"))
	}
	for _, n := range []struct{ field, value string }{
		{"configs_dir", c.ConfigsDir},
		{"backup_dir", c.BackupDir},
		{"scratch_dir", c.ScratchDir},
		{"instructions_file", c.InstructionsFile},
	} {
		switch {
		case n.value == "":
			errs = append(errs, fmt.Errorf("%s is empty", n.field))
		case strings.ContainsAny(n.value, `/\`) || n.value == "." || n.value == "..":
			errs = append(errs, fmt.Errorf("%s %q must be a plain name", n.field, n.value))
		}
	}
	if c.ConfigsDir != "" && strings.EqualFold(c.ConfigsDir, c.BackupDir) {
		errs = append(errs, fmt.Errorf("configs_dir and backup_dir are both %q", c.ConfigsDir))
	}
	if !strings.HasPrefix(c.ArchiveExt, ".") {
		errs = append(errs, fmt.Errorf("archive_ext %q must start with a dot", c.ArchiveExt))
	}
	for _, v := range c.Variants {
		if v.Fragment == "" || v.From == "" || v.To == "" {
			errs = append(errs, fmt.Errorf("variant %q needs a label, from and to", v.Fragment))
		}
	}
	return errors.Join(errs...)
}

// Rules returns the default variant rules followed by the configured ones.
func (c Config) Rules() []placement.Rule {
	rules := placement.DefaultRules()
	for _, v := range c.Variants {
		rules = append(rules, placement.SwapRule(v.Fragment, v.From, v.To))
	}
	return rules
}

// Resolver returns a placement resolver for this layout.
func (c Config) Resolver() *placement.Resolver {
	return &placement.Resolver{
		Rules:            c.Rules(),
		InstructionsFile: c.InstructionsFile,
		ReplacementName:  c.ReplacementDir,
	}
}
