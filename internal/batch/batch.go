// Package batch installs every pending archive into a game directory.
package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/modinstall/api"
	"github.com/agentic-research/modinstall/internal/archive"
	"github.com/agentic-research/modinstall/internal/backup"
	"github.com/agentic-research/modinstall/internal/config"
	"github.com/agentic-research/modinstall/internal/ctxlog"
	"github.com/agentic-research/modinstall/internal/finder"
	"github.com/agentic-research/modinstall/internal/fsutil"
	"github.com/agentic-research/modinstall/internal/instructions"
	"github.com/agentic-research/modinstall/internal/placement"
)

// Driver runs one installation pass. Game is rooted at the game directory
// and Downloads at the archive directory; the scratch area lives inside
// Downloads.
type Driver struct {
	Game      billy.Filesystem
	Downloads billy.Filesystem
	Config    config.Config
	Resolver  *placement.Resolver
}

// New returns a Driver for the given filesystems.
func New(game, downloads billy.Filesystem, cfg config.Config) *Driver {
	return &Driver{
		Game:      game,
		Downloads: downloads,
		Config:    cfg,
		Resolver:  cfg.Resolver(),
	}
}

// Run installs every archive from cfg.DownloadsDir into gameDir.
func Run(ctx context.Context, gameDir string, reset bool, cfg config.Config) *api.Report {
	info, err := os.Stat(gameDir)
	if err != nil || !info.IsDir() {
		report := &api.Report{}
		report.Fatal("game directory %s does not exist", gameDir)
		return report
	}
	return New(fsutil.Disk(gameDir), fsutil.Disk(cfg.DownloadsDir), cfg).Run(ctx, reset)
}

// Run prepares the backup and then processes each archive in name order.
// Fatal problems stop before any archive is touched; a failing archive is
// recorded and the next one still runs.
func (d *Driver) Run(ctx context.Context, reset bool) *api.Report {
	log := ctxlog.FromContext(ctx)
	report := &api.Report{}

	mgr := backup.New(d.Game, d.Config.ConfigsDir, d.Config.BackupDir)
	if err := mgr.Prepare(ctx, reset); err != nil {
		report.Fatal("backup/restore of %s failed: %v", d.Config.ConfigsDir, err)
		return report
	}

	ok, err := fsutil.IsDir(d.Downloads, fsutil.Root)
	if err != nil || !ok {
		report.Fatal("downloads directory %s does not exist", d.Downloads.Root())
		return report
	}
	archives, err := archive.Discover(d.Downloads, fsutil.Root, d.Config.ArchiveExt)
	if err != nil {
		report.Fatal("list downloads directory %s: %v", d.Downloads.Root(), err)
		return report
	}
	if len(archives) == 0 {
		report.Fatal("no %s files found in %s", d.Config.ArchiveExt, d.Downloads.Root())
		return report
	}

	log.Info("found archives", "count", len(archives), "dir", d.Downloads.Root())
	for _, path := range archives {
		report.Packages = append(report.Packages, d.install(ctx, path, report))
	}
	return report
}

func (d *Driver) install(ctx context.Context, path string, report *api.Report) api.PackageResult {
	name := filepath.Base(path)
	log := ctxlog.FromContext(ctx).With("archive", name)
	ctx = ctxlog.WithLogger(ctx, log)
	result := api.PackageResult{Archive: name}
	scratch := d.Config.ScratchDir

	fail := func(format string, args ...any) api.PackageResult {
		report.Error(name, format, args...)
		result.Failed = true
		return result
	}

	log.Info("processing archive")
	if err := fsutil.Recreate(d.Downloads, scratch); err != nil {
		return fail("prepare scratch directory: %v", err)
	}
	defer func() {
		if err := fsutil.RemoveAll(d.Downloads, scratch); err != nil {
			report.Warn(name, "could not clean up %s: %v", scratch, err)
			return
		}
		log.Debug("cleaned up scratch directory", "dir", scratch)
	}()

	if _, err := archive.Extract(ctx, d.Downloads, path, d.Downloads, scratch); err != nil {
		return fail("error unzipping %s: %v", name, err)
	}
	if top, err := d.Downloads.ReadDir(scratch); err == nil {
		log.Debug("extracted items", "items", names(top))
	}

	replacement, err := finder.Find(d.Downloads, scratch, d.Config.ReplacementDir)
	switch {
	case errors.Is(err, finder.ErrNotFound):
		replacement = ""
	case err != nil:
		return fail("search for %s: %v", d.Config.ReplacementDir, err)
	default:
		if items, err := d.Downloads.ReadDir(replacement); err == nil {
			log.Debug("replacement area contents", "dir", replacement, "items", names(items))
		}
	}

	set, found, err := instructions.Load(d.Downloads, scratch, d.Config.InstructionsFile)
	if err != nil {
		return fail("read %s: %v", d.Config.InstructionsFile, err)
	}
	if !found {
		report.Warn(name, "no %s found at the archive root", d.Config.InstructionsFile)
	}
	log.Debug("parsed instructions",
		"subfolders", set.Subfolders,
		"mappings", len(set.Mappings),
		"replacement_files", set.ExpectsReplacementFiles)

	res, err := d.Resolver.Resolve(ctx, placement.Input{
		Set:            set,
		Src:            d.Downloads,
		Root:           scratch,
		ReplacementDir: replacement,
		Dst:            d.Game,
		DestRoot:       d.Config.ConfigsDir,
	})
	for _, w := range res.Warnings {
		report.Warn(name, "%s", w)
	}
	result.FilesCopied = res.FilesCopied
	if err != nil {
		return fail("%v", err)
	}

	log.Info("installed archive", "files", res.FilesCopied)
	return result
}

func names(infos []os.FileInfo) string {
	out := make([]string, len(infos))
	for i, fi := range infos {
		out[i] = fi.Name()
	}
	return strings.Join(out, ", ")
}
