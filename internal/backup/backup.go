// Package backup keeps a single snapshot of the configs tree next to it and
// restores it on request.
//
// The pair is modelled as two states. LIVE means only the configs tree is
// authoritative; BACKED_UP means a snapshot directory exists as well. Restore
// moves BACKED_UP to LIVE by swapping the snapshot into place, Snapshot moves
// LIVE to BACKED_UP by copying the tree. Any other transition is rejected
// with ErrInvalidTransition.
package backup

import (
	"context"
	"errors"
	"fmt"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/modinstall/internal/ctxlog"
	"github.com/agentic-research/modinstall/internal/fsutil"
)

// ErrInvalidTransition is returned when an operation is not allowed from the
// current state.
var ErrInvalidTransition = errors.New("invalid backup transition")

// State is the backup state of a game directory.
type State int

const (
	// Live means no snapshot exists.
	Live State = iota
	// BackedUp means a snapshot directory exists.
	BackedUp
)

func (s State) String() string {
	switch s {
	case Live:
		return "LIVE"
	case BackedUp:
		return "BACKED_UP"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Manager owns the configs tree and its snapshot inside one filesystem.
type Manager struct {
	fs         billy.Filesystem
	configsDir string
	backupDir  string
}

// New returns a Manager for configsDir and backupDir in fsys.
func New(fsys billy.Filesystem, configsDir, backupDir string) *Manager {
	return &Manager{fs: fsys, configsDir: configsDir, backupDir: backupDir}
}

// State inspects the filesystem. A non-directory at the backup path is an
// error rather than either state.
func (m *Manager) State() (State, error) {
	ok, err := fsutil.Exists(m.fs, m.backupDir)
	if err != nil {
		return Live, fmt.Errorf("stat %s: %w", m.backupDir, err)
	}
	if !ok {
		return Live, nil
	}
	isDir, err := fsutil.IsDir(m.fs, m.backupDir)
	if err != nil {
		return Live, fmt.Errorf("stat %s: %w", m.backupDir, err)
	}
	if !isDir {
		return Live, fmt.Errorf("backup path %s is not a directory", m.backupDir)
	}
	return BackedUp, nil
}

func (m *Manager) require(want State) error {
	got, err := m.State()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: state is %s, need %s", ErrInvalidTransition, got, want)
	}
	return nil
}

// Restore replaces the configs tree with the snapshot. The snapshot
// directory is renamed, not copied, so afterwards the state is Live.
func (m *Manager) Restore(ctx context.Context) error {
	if err := m.require(BackedUp); err != nil {
		return err
	}
	log := ctxlog.FromContext(ctx)

	log.Info("restoring configs from backup", "backup", m.backupDir, "configs", m.configsDir)
	if err := fsutil.RemoveAll(m.fs, m.configsDir); err != nil {
		return fmt.Errorf("remove %s: %w", m.configsDir, err)
	}
	if err := m.fs.Rename(m.backupDir, m.configsDir); err != nil {
		return fmt.Errorf("rename %s to %s: %w", m.backupDir, m.configsDir, err)
	}
	return nil
}

// Snapshot copies the configs tree into the backup directory, merging with
// anything already there.
func (m *Manager) Snapshot(ctx context.Context) error {
	if err := m.require(Live); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("backing up configs", "configs", m.configsDir, "backup", m.backupDir)
	if err := fsutil.CopyTree(m.fs, m.configsDir, m.fs, m.backupDir); err != nil {
		return fmt.Errorf("back up %s: %w", m.configsDir, err)
	}
	return nil
}

// Prepare runs once before any package is installed. With reset set and a
// snapshot present, the snapshot is restored first. The configs tree is then
// created if missing, and a fresh snapshot is taken when none exists and the
// tree has content. Every error it returns is fatal to the run.
func (m *Manager) Prepare(ctx context.Context, reset bool) error {
	log := ctxlog.FromContext(ctx)

	state, err := m.State()
	if err != nil {
		return err
	}

	if reset {
		if state == BackedUp {
			if err := m.Restore(ctx); err != nil {
				return err
			}
			state = Live
		} else {
			log.Info("reset requested but no backup exists; keeping configs as-is", "configs", m.configsDir)
		}
	}

	if err := m.fs.MkdirAll(m.configsDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", m.configsDir, err)
	}

	if state == BackedUp {
		log.Debug("backup already present; leaving it untouched", "backup", m.backupDir)
		return nil
	}
	empty, err := fsutil.IsEmptyDir(m.fs, m.configsDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", m.configsDir, err)
	}
	if empty {
		log.Debug("configs is empty; no backup taken", "configs", m.configsDir)
		return nil
	}
	return m.Snapshot(ctx)
}
