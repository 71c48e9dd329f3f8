// Package fsutil provides billy.Filesystem helpers shared by the installer:
// an OS-backed filesystem that can carry timestamps, existence checks,
// directory listings and the copy primitives used for placement and backup.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Root is the path of a filesystem's own root directory.
const Root = ""

// Disk returns an OS-backed filesystem rooted at dir. Unlike a bare osfs it
// implements billy.Change, so copies keep modification times.
func Disk(dir string) billy.Filesystem {
	return &diskFS{Filesystem: osfs.New(dir)}
}

type diskFS struct {
	billy.Filesystem
}

func (d *diskFS) Chroot(path string) (billy.Filesystem, error) {
	sub, err := d.Filesystem.Chroot(path)
	if err != nil {
		return nil, err
	}
	return &diskFS{Filesystem: sub}, nil
}

func (d *diskFS) osPath(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean != "." && !filepath.IsLocal(clean) {
		return "", billy.ErrCrossedBoundary
	}
	return filepath.Join(d.Root(), clean), nil
}

func (d *diskFS) Chmod(name string, mode os.FileMode) error {
	p, err := d.osPath(name)
	if err != nil {
		return err
	}
	return os.Chmod(p, mode)
}

func (d *diskFS) Lchown(name string, uid, gid int) error {
	p, err := d.osPath(name)
	if err != nil {
		return err
	}
	return os.Lchown(p, uid, gid)
}

func (d *diskFS) Chown(name string, uid, gid int) error {
	p, err := d.osPath(name)
	if err != nil {
		return err
	}
	return os.Chown(p, uid, gid)
}

func (d *diskFS) Chtimes(name string, atime, mtime time.Time) error {
	p, err := d.osPath(name)
	if err != nil {
		return err
	}
	return os.Chtimes(p, atime, mtime)
}

var _ billy.Change = (*diskFS)(nil)

// Exists reports whether path exists. Only a missing path yields (false, nil).
func Exists(fsys billy.Basic, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether path exists and is a directory.
func IsDir(fsys billy.Basic, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// IsEmptyDir reports whether dir has no entries.
func IsEmptyDir(fsys billy.Dir, dir string) (bool, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// Files returns the regular files directly inside dir, sorted by name.
func Files(fsys billy.Dir, dir string) ([]os.FileInfo, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []os.FileInfo
	for _, e := range entries {
		if e.Mode().IsRegular() {
			files = append(files, e)
		}
	}
	return files, nil
}

// Subdirs returns the directories directly inside dir, sorted by name.
func Subdirs(fsys billy.Dir, dir string) ([]os.FileInfo, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dirs []os.FileInfo
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		}
	}
	return dirs, nil
}

// RemoveAll deletes path and everything below it. A missing path is not an error.
func RemoveAll(fsys billy.Basic, path string) error {
	return util.RemoveAll(fsys, path)
}

// Recreate deletes dir if present and creates it again empty.
func Recreate(fsys billy.Filesystem, dir string) error {
	if err := util.RemoveAll(fsys, dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// CopyFile copies srcPath from src to dstPath in dst, replacing any existing
// file. The permission bits are carried over, and the modification time too
// when dst implements billy.Change.
func CopyFile(src billy.Filesystem, srcPath string, dst billy.Filesystem, dstPath string) error {
	info, err := src.Stat(srcPath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: is a directory", srcPath)
	}

	in, err := src.Open(srcPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := dst.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return err
	}
	out, err := dst.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if c, ok := dst.(interface {
		Chmod(name string, mode os.FileMode) error
	}); ok {
		_ = c.Chmod(dstPath, info.Mode().Perm())
	}
	if c, ok := dst.(billy.Change); ok {
		_ = c.Chtimes(dstPath, info.ModTime(), info.ModTime())
	}
	return nil
}

// CopyFiles copies the regular files directly inside srcDir into dstDir,
// creating dstDir. Subdirectories of srcDir are never entered. It returns
// the names copied, in order.
func CopyFiles(src billy.Filesystem, srcDir string, dst billy.Filesystem, dstDir string) ([]string, error) {
	files, err := Files(src, srcDir)
	if err != nil {
		return nil, err
	}
	if err := dst.MkdirAll(dstDir, 0o755); err != nil {
		return nil, err
	}
	copied := make([]string, 0, len(files))
	for _, f := range files {
		if err := CopyFile(src, src.Join(srcDir, f.Name()), dst, dst.Join(dstDir, f.Name())); err != nil {
			return copied, err
		}
		copied = append(copied, f.Name())
	}
	return copied, nil
}

// CopyTree merges srcDir into dstDir recursively. Files present in both are
// overwritten; entries only in dstDir are left alone. Symlinks are rejected.
func CopyTree(src billy.Filesystem, srcDir string, dst billy.Filesystem, dstDir string) error {
	entries, err := src.ReadDir(srcDir)
	if err != nil {
		return err
	}
	if err := dst.MkdirAll(dstDir, 0o755); err != nil {
		return err
	}
	for _, e := range entries {
		from := src.Join(srcDir, e.Name())
		to := dst.Join(dstDir, e.Name())
		switch {
		case e.Mode()&os.ModeSymlink != 0:
			return fmt.Errorf("copy %s: symlink not allowed", from)
		case e.IsDir():
			if err := CopyTree(src, from, dst, to); err != nil {
				return err
			}
		default:
			if err := CopyFile(src, from, dst, to); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListTree returns every regular file below dir as a slash-separated path
// relative to dir, in lexical walk order.
func ListTree(fsys billy.Filesystem, dir string) ([]string, error) {
	var out []string
	err := util.Walk(fsys, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			rel, err := filepath.Rel(filepath.Clean("/"+dir), filepath.Clean("/"+path))
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	return out, err
}
