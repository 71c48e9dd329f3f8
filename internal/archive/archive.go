// Package archive finds pending mod archives and unpacks them into a
// billy.Filesystem.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/modinstall/internal/ctxlog"
	"github.com/agentic-research/modinstall/internal/fsutil"
)

// DefaultExt is the archive file extension picked up by Discover.
const DefaultExt = ".zip"

// ErrUnsafePath is returned for entries that would be written outside the
// extraction directory.
var ErrUnsafePath = errors.New("unsafe path in archive")

// Discover returns the files directly inside dir whose name ends in ext,
// ignoring case, sorted by name.
func Discover(fsys billy.Filesystem, dir, ext string) ([]string, error) {
	files, err := fsutil.Files(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, f := range files {
		name := f.Name()
		if len(name) > len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext) {
			out = append(out, fsys.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

// EntryPath maps a zip entry name to a slash-separated path relative to the
// extraction directory. Backslashes are treated as separators.
func EntryPath(name string) (string, error) {
	p := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(p, "/") || (len(p) > 1 && p[1] == ':') {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	clean := path.Clean(p)
	if clean == "." {
		return "", nil
	}
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return clean, nil
}

// Extract unpacks the zip at archivePath in src into dir in dst and returns
// the extracted file paths relative to dir, in archive order. Entries are
// validated before anything is written, so an archive with an unsafe entry
// leaves dir untouched.
func Extract(ctx context.Context, src billy.Filesystem, archivePath string, dst billy.Filesystem, dir string) ([]string, error) {
	f, err := src.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", archivePath, err)
	}
	defer func() { _ = f.Close() }()

	info, err := src.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", archivePath, err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if errors.Is(err, zip.ErrInsecurePath) && zr != nil {
		// Entries are checked one by one below.
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", archivePath, err)
	}
	return ExtractReader(ctx, zr, dst, dir)
}

// ExtractReader unpacks an already opened zip.
func ExtractReader(ctx context.Context, zr *zip.Reader, dst billy.Filesystem, dir string) ([]string, error) {
	log := ctxlog.FromContext(ctx)

	targets := make([]string, len(zr.File))
	for i, zf := range zr.File {
		if zf.Mode()&os.ModeSymlink != 0 {
			return nil, fmt.Errorf("%w: symlink %q", ErrUnsafePath, zf.Name)
		}
		rel, err := EntryPath(zf.Name)
		if err != nil {
			return nil, err
		}
		targets[i] = rel
	}

	if err := dst.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	var extracted []string
	for i, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return extracted, err
		}
		rel := targets[i]
		if rel == "" {
			continue
		}
		target := dst.Join(dir, filepath.FromSlash(rel))

		if zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/") || strings.HasSuffix(zf.Name, `\`) {
			if err := dst.MkdirAll(target, 0o755); err != nil {
				return extracted, fmt.Errorf("create %s: %w", target, err)
			}
			continue
		}

		if err := extractFile(zf, dst, target); err != nil {
			return extracted, err
		}
		log.Debug("extracted", "entry", zf.Name, "size", zf.UncompressedSize64)
		extracted = append(extracted, rel)
	}
	return extracted, nil
}

func extractFile(zf *zip.File, dst billy.Filesystem, target string) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", zf.Name, err)
	}
	defer func() { _ = rc.Close() }()

	if err := dst.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	perm := zf.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := dst.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return fmt.Errorf("extract %s: %w", zf.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}

	if c, ok := dst.(billy.Change); ok && !zf.Modified.IsZero() {
		_ = c.Chtimes(target, zf.Modified, zf.Modified)
	}
	return nil
}
