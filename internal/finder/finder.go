// Package finder locates directories by name without regard to case.
package finder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ErrNotFound is returned when no directory matches.
var ErrNotFound = errors.New("directory not found")

// Find returns the path of a directory under root whose whole name equals
// name, ignoring case. Direct children of root are checked first, then the
// rest of the tree breadth-first, so a shallower match always wins. Among
// matches at the same depth the first in listing order is returned; callers
// must not depend on which one that is.
//
// Subdirectories that cannot be listed are skipped. Failing to list root
// itself is an error.
func Find(fsys billy.Filesystem, root, name string) (string, error) {
	if name == "" {
		return "", ErrNotFound
	}

	entries, err := fsys.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", root, err)
	}

	var queue []string
	for {
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			p := fsys.Join(root, e.Name())
			if strings.EqualFold(e.Name(), name) {
				return p, nil
			}
			queue = append(queue, p)
		}
		if len(queue) == 0 {
			return "", ErrNotFound
		}
		root, queue = queue[0], queue[1:]
		entries, err = fsys.ReadDir(root)
		if err != nil {
			entries = nil
		}
	}
}

// Similar lists directories below root whose name contains token, ignoring
// case. Paths are slash-separated and relative to root, in lexical order.
func Similar(fsys billy.Filesystem, root, token string) ([]string, error) {
	needle := strings.ToLower(token)
	if needle == "" {
		return nil, nil
	}
	base := filepath.Clean("/" + root)

	var out []string
	err := util.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(base, filepath.Clean("/"+path))
		if relErr != nil || rel == "." {
			return nil
		}
		if strings.Contains(strings.ToLower(info.Name()), needle) {
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	return out, err
}
