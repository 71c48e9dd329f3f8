// Package placement decides where extracted mod files go in the configs tree
// and copies them there.
//
// Three placements run for every package, in order: folder mappings from the
// instructions, loose files next to the instructions file, and the flat
// Replacement Files area. Anything that cannot be placed becomes a warning;
// only I/O failures stop the package.
package placement

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/modinstall/api"
	"github.com/agentic-research/modinstall/internal/ctxlog"
	"github.com/agentic-research/modinstall/internal/finder"
	"github.com/agentic-research/modinstall/internal/fsutil"
)

// ErrUnsafeDestination is returned when a destination subfolder named by the
// instructions would land outside the configs tree.
var ErrUnsafeDestination = errors.New("destination escapes configs tree")

// CopyError is an I/O failure while placing files. It aborts the package.
type CopyError struct {
	Source string
	Dest   string
	Err    error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s to %s: %v", e.Source, e.Dest, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// Input describes one package ready for placement.
type Input struct {
	Set *api.InstructionSet
	// Src holds the extracted archive below Root.
	Src  billy.Filesystem
	Root string
	// ReplacementDir is the located Replacement Files area in Src, or "".
	ReplacementDir string
	// Dst holds the configs tree at DestRoot.
	Dst      billy.Filesystem
	DestRoot string
}

// Result is what a Resolve call did.
type Result struct {
	FilesCopied int
	Placements  []api.Placement
	Warnings    []string
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Resolver places the files of one extracted package.
type Resolver struct {
	Rules            []Rule
	InstructionsFile string
	ReplacementName  string
}

// NewResolver returns a resolver with the default variant rules.
func NewResolver() *Resolver {
	return &Resolver{
		Rules:            DefaultRules(),
		InstructionsFile: "Instructions.txt",
		ReplacementName:  "Replacement Files",
	}
}

// Resolve runs every placement step for in. On error the returned Result
// still reports what was copied before the failure.
func (r *Resolver) Resolve(ctx context.Context, in Input) (Result, error) {
	var res Result
	set := in.Set
	if set == nil {
		set = &api.InstructionSet{}
	}

	for _, m := range set.Mappings {
		if err := r.placeMapping(ctx, in, m, &res); err != nil {
			return res, err
		}
	}

	if len(set.Subfolders) > 0 {
		if err := r.placeLooseFiles(ctx, in, set.Subfolders, &res); err != nil {
			return res, err
		}
	} else {
		res.warn("no subfolders specified in %s; skipping files next to it", r.InstructionsFile)
	}

	switch {
	case in.ReplacementDir == "" && set.ExpectsReplacementFiles:
		res.warn("no %s directory found, but %s references it", r.ReplacementName, r.InstructionsFile)
	case in.ReplacementDir != "" && len(set.Subfolders) == 0:
		res.warn("no subfolders specified in %s; skipping %s", r.InstructionsFile, r.ReplacementName)
	case in.ReplacementDir != "":
		if !set.ExpectsReplacementFiles {
			res.warn("%s directory found at %s, but %s never mentions it", r.ReplacementName, in.ReplacementDir, r.InstructionsFile)
		}
		if err := r.placeReplacementFiles(ctx, in, set.Subfolders, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (r *Resolver) placeMapping(ctx context.Context, in Input, m api.FolderMapping, res *Result) error {
	log := ctxlog.FromContext(ctx)

	src, err := r.locate(in, m.Source)
	if err != nil {
		return err
	}
	if src == "" {
		res.warn("skipping source folder %s: does not exist or is not a directory", in.Src.Join(in.Root, m.Source))
		similar, _ := finder.Similar(in.Src, in.Root, m.Source)
		if len(similar) > 0 {
			res.warn("possible similar directories for %q: %s", m.Source, strings.Join(similar, ", "))
		}
		return nil
	}

	dest, err := destDir(in, m.Dest)
	if err != nil {
		return err
	}
	n, err := r.copyDir(in, src, dest, res)
	if err != nil {
		return err
	}
	log.Debug("placed folder", "source", src, "dest", dest, "files", n)
	if n == 0 {
		res.warn("no files found in %s to copy to %s", src, dest)
	}
	return nil
}

// locate tries every candidate name under the extraction root and then
// under the replacement area, returning "" when nothing matches.
func (r *Resolver) locate(in Input, source string) (string, error) {
	roots := []string{in.Root}
	if in.ReplacementDir != "" {
		roots = append(roots, in.ReplacementDir)
	}
	for _, name := range Candidates(source, r.Rules) {
		for _, root := range roots {
			p, err := finder.Find(in.Src, root, name)
			if err == nil {
				return p, nil
			}
			if !errors.Is(err, finder.ErrNotFound) {
				return "", err
			}
		}
	}
	return "", nil
}

func (r *Resolver) placeLooseFiles(ctx context.Context, in Input, subfolders []string, res *Result) error {
	log := ctxlog.FromContext(ctx)

	files, err := fsutil.Files(in.Src, in.Root)
	if err != nil {
		return &CopyError{Source: in.Root, Dest: in.DestRoot, Err: err}
	}
	for _, f := range files {
		if strings.EqualFold(f.Name(), r.InstructionsFile) {
			continue
		}
		from := in.Src.Join(in.Root, f.Name())
		for _, sub := range subfolders {
			dest, err := destDir(in, sub)
			if err != nil {
				return err
			}
			to := in.Dst.Join(dest, f.Name())
			if err := fsutil.CopyFile(in.Src, from, in.Dst, to); err != nil {
				return &CopyError{Source: from, Dest: dest, Err: err}
			}
			r.record(res, in, from, to)
			log.Debug("placed file", "source", from, "dest", to)
		}
	}
	return nil
}

func (r *Resolver) placeReplacementFiles(ctx context.Context, in Input, subfolders []string, res *Result) error {
	log := ctxlog.FromContext(ctx)

	dirs, err := fsutil.Subdirs(in.Src, in.ReplacementDir)
	if err != nil {
		return &CopyError{Source: in.ReplacementDir, Dest: in.DestRoot, Err: err}
	}
	if len(dirs) > 0 {
		log.Info("replacement area has subdirectories; leaving it to folder mappings", "dir", in.ReplacementDir)
		return nil
	}

	for _, sub := range subfolders {
		dest, err := destDir(in, sub)
		if err != nil {
			return err
		}
		n, err := r.copyDir(in, in.ReplacementDir, dest, res)
		if err != nil {
			return err
		}
		log.Debug("placed replacement files", "dest", dest, "files", n)
		if n == 0 {
			res.warn("no files found in %s to copy to %s", in.ReplacementDir, dest)
		}
	}
	return nil
}

func (r *Resolver) copyDir(in Input, src, dest string, res *Result) (int, error) {
	copied, err := fsutil.CopyFiles(in.Src, src, in.Dst, dest)
	for _, name := range copied {
		r.record(res, in, in.Src.Join(src, name), in.Dst.Join(dest, name))
	}
	if err != nil {
		return len(copied), &CopyError{Source: src, Dest: dest, Err: err}
	}
	return len(copied), nil
}

func (r *Resolver) record(res *Result, in Input, from, to string) {
	res.FilesCopied++
	res.Placements = append(res.Placements, api.Placement{
		Source: relSlash(in.Root, from),
		Dest:   relSlash(in.DestRoot, to),
	})
}

// destDir joins a subfolder name from the instructions onto the configs
// root, refusing names that climb out of it.
func destDir(in Input, sub string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(sub, `\`, "/")))
	if clean == "." || !filepath.IsLocal(clean) {
		return "", fmt.Errorf("subfolder %q: %w", sub, ErrUnsafeDestination)
	}
	return in.Dst.Join(in.DestRoot, filepath.ToSlash(clean)), nil
}

func relSlash(base, p string) string {
	rel, err := filepath.Rel(filepath.Clean("/"+base), filepath.Clean("/"+p))
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
