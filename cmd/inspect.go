package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cobra"

	"github.com/agentic-research/modinstall/api"
	"github.com/agentic-research/modinstall/internal/archive"
	"github.com/agentic-research/modinstall/internal/config"
	"github.com/agentic-research/modinstall/internal/finder"
	"github.com/agentic-research/modinstall/internal/fsutil"
	"github.com/agentic-research/modinstall/internal/instructions"
	"github.com/agentic-research/modinstall/internal/placement"
)

var (
	inspectJSON  bool
	inspectQuery string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Show where an archive's files would be installed, without touching the disk",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usageErrorf(cmd, "expected exactly one archive, got %d arguments", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		plan, err := buildPlan(cmd.Context(), args[0], cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case inspectQuery != "":
			return printQuery(out, plan, inspectQuery)
		case inspectJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		default:
			printPlan(out, plan)
			return nil
		}
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the plan as JSON")
	inspectCmd.Flags().StringVarP(&inspectQuery, "query", "q", "", "Print the values a JSONPath selects from the plan")
	rootCmd.AddCommand(inspectCmd)
}

// buildPlan extracts the archive into memory and runs placement against an
// in-memory configs tree. Only the archive itself is read from disk.
func buildPlan(ctx context.Context, archivePath string, cfg config.Config) (*api.Plan, error) {
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, err
	}
	src := fsutil.Disk(filepath.Dir(abs))
	mem := memfs.New()
	scratch := cfg.ScratchDir
	plan := &api.Plan{Archive: filepath.Base(abs), Instructions: &api.InstructionSet{}}

	if _, err := archive.Extract(ctx, src, filepath.Base(abs), mem, scratch); err != nil {
		return nil, err
	}

	replacement, err := finder.Find(mem, scratch, cfg.ReplacementDir)
	if err != nil && !errors.Is(err, finder.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		plan.ReplacementDir = relTo(scratch, replacement)
	} else {
		replacement = ""
	}

	path, err := instructions.Find(mem, scratch, cfg.InstructionsFile)
	switch {
	case errors.Is(err, instructions.ErrNoInstructions):
		plan.Warnings = append(plan.Warnings, fmt.Sprintf("no %s found at the archive root", cfg.InstructionsFile))
	case err != nil:
		return nil, err
	default:
		data, err := util.ReadFile(mem, path)
		if err != nil {
			return nil, err
		}
		plan.InstructionsFound = true
		plan.Instructions = instructions.Parse(string(data))
		for _, d := range instructions.Lint(string(data)) {
			plan.Diagnostics = append(plan.Diagnostics, d.String())
		}
	}

	res, err := cfg.Resolver().Resolve(ctx, placement.Input{
		Set:            plan.Instructions,
		Src:            mem,
		Root:           scratch,
		ReplacementDir: replacement,
		Dst:            mem,
		DestRoot:       cfg.ConfigsDir,
	})
	plan.Placements = res.Placements
	plan.Warnings = append(plan.Warnings, res.Warnings...)
	if err != nil {
		plan.Error = err.Error()
	}
	return plan, nil
}

func relTo(base, p string) string {
	rel, err := filepath.Rel(filepath.Clean("/"+base), filepath.Clean("/"+p))
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

func printPlan(w io.Writer, plan *api.Plan) {
	set := plan.Instructions
	_, _ = fmt.Fprintf(w, "Archive: %s\n", plan.Archive)
	if !plan.InstructionsFound {
		_, _ = fmt.Fprintln(w, "Instructions: none")
	}
	for _, m := range set.Mappings {
		_, _ = fmt.Fprintf(w, "Mapping: %s -> %s\n", m.Source, m.Dest)
	}
	for _, s := range set.Subfolders {
		_, _ = fmt.Fprintf(w, "Subfolder: %s\n", s)
	}
	if plan.ReplacementDir != "" {
		_, _ = fmt.Fprintf(w, "Replacement area: %s (referenced: %t)\n", plan.ReplacementDir, set.ExpectsReplacementFiles)
	}

	_, _ = fmt.Fprintf(w, "\nPlanned copies (%d):\n", len(plan.Placements))
	for _, p := range plan.Placements {
		_, _ = fmt.Fprintf(w, "  %s -> %s\n", p.Source, p.Dest)
	}
	for _, d := range plan.Diagnostics {
		_, _ = fmt.Fprintf(w, "lint: %s\n", d)
	}
	for _, warn := range plan.Warnings {
		_, _ = fmt.Fprintf(w, "warning: %s\n", warn)
	}
	if plan.Error != "" {
		_, _ = fmt.Fprintf(w, "error: %s\n", plan.Error)
	}
}

// printQuery evaluates a JSONPath expression against the JSON form of the
// plan and prints one JSON value per line.
func printQuery(w io.Writer, plan *api.Plan, query string) error {
	x, err := jp.ParseString(query)
	if err != nil {
		return fmt.Errorf("invalid jsonpath '%s': %w", query, err)
	}
	raw, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	for _, v := range x.Get(doc) {
		line, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, string(line))
	}
	return nil
}
