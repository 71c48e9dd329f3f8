package instructions

import (
	"strings"
	"testing"
)

func FuzzParse(f *testing.F) {
	f.Add(weaponsLine)
	f.Add("Copy and Paste the files into subfolder(s): > \"ships\"\r\nReplacement Files")
	f.Add("subfolder(s): > \"\"")
	f.Add("\ufeff\r\r\n")

	f.Fuzz(func(t *testing.T, text string) {
		set := Parse(text)
		if set == nil {
			t.Fatal("set is nil")
		}

		seen := make(map[string]bool)
		for _, m := range set.Mappings {
			if seen[m.Source] {
				t.Fatalf("duplicate mapping source %q", m.Source)
			}
			seen[m.Source] = true
			if m.Source == "" || m.Dest == "" {
				t.Fatalf("empty capture in %+v", m)
			}
		}
		for _, s := range set.Subfolders {
			if s == "" || strings.Contains(s, `"`) {
				t.Fatalf("bad subfolder %q", s)
			}
		}

		// Lint must never panic and never point past the last line.
		for _, d := range Lint(text) {
			if d.Line < 0 || d.Line >= len(Lines(text)) {
				t.Fatalf("diagnostic line %d out of range", d.Line)
			}
		}
	})
}
