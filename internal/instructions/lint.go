package instructions

import (
	"fmt"
	"regexp"
	"strings"
)

// Diagnostic points at a line the grammar ignored even though it looks like
// an intended directive.
type Diagnostic struct {
	Message string
	Line    int // 0-indexed
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line+1, d.Message)
}

var (
	// "folder(s)" that is not the tail of "subfolder(s)".
	sourceMarkerRe    = regexp.MustCompile(`(?i)(^|[^b])folder\(s\)`)
	subfolderMarkerRe = regexp.MustCompile(`(?i)subfolder\(s\)`)
)

// Lint reports lines that were probably meant as directives but are not
// recognized. It never changes what Parse returns.
func Lint(text string) []Diagnostic {
	var diags []Diagnostic
	for i, line := range Lines(text) {
		if line == "" {
			continue
		}

		if copyRe.MatchString(line) && sourceMarkerRe.MatchString(line) && !mappingRe.MatchString(line) {
			diags = append(diags, Diagnostic{
				Line:    i,
				Message: `folder mapping is incomplete (expected folder(s): > "<source>" ... subfolder(s): > "<dest>"); no route recorded`,
			})
		}

		if subfolderMarkerRe.MatchString(line) && !subfolderRe.MatchString(line) {
			diags = append(diags, Diagnostic{
				Line:    i,
				Message: `subfolder(s) marker without a straight-quoted name; no subfolder recorded`,
			})
		}

		if !strings.Contains(line, ReplacementMarker) && strings.Contains(strings.ToLower(line), strings.ToLower(ReplacementMarker)) {
			diags = append(diags, Diagnostic{
				Line:    i,
				Message: fmt.Sprintf("mentions %q with different capitalization; not treated as a reference", ReplacementMarker),
			})
		}
	}
	return diags
}
