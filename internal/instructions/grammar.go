// Package instructions turns the free-text Instructions.txt shipped inside a
// mod archive into an api.InstructionSet.
//
// The text is read as a small line grammar: every Matcher looks at each
// trimmed line on its own and applies what it recognizes to the set being
// built. Lines no matcher understands are ignored, and a matcher either
// captures everything it needs from a line or nothing at all.
package instructions

import (
	"regexp"
	"strings"

	"github.com/agentic-research/modinstall/api"
)

// Matcher recognizes one kind of directive in a single line.
type Matcher interface {
	// Name identifies the matcher in diagnostics.
	Name() string
	// Apply updates set if line matches and reports whether it did.
	Apply(line string, set *api.InstructionSet) bool
}

var (
	copyRe      = regexp.MustCompile(`(?i)Copy and Paste`)
	subfolderRe = regexp.MustCompile(`(?i)subfolder\(s\): >\s*"([^"]+)"`)
	mappingRe   = regexp.MustCompile(`(?i)Copy and Paste.*folder\(s\): >\s*"([^"]+)".*subfolder\(s\): >\s*"([^"]+)"`)
)

// ReplacementMarker is the phrase that flags a Replacement Files directory.
// It is matched case-sensitively.
const ReplacementMarker = "Replacement Files"

type copyDirective struct{}

// CopyDirective records "Copy and Paste" lines verbatim.
var CopyDirective Matcher = copyDirective{}

func (copyDirective) Name() string { return "copy-directive" }

func (copyDirective) Apply(line string, set *api.InstructionSet) bool {
	if !copyRe.MatchString(line) {
		return false
	}
	set.CopyLines = append(set.CopyLines, line)
	return true
}

type subfolder struct{}

// Subfolder collects `subfolder(s): > "<name>"` destinations.
var Subfolder Matcher = subfolder{}

func (subfolder) Name() string { return "subfolder" }

func (subfolder) Apply(line string, set *api.InstructionSet) bool {
	m := subfolderRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	set.AddSubfolder(m[1])
	return true
}

type replacementFiles struct{}

// ReplacementFiles sets the expects-replacement-files flag.
var ReplacementFiles Matcher = replacementFiles{}

func (replacementFiles) Name() string { return "replacement-files" }

func (replacementFiles) Apply(line string, set *api.InstructionSet) bool {
	if !strings.Contains(line, ReplacementMarker) {
		return false
	}
	set.ExpectsReplacementFiles = true
	return true
}

type folderMapping struct{}

// FolderMapping captures `Copy and Paste ... folder(s): > "<src>" ...
// subfolder(s): > "<dest>"` routes.
var FolderMapping Matcher = folderMapping{}

func (folderMapping) Name() string { return "folder-mapping" }

func (folderMapping) Apply(line string, set *api.InstructionSet) bool {
	m := mappingRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	set.SetMapping(m[1], m[2])
	return true
}

// DefaultMatchers is the grammar used by Parse.
func DefaultMatchers() []Matcher {
	return []Matcher{CopyDirective, Subfolder, ReplacementFiles, FolderMapping}
}
