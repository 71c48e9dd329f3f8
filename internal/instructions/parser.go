package instructions

import (
	"errors"
	"fmt"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/modinstall/api"
	"github.com/agentic-research/modinstall/internal/fsutil"
)

// DefaultFileName is the instructions file looked up at the extraction root.
const DefaultFileName = "Instructions.txt"

// ErrNoInstructions is returned by Find when the root has no instructions file.
var ErrNoInstructions = errors.New("no instructions file")

// Parser applies a grammar of matchers line by line.
type Parser struct {
	Matchers []Matcher
}

// NewParser returns a parser using DefaultMatchers.
func NewParser() *Parser {
	return &Parser{Matchers: DefaultMatchers()}
}

// Parse runs the default grammar over text.
func Parse(text string) *api.InstructionSet {
	return NewParser().Parse(text)
}

// Parse builds a fresh InstructionSet from text. Every matcher sees every
// line, so one line may contribute to several fields.
func (p *Parser) Parse(text string) *api.InstructionSet {
	set := &api.InstructionSet{}
	for _, line := range Lines(text) {
		if line == "" {
			continue
		}
		for _, m := range p.Matchers {
			m.Apply(line, set)
		}
	}
	return set
}

// Lines splits text on any of \n, \r\n or \r, drops a leading byte order
// mark and trims surrounding whitespace from each line.
func Lines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// Find returns the path of the file directly inside root whose name equals
// fileName ignoring case.
func Find(fsys billy.Filesystem, root, fileName string) (string, error) {
	files, err := fsutil.Files(fsys, root)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", root, err)
	}
	for _, f := range files {
		if strings.EqualFold(f.Name(), fileName) {
			return fsys.Join(root, f.Name()), nil
		}
	}
	return "", ErrNoInstructions
}

// Load finds and parses the instructions file under root. A missing file
// yields an empty set and found == false, not an error.
func Load(fsys billy.Filesystem, root, fileName string) (set *api.InstructionSet, found bool, err error) {
	path, err := Find(fsys, root, fileName)
	if errors.Is(err, ErrNoInstructions) {
		return &api.InstructionSet{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(string(data)), true, nil
}
