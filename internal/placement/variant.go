package placement

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule generates alternate spellings for source folder names that contain
// Fragment (compared without case). Rules let archive-specific naming quirks
// be added without touching resolution.
type Rule struct {
	Name     string
	Fragment string
	Generate func(name string) []string
}

// Applies reports whether the rule fires for name.
func (r Rule) Applies(name string) bool {
	return r.Fragment != "" && strings.Contains(strings.ToLower(name), strings.ToLower(r.Fragment))
}

// SwapRule returns a rule that, for names containing fragment, swaps the
// first occurrence of a for b, or of b for a when a is absent. The swapped
// text takes the capitalization of the first letter it replaces.
func SwapRule(fragment, a, b string) Rule {
	return Rule{
		Name:     fragment,
		Fragment: fragment,
		Generate: func(name string) []string {
			if alt, ok := swapFirst(name, a, b); ok {
				return []string{alt}
			}
			if alt, ok := swapFirst(name, b, a); ok {
				return []string{alt}
			}
			return nil
		},
	}
}

// ShipsRule covers ship packs published as "part 1" while the archive
// actually contains "part 2", and the reverse.
var ShipsRule = SwapRule("ships", "part 1", "part 2")

// DefaultRules are the variant rules used when none are configured.
func DefaultRules() []Rule {
	return []Rule{ShipsRule}
}

func swapFirst(name, from, to string) (string, bool) {
	if from == "" {
		return "", false
	}
	for i := 0; i+len(from) <= len(name); i++ {
		if strings.EqualFold(name[i:i+len(from)], from) {
			return name[:i] + matchCase(name[i:], to) + name[i+len(from):], true
		}
	}
	return "", false
}

// matchCase upper-cases the first letter of to when the text it replaces
// starts with an upper-case letter.
func matchCase(replaced, to string) string {
	r, _ := utf8.DecodeRuneInString(replaced)
	if !unicode.IsUpper(r) || to == "" {
		return to
	}
	first, size := utf8.DecodeRuneInString(to)
	return string(unicode.ToUpper(first)) + to[size:]
}

// Candidates returns name followed by every alternate produced by the rules
// that apply to it, without case-insensitive duplicates.
func Candidates(name string, rules []Rule) []string {
	out := []string{name}
	for _, r := range rules {
		if !r.Applies(name) || r.Generate == nil {
			continue
		}
		for _, alt := range r.Generate(name) {
			if !containsFold(out, alt) {
				out = append(out, alt)
			}
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
