package api

// Plan is the dry-run view of one archive: what its instructions say and
// where each file would be copied.
type Plan struct {
	Archive           string          `json:"archive"`
	InstructionsFound bool            `json:"instructions_found"`
	Instructions      *InstructionSet `json:"instructions"`
	ReplacementDir    string          `json:"replacement_dir,omitempty"`
	Placements        []Placement     `json:"placements"`
	Diagnostics       []string        `json:"diagnostics,omitempty"`
	Warnings          []string        `json:"warnings,omitempty"`
	Error             string          `json:"error,omitempty"`
}
