package api

// InstructionSet is the parsed form of a package's Instructions.txt.
// It is rebuilt for every package and never merged across packages.
type InstructionSet struct {
	// CopyLines are the raw "Copy and Paste" lines, kept for diagnostics only.
	CopyLines []string `json:"copy_lines,omitempty"`
	// Subfolders are destination subfolder names in first-seen order.
	Subfolders []string `json:"subfolders,omitempty"`
	// Mappings route a named source folder to a destination subfolder.
	// Source names are unique; a later line for the same source replaces the
	// destination but keeps the original position.
	Mappings []FolderMapping `json:"mappings,omitempty"`
	// ExpectsReplacementFiles is set when any line mentions "Replacement Files".
	ExpectsReplacementFiles bool `json:"expects_replacement_files"`
}

// FolderMapping sends the direct files of Source into configs/Dest.
type FolderMapping struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// AddSubfolder records a destination subfolder unless it was already seen.
func (s *InstructionSet) AddSubfolder(name string) {
	for _, existing := range s.Subfolders {
		if existing == name {
			return
		}
	}
	s.Subfolders = append(s.Subfolders, name)
}

// SetMapping adds source -> dest, overwriting an earlier mapping for source.
func (s *InstructionSet) SetMapping(source, dest string) {
	for i := range s.Mappings {
		if s.Mappings[i].Source == source {
			s.Mappings[i].Dest = dest
			return
		}
	}
	s.Mappings = append(s.Mappings, FolderMapping{Source: source, Dest: dest})
}

// Mapping returns the destination subfolder for source.
func (s *InstructionSet) Mapping(source string) (string, bool) {
	for _, m := range s.Mappings {
		if m.Source == source {
			return m.Dest, true
		}
	}
	return "", false
}

// Empty reports whether nothing actionable was parsed.
func (s *InstructionSet) Empty() bool {
	return len(s.Subfolders) == 0 && len(s.Mappings) == 0 && !s.ExpectsReplacementFiles
}

// Placement is one planned or performed file copy, relative to the
// extraction root and the configs tree respectively.
type Placement struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}
