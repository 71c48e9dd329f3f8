package api

import "fmt"

// Severity classifies a run message.
type Severity string

const (
	// SeverityWarning never affects the verdict.
	SeverityWarning Severity = "warning"
	// SeverityError aborts one package and fails the run.
	SeverityError Severity = "error"
	// SeverityFatal aborts the run before any package is touched.
	SeverityFatal Severity = "fatal"
)

// Message is one itemized warning or error.
type Message struct {
	Severity Severity `json:"severity"`
	Archive  string   `json:"archive,omitempty"`
	Text     string   `json:"text"`
}

func (m Message) String() string {
	if m.Archive == "" {
		return fmt.Sprintf("%s: %s", m.Severity, m.Text)
	}
	return fmt.Sprintf("%s: [%s] %s", m.Severity, m.Archive, m.Text)
}

// PackageResult summarizes one processed archive.
type PackageResult struct {
	Archive     string `json:"archive"`
	FilesCopied int    `json:"files_copied"`
	Failed      bool   `json:"failed"`
}

// Report accumulates messages in the order they were encountered.
type Report struct {
	Messages []Message       `json:"messages,omitempty"`
	Packages []PackageResult `json:"packages,omitempty"`
}

func (r *Report) add(sev Severity, archive, format string, args ...any) {
	r.Messages = append(r.Messages, Message{
		Severity: sev,
		Archive:  archive,
		Text:     fmt.Sprintf(format, args...),
	})
}

// Warn records a warning.
func (r *Report) Warn(archive, format string, args ...any) {
	r.add(SeverityWarning, archive, format, args...)
}

// Error records a hard error for one package.
func (r *Report) Error(archive, format string, args ...any) {
	r.add(SeverityError, archive, format, args...)
}

// Fatal records a run-aborting failure.
func (r *Report) Fatal(format string, args ...any) {
	r.add(SeverityFatal, "", format, args...)
}

// Count returns the number of messages with the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, m := range r.Messages {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

// Success is true when no hard or fatal errors were recorded.
func (r *Report) Success() bool {
	return r.Count(SeverityError) == 0 && r.Count(SeverityFatal) == 0
}
