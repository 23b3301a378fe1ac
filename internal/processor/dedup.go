package processor

import (
	"path/filepath"

	"github.com/edgecheck/edgecheck-go/internal/finding"
)

// Deduplication removes duplicate findings.
// Two findings are duplicates when they share a file and the identity
// tuple (line, start_col, end_col, code, message). The engine can report
// the same crash from several trials; only the first occurrence survives.
type Deduplication struct{}

// NewDeduplication creates a new deduplication processor.
func NewDeduplication() *Deduplication {
	return &Deduplication{}
}

// Name returns the processor's identifier.
func (p *Deduplication) Name() string {
	return "deduplication"
}

// Process removes duplicate findings, keeping the first occurrence.
func (p *Deduplication) Process(findings []finding.Finding, _ *Context) []finding.Finding {
	seen := make(map[string]bool)
	return filterFindings(findings, func(f finding.Finding) bool {
		// Absolute slash path so "a.py" and "./a.py" collapse to one key
		key := filepath.ToSlash(f.AbsFile()) + ":" + f.DedupKey()
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}
