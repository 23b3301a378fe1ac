package processor

import (
	"sort"

	"github.com/edgecheck/edgecheck-go/internal/finding"
)

// Sorting ensures stable, deterministic output ordering.
// Order: file path, then line number, then start column, then code.
// This ensures identical output across runs and platforms.
type Sorting struct{}

// NewSorting creates a new sorting processor.
func NewSorting() *Sorting {
	return &Sorting{}
}

// Name returns the processor's identifier.
func (p *Sorting) Name() string {
	return "sorting"
}

// Process sorts findings in a stable order.
func (p *Sorting) Process(findings []finding.Finding, _ *Context) []finding.Finding {
	sorted := make([]finding.Finding, len(findings))
	copy(sorted, findings)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.StartCol != b.StartCol {
			return a.StartCol < b.StartCol
		}
		return a.Code < b.Code
	})

	return sorted
}
