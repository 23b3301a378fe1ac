package processor

import "github.com/edgecheck/edgecheck-go/internal/finding"

// Normalization repairs out-of-range positions and missing fields so the
// rest of the pipeline can rely on well-formed findings.
type Normalization struct{}

// NewNormalization creates a new normalization processor.
func NewNormalization() *Normalization {
	return &Normalization{}
}

// Name returns the processor's identifier.
func (p *Normalization) Name() string {
	return "normalization"
}

// Process clamps each finding's positions and defaults its code and title.
func (p *Normalization) Process(findings []finding.Finding, _ *Context) []finding.Finding {
	return transformFindings(findings, func(f finding.Finding) finding.Finding {
		return f.Normalize()
	})
}
