package processor

import (
	"github.com/edgecheck/edgecheck-go/internal/finding"
	"github.com/edgecheck/edgecheck-go/internal/suppress"
)

// SuppressionFilter applies inline # edgecheck: ignore ... markers.
// Suppressed findings are dropped entirely, not demoted.
//
// Files whose source cannot be read are passed through unfiltered: a
// missing document must not fail the run, and erring on the side of
// reporting beats silently hiding findings.
type SuppressionFilter struct {
	// Suppressed collects dropped findings across Process calls,
	// for reporting and "unused marker" style diagnostics.
	Suppressed []finding.Finding
}

// NewSuppressionFilter creates a new suppression filter.
func NewSuppressionFilter() *SuppressionFilter {
	return &SuppressionFilter{}
}

// Name returns the processor's identifier.
func (p *SuppressionFilter) Name() string {
	return "suppression-filter"
}

// Process drops findings covered by a marker in their source file.
func (p *SuppressionFilter) Process(findings []finding.Finding, ctx *Context) []finding.Finding {
	// Parse markers once per file
	parsed := make(map[string]*suppress.ParseResult)

	result := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		pr, ok := parsed[f.File]
		if !ok {
			if sm := ctx.GetSourceMap(f.File); sm != nil {
				pr = suppress.Parse(sm)
			}
			parsed[f.File] = pr
		}
		if pr == nil {
			// Unreadable source: treat as not suppressed.
			result = append(result, f)
			continue
		}

		fr := suppress.Filter([]finding.Finding{f}, pr)
		if len(fr.Suppressed) > 0 {
			p.Suppressed = append(p.Suppressed, f)
			continue
		}
		result = append(result, f)
	}

	return result
}
