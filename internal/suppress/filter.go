package suppress

import "github.com/edgecheck/edgecheck-go/internal/finding"

// FilterResult contains the results of filtering findings through markers.
type FilterResult struct {
	// Findings that were not suppressed.
	Findings []finding.Finding

	// Suppressed findings that were filtered out.
	Suppressed []finding.Finding

	// UnusedMarkers that did not suppress any finding.
	UnusedMarkers []Marker
}

// Filter applies parsed markers to filter findings.
// A finding is suppressed if either:
//   - The file-level pragma is set, or
//   - A marker names the finding's code exactly and sits on the finding's
//     line or up to two lines above it.
//
// Line number conversion: findings use 1-based lines; markers use 0-based.
// We convert finding lines to 0-based for comparison.
//
// Matching precedence: first-match-wins. When multiple markers could
// suppress the same finding, only the first matching marker is marked as
// Used, so later duplicates show up as unused.
func Filter(findings []finding.Finding, parsed *ParseResult) *FilterResult {
	result := &FilterResult{
		Findings:   make([]finding.Finding, 0, len(findings)),
		Suppressed: make([]finding.Finding, 0),
	}

	if parsed.IgnoreFile {
		result.Suppressed = append(result.Suppressed, findings...)
		result.Findings = result.Findings[:0]
		return result
	}

	// Create a mutable copy of markers to track usage
	markers := make([]Marker, len(parsed.Markers))
	copy(markers, parsed.Markers)

	for _, f := range findings {
		suppressed := false
		// Convert 1-based finding line to 0-based
		line0 := f.Line - 1

		for i := range markers {
			m := &markers[i]
			if m.SuppressesFinding(f.Code, line0) {
				suppressed = true
				m.Used = true
				break
			}
		}

		if suppressed {
			result.Suppressed = append(result.Suppressed, f)
		} else {
			result.Findings = append(result.Findings, f)
		}
	}

	// Collect unused markers
	for _, m := range markers {
		if !m.Used {
			result.UnusedMarkers = append(result.UnusedMarkers, m)
		}
	}

	return result
}
