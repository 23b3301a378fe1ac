// Package suppress provides inline suppression markers for findings.
//
// This package implements comment-based suppression:
//   - Next-line: # edgecheck: ignore EC001 (also accepted without the
//     space after the colon). A marker suppresses findings with the
//     named code on its own line or on either of the two lines below.
//   - File-level: # edgecheck: ignore-file within the first five lines
//     of the document suppresses every finding in the file.
package suppress

// Marker represents a parsed inline suppression marker.
type Marker struct {
	// Code is the finding code this marker suppresses (e.g. "EC001").
	// Matching is exact; a marker for EC001 never suppresses EC002.
	Code string

	// Line is the 0-based line number where the marker appears.
	Line int

	// Used is set to true when this marker suppresses at least one finding.
	// Used for unused marker detection.
	Used bool

	// RawText is the original comment text (for diagnostics).
	RawText string
}

// lookBehind is how many lines below a marker it still applies to.
// A finding on line L is suppressed by a marker on L, L-1, or L-2.
const lookBehind = 2

// SuppressesFinding returns true if this marker suppresses a finding with
// the given code on the given 0-based line.
func (m *Marker) SuppressesFinding(code string, line int) bool {
	if m.Code != code {
		return false
	}
	return m.Line <= line && line <= m.Line+lookBehind
}

// ParseResult contains all markers parsed from a file.
type ParseResult struct {
	// Markers contains successfully parsed next-line markers.
	Markers []Marker

	// IgnoreFile is true when a file-level pragma was found in the
	// first five lines of the document.
	IgnoreFile bool
}
