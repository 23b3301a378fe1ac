package quickfix

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Apply inserts all proposed edits into content as one atomic change.
// Either every edit applies or none does: a single invalid insertion
// point fails the whole batch with nothing written.
//
// Edits are deduplicated by (line, column) insertion point, keeping the
// first occurrence. A "fix all" pass deriving edits from overlapping
// findings would otherwise double-guard the same statement.
//
// After a successful apply the caller must re-run the scan and publish
// pipeline for the document: line numbers in prior annotations no longer
// match the edited source.
func Apply(content []byte, edits []ProposedEdit) ([]byte, error) {
	if len(edits) == 0 {
		return content, nil
	}

	// Detect line ending style (CRLF on Windows, LF on Unix)
	lineEnding := "\n"
	if bytes.Contains(content, []byte("\r\n")) {
		lineEnding = "\r\n"
	}
	lines := strings.Split(string(content), lineEnding)

	// Deduplicate by insertion point, first occurrence wins
	type point struct{ line, col int }
	seen := make(map[point]bool, len(edits))
	deduped := make([]ProposedEdit, 0, len(edits))
	for _, e := range edits {
		p := point{e.Line, e.Col}
		if seen[p] {
			continue
		}
		seen[p] = true
		deduped = append(deduped, e)
	}

	// Validate every edit before touching anything
	for _, e := range deduped {
		if e.Line < 1 || e.Line > len(lines)+1 {
			return nil, fmt.Errorf("quickfix: insertion line %d out of range (document has %d lines)", e.Line, len(lines))
		}
		if e.Text == "" {
			return nil, fmt.Errorf("quickfix: empty insertion at line %d", e.Line)
		}
	}

	// Apply bottom-up so earlier insertions never shift later ones
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Line > deduped[j].Line
	})

	for _, e := range deduped {
		insert := strings.Split(strings.TrimSuffix(normalizeNewlines(e.Text, lineEnding), lineEnding), lineEnding)
		idx := e.Line - 1
		if idx > len(lines) {
			idx = len(lines)
		}
		lines = append(lines[:idx], append(append([]string{}, insert...), lines[idx:]...)...)
	}

	return []byte(strings.Join(lines, lineEnding)), nil
}

// normalizeNewlines rewrites the insertion text's line endings to match
// the document's.
func normalizeNewlines(text, lineEnding string) string {
	if lineEnding == "\n" {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", lineEnding)
}
