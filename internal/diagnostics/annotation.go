// Package diagnostics converts processed findings into per-file annotation
// collections: the publishable state editors and reporters consume.
//
// Publishing replaces a file's annotations atomically per run; two
// concurrent publishes for the same file resolve as last-write-wins with
// no partial interleaving.
package diagnostics

import (
	"sort"
	"strings"

	"github.com/edgecheck/edgecheck-go/internal/finding"
)

// Annotation is one displayable diagnostic: a coalesced view of one or
// more findings sharing a line and severity.
type Annotation struct {
	// File is the absolute path of the annotated document.
	File string

	// Line is the 1-based source line.
	Line int

	// StartCol and EndCol delimit the 0-based half-open column span.
	StartCol int
	EndCol   int

	// Severity is the shared severity of the merged findings.
	Severity finding.Severity

	// Code holds the finding code, or a comma-joined list when a merge
	// combined distinct codes (e.g. "EC001,EC002").
	Code string

	// Message is the display text; merged messages join with "; ".
	Message string

	// Findings are the source findings this annotation represents,
	// kept for quick-fix synthesis.
	Findings []finding.Finding
}

// single builds an annotation from one finding.
func single(f finding.Finding) Annotation {
	return Annotation{
		File:     f.AbsFile(),
		Line:     f.Line,
		StartCol: f.StartCol,
		EndCol:   f.EndCol,
		Severity: f.Severity,
		Code:     f.Code,
		Message:  f.Message,
		Findings: []finding.Finding{f},
	}
}

// Coalesce merges findings on the same line and severity whose column
// spans touch or overlap into single combined annotations.
//
// Findings are grouped by (line, severity), each group sorted by start
// column, then adjacent spans merge while start_col <= current end_col+1.
// A merge takes the union of the two spans, keeps distinct codes
// comma-joined, and joins distinct messages with "; ".
func Coalesce(findings []finding.Finding) []Annotation {
	type groupKey struct {
		line     int
		severity finding.Severity
	}

	groups := make(map[groupKey][]finding.Finding)
	var order []groupKey
	for _, f := range findings {
		key := groupKey{f.Line, f.Severity}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	// Deterministic group order: by line, then severity
	sort.Slice(order, func(i, j int) bool {
		if order[i].line != order[j].line {
			return order[i].line < order[j].line
		}
		return order[i].severity < order[j].severity
	})

	var annotations []Annotation
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].StartCol < group[j].StartCol
		})

		curr := single(group[0])
		for _, f := range group[1:] {
			// Touching counts: [0,4) and [4,10) merge into [0,10)
			if f.StartCol <= curr.EndCol+1 {
				curr = merge(curr, f)
				continue
			}
			annotations = append(annotations, curr)
			curr = single(f)
		}
		annotations = append(annotations, curr)
	}

	return annotations
}

// Passthrough builds one annotation per finding without merging,
// for configurations where coalescing is disabled.
func Passthrough(findings []finding.Finding) []Annotation {
	annotations := make([]Annotation, len(findings))
	for i, f := range findings {
		annotations[i] = single(f)
	}
	return annotations
}

// merge folds a finding into an existing annotation.
func merge(a Annotation, f finding.Finding) Annotation {
	a.EndCol = max(a.EndCol, f.EndCol)
	a.StartCol = min(a.StartCol, f.StartCol)
	a.Code = joinDistinct(a.Code, f.Code, ",")
	a.Message = joinDistinct(a.Message, strings.TrimSpace(f.Message), "; ")
	a.Findings = append(a.Findings, f)
	return a
}

// joinDistinct appends next to acc with sep unless acc already lists it.
func joinDistinct(acc, next, sep string) string {
	if next == "" {
		return acc
	}
	if acc == "" {
		return next
	}
	for _, part := range strings.Split(acc, sep) {
		if strings.TrimSpace(part) == next {
			return acc
		}
	}
	return acc + sep + next
}
