package quickfix

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/edgecheck/edgecheck-go/internal/finding"
	"github.com/edgecheck/edgecheck-go/internal/sourcemap"
)

// defaultIndex is assumed when a finding's message names no offending index.
const defaultIndex = 100

// firstIntPattern extracts the offending index from a finding message
// like "IndexError at b[100]".
var firstIntPattern = regexp.MustCompile(`\d+`)

// FixesFor proposes edits for one finding. Rules evaluate independently;
// a finding may yield zero, one, or several edits:
//   - info findings yield no guard edits (they mark intentional,
//     already-guarded code).
//   - EC001 yields a zero-denominator guard inserted after the finding's
//     line, indentation copied from that line.
//   - EC002 yields a buffer type-and-length guard, likewise.
//   - Any finding with a non-empty code yields a "suppress" edit that
//     inserts a marker comment above the finding's line, where the
//     suppression look-back will see it.
//
// sm provides the document for indentation lookup; pass nil when content
// is unavailable and edits fall back to no indentation.
func FixesFor(f finding.Finding, sm *sourcemap.SourceMap) []ProposedEdit {
	var edits []ProposedEdit

	if f.Severity != finding.SeverityInfo {
		switch f.Code {
		case finding.CodeDivisionByZero:
			edits = append(edits, zeroGuard(f, sm))
		case finding.CodeIndexOutOfRange:
			edits = append(edits, indexGuard(f, sm))
		}
	}

	if f.Code != "" {
		edits = append(edits, suppressEdit(f, sm))
	}

	return edits
}

// FixesForFile proposes edits for a whole file's findings in order.
func FixesForFile(findings []finding.Finding, sm *sourcemap.SourceMap) []ProposedEdit {
	var edits []ProposedEdit
	for _, f := range findings {
		edits = append(edits, FixesFor(f, sm)...)
	}
	return edits
}

// zeroGuard builds the EC001 guard:
//
//	if b == 0:
//	    raise ValueError("denominator cannot be zero")
func zeroGuard(f finding.Finding, sm *sourcemap.SourceMap) ProposedEdit {
	denom := paramAt(f, 1, "denominator")
	indent := indentAt(sm, f.Line)

	text := fmt.Sprintf("%sif %s == 0:\n%s    raise ValueError(\"denominator cannot be zero\")\n",
		indent, denom, indent)

	return ProposedEdit{
		Title: titleFor(f, "Add zero-denominator guard"),
		Kind:  KindGuard,
		Code:  f.Code,
		File:  f.File,
		Line:  f.Line + 1,
		Text:  text,
	}
}

// indexGuard builds the EC002 guard:
//
//	if not isinstance(b, (bytes, bytearray)) or len(b) <= 100:
//	    raise ValueError("buffer too small for index 100")
func indexGuard(f finding.Finding, sm *sourcemap.SourceMap) ProposedEdit {
	buf := paramAt(f, 0, "buffer")
	index := offendingIndex(f.Message)
	indent := indentAt(sm, f.Line)

	text := fmt.Sprintf(
		"%sif not isinstance(%s, (bytes, bytearray)) or len(%s) <= %d:\n%s    raise ValueError(\"buffer too small for index %d\")\n",
		indent, buf, buf, index, indent, index)

	return ProposedEdit{
		Title: titleFor(f, "Add buffer-length guard"),
		Kind:  KindGuard,
		Code:  f.Code,
		File:  f.File,
		Line:  f.Line + 1,
		Text:  text,
	}
}

// suppressEdit builds the marker insertion above the finding's line.
func suppressEdit(f finding.Finding, sm *sourcemap.SourceMap) ProposedEdit {
	indent := indentAt(sm, f.Line)
	text := fmt.Sprintf("%s# edgecheck: ignore %s\n", indent, f.Code)

	return ProposedEdit{
		Title: fmt.Sprintf("Suppress %s for this line", f.Code),
		Kind:  KindSuppress,
		Code:  f.Code,
		File:  f.File,
		Line:  f.Line,
		Text:  text,
	}
}

// titleFor decorates an action label with the enclosing function name.
func titleFor(f finding.Finding, action string) string {
	if f.Function != "" {
		return fmt.Sprintf("%s in %s()", action, f.Function)
	}
	return action
}

// paramAt returns the finding's parameter name at index i, or fallback.
func paramAt(f finding.Finding, i int, fallback string) string {
	if i < len(f.ParamNames) && f.ParamNames[i] != "" {
		return f.ParamNames[i]
	}
	return fallback
}

// indentAt copies the leading whitespace of the finding's 1-based line.
func indentAt(sm *sourcemap.SourceMap, line int) string {
	if sm == nil {
		return ""
	}
	return sm.Indentation(line - 1)
}

// offendingIndex parses the first integer in a finding message.
func offendingIndex(message string) int {
	match := firstIntPattern.FindString(message)
	if match == "" {
		return defaultIndex
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return defaultIndex
	}
	return n
}
