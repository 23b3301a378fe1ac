package suppress

import (
	"regexp"

	"github.com/edgecheck/edgecheck-go/internal/sourcemap"
)

// Regex patterns for marker parsing.
// The colon may be followed by at most one space.
var (
	// # edgecheck: ignore EC001
	// # edgecheck:ignore EC001
	ignorePattern = regexp.MustCompile(`(?i)#\s*edgecheck: ?ignore\s+([A-Za-z0-9_-]+)`)

	// # edgecheck: ignore-file
	ignoreFilePattern = regexp.MustCompile(`(?i)#\s*edgecheck: ?ignore-file\b`)
)

// ignoreFileWindow is how many leading lines are scanned for the
// file-level pragma, matching the engine's own skip behavior.
const ignoreFileWindow = 5

// Parse extracts all suppression markers from a SourceMap.
func Parse(sm *sourcemap.SourceMap) *ParseResult {
	result := &ParseResult{}

	for _, comment := range sm.Comments() {
		if !comment.IsDirective {
			continue
		}

		if ignoreFilePattern.MatchString(comment.Text) {
			if comment.Line < ignoreFileWindow {
				result.IgnoreFile = true
			}
			continue
		}

		matches := ignorePattern.FindStringSubmatch(comment.Text)
		if matches == nil {
			continue
		}

		result.Markers = append(result.Markers, Marker{
			Code:    matches[1],
			Line:    comment.Line,
			RawText: comment.Text,
		})
	}

	return result
}
