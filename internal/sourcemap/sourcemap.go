// Package sourcemap provides utilities for working with source code locations,
// snippet extraction, and line-based operations.
//
// This package bridges engine-reported positions with our output requirements
// (snippets for diagnostics, comment extraction for inline suppression markers).
package sourcemap

import (
	"bytes"
	"strings"
)

// SourceMap provides efficient access to source code by line.
// It precomputes line boundaries for fast snippet extraction.
//
// All line numbers are 0-based (matching LSP conventions).
type SourceMap struct {
	// source is the raw source content.
	source []byte

	// lines are the individual lines (without line endings).
	lines []string

	// lineOffsets[i] is the byte offset where line i starts in source.
	// Used for computing column positions from byte offsets.
	lineOffsets []int
}

// New creates a SourceMap from source content.
// Lines are split on \n (handles both \n and \r\n).
func New(source []byte) *SourceMap {
	// Split into lines, preserving empty lines
	rawLines := bytes.Split(source, []byte{'\n'})
	lines := make([]string, len(rawLines))
	lineOffsets := make([]int, len(rawLines))

	offset := 0
	for i, line := range rawLines {
		lineOffsets[i] = offset
		// Trim \r from line endings (for Windows CRLF)
		lines[i] = strings.TrimSuffix(string(line), "\r")
		// Next line starts after this line + newline character
		offset += len(line) + 1
	}

	return &SourceMap{
		source:      source,
		lines:       lines,
		lineOffsets: lineOffsets,
	}
}

// Lines returns all lines (without line endings).
// The returned slice should not be modified.
func (sm *SourceMap) Lines() []string {
	return sm.lines
}

// LineCount returns the total number of lines.
func (sm *SourceMap) LineCount() int {
	return len(sm.lines)
}

// Line returns the text of a specific line (0-based).
// Returns empty string if line is out of range.
func (sm *SourceMap) Line(line int) string {
	if line < 0 || line >= len(sm.lines) {
		return ""
	}
	return sm.lines[line]
}

// LineOffset returns the byte offset where a line starts (0-based).
// Returns -1 if line is out of range.
func (sm *SourceMap) LineOffset(line int) int {
	if line < 0 || line >= len(sm.lineOffsets) {
		return -1
	}
	return sm.lineOffsets[line]
}

// Snippet extracts a range of lines as a single string.
// Both startLine and endLine are 0-based and inclusive.
// Returns empty string if range is invalid.
//
// Example:
//
//	sm.Snippet(2, 4) // Returns lines 2, 3, and 4 joined with newlines
func (sm *SourceMap) Snippet(startLine, endLine int) string {
	// Clamp to valid range
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(sm.lines) {
		endLine = len(sm.lines) - 1
	}
	if startLine > endLine || startLine >= len(sm.lines) {
		return ""
	}

	return strings.Join(sm.lines[startLine:endLine+1], "\n")
}

// SnippetAround extracts context lines around a target line.
// Returns (contextBefore + target + contextAfter) lines as a single string.
// The before/after counts are clamped to available lines.
func (sm *SourceMap) SnippetAround(line, before, after int) string {
	startLine := line - before
	endLine := line + after
	return sm.Snippet(startLine, endLine)
}

// Source returns the raw source content.
// The returned slice should not be modified.
func (sm *SourceMap) Source() []byte {
	return sm.source
}

// Indentation returns the leading whitespace of a line (0-based).
// Returns empty string if line is out of range.
func (sm *SourceMap) Indentation(line int) string {
	text := sm.Line(line)
	trimmed := strings.TrimLeft(text, " \t")
	return text[:len(text)-len(trimmed)]
}

// Comment represents a comment extracted from source.
// Comments in Python sources start with # and extend to end of line.
type Comment struct {
	// Line is the 0-based line number where the comment appears.
	Line int

	// Text is the comment text including the # prefix.
	// Leading whitespace before # is trimmed.
	Text string

	// IsDirective indicates if this looks like a suppression marker.
	// True if the comment matches patterns like:
	//   # edgecheck: ignore EC001
	//   # edgecheck:ignore EC001
	//   # edgecheck: ignore-file
	IsDirective bool
}

// Comments extracts all comments from the source.
// Comments are returned in line order.
//
// Note: This extracts both standalone comment lines and trailing comments
// that follow code on the same line.
func (sm *SourceMap) Comments() []Comment {
	var comments []Comment

	for i, line := range sm.lines {
		text, ok := commentText(line)
		if !ok {
			continue
		}
		comments = append(comments, Comment{
			Line:        i,
			Text:        text,
			IsDirective: isDirectiveComment(text),
		})
	}

	return comments
}

// CommentForLine returns the comment on a specific line, if any.
// This covers both standalone comment lines and trailing comments.
func (sm *SourceMap) CommentForLine(line int) (Comment, bool) {
	text, ok := commentText(sm.Line(line))
	if !ok {
		return Comment{}, false
	}
	return Comment{
		Line:        line,
		Text:        text,
		IsDirective: isDirectiveComment(text),
	}, true
}

// CommentsForLine returns all comments that appear immediately before a line.
// Comments are associated with the following statement.
//
// Example: For line 5, this returns comments from lines 3-4 if:
//   - Line 3: # comment one
//   - Line 4: # comment two
//   - Line 5: result = divide(a, b)
func (sm *SourceMap) CommentsForLine(line int) []Comment {
	var comments []Comment

	// Walk backwards from the line before target
	for i := line - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(sm.lines[i])
		if trimmed == "" {
			// Empty line breaks the comment block
			break
		}
		if !strings.HasPrefix(trimmed, "#") {
			// Non-comment, non-empty line breaks the block
			break
		}
		// Append in reverse order (will be reversed at the end)
		comments = append(comments, Comment{
			Line:        i,
			Text:        trimmed,
			IsDirective: isDirectiveComment(trimmed),
		})
	}

	// Reverse to maintain line order (we collected in reverse)
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}

	return comments
}

// commentText extracts the comment portion of a line, if present.
// For trailing comments the code portion is discarded.
//
// This is a lexical scan, not a Python tokenizer: a # inside a string
// literal is treated as a comment start. Suppression markers are written
// standalone or as trailing comments, so the approximation holds for the
// comments we act on.
func commentText(line string) (string, bool) {
	idx := strings.IndexByte(line, '#')
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(line[idx:]), true
}

// isDirectiveComment checks if a comment looks like a suppression marker.
// These are special comments that control reporting behavior.
func isDirectiveComment(text string) bool {
	// Remove # prefix and trim
	content := strings.TrimSpace(strings.TrimPrefix(text, "#"))
	lower := strings.ToLower(content)

	// Must be followed by : to avoid false positives like "edgechecker"
	return strings.HasPrefix(lower, "edgecheck:")
}
