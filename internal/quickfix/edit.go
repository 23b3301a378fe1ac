// Package quickfix synthesizes proposed source edits for findings and
// applies them to documents.
//
// Every proposed edit is a pure insertion: no existing text is deleted or
// replaced. Undo removes exactly the inserted block, and edits stay safe
// to compute without reconciling concurrent changes elsewhere in the file.
package quickfix

// EditKind classifies a proposed edit.
type EditKind int

const (
	// KindGuard inserts a runtime guard statement.
	KindGuard EditKind = iota
	// KindSuppress inserts a suppression marker comment.
	KindSuppress
)

// String returns a human-readable name for the edit kind.
func (k EditKind) String() string {
	switch k {
	case KindGuard:
		return "guard"
	case KindSuppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// ProposedEdit is a single insertion into a document.
type ProposedEdit struct {
	// Title is the action label shown to the user, including the
	// enclosing function name when known.
	Title string

	// Kind classifies the edit.
	Kind EditKind

	// Code is the finding code this edit addresses.
	Code string

	// File is the target document path.
	File string

	// Line is the 1-based line before which Text is inserted.
	// Line = lineCount+1 appends at the end of the document.
	Line int

	// Col is the insertion column. Whole-line insertions use 0.
	Col int

	// Text is the inserted block. Always ends with a newline.
	Text string
}
