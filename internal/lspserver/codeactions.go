package lspserver

import (
	"strings"

	"github.com/edgecheck/edgecheck-go/internal/diagnostics"
	"github.com/edgecheck/edgecheck-go/internal/finding"
	protocol "github.com/edgecheck/edgecheck-go/internal/lsp/protocol"
	"github.com/edgecheck/edgecheck-go/internal/quickfix"
	"github.com/edgecheck/edgecheck-go/internal/sourcemap"
)

const fixAllCodeActionKind = protocol.CodeActionKind("source.fixAll.edgecheck")

// codeActionsForDocument returns quick-fix code actions for the given range.
func (s *Server) codeActionsForDocument(doc *Document, params *protocol.CodeActionParams) []protocol.CodeAction {
	includeQuickFix := true
	includeFixAll := true
	if len(params.Context.Only) > 0 {
		includeQuickFix = kindRequested(params.Context.Only, protocol.CodeActionKindQuickFix)
		includeFixAll = kindRequested(params.Context.Only, fixAllCodeActionKind)
	}

	sm := sourcemap.New([]byte(doc.Content))
	annotations := s.store.ForFile(absPath(doc.Path))

	var actions []protocol.CodeAction

	if includeQuickFix {
		seen := make(map[editKey]bool)
		for _, a := range annotations {
			if !rangesOverlap(annotationRange(a), params.Range) {
				continue
			}
			matched := matchingDiagnostics(a.Message, annotationRange(a), params.Context.Diagnostics)
			for _, f := range a.Findings {
				for _, edit := range s.fixesFor(f, sm) {
					key := editKey{edit.Line, edit.Col, edit.Text}
					if seen[key] {
						continue
					}
					seen[key] = true

					action := protocol.CodeAction{
						Title:       edit.Title,
						Kind:        ptrTo(protocol.CodeActionKindQuickFix),
						Diagnostics: matched,
						Edit: &protocol.WorkspaceEdit{
							Changes: map[protocol.DocumentUri][]*protocol.TextEdit{
								params.TextDocument.Uri: {convertEdit(edit)},
							},
						},
					}
					if edit.Kind == quickfix.KindGuard {
						action.IsPreferred = ptrTo(true)
					}
					actions = append(actions, action)
				}
			}
		}
	}

	if includeFixAll {
		if action := s.fixAllCodeAction(params.TextDocument.Uri, sm, annotations); action != nil {
			actions = append(actions, *action)
		}
	}

	return actions
}

// fixAllCodeAction bundles every guard edit for the document into one action.
func (s *Server) fixAllCodeAction(uri protocol.DocumentUri, sm *sourcemap.SourceMap, annotations []diagnostics.Annotation) *protocol.CodeAction {
	edits := s.guardEdits(sm, annotations)
	if len(edits) == 0 {
		return nil
	}

	converted := make([]*protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		converted = append(converted, convertEdit(e))
	}

	return &protocol.CodeAction{
		Title:       "Insert all suggested guards",
		Kind:        ptrTo(fixAllCodeActionKind),
		IsPreferred: ptrTo(true),
		Edit: &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]*protocol.TextEdit{
				uri: converted,
			},
		},
	}
}

// fixesFor synthesizes fixes for one finding, honoring the suppress-for-info
// configuration toggle.
func (s *Server) fixesFor(f finding.Finding, sm *sourcemap.SourceMap) []quickfix.ProposedEdit {
	edits := quickfix.FixesFor(f, sm)
	if s.cfg.QuickFix.OfferSuppressForInfo || f.Severity != finding.SeverityInfo {
		return edits
	}
	kept := edits[:0]
	for _, e := range edits {
		if e.Kind != quickfix.KindSuppress {
			kept = append(kept, e)
		}
	}
	return kept
}

type editKey struct {
	line int
	col  int
	text string
}

// guardEdits collects deduplicated guard insertions for all of a
// document's findings. Edits landing on the same point keep the first.
func (s *Server) guardEdits(sm *sourcemap.SourceMap, annotations []diagnostics.Annotation) []quickfix.ProposedEdit {
	var edits []quickfix.ProposedEdit
	seen := make(map[editKey]bool)
	for _, a := range annotations {
		for _, f := range a.Findings {
			for _, e := range quickfix.FixesFor(f, sm) {
				if e.Kind != quickfix.KindGuard {
					continue
				}
				key := editKey{e.Line, e.Col, ""}
				if seen[key] {
					continue
				}
				seen[key] = true
				edits = append(edits, e)
			}
		}
	}
	return edits
}

// convertEdit converts a proposed insertion to an LSP TextEdit.
// Proposed edits use 1-based insert-before lines; LSP positions are 0-based.
func convertEdit(e quickfix.ProposedEdit) *protocol.TextEdit {
	pos := protocol.Position{Line: clampUint32(e.Line - 1), Character: clampUint32(e.Col)}
	return &protocol.TextEdit{
		Range:   protocol.Range{Start: pos, End: pos},
		NewText: e.Text,
	}
}

func kindRequested(only []protocol.CodeActionKind, kind protocol.CodeActionKind) bool {
	for _, requested := range only {
		if requested == kind {
			return true
		}
		if requested != "" && strings.HasPrefix(string(kind), string(requested)+".") {
			return true
		}
	}
	return false
}

// rangesOverlap checks if two LSP ranges overlap.
// LSP ranges are half-open [start, end), so touching ranges (a.End == b.Start)
// are not considered overlapping.
func rangesOverlap(a, b protocol.Range) bool {
	if a.End.Line < b.Start.Line || (a.End.Line == b.Start.Line && a.End.Character <= b.Start.Character) {
		return false
	}
	if b.End.Line < a.Start.Line || (b.End.Line == a.Start.Line && b.End.Character <= a.Start.Character) {
		return false
	}
	return true
}

// matchingDiagnostics finds request diagnostics that match an annotation
// by start line and message.
func matchingDiagnostics(message string, r protocol.Range, diags []*protocol.Diagnostic) []*protocol.Diagnostic {
	var matched []*protocol.Diagnostic
	for _, d := range diags {
		if d.Range.Start.Line == r.Start.Line && d.Message == message {
			matched = append(matched, d)
		}
	}
	return matched
}
