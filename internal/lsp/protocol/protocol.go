// Package protocol defines the subset of LSP 3.17 types the server speaks.
//
// Only the structures used by the stdio server are modeled; optional
// fields follow the LSP convention of pointer-or-omitted.
package protocol

// DocumentUri is an LSP document URI.
//
//nolint:staticcheck // Keep LSP spec naming.
type DocumentUri string

// Position is a zero-based line/character offset in a document.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range is a half-open [start, end) span in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location is a range inside a specific document.
type Location struct {
	Uri   DocumentUri `json:"uri"`
	Range Range       `json:"range"`
}

// DiagnosticSeverity is the LSP severity scale (1 = most severe).
type DiagnosticSeverity int

const (
	DiagnosticSeverityError       DiagnosticSeverity = 1
	DiagnosticSeverityWarning     DiagnosticSeverity = 2
	DiagnosticSeverityInformation DiagnosticSeverity = 3
	DiagnosticSeverityHint        DiagnosticSeverity = 4
)

// Diagnostic is one published problem report.
type Diagnostic struct {
	Range    Range               `json:"range"`
	Severity *DiagnosticSeverity `json:"severity,omitempty"`
	Code     *string             `json:"code,omitempty"`
	Source   *string             `json:"source,omitempty"`
	Message  string              `json:"message"`
}

// PublishDiagnosticsParams carries textDocument/publishDiagnostics.
type PublishDiagnosticsParams struct {
	Uri         DocumentUri   `json:"uri"`
	Version     *int32        `json:"version,omitempty"`
	Diagnostics []*Diagnostic `json:"diagnostics"`
}

// TextEdit replaces a range with new text. An empty range is an insertion.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// WorkspaceEdit groups text edits per document.
type WorkspaceEdit struct {
	Changes map[DocumentUri][]*TextEdit `json:"changes,omitempty"`
}

// TextDocumentItem describes an opened document.
type TextDocumentItem struct {
	Uri        DocumentUri `json:"uri"`
	LanguageId string      `json:"languageId"`
	Version    int32       `json:"version"`
	Text       string      `json:"text"`
}

// TextDocumentIdentifier names a document.
type TextDocumentIdentifier struct {
	Uri DocumentUri `json:"uri"`
}

// VersionedTextDocumentIdentifier names a document plus version.
type VersionedTextDocumentIdentifier struct {
	Uri     DocumentUri `json:"uri"`
	Version int32       `json:"version"`
}

// DidOpenTextDocumentParams carries textDocument/didOpen.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// TextDocumentContentChangeEvent is one change in didChange. With full
// sync the Range is absent and Text holds the whole document.
type TextDocumentContentChangeEvent struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

// DidChangeTextDocumentParams carries textDocument/didChange.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// DidSaveTextDocumentParams carries textDocument/didSave.
type DidSaveTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Text         *string                `json:"text,omitempty"`
}

// DidCloseTextDocumentParams carries textDocument/didClose.
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// ClientInfo identifies the connecting editor.
type ClientInfo struct {
	Name    string  `json:"name"`
	Version *string `json:"version,omitempty"`
}

// InitializeParams carries the initialize request.
type InitializeParams struct {
	ProcessId  *int32      `json:"processId,omitempty"`
	ClientInfo *ClientInfo `json:"clientInfo,omitempty"`
	RootUri    DocumentUri `json:"rootUri,omitempty"`
}

// TextDocumentSyncKind selects the document sync granularity.
type TextDocumentSyncKind int

const (
	TextDocumentSyncKindNone        TextDocumentSyncKind = 0
	TextDocumentSyncKindFull        TextDocumentSyncKind = 1
	TextDocumentSyncKindIncremental TextDocumentSyncKind = 2
)

// SaveOptions configures didSave notifications.
type SaveOptions struct {
	IncludeText *bool `json:"includeText,omitempty"`
}

// TextDocumentSyncOptions describes the server's sync expectations.
type TextDocumentSyncOptions struct {
	OpenClose *bool                 `json:"openClose,omitempty"`
	Change    *TextDocumentSyncKind `json:"change,omitempty"`
	Save      *SaveOptions          `json:"save,omitempty"`
}

// CodeActionKind tags an action category (e.g. "quickfix").
type CodeActionKind string

const (
	CodeActionKindQuickFix CodeActionKind = "quickfix"
	CodeActionKindFixAll   CodeActionKind = "source.fixAll"
)

// CodeActionOptions describes supported action kinds.
type CodeActionOptions struct {
	CodeActionKinds []CodeActionKind `json:"codeActionKinds,omitempty"`
}

// ExecuteCommandOptions lists server-side commands.
type ExecuteCommandOptions struct {
	Commands []string `json:"commands"`
}

// ServerCapabilities advertises what the server implements.
type ServerCapabilities struct {
	TextDocumentSync       *TextDocumentSyncOptions `json:"textDocumentSync,omitempty"`
	CodeActionProvider     *CodeActionOptions       `json:"codeActionProvider,omitempty"`
	ExecuteCommandProvider *ExecuteCommandOptions   `json:"executeCommandProvider,omitempty"`
}

// ServerInfo identifies the server to the client.
type ServerInfo struct {
	Name    string  `json:"name"`
	Version *string `json:"version,omitempty"`
}

// InitializeResult answers the initialize request.
type InitializeResult struct {
	Capabilities *ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo         `json:"serverInfo,omitempty"`
}

// CodeActionContext carries the diagnostics and kind filter of a
// codeAction request.
type CodeActionContext struct {
	Diagnostics []*Diagnostic    `json:"diagnostics"`
	Only        []CodeActionKind `json:"only,omitempty"`
}

// CodeActionParams carries textDocument/codeAction.
type CodeActionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
	Context      CodeActionContext      `json:"context"`
}

// CodeAction is one offered fix.
type CodeAction struct {
	Title       string          `json:"title"`
	Kind        *CodeActionKind `json:"kind,omitempty"`
	Diagnostics []*Diagnostic   `json:"diagnostics,omitempty"`
	IsPreferred *bool           `json:"isPreferred,omitempty"`
	Edit        *WorkspaceEdit  `json:"edit,omitempty"`
}

// ExecuteCommandParams carries workspace/executeCommand.
type ExecuteCommandParams struct {
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}
