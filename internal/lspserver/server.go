// Package lspserver implements a Language Server Protocol server for
// edgecheck.
//
// The server runs the external fuzzing engine against saved documents and
// publishes the resulting findings as diagnostics, offers guard and
// suppression quick fixes as code actions, and applies batched fixes via
// workspace/executeCommand.
//
// Transport: stdio only.
// Protocol: LSP 3.17 types via internal/lsp/protocol, JSON-RPC via
// sourcegraph/jsonrpc2.
package lspserver

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/edgecheck/edgecheck-go/internal/config"
	"github.com/edgecheck/edgecheck-go/internal/diagnostics"
	"github.com/edgecheck/edgecheck-go/internal/engine"
	protocol "github.com/edgecheck/edgecheck-go/internal/lsp/protocol"
	"github.com/edgecheck/edgecheck-go/internal/version"
)

const serverName = "edgecheck"

// Server is the edgecheck LSP server.
type Server struct {
	documents *DocumentStore
	store     *diagnostics.Store
	runner    *engine.Runner
	cfg       *config.Config
	logger    logrus.FieldLogger
}

// New creates a new LSP server using the given configuration.
func New(cfg *config.Config, logger logrus.FieldLogger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	runner := engine.NewRunner(engine.Options{
		Command:     cfg.Engine.Command,
		BudgetMS:    cfg.Engine.BudgetMS,
		MaxTrials:   cfg.Engine.MaxTrials,
		MaxFindings: cfg.Engine.MaxFindings,
		Timeout:     cfg.Engine.TimeoutDuration(),
		Logger:      logger,
	})
	return &Server{
		documents: NewDocumentStore(),
		store:     diagnostics.NewStore(cfg.Diagnostics.Coalesce, logger),
		runner:    runner,
		cfg:       cfg,
		logger:    logger,
	}
}

// RunStdio starts the LSP server on stdin/stdout.
// It blocks until the connection is closed or the context is cancelled.
func (s *Server) RunStdio(ctx context.Context) error {
	stream := jsonrpc2.NewBufferedStream(stdioReadWriteCloser{}, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	select {
	case <-ctx.Done():
		return conn.Close()
	case <-conn.DisconnectNotify():
		return nil
	}
}

// handle dispatches incoming JSON-RPC messages to the appropriate handler.
func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	// Lifecycle
	case "initialize":
		return unmarshalAndCall(req, s.handleInitialize)
	case "initialized", "$/setTrace":
		return nil, nil //nolint:nilnil // LSP: notifications have no result
	case "shutdown":
		return nil, nil //nolint:nilnil // LSP: shutdown returns null
	case "exit":
		return nil, conn.Close()

	// Document sync
	case "textDocument/didOpen":
		return nil, unmarshalAndNotify(req, func(p *protocol.DidOpenTextDocumentParams) {
			s.handleDidOpen(ctx, conn, p)
		})
	case "textDocument/didChange":
		return nil, unmarshalAndNotify(req, func(p *protocol.DidChangeTextDocumentParams) {
			s.handleDidChange(p)
		})
	case "textDocument/didSave":
		return nil, unmarshalAndNotify(req, func(p *protocol.DidSaveTextDocumentParams) {
			s.handleDidSave(ctx, conn, p)
		})
	case "textDocument/didClose":
		return nil, unmarshalAndNotify(req, func(p *protocol.DidCloseTextDocumentParams) {
			s.handleDidClose(ctx, conn, p)
		})

	// Language features
	case "textDocument/codeAction":
		return unmarshalAndCall(req, s.handleCodeAction)

	// Workspace
	case "workspace/executeCommand":
		return unmarshalAndCall(req, s.handleExecuteCommand)

	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: "method not supported: " + req.Method,
		}
	}
}

// unmarshalAndCall unmarshals request params into T and calls fn.
func unmarshalAndCall[T any](req *jsonrpc2.Request, fn func(*T) (any, error)) (any, error) {
	var params T
	if req.Params != nil {
		if err := json.Unmarshal([]byte(*req.Params), &params); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
	}
	return fn(&params)
}

// unmarshalAndNotify unmarshals request params into T and calls fn
// (for notifications that have no return).
func unmarshalAndNotify[T any](req *jsonrpc2.Request, fn func(*T)) error {
	var params T
	if req.Params != nil {
		if err := json.Unmarshal([]byte(*req.Params), &params); err != nil {
			return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
	}
	fn(&params)
	return nil
}

// handleInitialize responds to the initialize request with server capabilities.
func (s *Server) handleInitialize(params *protocol.InitializeParams) (any, error) {
	if params.ClientInfo != nil {
		s.logger.WithField("client", params.ClientInfo.Name).Info("lsp: initialize")
	} else {
		s.logger.Info("lsp: initialize")
	}

	ver := version.RawVersion()

	return &protocol.InitializeResult{
		Capabilities: &protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrTo(true),
				Change:    ptrTo(protocol.TextDocumentSyncKindFull),
				Save: &protocol.SaveOptions{
					IncludeText: ptrTo(true),
				},
			},
			CodeActionProvider: &protocol.CodeActionOptions{
				CodeActionKinds: []protocol.CodeActionKind{
					protocol.CodeActionKindQuickFix,
					fixAllCodeActionKind,
				},
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{
					applyAllFixesCommand,
				},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: &ver,
		},
	}, nil
}

// handleDidOpen scans the opened document and publishes diagnostics.
func (s *Server) handleDidOpen(ctx context.Context, conn *jsonrpc2.Conn, params *protocol.DidOpenTextDocumentParams) {
	uri := string(params.TextDocument.Uri)
	s.documents.Open(uri, params.TextDocument.LanguageId, params.TextDocument.Version, params.TextDocument.Text)
	s.scanAndPublish(ctx, conn, uri)
}

// handleDidChange updates the buffer. The engine reads from disk, so a
// rescan waits for the next save; suppression markers and quick fixes
// see the live buffer immediately.
func (s *Server) handleDidChange(params *protocol.DidChangeTextDocumentParams) {
	uri := string(params.TextDocument.Uri)
	// With full sync, there's exactly one content change containing the full text.
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			s.documents.Update(uri, params.TextDocument.Version, change.Text)
		}
	}
}

// handleDidSave rescans on save.
func (s *Server) handleDidSave(ctx context.Context, conn *jsonrpc2.Conn, params *protocol.DidSaveTextDocumentParams) {
	uri := string(params.TextDocument.Uri)
	if params.Text != nil && *params.Text != "" {
		s.documents.Update(uri, 0, *params.Text)
	}
	s.scanAndPublish(ctx, conn, uri)
}

// handleDidClose clears diagnostics and removes the document.
func (s *Server) handleDidClose(ctx context.Context, conn *jsonrpc2.Conn, params *protocol.DidCloseTextDocumentParams) {
	uri := string(params.TextDocument.Uri)
	var docVersion *int32
	if doc := s.documents.Get(uri); doc != nil {
		docVersion = &doc.Version
		s.store.ClearFile(absPath(doc.Path))
	}
	s.documents.Close(uri)
	clearDiagnostics(ctx, conn, s.logger, uri, docVersion)
}

// handleCodeAction returns quick-fix code actions.
func (s *Server) handleCodeAction(params *protocol.CodeActionParams) (any, error) {
	doc := s.documents.Get(string(params.TextDocument.Uri))
	if doc == nil {
		return nil, nil //nolint:nilnil // LSP: null result is valid for "no actions"
	}

	actions := s.codeActionsForDocument(doc, params)
	if len(actions) == 0 {
		return nil, nil //nolint:nilnil // LSP: null result is valid for "no actions"
	}
	return actions, nil
}

func ptrTo[T any](v T) *T {
	return &v
}

// stdioReadWriteCloser wraps stdin/stdout as an io.ReadWriteCloser for JSON-RPC.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error                { return nil }
