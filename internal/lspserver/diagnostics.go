package lspserver

import (
	"context"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/edgecheck/edgecheck-go/internal/diagnostics"
	"github.com/edgecheck/edgecheck-go/internal/finding"
	protocol "github.com/edgecheck/edgecheck-go/internal/lsp/protocol"
)

// scanAndPublish runs the engine against the document's file on disk and
// publishes the resulting diagnostics. An engine failure leaves previously
// published diagnostics untouched.
func (s *Server) scanAndPublish(ctx context.Context, conn *jsonrpc2.Conn, uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	report, err := s.runner.Scan(ctx, doc.Path)
	if err != nil {
		s.logger.WithError(err).WithField("file", doc.Path).Warn("lsp: engine scan failed")
		return
	}

	// Suppression parsing and coalescing read the live buffer, not disk.
	abs := absPath(doc.Path)
	sources := map[string][]byte{doc.Path: []byte(doc.Content)}
	for _, f := range report.Findings {
		if f.AbsFile() == abs {
			sources[f.File] = []byte(doc.Content)
		}
	}

	s.store.Publish(report.Findings, sources)

	annotations := s.store.ForFile(abs)
	diags := convertDiagnostics(annotations)

	version := doc.Version
	if err := conn.Notify(ctx, "textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		Uri:         protocol.DocumentUri(uri),
		Version:     &version,
		Diagnostics: diags,
	}); err != nil {
		s.logger.WithError(err).WithField("uri", uri).Warn("lsp: failed to publish diagnostics")
	}
}

// clearDiagnostics sends an empty diagnostics array to clear issues for a URI.
// version is the last known document version (nil if unknown).
func clearDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, logger logrus.FieldLogger, uri string, version *int32) {
	if err := conn.Notify(ctx, "textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		Uri:         protocol.DocumentUri(uri),
		Version:     version,
		Diagnostics: []*protocol.Diagnostic{},
	}); err != nil {
		logger.WithError(err).WithField("uri", uri).Warn("lsp: failed to clear diagnostics")
	}
}

// convertDiagnostics converts annotations to LSP diagnostics.
func convertDiagnostics(annotations []diagnostics.Annotation) []*protocol.Diagnostic {
	diags := make([]*protocol.Diagnostic, 0, len(annotations))
	for _, a := range annotations {
		diags = append(diags, &protocol.Diagnostic{
			Range:    annotationRange(a),
			Severity: ptrTo(severityToLSP(a.Severity)),
			Code:     ptrTo(a.Code),
			Source:   ptrTo(serverName),
			Message:  a.Message,
		})
	}
	return diags
}

// annotationRange converts an annotation span to an LSP Range.
// Annotations use 1-based lines and 0-based columns; LSP uses 0-based for both.
func annotationRange(a diagnostics.Annotation) protocol.Range {
	line := clampUint32(a.Line - 1)
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: clampUint32(a.StartCol)},
		End:   protocol.Position{Line: line, Character: clampUint32(a.EndCol)},
	}
}

// severityToLSP converts a finding Severity to an LSP DiagnosticSeverity.
func severityToLSP(s finding.Severity) protocol.DiagnosticSeverity {
	switch s {
	case finding.SeverityError:
		return protocol.DiagnosticSeverityError
	case finding.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case finding.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case finding.SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

// clampUint32 safely converts an int to uint32, clamping negative values to 0.
func clampUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v) //nolint:gosec // line/column numbers are well within uint32 range
}

// absPath returns p as a cleaned absolute path.
func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// uriToPath converts a file:// URI to a local file path.
func uriToPath(docURI string) string {
	parsed, err := url.Parse(docURI)
	if err != nil {
		return strings.TrimPrefix(docURI, "file://")
	}
	path := parsed.Path
	if runtime.GOOS == "windows" {
		// UNC paths: file://server/share/path → \\server\share\path
		if parsed.Host != "" {
			path = `//` + parsed.Host + path
		}
		// Drive-letter paths: file:///C:/path → Path is /C:/path, strip leading /.
		if len(path) > 2 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
	}
	return filepath.FromSlash(path)
}
