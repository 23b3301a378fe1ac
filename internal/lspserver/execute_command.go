package lspserver

import (
	"os"

	"github.com/sourcegraph/jsonrpc2"

	protocol "github.com/edgecheck/edgecheck-go/internal/lsp/protocol"
	"github.com/edgecheck/edgecheck-go/internal/sourcemap"
)

const applyAllFixesCommand = "edgecheck.applyAllFixes"

func (s *Server) handleExecuteCommand(params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != applyAllFixesCommand {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "unknown command: " + params.Command}
	}

	uri, ok := parseApplyAllFixesArgs(params.Arguments)
	if !ok {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "invalid command arguments"}
	}

	content, err := s.contentForURI(uri)
	if err != nil {
		return nil, nil //nolint:nilnil,nilerr // gracefully return no edits when the file can't be read
	}

	sm := sourcemap.New(content)
	annotations := s.store.ForFile(absPath(uriToPath(uri)))

	edits := s.guardEdits(sm, annotations)
	if len(edits) == 0 {
		return nil, nil //nolint:nilnil // no changes
	}

	converted := make([]*protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		converted = append(converted, convertEdit(e))
	}

	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]*protocol.TextEdit{
			protocol.DocumentUri(uri): converted,
		},
	}, nil
}

func parseApplyAllFixesArgs(args []any) (string, bool) {
	if len(args) == 0 {
		return "", false
	}

	switch v := args[0].(type) {
	case string:
		return v, v != ""
	case map[string]any:
		uri, ok := v["uri"].(string)
		return uri, ok && uri != ""
	default:
		return "", false
	}
}

func (s *Server) contentForURI(uri string) ([]byte, error) {
	if doc := s.documents.Get(uri); doc != nil {
		return []byte(doc.Content), nil
	}
	return os.ReadFile(uriToPath(uri))
}
