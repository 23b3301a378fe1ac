package reporter

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/edgecheck/edgecheck-go/internal/diagnostics"
	"github.com/edgecheck/edgecheck-go/internal/finding"
)

// JSONOutput is the top-level structure for JSON output.
type JSONOutput struct {
	// Files contains results grouped by file.
	Files []FileResult `json:"files"`
	// Summary contains aggregate statistics.
	Summary Summary `json:"summary"`
	// FilesScanned is the total number of files scanned.
	FilesScanned int `json:"files_scanned"`
	// EngineVersion is the version reported by the fuzzing engine.
	EngineVersion string `json:"engine_version,omitempty"`
}

// FileResult contains the scan results for a single file.
type FileResult struct {
	File        string           `json:"file"`
	Annotations []JSONAnnotation `json:"annotations"`
}

// JSONAnnotation is the wire representation of a single annotation.
type JSONAnnotation struct {
	Line     int              `json:"line"`
	StartCol int              `json:"start_col"`
	EndCol   int              `json:"end_col"`
	Severity finding.Severity `json:"severity"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
}

// Summary contains aggregate statistics about annotations.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Hints    int `json:"hints"`
	Files    int `json:"files"`
}

// JSONReporter formats annotations as JSON output.
type JSONReporter struct {
	writer io.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Report implements Reporter.
func (r *JSONReporter) Report(annotations []diagnostics.Annotation, _ map[string][]byte, metadata ReportMetadata) error {
	// Group annotations by file (deterministic order)
	// Normalize paths to forward slashes for cross-platform consistency
	byFile := make(map[string][]JSONAnnotation)
	filesOrder := make([]string, 0)

	for _, a := range SortAnnotations(annotations) {
		file := filepath.ToSlash(a.File)
		if _, exists := byFile[file]; !exists {
			filesOrder = append(filesOrder, file)
		}
		byFile[file] = append(byFile[file], JSONAnnotation{
			Line:     a.Line,
			StartCol: a.StartCol,
			EndCol:   a.EndCol,
			Severity: a.Severity,
			Code:     a.Code,
			Message:  a.Message,
		})
	}

	output := JSONOutput{
		Files:         make([]FileResult, 0, len(filesOrder)),
		Summary:       calculateSummary(annotations, len(filesOrder)),
		FilesScanned:  metadata.FilesScanned,
		EngineVersion: metadata.EngineVersion,
	}

	for _, file := range filesOrder {
		output.Files = append(output.Files, FileResult{
			File:        file,
			Annotations: byFile[file],
		})
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// calculateSummary computes aggregate statistics from annotations.
func calculateSummary(annotations []diagnostics.Annotation, fileCount int) Summary {
	summary := Summary{
		Total: len(annotations),
		Files: fileCount,
	}

	for _, a := range annotations {
		switch a.Severity {
		case finding.SeverityError:
			summary.Errors++
		case finding.SeverityWarning:
			summary.Warnings++
		case finding.SeverityInfo:
			summary.Info++
		case finding.SeverityHint:
			summary.Hints++
		}
	}

	return summary
}
