package reporter

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/edgecheck/edgecheck-go/internal/diagnostics"
	"github.com/edgecheck/edgecheck-go/internal/finding"
)

// Default SARIF tool information.
const (
	sarifToolName = "edgecheck"
	sarifToolURI  = "https://github.com/edgecheck/edgecheck-go"
)

// SARIFReporter formats annotations as SARIF (Static Analysis Results
// Interchange Format). SARIF is a standard format for static analysis
// tools, widely supported by CI/CD systems including GitHub Code
// Scanning and Azure DevOps.
//
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/
type SARIFReporter struct {
	writer      io.Writer
	toolVersion string
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(w io.Writer, toolVersion string) *SARIFReporter {
	return &SARIFReporter{
		writer:      w,
		toolVersion: toolVersion,
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(annotations []diagnostics.Annotation, _ map[string][]byte, _ ReportMetadata) error {
	// v2.1.0 for maximum compatibility
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)
	if r.toolVersion != "" {
		run.Tool.Driver.WithVersion(r.toolVersion)
	}

	sorted := SortAnnotations(annotations)

	// Collect unique rule codes and files. A merged annotation carries a
	// comma-joined code list; each component registers as its own rule.
	ruleSet := make(map[string]struct{})
	fileSet := make(map[string]struct{})

	for _, a := range sorted {
		for _, code := range splitCodes(a.Code) {
			ruleSet[code] = struct{}{}
		}
		fileSet[filepath.ToSlash(a.File)] = struct{}{}
	}

	ruleCodes := make([]string, 0, len(ruleSet))
	for code := range ruleSet {
		ruleCodes = append(ruleCodes, code)
	}
	sort.Strings(ruleCodes)

	for _, code := range ruleCodes {
		info := finding.LookupCode(code)
		rule := run.AddRule(code)
		if info.Title != "" {
			rule.WithShortDescription(sarif.NewMultiformatMessageString().WithText(info.Title))
		}
		if info.Hint != "" {
			rule.WithFullDescription(sarif.NewMultiformatMessageString().WithText(info.Hint))
		}
	}

	files := make([]string, 0, len(fileSet))
	for file := range fileSet {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		run.AddDistinctArtifact(file)
	}

	for _, a := range sorted {
		filePath := filepath.ToSlash(a.File)

		result := sarif.NewRuleResult(splitCodes(a.Code)[0]).
			WithMessage(sarif.NewTextMessage(a.Message)).
			WithLevel(severityToSARIFLevel(a.Severity))

		region := sarif.NewRegion().
			WithStartLine(a.Line)
		if a.StartCol >= 0 {
			region.WithStartColumn(a.StartCol + 1) // SARIF uses 1-based columns
		}
		if a.EndCol > a.StartCol {
			region.WithEndColumn(a.EndCol + 1)
		}

		physicalLocation := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewSimpleArtifactLocation(filePath)).
			WithRegion(region)

		result.WithLocations([]*sarif.Location{
			sarif.NewLocationWithPhysicalLocation(physicalLocation),
		})

		run.AddResult(result)
	}

	report.AddRun(run)

	// Pretty formatting for readability
	return report.PrettyWrite(r.writer)
}

// splitCodes breaks a comma-joined code list into its components.
// Always returns at least one element.
func splitCodes(code string) []string {
	parts := strings.Split(code, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			codes = append(codes, p)
		}
	}
	if len(codes) == 0 {
		codes = append(codes, finding.CodeUnknown)
	}
	return codes
}

// SARIF severity levels.
const (
	sarifLevelError   = "error"
	sarifLevelWarning = "warning"
	sarifLevelNote    = "note"
)

// severityToSARIFLevel maps Severity to SARIF levels.
// SARIF uses: "error", "warning", "note", "none"
func severityToSARIFLevel(s finding.Severity) string {
	switch s {
	case finding.SeverityError:
		return sarifLevelError
	case finding.SeverityWarning:
		return sarifLevelWarning
	case finding.SeverityInfo, finding.SeverityHint:
		return sarifLevelNote
	default:
		return sarifLevelWarning
	}
}
