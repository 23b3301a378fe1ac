package finding

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// Repro captures the argument vector that reproduced a crash.
type Repro struct {
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

// Finding is one reported potential crash or edge case, produced by the
// external analysis engine. Positional fields arrive untrusted: lines may be
// zero or negative, column spans may be inverted or absent. Consumers must
// call Normalize before relying on them.
type Finding struct {
	// File is the target path, relative or absolute.
	File string `json:"file"`

	// Function is the enclosing function name (optional, used in fix titles).
	Function string `json:"function,omitempty"`

	// ParamNames lists the function's parameter names in order (optional).
	ParamNames []string `json:"param_names,omitempty"`

	// Line is the 1-based source line. Zero or missing is clamped to 1.
	Line int `json:"line"`

	// StartCol and EndCol delimit a 0-based half-open column span.
	StartCol int `json:"start_col"`
	EndCol   int `json:"end_col"`

	// Kind distinguishes crash classes (e.g. "Crash", "Timeout").
	Kind string `json:"kind,omitempty"`

	// Code is the category identifier (e.g. "EC001"). Empty defaults to EC999.
	Code string `json:"code"`

	// Title is the human-readable category summary.
	Title string `json:"title,omitempty"`

	// Severity defaults to warning when absent or unparseable.
	Severity Severity `json:"severity"`

	// Message holds the exception text. May be empty.
	Message string `json:"message"`

	// Hint suggests a remediation (optional).
	Hint string `json:"hint,omitempty"`

	// Repro holds the reproducing argument vector (optional).
	Repro *Repro `json:"repro,omitempty"`

	// Stack is the engine-captured traceback (optional).
	Stack string `json:"stack,omitempty"`
}

// rawFinding mirrors Finding but tolerates malformed severity strings:
// unknown values must coerce to warning, not abort the decode.
type rawFinding struct {
	File       string   `json:"file"`
	Function   string   `json:"function"`
	ParamNames []string `json:"param_names"`
	Line       int      `json:"line"`
	StartCol   int      `json:"start_col"`
	EndCol     int      `json:"end_col"`
	Kind       string   `json:"kind"`
	Code       string   `json:"code"`
	Title      string   `json:"title"`
	Severity   string   `json:"severity"`
	Message    string   `json:"message"`
	Hint       string   `json:"hint"`
	Repro      *Repro   `json:"repro"`
	Stack      string   `json:"stack"`
}

// UnmarshalJSON implements json.Unmarshaler. Field-level errors are absorbed
// by coercion; only structurally invalid JSON fails.
func (f *Finding) UnmarshalJSON(data []byte) error {
	var raw rawFinding
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sev := SeverityWarning
	if raw.Severity != "" {
		if parsed, err := ParseSeverity(raw.Severity); err == nil {
			sev = parsed
		}
	}
	*f = Finding{
		File:       raw.File,
		Function:   raw.Function,
		ParamNames: raw.ParamNames,
		Line:       raw.Line,
		StartCol:   raw.StartCol,
		EndCol:     raw.EndCol,
		Kind:       raw.Kind,
		Code:       raw.Code,
		Title:      raw.Title,
		Severity:   sev,
		Message:    raw.Message,
		Hint:       raw.Hint,
		Repro:      raw.Repro,
		Stack:      raw.Stack,
	}
	return nil
}

// Normalize clamps positional fields into canonical form. It never fails:
// malformed numeric fields are coerced, never rejected.
//
//	line      = max(1, line)
//	start_col = max(0, start_col)
//	end_col   = max(start_col+1, end_col)
//
// An empty code defaults to EC999; an empty title is filled from the code
// registry.
func (f Finding) Normalize() Finding {
	if f.Line < 1 {
		f.Line = 1
	}
	if f.StartCol < 0 {
		f.StartCol = 0
	}
	if f.EndCol < f.StartCol+1 {
		f.EndCol = f.StartCol + 1
	}
	if f.Code == "" {
		f.Code = CodeUnknown
	}
	if f.Title == "" {
		f.Title = LookupCode(f.Code).Title
	}
	return f
}

// DedupKey identifies a finding for per-cycle deduplication. Two findings
// identical in (line, start_col, end_col, code, message) count once.
func (f Finding) DedupKey() string {
	return fmt.Sprintf("%d:%d:%d:%s:%s", f.Line, f.StartCol, f.EndCol, f.Code, f.Message)
}

// AbsFile returns the finding's file as a cleaned absolute path.
// Relative paths resolve against the working directory.
func (f Finding) AbsFile() string {
	abs, err := filepath.Abs(f.File)
	if err != nil {
		return filepath.Clean(f.File)
	}
	return abs
}

// Report is the engine's top-level output document.
type Report struct {
	Version  string    `json:"version"`
	Findings []Finding `json:"findings"`
}

// ParseReport decodes an engine output document. An absent findings array
// yields an empty slice, never nil propagating to downstream consumers.
func ParseReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode engine report: %w", err)
	}
	if r.Findings == nil {
		r.Findings = []Finding{}
	}
	return &r, nil
}
