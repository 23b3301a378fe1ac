package suppress

import (
	"testing"

	"github.com/edgecheck/edgecheck-go/internal/finding"
	"github.com/edgecheck/edgecheck-go/internal/sourcemap"
)

func TestParseMarker(t *testing.T) {
	content := `# edgecheck: ignore EC001
result = divide(a, b)`
	sm := sourcemap.New([]byte(content))
	result := Parse(sm)

	if len(result.Markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(result.Markers))
	}
	m := result.Markers[0]
	if m.Code != "EC001" {
		t.Errorf("expected code EC001, got %s", m.Code)
	}
	if m.Line != 0 {
		t.Errorf("expected line 0, got %d", m.Line)
	}
	if result.IgnoreFile {
		t.Error("IgnoreFile should be false")
	}
}

func TestParseMarker_NoSpaceAfterColon(t *testing.T) {
	content := `x = 1  # edgecheck:ignore EC002`
	sm := sourcemap.New([]byte(content))
	result := Parse(sm)

	if len(result.Markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(result.Markers))
	}
	if result.Markers[0].Code != "EC002" {
		t.Errorf("expected code EC002, got %s", result.Markers[0].Code)
	}
}

func TestParseIgnoreFile(t *testing.T) {
	content := `# edgecheck: ignore-file
import sys
x = 1`
	sm := sourcemap.New([]byte(content))
	result := Parse(sm)

	if !result.IgnoreFile {
		t.Error("expected IgnoreFile to be true")
	}
	if len(result.Markers) != 0 {
		t.Errorf("expected no markers, got %d", len(result.Markers))
	}
}

func TestParseIgnoreFile_BeyondWindow(t *testing.T) {
	content := `a = 1
b = 2
c = 3
d = 4
e = 5
# edgecheck: ignore-file`
	sm := sourcemap.New([]byte(content))
	result := Parse(sm)

	if result.IgnoreFile {
		t.Error("pragma past the first five lines should not apply")
	}
}

func TestParse_PlainCommentIgnored(t *testing.T) {
	content := `# this mentions edgecheck settings but is not a marker
x = 1`
	sm := sourcemap.New([]byte(content))
	result := Parse(sm)

	if len(result.Markers) != 0 || result.IgnoreFile {
		t.Errorf("expected nothing parsed, got %+v", result)
	}
}

func TestMarkerSuppressesFinding(t *testing.T) {
	m := &Marker{Code: "EC001", Line: 7}

	tests := []struct {
		code string
		line int
		want bool
	}{
		{"EC001", 7, true},   // same line
		{"EC001", 8, true},   // one below
		{"EC001", 9, true},   // two below
		{"EC001", 10, false}, // too far
		{"EC001", 6, false},  // above the marker
		{"EC002", 8, false},  // different code
	}

	for _, tt := range tests {
		if got := m.SuppressesFinding(tt.code, tt.line); got != tt.want {
			t.Errorf("SuppressesFinding(%s, %d) = %v, want %v", tt.code, tt.line, got, tt.want)
		}
	}
}

func TestFilter_SuppressesMatchingCode(t *testing.T) {
	// Finding at 1-based line 10; markers on lines 8, 9, or 10 apply.
	findings := []finding.Finding{
		{File: "a.py", Line: 10, Code: "EC001", Severity: finding.SeverityError},
	}

	for _, markerLine := range []int{7, 8, 9} {
		parsed := &ParseResult{Markers: []Marker{{Code: "EC001", Line: markerLine}}}
		result := Filter(findings, parsed)

		if len(result.Findings) != 0 {
			t.Errorf("marker at 0-based line %d: finding should be suppressed", markerLine)
		}
		if len(result.Suppressed) != 1 {
			t.Errorf("marker at 0-based line %d: expected 1 suppressed", markerLine)
		}
		if len(result.UnusedMarkers) != 0 {
			t.Errorf("marker at 0-based line %d: marker should be used", markerLine)
		}
	}
}

func TestFilter_DifferentCodeNotSuppressed(t *testing.T) {
	findings := []finding.Finding{
		{File: "a.py", Line: 10, Code: "EC002", Severity: finding.SeverityError},
	}
	parsed := &ParseResult{Markers: []Marker{{Code: "EC001", Line: 9}}}
	result := Filter(findings, parsed)

	if len(result.Findings) != 1 {
		t.Error("finding with a different code must survive")
	}
	if len(result.UnusedMarkers) != 1 {
		t.Error("marker should be reported as unused")
	}
}

func TestFilter_IgnoreFile(t *testing.T) {
	findings := []finding.Finding{
		{File: "a.py", Line: 3, Code: "EC001"},
		{File: "a.py", Line: 20, Code: "EC090"},
	}
	parsed := &ParseResult{IgnoreFile: true}
	result := Filter(findings, parsed)

	if len(result.Findings) != 0 {
		t.Errorf("expected all findings suppressed, got %d", len(result.Findings))
	}
	if len(result.Suppressed) != 2 {
		t.Errorf("expected 2 suppressed, got %d", len(result.Suppressed))
	}
}

func TestFilter_FirstMatchWins(t *testing.T) {
	findings := []finding.Finding{
		{File: "a.py", Line: 5, Code: "EC001"},
	}
	parsed := &ParseResult{Markers: []Marker{
		{Code: "EC001", Line: 4},
		{Code: "EC001", Line: 3},
	}}
	result := Filter(findings, parsed)

	if len(result.Suppressed) != 1 {
		t.Fatalf("expected 1 suppressed, got %d", len(result.Suppressed))
	}
	if len(result.UnusedMarkers) != 1 {
		t.Fatalf("expected 1 unused marker, got %d", len(result.UnusedMarkers))
	}
	if result.UnusedMarkers[0].Line != 3 {
		t.Errorf("second marker should be the unused one, got line %d", result.UnusedMarkers[0].Line)
	}
}

func TestFilter_EndToEndFromSource(t *testing.T) {
	content := `def divide(a, b):
    # edgecheck: ignore EC001
    return a / b`
	sm := sourcemap.New([]byte(content))
	parsed := Parse(sm)

	findings := []finding.Finding{
		{File: "a.py", Line: 3, Code: "EC001", Message: "ZeroDivisionError"},
		{File: "a.py", Line: 3, Code: "EC002", Message: "IndexError"},
	}
	result := Filter(findings, parsed)

	if len(result.Findings) != 1 || result.Findings[0].Code != "EC002" {
		t.Errorf("only EC002 should survive, got %+v", result.Findings)
	}
	if len(result.Suppressed) != 1 || result.Suppressed[0].Code != "EC001" {
		t.Errorf("EC001 should be suppressed, got %+v", result.Suppressed)
	}
}
