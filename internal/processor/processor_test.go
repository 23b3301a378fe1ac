package processor

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/edgecheck/edgecheck-go/internal/finding"
)

func testContext(sources map[string]string) *Context {
	fileSources := make(map[string][]byte, len(sources))
	for name, content := range sources {
		fileSources[name] = []byte(content)
	}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewContext(fileSources, logger)
}

func TestNormalization(t *testing.T) {
	p := NewNormalization()
	findings := []finding.Finding{
		{File: "a.py", Line: 0, StartCol: -3, EndCol: -1, Code: ""},
	}

	result := p.Process(findings, testContext(nil))
	if len(result) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(result))
	}
	f := result[0]
	if f.Line != 1 {
		t.Errorf("Line = %d, want 1", f.Line)
	}
	if f.StartCol != 0 {
		t.Errorf("StartCol = %d, want 0", f.StartCol)
	}
	if f.EndCol != 1 {
		t.Errorf("EndCol = %d, want 1", f.EndCol)
	}
	if f.Code != finding.CodeUnknown {
		t.Errorf("Code = %q, want %q", f.Code, finding.CodeUnknown)
	}
}

func TestSuppressionFilter(t *testing.T) {
	ctx := testContext(map[string]string{
		"a.py": "def divide(a, b):\n    # edgecheck: ignore EC001\n    return a / b\n",
	})
	p := NewSuppressionFilter()

	findings := []finding.Finding{
		{File: "a.py", Line: 3, Code: "EC001"},
		{File: "a.py", Line: 3, Code: "EC002"},
	}
	result := p.Process(findings, ctx)

	if len(result) != 1 || result[0].Code != "EC002" {
		t.Errorf("expected only EC002 to survive, got %+v", result)
	}
	if len(p.Suppressed) != 1 || p.Suppressed[0].Code != "EC001" {
		t.Errorf("expected EC001 recorded as suppressed, got %+v", p.Suppressed)
	}
}

func TestSuppressionFilter_UnreadableFile(t *testing.T) {
	ctx := testContext(nil)
	p := NewSuppressionFilter()

	findings := []finding.Finding{
		{File: "/nonexistent/missing.py", Line: 3, Code: "EC001"},
	}
	result := p.Process(findings, ctx)

	// Missing source: treat as not suppressed, never fail.
	if len(result) != 1 {
		t.Errorf("expected finding to pass through, got %d findings", len(result))
	}
}

func TestDeduplication(t *testing.T) {
	p := NewDeduplication()
	findings := []finding.Finding{
		{File: "a.py", Line: 3, StartCol: 0, EndCol: 5, Code: "EC001", Message: "ZeroDivisionError"},
		{File: "a.py", Line: 3, StartCol: 0, EndCol: 5, Code: "EC001", Message: "ZeroDivisionError"},
		{File: "a.py", Line: 3, StartCol: 0, EndCol: 5, Code: "EC001", Message: "different"},
		{File: "b.py", Line: 3, StartCol: 0, EndCol: 5, Code: "EC001", Message: "ZeroDivisionError"},
	}

	result := p.Process(findings, testContext(nil))
	if len(result) != 3 {
		t.Errorf("expected 3 findings after dedup, got %d", len(result))
	}
}

func TestDeduplication_PathSpellings(t *testing.T) {
	p := NewDeduplication()
	findings := []finding.Finding{
		{File: "a.py", Line: 3, StartCol: 0, EndCol: 5, Code: "EC001", Message: "ZeroDivisionError"},
		{File: "./a.py", Line: 3, StartCol: 0, EndCol: 5, Code: "EC001", Message: "ZeroDivisionError"},
		{File: "sub/../a.py", Line: 3, StartCol: 0, EndCol: 5, Code: "EC001", Message: "ZeroDivisionError"},
	}

	result := p.Process(findings, testContext(nil))
	if len(result) != 1 {
		t.Errorf("expected one finding across path spellings, got %d", len(result))
	}
	if result[0].File != "a.py" {
		t.Errorf("kept File = %q, want first occurrence", result[0].File)
	}
}

func TestSorting(t *testing.T) {
	p := NewSorting()
	findings := []finding.Finding{
		{File: "b.py", Line: 1, StartCol: 0, Code: "EC001"},
		{File: "a.py", Line: 9, StartCol: 4, Code: "EC002"},
		{File: "a.py", Line: 9, StartCol: 4, Code: "EC001"},
		{File: "a.py", Line: 2, StartCol: 0, Code: "EC090"},
	}

	result := p.Process(findings, testContext(nil))
	want := []struct {
		file string
		line int
		code string
	}{
		{"a.py", 2, "EC090"},
		{"a.py", 9, "EC001"},
		{"a.py", 9, "EC002"},
		{"b.py", 1, "EC001"},
	}
	for i, w := range want {
		got := result[i]
		if got.File != w.file || got.Line != w.line || got.Code != w.code {
			t.Errorf("result[%d] = %s:%d %s, want %s:%d %s",
				i, got.File, got.Line, got.Code, w.file, w.line, w.code)
		}
	}
}

func TestStandardChain(t *testing.T) {
	ctx := testContext(map[string]string{
		"a.py": "x = 1\n# edgecheck: ignore EC090\ny = parse(x)\n",
	})

	findings := []finding.Finding{
		{File: "a.py", Line: 0, StartCol: -1, EndCol: 0, Code: "EC001", Message: "ZeroDivisionError"},
		{File: "a.py", Line: 1, StartCol: 0, EndCol: 1, Code: "EC001", Message: "ZeroDivisionError"},
		{File: "a.py", Line: 3, StartCol: 0, EndCol: 4, Code: "EC090", Message: "ValueError"},
	}

	result := Standard().Process(findings, ctx)

	// First finding normalizes to line 1 col [0,1) and merges with the
	// second via dedup; the EC090 finding is suppressed by the marker.
	if len(result) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(result), result)
	}
	if result[0].Code != "EC001" || result[0].Line != 1 {
		t.Errorf("unexpected survivor: %+v", result[0])
	}
}
