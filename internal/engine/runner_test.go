package engine

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test engine stub requires sh")
	}
}

func stubRunner(script string) *Runner {
	return NewRunner(Options{
		Command: []string{"sh", "-c", script, "sh"},
		Timeout: 10 * time.Second,
	})
}

func TestScan(t *testing.T) {
	skipWithoutShell(t)

	// The stub ignores its CLI args and prints a fixed report.
	r := stubRunner(`echo '{"version":"0.1.0","findings":[{"file":"a.py","line":3,"start_col":0,"end_col":5,"code":"EC001","severity":"error","message":"ZeroDivisionError"}]}'`)

	report, err := r.Scan(context.Background(), "a.py")
	if err != nil {
		t.Fatal(err)
	}
	if report.Version != "0.1.0" {
		t.Errorf("Version = %q", report.Version)
	}
	if len(report.Findings) != 1 || report.Findings[0].Code != "EC001" {
		t.Errorf("Findings = %+v", report.Findings)
	}
}

func TestScan_MissingFindingsArray(t *testing.T) {
	skipWithoutShell(t)

	r := stubRunner(`echo '{"version":"0.1.0"}'`)
	report, err := r.Scan(context.Background(), "a.py")
	if err != nil {
		t.Fatal(err)
	}
	if report.Findings == nil {
		t.Error("absent findings must decode as empty slice, not nil")
	}
	if len(report.Findings) != 0 {
		t.Errorf("expected no findings, got %d", len(report.Findings))
	}
}

func TestScan_NonJSONOutput(t *testing.T) {
	skipWithoutShell(t)

	r := stubRunner(`echo 'Traceback (most recent call last):'`)
	_, err := r.Scan(context.Background(), "a.py")

	var rerr *RunnerError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RunnerError, got %v", err)
	}
}

func TestScan_EngineCrash(t *testing.T) {
	skipWithoutShell(t)

	r := stubRunner(`echo 'boom' >&2; exit 3`)
	_, err := r.Scan(context.Background(), "a.py")

	var rerr *RunnerError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RunnerError, got %v", err)
	}
	if rerr.ExitCode == nil || *rerr.ExitCode != 3 {
		t.Errorf("ExitCode = %v, want 3", rerr.ExitCode)
	}
	if !strings.Contains(rerr.Stderr, "boom") {
		t.Errorf("Stderr tail %q should contain engine output", rerr.Stderr)
	}
}

func TestRunnerError_Error(t *testing.T) {
	code := 2
	err := &RunnerError{
		Op:       "engine scan",
		Err:      errors.New("exec failed"),
		ExitCode: &code,
		Stderr:   "  trace line\n",
	}

	msg := err.Error()
	for _, want := range []string{"engine scan:", "exec failed", "(exit=2)", "trace line"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestTailBuffer(t *testing.T) {
	b := newTailBuffer(8)
	if _, err := b.Write([]byte("0123456789abcdef")); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "89abcdef" {
		t.Errorf("String() = %q, want last 8 bytes", got)
	}
}

func TestTailBuffer_ZeroLimit(t *testing.T) {
	b := newTailBuffer(0)
	if _, err := b.Write([]byte("dropped")); err != nil {
		t.Fatal(err)
	}
	if b.String() != "" {
		t.Errorf("String() = %q, want empty", b.String())
	}
}
