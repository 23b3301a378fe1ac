package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/edgecheck/edgecheck-go/internal/config"
	"github.com/edgecheck/edgecheck-go/internal/diagnostics"
	"github.com/edgecheck/edgecheck-go/internal/finding"
)

func TestDetermineExitCode(t *testing.T) {
	t.Parallel()
	warn := []diagnostics.Annotation{{Severity: finding.SeverityWarning}}
	info := []diagnostics.Annotation{{Severity: finding.SeverityInfo}}

	assert.Equal(t, ExitFindings, determineExitCode(warn, "warning"))
	assert.Equal(t, ExitSuccess, determineExitCode(info, "warning"))
	assert.Equal(t, ExitFindings, determineExitCode(info, "info"))
	assert.Equal(t, ExitSuccess, determineExitCode(warn, "error"))
	assert.Equal(t, ExitSuccess, determineExitCode(warn, "none"))
	assert.Equal(t, ExitSuccess, determineExitCode(nil, "warning"))
}

func TestDefaultConfigTOMLRoundTrip(t *testing.T) {
	data, err := defaultConfigTOML()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), ".edgecheck.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	def := config.Default()
	assert.Equal(t, def.Engine.BudgetMS, cfg.Engine.BudgetMS)
	assert.Equal(t, def.Engine.Command, cfg.Engine.Command)
	assert.Equal(t, def.Diagnostics.Coalesce, cfg.Diagnostics.Coalesce)
	assert.Equal(t, def.Output.FailSeverity, cfg.Output.FailSeverity)
	assert.Equal(t, def.Discovery.Include, cfg.Discovery.Include)
}

// stubEngine writes a shell script that emits a canned engine report,
// ignoring its arguments.
func stubEngine(t *testing.T, report string) string {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "engine.sh")
	content := "#!/bin/sh\ncat <<'EOF'\n" + report + "\nEOF\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))
	return script
}

func TestScanCommandEndToEnd(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "math.py")
	require.NoError(t, os.WriteFile(target, []byte("def div(a, b):\n    return a / b\n"), 0o644))

	report := `{"version":"0.1.0","findings":[{"file":"` + target +
		`","line":2,"start_col":11,"end_col":16,"code":"EC001","severity":"error","message":"ZeroDivisionError: division by zero"}]}`
	script := stubEngine(t, report)

	out := filepath.Join(dir, "out.json")
	app := NewApp()

	err := app.Run(t.Context(), []string{
		"edgecheck", "scan",
		"--engine-command", "/bin/sh " + script,
		"--format", "json",
		"--output", out,
		"--fail-severity", "none",
		target,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var decoded struct {
		Files []struct {
			File        string `json:"file"`
			Annotations []struct {
				Code string `json:"code"`
				Line int    `json:"line"`
			} `json:"annotations"`
		} `json:"files"`
		Summary struct {
			Total  int `json:"total"`
			Errors int `json:"errors"`
		} `json:"summary"`
		FilesScanned  int    `json:"files_scanned"`
		EngineVersion string `json:"engine_version"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, 1, decoded.FilesScanned)
	assert.Equal(t, "0.1.0", decoded.EngineVersion)
	require.Len(t, decoded.Files, 1)
	require.Len(t, decoded.Files[0].Annotations, 1)
	assert.Equal(t, "EC001", decoded.Files[0].Annotations[0].Code)
	assert.Equal(t, 2, decoded.Files[0].Annotations[0].Line)
	assert.Equal(t, 1, decoded.Summary.Errors)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestFixFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "math.py")
	require.NoError(t, os.WriteFile(target, []byte("def div(a, b):\n    return a / b\n"), 0o644))

	findings := []finding.Finding{
		{
			File: target, Function: "div", ParamNames: []string{"a", "b"},
			Line: 2, StartCol: 11, EndCol: 16,
			Code: "EC001", Severity: finding.SeverityError,
			Message: "ZeroDivisionError: division by zero",
		},
		// Same insertion point from a second trial; must not double-guard.
		{
			File: target, Function: "div", ParamNames: []string{"a", "b"},
			Line: 2, StartCol: 11, EndCol: 16,
			Code: "EC001", Severity: finding.SeverityError,
			Message: "ZeroDivisionError: division by zero",
		},
	}

	applied, err := fixFile(target, findings, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "    if b == 0:\n        raise ValueError")
	assert.NotContains(t, string(content), "# edgecheck: ignore",
		"suppress markers are interactive-only")
}

func TestFixFile_SuppressedFindingSkipped(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "math.py")
	source := "def div(a, b):\n    # edgecheck: ignore EC001\n    return a / b\n"
	require.NoError(t, os.WriteFile(target, []byte(source), 0o644))

	findings := []finding.Finding{
		{
			File: target, Function: "div", ParamNames: []string{"a", "b"},
			Line: 3, StartCol: 11, EndCol: 16,
			Code: "EC001", Severity: finding.SeverityError,
			Message: "ZeroDivisionError: division by zero",
		},
	}

	applied, err := fixFile(target, findings, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, source, string(content))
}

func TestScanCommandFixFlag(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "math.py")
	require.NoError(t, os.WriteFile(target, []byte("def div(a, b):\n    return a / b\n"), 0o644))

	report := `{"version":"0.1.0","findings":[{"file":"` + target +
		`","function":"div","param_names":["a","b"],"line":2,"start_col":11,"end_col":16,` +
		`"code":"EC001","severity":"error","message":"ZeroDivisionError: division by zero"}]}`
	script := stubEngine(t, report)

	out := filepath.Join(dir, "out.json")
	err := NewApp().Run(t.Context(), []string{
		"edgecheck", "scan",
		"--engine-command", "/bin/sh " + script,
		"--fix",
		"--format", "json",
		"--output", out,
		"--fail-severity", "none",
		target,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "    if b == 0:")
}

// captureExit redirects cli.Exit's process-exit path into a recorded code
// for tests exercising failure exits in-process.
func captureExit(t *testing.T) *int {
	t.Helper()
	code := -1
	prev := cli.OsExiter
	cli.OsExiter = func(c int) { code = c }
	t.Cleanup(func() { cli.OsExiter = prev })
	return &code
}

func TestScanCommandNoFiles(t *testing.T) {
	exitCode := captureExit(t)
	dir := t.TempDir()

	_ = NewApp().Run(t.Context(), []string{"edgecheck", "scan", dir})
	assert.Equal(t, ExitNoFiles, *exitCode)
}

func TestScanCommandMissingPath(t *testing.T) {
	exitCode := captureExit(t)
	missing := filepath.Join(t.TempDir(), "typo.py")

	_ = NewApp().Run(t.Context(), []string{"edgecheck", "scan", missing})
	assert.Equal(t, ExitConfigError, *exitCode)
}

func TestInitCommand(t *testing.T) {
	exitCode := captureExit(t)
	dir := t.TempDir()

	require.NoError(t, NewApp().Run(t.Context(), []string{"edgecheck", "init", dir}))

	path := filepath.Join(dir, ".edgecheck.toml")
	_, err := os.Stat(path)
	require.NoError(t, err)

	// Refuses to overwrite without --force
	_ = NewApp().Run(t.Context(), []string{"edgecheck", "init", dir})
	assert.Equal(t, ExitConfigError, *exitCode)

	*exitCode = -1
	require.NoError(t, NewApp().Run(t.Context(), []string{"edgecheck", "init", "--force", dir}))
	assert.Equal(t, -1, *exitCode)
}
