package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine.BudgetMS != 200 || cfg.Engine.MaxTrials != 24 || cfg.Engine.MaxFindings != 50 {
		t.Errorf("engine defaults = %+v", cfg.Engine)
	}
	if !cfg.Diagnostics.Coalesce {
		t.Error("coalescing should default to enabled")
	}
	if !cfg.QuickFix.OfferSuppressForInfo {
		t.Error("suppress action for info findings should default to enabled")
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %q", cfg.Output.Format)
	}
	if cfg.Engine.TimeoutDuration() != 2*time.Minute {
		t.Errorf("TimeoutDuration = %v", cfg.Engine.TimeoutDuration())
	}
	if cfg.Discovery.MaxFileSize != 1<<20 {
		t.Errorf("Discovery.MaxFileSize = %d, want %d", cfg.Discovery.MaxFileSize, 1<<20)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".edgecheck.toml", `
[engine]
budget-ms = 500
max-trials = 8

[diagnostics]
coalesce = false

[output]
format = "json"

[discovery]
max-file-size = 2048
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Engine.BudgetMS != 500 {
		t.Errorf("BudgetMS = %d, want 500", cfg.Engine.BudgetMS)
	}
	if cfg.Engine.MaxTrials != 8 {
		t.Errorf("MaxTrials = %d, want 8", cfg.Engine.MaxTrials)
	}
	// Unset keys keep defaults
	if cfg.Engine.MaxFindings != 50 {
		t.Errorf("MaxFindings = %d, want default 50", cfg.Engine.MaxFindings)
	}
	if cfg.Diagnostics.Coalesce {
		t.Error("coalesce should be disabled by config file")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Output.Format)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
	if cfg.Discovery.MaxFileSize != 2048 {
		t.Errorf("MaxFileSize = %d, want 2048", cfg.Discovery.MaxFileSize)
	}
}

func TestDiscover_WalksUp(t *testing.T) {
	root := t.TempDir()
	configPath := writeConfig(t, root, "edgecheck.toml", "")

	nested := filepath.Join(root, "pkg", "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(nested, "mod.py")
	if err := os.WriteFile(target, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Discover(target); got != configPath {
		t.Errorf("Discover = %q, want %q", got, configPath)
	}
}

func TestDiscover_DottedNameWins(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "edgecheck.toml", "")
	dotted := writeConfig(t, dir, ".edgecheck.toml", "")

	target := filepath.Join(dir, "mod.py")
	if err := os.WriteFile(target, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Discover(target); got != dotted {
		t.Errorf("Discover = %q, want dotted name %q", got, dotted)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".edgecheck.toml", `
[engine]
budget-ms = 500
`)
	target := filepath.Join(dir, "mod.py")
	if err := os.WriteFile(target, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("EDGECHECK_ENGINE_BUDGET_MS", "900")
	t.Setenv("EDGECHECK_OUTPUT_FORMAT", "sarif")

	cfg, err := Load(target)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.BudgetMS != 900 {
		t.Errorf("BudgetMS = %d, want env override 900", cfg.Engine.BudgetMS)
	}
	if cfg.Output.Format != "sarif" {
		t.Errorf("Format = %q, want sarif", cfg.Output.Format)
	}
}

func TestLoadWithOverrides_HighestPriority(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".edgecheck.toml", `
[output]
format = "json"
`)
	target := filepath.Join(dir, "mod.py")
	if err := os.WriteFile(target, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("EDGECHECK_OUTPUT_FORMAT", "sarif")

	cfg, err := LoadWithOverrides(target, map[string]any{
		"output": map[string]any{"format": "text"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Format = %q, overrides must win over env and file", cfg.Output.Format)
	}
}

func TestEnvKeyTransform_UnknownTopLevelDropped(t *testing.T) {
	key, _ := envKeyTransform("EDGECHECK_PATH", "x")
	if key != "" {
		t.Errorf("unknown top-level env key should be dropped, got %q", key)
	}

	key, _ = envKeyTransform("EDGECHECK_ENGINE_MAX_TRIALS", "12")
	if key != "engine.max-trials" {
		t.Errorf("key = %q, want engine.max-trials", key)
	}
}

func TestTimeoutDuration_Invalid(t *testing.T) {
	e := EngineConfig{Timeout: "not-a-duration"}
	if d := e.TimeoutDuration(); d != 0 {
		t.Errorf("TimeoutDuration = %v, want 0 for invalid input", d)
	}
}
