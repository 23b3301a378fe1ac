// Package config provides configuration loading and discovery for edgecheck.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags / editor overrides
//  2. Environment variables (EDGECHECK_* prefix)
//  3. Config file (closest .edgecheck.toml or edgecheck.toml)
//  4. Built-in defaults
//
// Config file discovery follows a cascading pattern similar to Ruff:
// starting from the target file's directory, walk up the filesystem
// until a config file is found. The closest config wins (no merging).
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".edgecheck.toml", "edgecheck.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "EDGECHECK_"

// Config represents the complete edgecheck configuration.
type Config struct {
	// Engine configures the external analysis engine invocation.
	Engine EngineConfig `json:"engine" koanf:"engine"`

	// Diagnostics configures annotation building.
	Diagnostics DiagnosticsConfig `json:"diagnostics" koanf:"diagnostics"`

	// QuickFix configures proposed-edit synthesis.
	QuickFix QuickFixConfig `json:"quickfix" koanf:"quickfix"`

	// Output configures output format and destination.
	Output OutputConfig `json:"output" koanf:"output"`

	// Discovery configures Python file discovery.
	Discovery DiscoveryConfig `json:"discovery" koanf:"discovery"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `json:"-" koanf:"-"`
}

// EngineConfig configures the external analysis engine.
//
// Example TOML configuration:
//
//	[engine]
//	command = ["python3", "-m", "edgecheck"]
//	budget-ms = 200
//	max-trials = 24
//	max-findings = 50
//	timeout = "2m"
type EngineConfig struct {
	// Command is the engine argv prefix.
	Command []string `json:"command,omitempty" koanf:"command"`

	// BudgetMS is the per-function analysis budget in milliseconds.
	BudgetMS int `json:"budget-ms,omitempty" koanf:"budget-ms"`

	// MaxTrials caps input-generation trials per function.
	MaxTrials int `json:"max-trials,omitempty" koanf:"max-trials"`

	// MaxFindings caps findings per run.
	MaxFindings int `json:"max-findings,omitempty" koanf:"max-findings"`

	// Timeout bounds a whole engine invocation (e.g. "2m").
	// Parsed with time.ParseDuration at runtime.
	Timeout string `json:"timeout,omitempty" koanf:"timeout"`
}

// TimeoutDuration parses the configured timeout, zero when unset or invalid.
func (e EngineConfig) TimeoutDuration() time.Duration {
	if e.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// DiagnosticsConfig configures annotation building.
//
// Example TOML configuration:
//
//	[diagnostics]
//	coalesce = true
type DiagnosticsConfig struct {
	// Coalesce merges same-line, same-severity findings with touching
	// column spans into single annotations.
	Coalesce bool `json:"coalesce,omitempty" koanf:"coalesce"`
}

// QuickFixConfig configures proposed-edit synthesis.
//
// Example TOML configuration:
//
//	[quickfix]
//	offer-suppress-for-info = true
type QuickFixConfig struct {
	// OfferSuppressForInfo keeps the "suppress this code" action available
	// for info findings, which never get guard edits.
	OfferSuppressForInfo bool `json:"offer-suppress-for-info,omitempty" koanf:"offer-suppress-for-info"`
}

// OutputConfig configures output formatting and behavior.
type OutputConfig struct {
	// Format specifies the output format: text, json, or sarif.
	Format string `json:"format,omitempty" koanf:"format"`

	// Path specifies where to write output.
	Path string `json:"path,omitempty" koanf:"path"`

	// FailSeverity sets the minimum severity that causes a non-zero exit code.
	FailSeverity string `json:"fail-severity,omitempty" koanf:"fail-severity"`
}

// DiscoveryConfig configures Python file discovery.
//
// Example TOML configuration:
//
//	[discovery]
//	include = ["**/*.py"]
//	exclude = ["**/venv/**", "**/__pycache__/**"]
type DiscoveryConfig struct {
	// Include lists glob patterns for files to scan.
	Include []string `json:"include,omitempty" koanf:"include"`

	// Exclude lists glob patterns removed from the include set.
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`

	// MaxFileSize is the largest file, in bytes, handed to the engine.
	// Files over the limit are skipped with a warning. Zero disables
	// the check.
	MaxFileSize int64 `json:"max-file-size,omitempty" koanf:"max-file-size"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Command:     []string{"python3", "-m", "edgecheck"},
			BudgetMS:    200,
			MaxTrials:   24,
			MaxFindings: 50,
			Timeout:     "2m",
		},
		Diagnostics: DiagnosticsConfig{
			Coalesce: true,
		},
		QuickFix: QuickFixConfig{
			OfferSuppressForInfo: true,
		},
		Output: OutputConfig{
			Format:       "text",
			Path:         "stdout",
			FailSeverity: "warning",
		},
		Discovery: DiscoveryConfig{
			Include: []string{"**/*.py"},
			Exclude: []string{
				"**/venv/**",
				"**/.venv/**",
				"**/__pycache__/**",
				"**/node_modules/**",
				"**/.git/**",
				"**/dist/**",
				"**/build/**",
			},
			MaxFileSize: 1 << 20,
		},
	}
}

// Load loads configuration for a target file path.
// It discovers the closest config file, loads it, and applies
// environment variable overrides.
func Load(targetPath string) (*Config, error) {
	return loadWithConfigPath(Discover(targetPath), nil)
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithConfigPath(configPath, nil)
}

// LoadFromFileWithOverrides is LoadFromFile plus an overrides map applied
// on top of every other source.
func LoadFromFileWithOverrides(configPath string, overrides map[string]any) (*Config, error) {
	return loadWithConfigPath(configPath, overrides)
}

// LoadWithOverrides loads configuration for a target file path with an
// optional overrides map applied on top of every other source. Overrides
// use the same nested shape as the TOML config file, for example:
//
//	overrides := map[string]any{
//	  "output": map[string]any{"format": "json"},
//	  "diagnostics": map[string]any{"coalesce": false},
//	}
func LoadWithOverrides(targetPath string, overrides map[string]any) (*Config, error) {
	return loadWithConfigPath(Discover(targetPath), overrides)
}

// loadWithConfigPath layers defaults, the config file, environment
// variables, and overrides in ascending priority.
func loadWithConfigPath(configPath string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	// 2. Load config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// 3. Load environment variables (EDGECHECK_* prefix)
	// EDGECHECK_ENGINE_BUDGET_MS -> engine.budget-ms
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, err
	}

	// 4. Load CLI / editor overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.ConfigFile = configPath
	return cfg, nil
}

// knownHyphenatedKeys maps dot-separated patterns to their hyphenated
// equivalents. Add new entries here when adding hyphenated config keys.
var knownHyphenatedKeys = map[string]string{
	"budget.ms":               "budget-ms",
	"max.trials":              "max-trials",
	"max.findings":            "max-findings",
	"fail.severity":           "fail-severity",
	"max.file.size":           "max-file-size",
	"offer.suppress.for.info": "offer-suppress-for-info",
}

var allowedEnvTopLevelKeys = map[string]struct{}{
	"engine":      {},
	"diagnostics": {},
	"quickfix":    {},
	"output":      {},
	"discovery":   {},
}

// envKeyTransform converts environment variable names to config keys.
// EDGECHECK_OUTPUT_FORMAT -> output.format
// EDGECHECK_ENGINE_BUDGET_MS -> engine.budget-ms
func envKeyTransform(k, v string) (string, any) {
	s := strings.TrimPrefix(k, EnvPrefix)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	for pattern, replacement := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, pattern, replacement)
	}

	topLevel := s
	if before, _, ok := strings.Cut(s, "."); ok {
		topLevel = before
	}
	if _, ok := allowedEnvTopLevelKeys[topLevel]; !ok {
		return "", nil
	}

	return s, v
}

// Discover finds the closest config file for a target file path.
// It walks up the directory tree from the target's directory,
// checking for config files at each level.
// Returns empty string if no config file is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}

	dir := absPath
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
