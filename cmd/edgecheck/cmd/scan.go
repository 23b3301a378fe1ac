package cmd

import (
	stdcontext "context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/edgecheck/edgecheck-go/internal/config"
	"github.com/edgecheck/edgecheck-go/internal/diagnostics"
	"github.com/edgecheck/edgecheck-go/internal/discovery"
	"github.com/edgecheck/edgecheck-go/internal/engine"
	"github.com/edgecheck/edgecheck-go/internal/fileval"
	"github.com/edgecheck/edgecheck-go/internal/finding"
	"github.com/edgecheck/edgecheck-go/internal/processor"
	"github.com/edgecheck/edgecheck-go/internal/quickfix"
	"github.com/edgecheck/edgecheck-go/internal/reporter"
	"github.com/edgecheck/edgecheck-go/internal/sourcemap"
	"github.com/edgecheck/edgecheck-go/internal/version"
)

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Scan Python file(s) with the fuzzing engine",
		ArgsUsage: "[PATH...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: auto-discover)",
			},
			&cli.StringFlag{
				Name:    "engine-command",
				Usage:   "Engine argv prefix (e.g. \"python3 -m edgecheck\")",
				Sources: cli.EnvVars("EDGECHECK_ENGINE_COMMAND"),
			},
			&cli.IntFlag{
				Name:    "budget-ms",
				Usage:   "Per-function analysis budget in milliseconds",
				Sources: cli.EnvVars("EDGECHECK_ENGINE_BUDGET_MS"),
			},
			&cli.IntFlag{
				Name:    "max-trials",
				Usage:   "Maximum input-generation trials per function",
				Sources: cli.EnvVars("EDGECHECK_ENGINE_MAX_TRIALS"),
			},
			&cli.IntFlag{
				Name:    "max-findings",
				Usage:   "Maximum findings per engine run",
				Sources: cli.EnvVars("EDGECHECK_ENGINE_MAX_FINDINGS"),
			},
			&cli.StringFlag{
				Name:    "timeout",
				Usage:   "Whole-invocation engine timeout (e.g. 2m)",
				Sources: cli.EnvVars("EDGECHECK_ENGINE_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:  "fix",
				Usage: "Insert suggested guard statements into the scanned files, then rescan",
			},
			&cli.BoolFlag{
				Name:    "no-coalesce",
				Usage:   "Report each finding separately instead of merging overlapping spans",
				Sources: cli.EnvVars("EDGECHECK_DIAGNOSTICS_NO_COALESCE"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, sarif",
				Sources: cli.EnvVars("EDGECHECK_OUTPUT_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path: stdout, stderr, or file path",
				Sources: cli.EnvVars("EDGECHECK_OUTPUT_PATH"),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
			&cli.BoolFlag{
				Name:  "hide-source",
				Usage: "Hide source code snippets",
			},
			&cli.StringFlag{
				Name:    "fail-severity",
				Usage:   "Minimum severity to cause non-zero exit: error, warning, info, hint, none",
				Sources: cli.EnvVars("EDGECHECK_OUTPUT_FAIL_SEVERITY"),
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Usage:   "Glob pattern to exclude files (can be repeated)",
				Sources: cli.EnvVars("EDGECHECK_EXCLUDE"),
			},
		},
		Action: runScan,
	}
}

// runScan is the action handler for the scan command.
func runScan(ctx stdcontext.Context, cmd *cli.Command) error {
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	cfg, err := loadScanConfig(cmd, inputs[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	discovered, err := discovery.Discover(inputs, discovery.Options{
		Patterns:        cfg.Discovery.Include,
		ExcludePatterns: append(cfg.Discovery.Exclude, cmd.StringSlice("exclude")...),
	})
	if err != nil {
		var notFound *discovery.FileNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", notFound)
		} else {
			fmt.Fprintf(os.Stderr, "Error: failed to discover files: %v\n", err)
		}
		return cli.Exit("", ExitConfigError)
	}
	if len(discovered) == 0 {
		reportNoFilesFound(inputs)
		return cli.Exit("", ExitNoFiles)
	}

	logger := logrus.StandardLogger()

	valid := discovered[:0]
	for _, df := range discovered {
		if err := fileval.ValidateFile(df.Path, cfg.Discovery.MaxFileSize); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", df.Path, err)
			continue
		}
		valid = append(valid, df)
	}
	discovered = valid
	if len(discovered) == 0 {
		reportNoFilesFound(inputs)
		return cli.Exit("", ExitNoFiles)
	}

	runner := engine.NewRunner(engine.Options{
		Command:     cfg.Engine.Command,
		BudgetMS:    cfg.Engine.BudgetMS,
		MaxTrials:   cfg.Engine.MaxTrials,
		MaxFindings: cfg.Engine.MaxFindings,
		Timeout:     cfg.Engine.TimeoutDuration(),
		Logger:      logger,
	})
	store := diagnostics.NewStore(cfg.Diagnostics.Coalesce, logger)

	sources := make(map[string][]byte)
	engineVersion := ""
	scanErrors := 0
	fixedEdits := 0
	fixedFiles := 0

	for _, df := range discovered {
		report, scanErr := runner.Scan(ctx, df.Path)
		if scanErr != nil {
			fmt.Fprintf(os.Stderr, "Error: scan failed for %s: %v\n", df.Path, scanErr)
			scanErrors++
			continue
		}

		if cmd.Bool("fix") {
			applied, fixErr := fixFile(df.Path, report.Findings, logger)
			if fixErr != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to apply fixes to %s: %v\n", df.Path, fixErr)
				scanErrors++
				continue
			}
			if applied > 0 {
				fixedEdits += applied
				fixedFiles++
				// Guards shift line numbers, so the findings from the
				// pre-fix scan no longer match the file on disk.
				report, scanErr = runner.Scan(ctx, df.Path)
				if scanErr != nil {
					fmt.Fprintf(os.Stderr, "Error: rescan failed for %s: %v\n", df.Path, scanErr)
					scanErrors++
					continue
				}
			}
		}

		if report.Version != "" {
			engineVersion = report.Version
		}

		if content, readErr := os.ReadFile(df.Path); readErr == nil {
			sources[df.Path] = content
			sources[absPath(df.Path)] = content
		}

		store.Publish(report.Findings, sources)
	}

	if scanErrors == len(discovered) {
		return cli.Exit("", ExitConfigError)
	}

	if fixedEdits > 0 {
		fmt.Fprintf(os.Stderr, "Fixed %d issue(s) in %d file(s)\n", fixedEdits, fixedFiles)
	}

	var annotations []diagnostics.Annotation
	for _, file := range store.Files() {
		annotations = append(annotations, store.ForFile(file)...)
	}

	metadata := reporter.ReportMetadata{
		FilesScanned:  len(discovered) - scanErrors,
		EngineVersion: engineVersion,
	}

	return writeReport(cmd, cfg, annotations, reportSources(sources, annotations), metadata)
}

// fixFile inserts guard edits for a file's findings and writes the result
// back in place. Findings run through the standard chain first, so
// suppressed or duplicate findings never produce edits. Suppress-marker
// edits are interactive-only and are never applied here. Returns the
// number of applied edits; the write is all-or-nothing.
func fixFile(path string, findings []finding.Finding, logger logrus.FieldLogger) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	chain := processor.Standard()
	pctx := processor.NewContext(map[string][]byte{
		path:          content,
		absPath(path): content,
	}, logger)
	survivors := chain.Process(findings, pctx)

	sm := sourcemap.New(content)
	type point struct{ line, col int }
	seen := make(map[point]bool)
	var guards []quickfix.ProposedEdit
	for _, e := range quickfix.FixesForFile(survivors, sm) {
		if e.Kind != quickfix.KindGuard {
			continue
		}
		p := point{e.Line, e.Col}
		if seen[p] {
			continue
		}
		seen[p] = true
		guards = append(guards, e)
	}
	if len(guards) == 0 {
		return 0, nil
	}

	fixed, err := quickfix.Apply(content, guards)
	if err != nil {
		return 0, err
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, fixed, mode); err != nil {
		return 0, err
	}
	return len(guards), nil
}

// loadScanConfig layers the config file, environment, and engine flags.
func loadScanConfig(cmd *cli.Command, target string) (*config.Config, error) {
	overrides := collectOverrides(cmd)
	if path := cmd.String("config"); path != "" {
		return config.LoadFromFileWithOverrides(path, overrides)
	}
	return config.LoadWithOverrides(target, overrides)
}

// collectOverrides maps set CLI flags onto the config's nested shape.
func collectOverrides(cmd *cli.Command) map[string]any {
	eng := make(map[string]any)
	if cmd.IsSet("engine-command") {
		eng["command"] = strings.Fields(cmd.String("engine-command"))
	}
	if cmd.IsSet("budget-ms") {
		eng["budget-ms"] = cmd.Int("budget-ms")
	}
	if cmd.IsSet("max-trials") {
		eng["max-trials"] = cmd.Int("max-trials")
	}
	if cmd.IsSet("max-findings") {
		eng["max-findings"] = cmd.Int("max-findings")
	}
	if cmd.IsSet("timeout") {
		eng["timeout"] = cmd.String("timeout")
	}

	out := make(map[string]any)
	if cmd.IsSet("format") {
		out["format"] = cmd.String("format")
	}
	if cmd.IsSet("output") {
		out["path"] = cmd.String("output")
	}
	if cmd.IsSet("fail-severity") {
		out["fail-severity"] = cmd.String("fail-severity")
	}

	overrides := make(map[string]any)
	if len(eng) > 0 {
		overrides["engine"] = eng
	}
	if len(out) > 0 {
		overrides["output"] = out
	}
	if cmd.IsSet("no-coalesce") {
		overrides["diagnostics"] = map[string]any{"coalesce": !cmd.Bool("no-coalesce")}
	}
	return overrides
}

// writeReport formats and writes the annotation report, then translates
// the fail-severity policy into an exit code.
func writeReport(
	cmd *cli.Command, cfg *config.Config, annotations []diagnostics.Annotation,
	sources map[string][]byte, metadata reporter.ReportMetadata,
) error {
	formatType, err := reporter.ParseFormat(cfg.Output.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	writer, closeWriter, err := reporter.GetWriter(cfg.Output.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	defer func() {
		if err := closeWriter(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output: %v\n", err)
		}
	}()

	opts := reporter.Options{
		Format:      formatType,
		Writer:      writer,
		ShowSource:  !cmd.Bool("hide-source"),
		ToolVersion: version.RawVersion(),
	}
	if cmd.IsSet("no-color") && cmd.Bool("no-color") {
		noColor := false
		opts.Color = &noColor
	}

	rep, err := reporter.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create reporter: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	if err := rep.Report(annotations, sources, metadata); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write output: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	if code := determineExitCode(annotations, cfg.Output.FailSeverity); code != ExitSuccess {
		return cli.Exit("", code)
	}
	return nil
}

// determineExitCode applies the fail-severity threshold.
// "none" (or an unparseable value) disables failure on findings.
func determineExitCode(annotations []diagnostics.Annotation, failSeverity string) int {
	threshold, err := finding.ParseSeverity(failSeverity)
	if err != nil {
		return ExitSuccess
	}
	for _, a := range annotations {
		if a.Severity.IsAtLeast(threshold) {
			return ExitFindings
		}
	}
	return ExitSuccess
}

// reportSources keys scanned file contents by the paths annotations use.
func reportSources(sources map[string][]byte, annotations []diagnostics.Annotation) map[string][]byte {
	out := make(map[string][]byte, len(annotations))
	for _, a := range annotations {
		if content, ok := sources[a.File]; ok {
			out[a.File] = content
		}
	}
	return out
}

func reportNoFilesFound(inputs []string) {
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err == nil && info.IsDir() {
			fmt.Fprintf(os.Stderr, "Error: no Python files found in %s\n", abs)
			return
		}
	}
	fmt.Fprintf(os.Stderr, "Error: no Python files found\n")
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
