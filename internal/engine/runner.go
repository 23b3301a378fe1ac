// Package engine invokes the external EdgeCheck analysis engine and decodes
// its JSON report. The engine is a black box: one process per scan target,
// awaited to completion, no cancellation of in-flight calls beyond the
// context deadline.
package engine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edgecheck/edgecheck-go/internal/finding"
)

// Defaults mirror the engine's own CLI defaults.
const (
	DefaultBudgetMS    = 200
	DefaultMaxTrials   = 24
	DefaultMaxFindings = 50

	// defaultStderrTail bounds how much engine stderr is kept for errors.
	defaultStderrTail = 4096

	// defaultTimeout bounds a whole engine invocation. The per-function
	// budget is enforced engine-side; this is the outer safety net.
	defaultTimeout = 2 * time.Minute
)

// DefaultCommand invokes the engine as a Python module.
var DefaultCommand = []string{"python3", "-m", "edgecheck"}

// Options configure a Runner.
type Options struct {
	// Command is the engine argv prefix. Empty uses DefaultCommand.
	Command []string

	// BudgetMS is the per-function analysis budget in milliseconds.
	BudgetMS int

	// MaxTrials caps input-generation trials per function.
	MaxTrials int

	// MaxFindings caps findings per run.
	MaxFindings int

	// Timeout bounds the whole invocation. Zero uses a generous default.
	Timeout time.Duration

	// Dir is the working directory for the engine process.
	Dir string

	// Logger receives run diagnostics.
	Logger logrus.FieldLogger
}

// Runner executes engine scans.
type Runner struct {
	opts Options
}

// NewRunner creates a Runner, filling zero options with engine defaults.
func NewRunner(opts Options) *Runner {
	if len(opts.Command) == 0 {
		opts.Command = DefaultCommand
	}
	if opts.BudgetMS <= 0 {
		opts.BudgetMS = DefaultBudgetMS
	}
	if opts.MaxTrials <= 0 {
		opts.MaxTrials = DefaultMaxTrials
	}
	if opts.MaxFindings <= 0 {
		opts.MaxFindings = DefaultMaxFindings
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Runner{opts: opts}
}

// Scan runs the engine against target (a .py file or a directory) and
// decodes its report. A crashed engine or non-JSON output returns a
// *RunnerError; callers degrade to "no findings this run" and keep prior
// annotation state rather than wiping it.
func (r *Runner) Scan(ctx context.Context, target string) (*finding.Report, error) {
	args := append(r.opts.Command[1:],
		target,
		"--format", "json",
		"--budget-ms", strconv.Itoa(r.opts.BudgetMS),
		"--max-trials", strconv.Itoa(r.opts.MaxTrials),
		"--max-findings", strconv.Itoa(r.opts.MaxFindings),
	)

	runCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.opts.Command[0], args...) //nolint:gosec // Command is explicit user configuration.
	cmd.Dir = r.opts.Dir

	var stdout bytes.Buffer
	stderr := newTailBuffer(defaultStderrTail)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
		return nil, &RunnerError{
			Op:       "engine scan",
			Err:      err,
			ExitCode: exitCode(err),
			Stderr:   stderr.String(),
		}
	}

	report, err := finding.ParseReport(stdout.Bytes())
	if err != nil {
		return nil, &RunnerError{
			Op:     "engine scan",
			Err:    err,
			Stderr: stderr.String(),
		}
	}

	r.opts.Logger.WithFields(logrus.Fields{
		"target":   target,
		"findings": len(report.Findings),
		"duration": elapsed,
	}).Debug("engine scan complete")

	return report, nil
}

// exitCode extracts the process exit code from a Run error, if present.
func exitCode(err error) *int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return &code
	}
	return nil
}
