package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/edgecheck/edgecheck-go/internal/version"
)

// Exit codes
const (
	ExitSuccess     = 0 // No findings (or below fail-severity threshold)
	ExitFindings    = 1 // Findings found at or above fail-severity
	ExitConfigError = 2 // Config, engine, or output error
	ExitNoFiles     = 3 // No Python files found
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "edgecheck",
		Usage:   "Editor integration for the EdgeCheck Python fuzzing engine",
		Version: version.RawVersion(),
		Description: `edgecheck runs the EdgeCheck fuzzing engine against Python files and
turns its findings into editor diagnostics, quick fixes, and CI reports.

Examples:
  edgecheck scan target.py
  edgecheck scan --format sarif --output findings.sarif src/
  edgecheck lsp --stdio`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("EDGECHECK_VERBOSE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logrus.SetOutput(os.Stderr)
			if cmd.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			scanCommand(),
			lspCommand(),
			initCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
