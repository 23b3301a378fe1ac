package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/edgecheck/edgecheck-go/internal/config"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Write a default .edgecheck.toml config file",
		ArgsUsage: "[DIR]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			dir := "."
			if cmd.Args().Len() > 0 {
				dir = cmd.Args().First()
			}
			path := filepath.Join(dir, config.ConfigFileNames[0])

			if !cmd.Bool("force") {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
					return cli.Exit("", ExitConfigError)
				}
			}

			data, err := defaultConfigTOML()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return cli.Exit("", ExitConfigError)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to write %s: %v\n", path, err)
				return cli.Exit("", ExitConfigError)
			}

			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
}

// defaultConfigTOML renders the default configuration with the key names
// the loader expects.
func defaultConfigTOML() ([]byte, error) {
	def := config.Default()
	doc := map[string]any{
		"engine": map[string]any{
			"command":      def.Engine.Command,
			"budget-ms":    def.Engine.BudgetMS,
			"max-trials":   def.Engine.MaxTrials,
			"max-findings": def.Engine.MaxFindings,
			"timeout":      def.Engine.Timeout,
		},
		"diagnostics": map[string]any{
			"coalesce": def.Diagnostics.Coalesce,
		},
		"quickfix": map[string]any{
			"offer-suppress-for-info": def.QuickFix.OfferSuppressForInfo,
		},
		"output": map[string]any{
			"format":        def.Output.Format,
			"path":          def.Output.Path,
			"fail-severity": def.Output.FailSeverity,
		},
		"discovery": map[string]any{
			"include":       def.Discovery.Include,
			"exclude":       def.Discovery.Exclude,
			"max-file-size": def.Discovery.MaxFileSize,
		},
	}
	return toml.Marshal(doc)
}
