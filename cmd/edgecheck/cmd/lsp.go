package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/edgecheck/edgecheck-go/internal/config"
	"github.com/edgecheck/edgecheck-go/internal/lspserver"
)

func lspCommand() *cli.Command {
	return &cli.Command{
		Name:  "lsp",
		Usage: "Start the Language Server Protocol server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stdio",
				Usage: "Use stdin/stdout for communication (required)",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: auto-discover from cwd)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("stdio") {
				fmt.Fprintln(os.Stderr, "Error: only --stdio transport is supported")
				return cli.Exit("", ExitConfigError)
			}

			var (
				cfg *config.Config
				err error
			)
			if path := cmd.String("config"); path != "" {
				cfg, err = config.LoadFromFile(path)
			} else {
				cfg, err = config.Load(".")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
				return cli.Exit("", ExitConfigError)
			}

			server := lspserver.New(cfg, logrus.StandardLogger())
			return server.RunStdio(ctx)
		},
	}
}
