package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/warmstand/warmstand/cmd/warmstand/server"
	"github.com/warmstand/warmstand/internal/fancy"
	"github.com/warmstand/warmstand/internal/logging"
	"github.com/warmstand/warmstand/internal/logging/writers"
	"github.com/warmstand/warmstand/internal/settings"
)

// Version is set during build using ldflags
var Version = "dev"

func main() {
	app := &cli.Command{
		Name:    "warmstand",
		Version: Version,
		Usage:   "Pre-warmed function host server",
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print the version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("warmstand version %s\n", cmd.Root().Version)
					return nil
				},
			},
			{
				Name:  "serve",
				Usage: "Run the function host server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "settings",
						Aliases: []string{"s"},
						Usage:   "Path to the TOML settings file",
						Value:   "warmstand.toml",
					},
					&cli.StringFlag{
						Name:    "listen",
						Aliases: []string{"l"},
						Usage:   "HTTP listen address",
						Value:   ":8080",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "Log level (trace, debug, info, warn, error)",
						Value: "info",
					},
					&cli.StringFlag{
						Name:  "log-format",
						Usage: "Log format (text, json)",
						Value: "text",
					},
					&cli.StringFlag{
						Name:  "log-output",
						Usage: "Log destination (stderr, stdout, or a file path)",
						Value: "stderr",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					out, err := writers.CreateWriter(cmd.String("log-output"))
					if err != nil {
						return err
					}

					var handler slog.Handler
					switch cmd.String("log-format") {
					case "json":
						handler = logging.SetupHandlerJSON(cmd.String("log-level"), out)
					case "text":
						handler = logging.SetupHandlerText(cmd.String("log-level"), out)
					default:
						return fmt.Errorf("unsupported log format %q", cmd.String("log-format"))
					}
					logger := slog.New(handler)
					slog.SetDefault(logger)

					return server.Run(ctx, logger, cmd.String("settings"), cmd.String("listen"))
				},
			},
			{
				Name:  "validate",
				Usage: "Validate a settings file",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() < 1 {
						return fmt.Errorf("settings file path required")
					}

					settingsPath := cmd.Args().Get(0)
					s, err := settings.FromFile(settingsPath)
					if err != nil {
						return err
					}

					fmt.Printf("Settings file %s is valid\n\n", settingsPath)
					fmt.Println(fancy.KVTree("Settings", []fancy.KV{
						{Key: "script_path", Value: s.ScriptPath},
						{Key: "log_path", Value: s.LogPath},
						{Key: "secrets_path", Value: s.SecretsPath},
						{Key: "self_hosted", Value: fmt.Sprintf("%t", s.SelfHosted)},
					}))

					return nil
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
