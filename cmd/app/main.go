package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/followup/internal"
	pkgconfig "github.com/starford/followup/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("data") {
		cfg.Data.Path = cmd.String("data")
	}
	if cmd.Bool("open") {
		cfg.App.OpenBrowser = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if _, err := internal.RunMigrate(ctx, opts...); err != nil {
		return fmt.Errorf("migrate error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "followup",
		Usage:   "Single-user project and task tracker backed by one JSON file",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (defaults are used when it does not exist)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the JSON data file (overrides data.path)",
				Sources: cli.EnvVars("APP_DATA_FILE"),
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "HTTP port (overrides app.http.port)",
				Sources: cli.EnvVars("APP_PORT"),
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the front end in a browser after startup",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve project tools over MCP on stdin/stdout",
				Action: runMCP,
			},
			{
				Name:   "migrate",
				Usage:  "Rewrite legacy task ids to the projectId-taskId form and exit",
				Action: runMigrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
