package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/ashval/inkweaver/internal"
	pkgconfig "github.com/ashval/inkweaver/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOrDefault(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func export(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n, err := internal.Export(ctx, cmd.String("project"), cmd.String("out"),
		internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(os.Stdout, "exported %d notes to %s\n", n, cmd.String("out"))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "inkweaver",
		Usage:  "Writer's workspace backend: notes, tasks, lore and plot with an AI writing assistant",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the REST API and the event stream",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: mcp,
			},
			{
				Name:   "export",
				Usage:  "Write the notes of a project as Markdown files",
				Action: export,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "project",
						Aliases: []string{"p"},
						Usage:   "Project id or name (empty exports every note)",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   "export",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
