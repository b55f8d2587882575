package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/cutline/internal"
	pkgconfig "github.com/starford/cutline/pkg/config"
)

// loadConfig reads the --config file over the defaults. The default path may
// be absent; an explicitly passed one may not.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	load := pkgconfig.LoadOptional[internal.Config]
	if cmd.IsSet("config") {
		load = pkgconfig.Load[internal.Config]
	}
	if err := load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// withCore loads the config and opens the store and library for a one-shot
// command. Only warnings are logged, to stderr.
func withCore(cmd *cli.Command, fn func(*internal.Core) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	core, err := internal.OpenCore(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer core.Close()
	return fn(core)
}
