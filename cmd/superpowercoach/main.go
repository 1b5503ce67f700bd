package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/grannydannick/superpowercoach/internal/cli"
	"github.com/grannydannick/superpowercoach/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	programLevel := slog.LevelInfo
	if cfg.Debug {
		programLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: programLevel}))
	slog.SetDefault(logger)

	app := cli.NewApp(cfg, logger)
	if err := cli.NewRootCmd(app).Execute(); err != nil {
		os.Exit(1)
	}
}
