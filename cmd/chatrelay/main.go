// Package main is the entry point for the chat relay server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatrelay/config"
	"chatrelay/internal/app"
	"chatrelay/internal/logging"
	"chatrelay/internal/providers"
	"chatrelay/internal/providers/gemini"
	"chatrelay/internal/providers/openai"
	"chatrelay/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	configPath := flag.String("config", "", "Path to a YAML config file (default: ./config/config.yaml or ./config.yaml if present)")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// JSON until the configured format is known
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Validate has already checked the level
	level, _ := cfg.Log.SlogLevel()
	logging.Setup(cfg.Log.Format, level)

	slog.Info("starting chatrelay",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	factory := providers.NewProviderFactory()
	factory.Add(openai.Registration)
	factory.Add(gemini.Registration)

	application, err := app.New(app.Config{
		AppConfig: cfg,
		Factory:   factory,
	})
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := application.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := application.Start(":" + cfg.Server.Port); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
