package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	coreconfig "github.com/Growstale/RequestHandlerWebServer/core/config"
	"github.com/Growstale/RequestHandlerWebServer/core/logger"
	"github.com/Growstale/RequestHandlerWebServer/core/telegram"
	"github.com/Growstale/RequestHandlerWebServer/internal/app"
	"log/slog"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() {
		_ = logger.Shutdown()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := app.BuildRunOptions(cfg)
	if err := telegram.RunTelegram(ctx, opts); err != nil {
		logger.Error(context.Background(), "app", "shutdown",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		_ = logger.Shutdown()
		os.Exit(1)
	}

	logger.Info(context.Background(), "app", "shutdown",
		slog.String("status", "ok"),
	)
}
