package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasktracker/internal/auth"
	"tasktracker/internal/config"
	"tasktracker/internal/server"
	"tasktracker/internal/storage/mongo"
)

func main() {
	addrFlag := flag.String("addr", config.EnvOrDefault("ADDR", ""), "HTTP listen address (overrides PORT)")
	staticFlag := flag.String("static", config.EnvOrDefault("STATIC_DIR", "web/dist"), "Directory with the frontend")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	addr := *addrFlag
	if addr == "" {
		if cfg.Port != "" {
			addr = ":" + cfg.Port
		} else {
			addr = ":8080"
		}
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := mongo.Open(connectCtx, cfg.MongoURI, cfg.MongoDB, logger)
	cancelConnect()
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to MongoDB", slog.String("database", cfg.MongoDB))

	tokens := auth.NewTokens(cfg.JWTSecret)
	srv := server.New(store, tokens, logger, *staticFlag)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if err := store.Close(ctx); err != nil {
		logger.Error("failed to close database", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
