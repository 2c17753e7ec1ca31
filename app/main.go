package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kortney-lee/feed-engine/app/api"
	"github.com/kortney-lee/feed-engine/app/cfg"
	"github.com/kortney-lee/feed-engine/app/database"
	"github.com/kortney-lee/feed-engine/app/feed"
	"github.com/kortney-lee/feed-engine/app/ingest"
	"github.com/kortney-lee/feed-engine/app/poller"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)
	slog.Info("Starting Feed Engine", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database opened", "path", appCfg.DBPath)

	repo := database.NewRepository(db)

	client := feed.NewHTTPClient(appCfg.RequestsPerSecond, appCfg.BurstCapacity)
	parser := feed.NewParser(client, appCfg.UserAgent,
		time.Duration(appCfg.FetchTimeout)*time.Second)

	feedPoller := poller.New(parser, repo)
	coordinator := ingest.NewCoordinator(db, repo, feedPoller)
	if err := coordinator.Start(); err != nil {
		slog.Error("Failed to start ingestion engine", "error", err)
		os.Exit(1)
	}
	defer coordinator.Stop()

	apiHandler := api.NewHandler(coordinator)
	router := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
