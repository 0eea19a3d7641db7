// Package main provides the curation pipeline server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mindtube/curator/internal/config"
	"github.com/mindtube/curator/internal/curation"
	"github.com/mindtube/curator/internal/llm"
	"github.com/mindtube/curator/internal/metrics"
	"github.com/mindtube/curator/internal/server"
	"github.com/mindtube/curator/internal/store"
	"github.com/mindtube/curator/internal/youtube"
)

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg := config.Load()

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	slog.SetDefault(logger)
	defer func() { _ = closeLog() }()

	slog.Info("starting curator-server", "port", cfg.ServerPort)

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		slog.Error("failed to load curation policy", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := store.NewClient(ctx, store.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = db.InitSchema(ctx)
	cancel()
	if err != nil {
		slog.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	if *wipeDB || os.Getenv("CURATOR_WIPE_DB") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.WipeData(ctx)
		cancel()
		if err != nil {
			slog.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
		slog.Warn("database wiped")
	}

	if cfg.YouTubeAPIKey == "" {
		slog.Warn("YOUTUBE_API_KEY is not set; metadata calls will fail")
	}
	source := youtube.New(cfg.YouTubeBaseURL, cfg.YouTubeAPIKey)

	model, err := llm.NewModel(cfg)
	if err != nil {
		slog.Error("failed to create evaluation model", "error", err)
		os.Exit(1)
	}
	slog.Info("evaluation model ready", "provider", cfg.LLMProvider, "model", model.Model())

	collector := metrics.NewCollector()

	hub := server.NewHub(logger)
	go hub.Run()

	tracker := curation.NewTracker(hub.Broadcast)
	evaluator := curation.NewEvaluator(model, policy, logger)
	pipeline := curation.NewPipeline(source, db, evaluator, tracker, policy, logger, collector)
	manager := curation.NewManager(pipeline, logger)

	srv := server.New(manager, collector, hub, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(":" + cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
		manager.RequestStop()
		if err := srv.Shutdown(); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}
}
