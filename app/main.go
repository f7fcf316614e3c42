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

	"github.com/rpgmp3/rpgstats/app/api"
	"github.com/rpgmp3/rpgstats/app/cfg"
	"github.com/rpgmp3/rpgstats/app/database"
	"github.com/rpgmp3/rpgstats/app/discover"
	"github.com/rpgmp3/rpgstats/app/extract"
	"github.com/rpgmp3/rpgstats/app/infer"
	"github.com/rpgmp3/rpgstats/app/refdata"
	"github.com/rpgmp3/rpgstats/app/source"
	"github.com/rpgmp3/rpgstats/app/tasks"
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

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting RPG Stats server", "version", appCfg.Version)

	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	ref, err := refdata.Load(appCfg.DataDir)
	if err != nil {
		slog.Error("Failed to load reference data", "dir", appCfg.DataDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Reference data loaded",
		"groups", len(ref.Groups),
		"systems", len(ref.Systems),
		"campaign_aliases", len(ref.CampaignAliases))

	configCache := source.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "dir", appCfg.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "count", configCache.GetConfigCount())

	postRepo := database.NewPostRepository(db)
	sourceRepo := database.NewSourceRepository(db)
	statsRepo := database.NewStatsRepository(db)

	extractor := extract.NewExtractor()
	engine := infer.NewEngine(ref)
	sitemapParser := discover.NewSitemapParser()
	feedParser := discover.NewFeedParser()

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	scheduler := tasks.NewScheduler(configCache, sourceRepo, postRepo, httpClient,
		sitemapParser, feedParser, extractor, engine)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, postRepo, sourceRepo, statsRepo, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
