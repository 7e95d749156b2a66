package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-relay/app/api"
	"github.com/lysyi3m/rss-relay/app/cache"
	"github.com/lysyi3m/rss-relay/app/cfg"
	"github.com/lysyi3m/rss-relay/app/database"
	"github.com/lysyi3m/rss-relay/app/dedup"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/notify"
	"github.com/lysyi3m/rss-relay/app/pipeline"
	"github.com/lysyi3m/rss-relay/app/rejects"
	"github.com/lysyi3m/rss-relay/app/tasks"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	if err := run(appCfg); err != nil {
		slog.Error("RSS Relay stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	logFile, err := setupLogging(appCfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	slog.Info("Starting RSS Relay", "version", appCfg.Version, "dry_run", appCfg.DryRun, "store", appCfg.Store)

	feedConfig, err := feed.LoadConfig(appCfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load feed configuration: %w", err)
	}
	if err := applyOverrides(feedConfig, appCfg); err != nil {
		return err
	}
	slog.Info("Feed configuration loaded",
		"file", appCfg.ConfigFile,
		"feeds", len(feedConfig.Feeds),
		"keywords", len(feedConfig.Keywords),
		"channels", len(feedConfig.Channels))

	store, rejectLog, closeStorage, err := openStorage(appCfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	fetcher := feed.NewFetcher(&http.Client{}, feed.NewParser(), feed.NewContentExtractor(), appCfg.UserAgent, feedConfig.Settings)
	telegram := notify.NewTelegramClient(nil, "", appCfg.Token)
	alerter := notify.NewAdminAlerter(telegram, feedConfig.AdminChatID, appCfg.DryRun)
	dispatcher := notify.NewDispatcher(telegram, alerter, notify.SystemClock{}, appCfg.SendDelay, appCfg.DryRun)
	relay := pipeline.New(fetcher, dispatcher, alerter, store, rejectLog, feedConfig)

	if appCfg.Once {
		return runOnce(relay)
	}

	return serve(appCfg, relay, rejectLog)
}

func setupLogging(appCfg *cfg.Cfg) (*os.File, error) {
	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	var logFile *os.File
	if appCfg.LogFile != "" {
		f, err := os.OpenFile(appCfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		out = io.MultiWriter(os.Stdout, f)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))

	return logFile, nil
}

// applyOverrides lets process settings replace the recipients from the config file.
func applyOverrides(feedConfig *feed.Config, appCfg *cfg.Cfg) error {
	if len(appCfg.Channels) > 0 {
		feedConfig.Channels = appCfg.Channels
	}
	if appCfg.AdminChatID != "" {
		feedConfig.AdminChatID = appCfg.AdminChatID
	}

	hasChannel := false
	for _, channel := range feedConfig.Channels {
		if strings.TrimSpace(channel) != "" {
			hasChannel = true
			break
		}
	}
	if !hasChannel && !appCfg.DryRun {
		return errors.New("at least one channel is required unless dry run is enabled")
	}

	return nil
}

func openStorage(appCfg *cfg.Cfg) (dedup.Store, rejects.Log, func(), error) {
	switch appCfg.Store {
	case cfg.StoreSQLite:
		slog.Info("Opening database", "path", appCfg.DatabasePath())
		db, err := database.NewConnection(appCfg.DatabasePath())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		slog.Info("Database migrations applied", "version", version, "dirty", dirty)

		return database.NewSeenKeyRepository(db), database.NewRejectRepository(db), func() { db.Close() }, nil

	case cfg.StoreRedis:
		redisCache, err := cache.NewCache(context.Background(), appCfg.RedisURL, "rss-relay")
		if err != nil {
			return nil, nil, nil, err
		}

		return cache.NewSeenKeyStore(redisCache), cache.NewRejectList(redisCache), func() { redisCache.Close() }, nil

	default:
		slog.Info("Using file storage", "dedup", appCfg.DedupStatePath(), "rejects", appCfg.RejectLogPath())
		return dedup.NewFileStore(appCfg.DedupStatePath()), rejects.NewFileLog(appCfg.RejectLogPath()), func() {}, nil
	}
}

func runOnce(relay *pipeline.Pipeline) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := relay.Run(ctx)
	if err != nil {
		return err
	}

	for _, warning := range report.Warnings {
		slog.Warn("Run warning", "warning", warning)
	}

	return nil
}

func serve(appCfg *cfg.Cfg, relay *pipeline.Pipeline, rejectLog rejects.Log) error {
	history := tasks.NewRunHistory()

	scheduler := tasks.NewScheduler(relay, history, appCfg.SchedulerInterval)
	scheduler.Start()
	defer scheduler.Stop()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()

	watcher := feed.NewConfigWatcher(appCfg.ConfigFile, func(feedConfig *feed.Config) {
		if err := applyOverrides(feedConfig, appCfg); err != nil {
			slog.Error("Reloaded config rejected", "error", err)
			return
		}
		relay.Reload(feedConfig)
	})
	go func() {
		if err := watcher.Run(watchCtx); err != nil {
			slog.Error("Config watcher stopped", "error", err)
		}
	}()

	handler := api.NewHandler(relay, history, rejectLog, scheduler, appCfg.DryRun)
	server := api.NewServer(handler, appCfg.APIAccessKey)

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

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
		slog.Error("Server error", "error", serveErr)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serveErr
}
