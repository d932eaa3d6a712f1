// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/arms-tools/seatwatch/internal/api"
	"github.com/arms-tools/seatwatch/internal/archive"
	"github.com/arms-tools/seatwatch/internal/config"
	"github.com/arms-tools/seatwatch/internal/health"
	xglog "github.com/arms-tools/seatwatch/internal/log"
	"github.com/arms-tools/seatwatch/internal/monitor"
	"github.com/arms-tools/seatwatch/internal/notify"
	"github.com/arms-tools/seatwatch/internal/portal"
	"github.com/arms-tools/seatwatch/internal/session"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

const shutdownGrace = 15 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe defaults until the real configuration is loaded.
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "seatwatch",
		Version: version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Config path: explicit via --config, otherwise auto-load
	// ${SEATWATCH_DATA}/config.yaml when present.
	effectivePath := strings.TrimSpace(*configPath)
	if effectivePath == "" {
		if dataDir := strings.TrimSpace(config.ParseString("SEATWATCH_DATA", "")); dataDir != "" {
			autoPath := filepath.Join(dataDir, "config.yaml")
			if _, err := os.Stat(autoPath); err == nil {
				effectivePath = autoPath
			}
		}
	}

	cfg, err := config.Load(effectivePath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", effectivePath).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: "seatwatch",
		Version: version,
	})

	if effectivePath != "" {
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", "file").
			Str("path", effectivePath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	newClient, err := buildPortalFactory(cfg)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "portal.setup_failed").
			Msg("failed to set up portal client factory")
	}

	notifier, err := notify.New(notify.Config{
		Provider: cfg.NotifyProvider,
		From:     cfg.NotifyFrom,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
		APIURL:   cfg.NotifyAPIURL,
		APIKey:   cfg.NotifyAPIKey,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "notify.setup_failed").
			Msg("failed to set up notifications")
	}

	var store *archive.Store
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			logger.Fatal().
				Err(err).
				Str(xglog.FieldEvent, "archive.setup_failed").
				Str("data_dir", cfg.DataDir).
				Msg("failed to create data directory")
		}
		dbPath := filepath.Join(cfg.DataDir, "sessions.db")
		store, err = archive.Open(dbPath)
		if err != nil {
			logger.Fatal().
				Err(err).
				Str(xglog.FieldEvent, "archive.setup_failed").
				Str("path", dbPath).
				Msg("failed to open session archive")
		}
		defer store.Close()
		logger.Info().
			Str(xglog.FieldEvent, "archive.opened").
			Str("path", dbPath).
			Msg("session archive enabled")
	} else {
		logger.Info().
			Str(xglog.FieldEvent, "archive.disabled").
			Msg("no data dir configured, session archive disabled")
	}

	registry := session.NewRegistry()
	deps := monitor.Deps{
		Registry:       registry,
		NewClient:      newClient,
		Metrics:        monitor.PromRecorder{},
		Clock:          time.Now,
		SessionTimeout: cfg.SessionTimeout,
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	if store != nil {
		deps.Archive = store
	}
	manager := monitor.NewManager(deps)

	healthMgr := health.NewManager(version)
	healthMgr.RegisterChecker(health.NewRegistryChecker(registry))
	healthMgr.RegisterChecker(health.NewArchiveChecker(archivePinger(store)))

	opts := api.Options{
		DefaultInterval:    cfg.PollInterval,
		StartRatePerMinute: cfg.StartRatePerMinute,
	}
	if store != nil {
		opts.History = store
	}
	server := api.New(ctx, manager, healthMgr, opts)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.ListenAddr).
		Str("portal_mode", cfg.PortalMode).
		Dur("poll_interval", cfg.PollInterval).
		Dur("session_timeout", cfg.SessionTimeout).
		Msg("starting seatwatch")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		logger.Info().
			Str(xglog.FieldEvent, "shutdown").
			Msg("shutting down")

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("http server shutdown incomplete")
		}
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("some sessions did not stop in time")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "fatal").
			Msg("daemon exited with error")
	}
	logger.Info().
		Str(xglog.FieldEvent, "shutdown.complete").
		Msg("seatwatch stopped")
}

// buildPortalFactory picks the portal client implementation for the configured
// mode. All sessions share one rate limiter so concurrent monitors cannot
// hammer the enrollment site.
func buildPortalFactory(cfg config.AppConfig) (portal.Factory, error) {
	limiter := rate.NewLimiter(rate.Limit(cfg.PortalRate), cfg.PortalBurst)

	switch cfg.PortalMode {
	case config.PortalModeScript:
		// Dev mode: a deterministic portal that finds a seat on the fourth
		// poll. Useful for exercising the full session lifecycle locally.
		return func(ctx context.Context) (portal.Client, error) {
			client := portal.NewScriptedClient(
				portal.Step{Result: portal.CheckResult{Outcome: portal.OutcomeNotFound}},
				portal.Step{Result: portal.CheckResult{Outcome: portal.OutcomeFull}},
				portal.Step{Result: portal.CheckResult{Outcome: portal.OutcomeFull}},
				portal.Step{Result: portal.CheckResult{Outcome: portal.OutcomeFound, Vacancies: 1}},
			)
			return portal.Paced(client, limiter), nil
		}, nil

	case config.PortalModeRemote:
		return nil, fmt.Errorf("portal mode %q requires an external browser-automation adapter, which is not bundled", cfg.PortalMode)
	}
	return nil, fmt.Errorf("unknown portal mode %q", cfg.PortalMode)
}

// archivePinger converts the concrete store into the health checker's
// interface without producing a typed-nil pinger when the archive is off.
func archivePinger(store *archive.Store) health.Pinger {
	if store == nil {
		return nil
	}
	return store
}
