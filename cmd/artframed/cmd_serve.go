package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sixthshift/artframed/internal/clockutil"
	"github.com/sixthshift/artframed/internal/condition"
	"github.com/sixthshift/artframed/internal/config"
	"github.com/sixthshift/artframed/internal/display"
	"github.com/sixthshift/artframed/internal/httpapi"
	"github.com/sixthshift/artframed/internal/httpcache"
	"github.com/sixthshift/artframed/internal/instance"
	"github.com/sixthshift/artframed/internal/logger"
	"github.com/sixthshift/artframed/internal/orchestrator"
	"github.com/sixthshift/artframed/internal/pluginapi"
	"github.com/sixthshift/artframed/internal/pluginregistry"
	"github.com/sixthshift/artframed/internal/scheduling"

	_ "github.com/sixthshift/artframed/internal/plugins/builtin"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Boot the daemon: load config, start the orchestrator and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	return cmd
}

func runServe(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Initialize(cfg.LogLevel, os.Getenv("ARTFRAMED_ENV") != "production")
	log := logger.GetLogger()
	log.Info().Str("data_dir", cfg.DataDir).Str("timezone", cfg.Timezone).Msg("booting artframed")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	clock, err := clockutil.New(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	registry := pluginregistry.New()
	if err := registry.LoadManifests(cfg.PluginsDir); err != nil {
		return fmt.Errorf("load plugin manifests: %w", err)
	}

	scheduleStore, err := scheduling.Open(filepath.Join(cfg.DataDir, "schedules.json"), clock)
	if err != nil {
		return fmt.Errorf("open schedule store: %w", err)
	}

	instanceStore, err := instance.Open(filepath.Join(cfg.DataDir, "plugin_instances.json"), clock, registry)
	if err != nil {
		return fmt.Errorf("open instance store: %w", err)
	}

	// Real hardware drivers are out of scope; the mock driver is the
	// only Driver implementation shipped, regardless of display.driver
	// in config. A physical driver plugs into the same Driver interface
	// without touching anything above display.Controller.
	driver := display.NewMockDriver(cfg.Display.Width, cfg.Display.Height)
	displayCtl := display.New(driver)
	if err := displayCtl.Initialize(); err != nil {
		return fmt.Errorf("initialize display: %w", err)
	}

	device := pluginapi.DeviceConfig{
		Width:     cfg.Display.Width,
		Height:    cfg.Display.Height,
		Rotation:  cfg.Display.Rotation,
		ColorMode: cfg.Display.ColorMode,
		Timezone:  cfg.Timezone,
	}

	orch := orchestrator.New(scheduleStore, instanceStore, registry, displayCtl, clock, device)
	if err := orch.Start(); err != nil {
		return fmt.Errorf("start orchestrator: %w", err)
	}

	evaluator := condition.New(clock)

	watcher := config.NewWatcher(path, cfg)
	watcher.OnChange(func(field string, newValue any) {
		log.Info().Str("field", field).Interface("value", newValue).Msg("configuration changed")
	})

	cache, err := httpcache.New(cfg.HTTP.RedisAddr)
	if err != nil {
		log.Warn().Err(err).Msg("response cache unavailable, continuing without it")
		cache, _ = httpcache.New("")
	}
	defer cache.Close()

	deps := httpapi.Dependencies{
		Schedule:     scheduleStore,
		Instances:    instanceStore,
		Registry:     registry,
		Orchestrator: orch,
		Display:      displayCtl,
		Config:       watcher,
		Conditions:   evaluator,
		Clock:        clock,
	}

	router := httpapi.NewRouter(deps)
	router.Use(httpcache.Middleware(cache, 30*time.Second))

	srv := &http.Server{
		Addr:              cfg.HTTP.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.ListenAddr).Msg("HTTP API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server did not shut down cleanly")
	}
	orch.Stop()
	log.Info().Msg("shutdown complete")
	return nil
}
