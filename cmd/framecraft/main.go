package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/framecraft/framecraft/internal/api"
	"github.com/framecraft/framecraft/internal/config"
	"github.com/framecraft/framecraft/internal/db"
	"github.com/framecraft/framecraft/internal/generate"
	"github.com/framecraft/framecraft/internal/logging"
	"github.com/framecraft/framecraft/internal/playback"
	"github.com/framecraft/framecraft/internal/project"
	"github.com/framecraft/framecraft/internal/render"
	"github.com/framecraft/framecraft/internal/scene"
	"github.com/framecraft/framecraft/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.RendersDir(), 0755); err != nil {
		return fmt.Errorf("failed to create renders dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting framecraft agent",
		"version", config.Version,
		"data_dir", logging.SanitizePath(cfg.DataDir()),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := project.NewRepository(database.Conn())
	svc := project.NewService(repo, logging.WithComponent(logger, "scene_store"), cfg.CodeCacheTTL())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := svc.GetProject(ctx); err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	validator := scene.NewValidator()
	var gen generate.Generator = generate.Unconfigured{}
	model := ""
	gemini, err := generate.NewGemini(ctx, generate.GeminiConfig{
		APIKey: cfg.GeminiAPIKey(),
		Model:  cfg.GeminiModel(),
	})
	switch {
	case err == nil:
		gen = gemini
		model = gemini.Model()
		logger.Info("scene generation enabled", "model", model)
	case errors.Is(err, generate.ErrNotConfigured):
		logger.Warn("GEMINI_API_KEY not set, scene generation disabled")
	default:
		logger.Warn("gemini client unavailable, scene generation disabled", "error", err)
	}
	pipeline := generate.NewPipeline(gen, validator, logging.WithComponent(logger, "generate"))

	renderCfg := render.DefaultConfig(cfg.DataDir(), logger)
	renderCfg.Command = cfg.RenderCommand()
	renderCfg.ArtifactsBase = cfg.RendersDir()
	renderCfg.RenderTimeout = cfg.RenderTimeout()

	var renderer render.Runner
	var probe *render.CachedProbe

	rr, err := render.NewRunner(renderCfg)
	if err != nil {
		logger.Warn("render runner unavailable, rendering disabled", "error", err)
	} else {
		renderer = rr
		probe = render.NewCachedProbe(rr, logger)

		probeCtx, probeCancel := context.WithTimeout(ctx, renderCfg.ProbeTimeout)
		if caps, err := probe.Refresh(probeCtx); err != nil {
			logger.Warn("initial render probe failed", "error", err)
		} else {
			logger.Info("render toolchain detected",
				"executable", logging.SanitizePath(caps.Executable),
				"version", caps.Version,
				"available", caps.Available,
			)
		}
		probeCancel()
	}

	runner := project.NewRunner(repo, renderer, probe, logger)
	go runner.Start(ctx)

	apiServer := api.NewServer(api.ServerConfig{
		Port:                 cfg.Port(),
		Service:              svc,
		Runner:               runner,
		Probe:                probe,
		Playback:             playback.NewServer(cfg.RendersDir(), logger),
		Logger:               logger,
		Generator:            pipeline,
		GenerationConfigured: model != "",
		GenerationModel:      model,
		GenerateTimeout:      cfg.GenerateTimeout(),
		GenerateRPM:          cfg.GenerateRPM(),
		Validator:            validator,
		AuthToken:            cfg.AuthToken(),
		StartTime:            startTime,
	})

	fmt.Println()
	fmt.Printf("Framecraft agent v%s\n", config.Version)
	fmt.Printf("  API URL:    http://%s\n", apiServer.Addr())
	if cfg.AuthToken() != "" {
		fmt.Printf("  Auth Token: %s\n", logging.SanitizeToken(cfg.AuthToken()))
	}
	fmt.Println()

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Service: svc,
			Runner:  runner,
			Logger:  logger,
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
