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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/CommentClash/internal/adapters/http"
	wssignal "github.com/dkeye/CommentClash/internal/adapters/signal"
	"github.com/dkeye/CommentClash/internal/app"
	"github.com/dkeye/CommentClash/internal/app/captions"
	"github.com/dkeye/CommentClash/internal/app/orch"
	"github.com/dkeye/CommentClash/internal/app/video"
	"github.com/dkeye/CommentClash/internal/config"
	transport "github.com/dkeye/CommentClash/internal/transport/http"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	policy, err := app.JudgePolicyByName(cfg.JudgePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("judge policy")
	}

	roomCache, closeCache := openCache(ctx, cfg)
	defer closeCache()
	games, closeStore := openStore(ctx, cfg)
	defer closeStore()
	checkpoints := app.NewCheckpointWriter(games, cfg.CheckpointQueue, app.DefaultCheckpointTimeout)

	videos := video.NewPicker(video.Config{
		BaseURL:    cfg.VideoBaseURL,
		SigningKey: cfg.VideoSigningKey,
		TTL:        cfg.VideoURLTTL,
	})
	clock := app.SystemClock{}
	reg := app.NewRegistry()

	o := &orch.Orchestrator{
		Registry:     reg,
		Rooms:        app.NewRoomManager(cfg.CodeAttempts),
		Policy:       policy,
		Captions:     captions.NewGenerator(),
		Videos:       videos,
		Cache:        roomCache,
		Checkpoints:  checkpoints,
		Clock:        clock,
		Settings:     cfg.GameSettings(),
		CacheTimeout: cfg.CacheTimeout,
	}

	hub := wssignal.NewHub(reg, app.SimplePolicy{})
	ctrl := wssignal.NewSignalWSController(o, hub, clock, wssignal.Options{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		NextRoundDelay: cfg.NextRoundDelay,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
	})
	o.Reaped = ctrl.AnnounceDeparture
	handlers := &transport.Handlers{
		Orch:     o,
		Games:    games,
		Videos:   videos,
		VideoDir: filepath.Join(cfg.StaticPath, "videos"),
	}

	r := router.SetupRouter(ctx, cfg, handlers, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("CommentClash server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := checkpoints.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("checkpoint queue not drained")
	}
	log.Info().Msg("Server exited gracefully")
}
