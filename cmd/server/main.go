package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Collab/internal/adapters/bus"
	router "github.com/dkeye/Collab/internal/adapters/http"
	"github.com/dkeye/Collab/internal/app"
	"github.com/dkeye/Collab/internal/app/relay"
	"github.com/dkeye/Collab/internal/config"
	"github.com/dkeye/Collab/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	config.SetupLogger("info")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.SetupLogger(cfg.LogLevel)

	var b app.Bus = app.NewLocalBus()
	if cfg.Redis.Addr != "" {
		rb, err := bus.NewRedisBus(ctx, bus.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis bus")
		}
		defer rb.Close()
		b = rb
		log.Info().Str("addr", cfg.Redis.Addr).Msg("global chat over redis")
	}

	rl := relay.New(app.NewRegistry(), core.NewRoomRegistry(), app.PolicyByName(cfg.Backpressure), b, relay.ChatScope(cfg.ChatScope))
	if err := rl.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("relay start")
	}

	r := router.SetupRouter(ctx, cfg, rl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Collab relay started")
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
	log.Info().Msg("Server exited gracefully")
}
