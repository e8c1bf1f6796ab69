package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleamarket/internal/config"
	"fleamarket/internal/infra"
	"fleamarket/internal/router"
	"fleamarket/internal/service"
	"fleamarket/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid TIMEZONE")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	c := router.Wire(cfg, db, rdb, service.NewReloj(loc))

	// Worker handlers are wired here (composition root) so the pool shares
	// the repositories and services of the API.
	mailer := infra.NewMailer(cfg)
	var email *worker.EmailWorker
	if mailer.Enabled() {
		cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
		email = worker.NewEmailWorker(mailer, cb, c.Repos.Ventas, c.Repos.Apartados, c.Repos.Tiendas)
	} else {
		log.Warn().Msg("SMTP_HOST not set: ticket emails will be dropped")
	}
	pool := worker.NewPool(rdb, worker.Handlers{Email: email, Vencimientos: c.Services.Apartados})
	pool.Start(ctx, cfg.WorkerPoolSize)
	worker.StartExpiryCron(ctx, c.Dispatcher, time.Duration(cfg.ExpirySweepMinutes)*time.Minute)

	r := router.New(cfg, c, ctx.Done())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Flea Market API listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
