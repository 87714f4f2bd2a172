package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/config"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/infra"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/repository"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/router"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Start goroutine worker pool for async tasks (report PDF, email).
	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)
	cierreRepo := repository.NewCierreRepository(db)

	workerHandlers := &worker.WorkerHandlers{
		Reporte: worker.NewReporteWorker(cierreRepo, dispatcher, cfg.PDFStoragePath, cfg.SupervisorEmail),
		Email:   worker.NewEmailWorker(mailer, smtpCB),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	r, err := router.New(cfg, db, rdb, smtpCB)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid closing configuration")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("cierre-caja backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
