package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Henryno111/deposit-stx/audit"
	"github.com/Henryno111/deposit-stx/config"
	"github.com/Henryno111/deposit-stx/database"
	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/observability"
	"github.com/Henryno111/deposit-stx/routes"
	"github.com/Henryno111/deposit-stx/services"
	"github.com/Henryno111/deposit-stx/utils"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		observability.InitLogger("deposit-stx", true)
		log.Fatal().Err(err).Msg("config load failed")
	}
	observability.InitLogger("deposit-stx", cfg.Development())
	observability.RegisterMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Admin accounts and token revocation always live in the database.
	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	var store ledger.Store
	tables := []interface{}{&models.Admin{}, &models.RevokedToken{}}
	switch cfg.LedgerStore {
	case "memory":
		log.Warn().Msg("ledger kept in memory, state is lost on restart")
		store = ledger.NewMemoryStore()
	default:
		gs := ledger.NewGormStore(db)
		tables = append(tables, gs.Models()...)
		store = gs
	}
	if err := database.RunMigrationsWithBackup(db, tables...); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if cfg.AdminUsername != "" {
		if _, err := models.EnsureAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Str("admin", cfg.AdminUsername).Msg("failed to bootstrap admin")
		}
	}

	utils.InitRedis(ctx)

	svc := services.New(store, models.Principal(cfg.OwnerPrincipal))

	exporter, err := audit.NewS3ExporterFromEnv(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure audit export")
	}
	var exp audit.Exporter
	if exporter != nil {
		exp = exporter
	}
	scheduler := audit.NewScheduler(ctx, store, svc.Reconciler, exp)
	if err := scheduler.Register(cfg.AuditCron); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule audit")
	}
	scheduler.Start()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes.Handler(routes.InitRouter(svc)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("owner", cfg.OwnerPrincipal).Str("ledger", cfg.LedgerStore).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	scheduler.Stop()

	log.Info().Msg("server exited")
}
