package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/cache"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/config"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/database"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/metrics"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/scheduler"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	log.Logger = logger

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer db.Close()

	ctx := context.Background()
	version, err := database.Migrate(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	logger.Info().Str("path", cfg.Database.Path).Int64("schema_version", version).Msg("connected to database")

	var priceCache cache.PriceCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.TTL)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		priceCache = redisCache
		logger.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("share price cache enabled")
	}

	m := metrics.New()
	opts := service.Options{
		Policy: ledger.Policy{
			CompanyMembershipID: cfg.Ledger.CompanyMembershipID,
			SubtractWithdrawals: cfg.Ledger.SubtractWithdrawals,
		},
		Clock:   period.SystemClock{},
		Logger:  &logger,
		Metrics: m,
	}

	// Create repositories
	memberRepo := repository.NewMemberRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	priceRepo := repository.NewSharePriceRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	dividendRepo := repository.NewDividendRepository(db)

	// Create services
	priceService := service.NewSharePriceService(db, priceRepo, activityRepo, memberRepo, companyRepo, dividendRepo, priceCache, opts)
	companyService := service.NewCompanyService(db, memberRepo, activityRepo, companyRepo, dividendRepo, priceService, opts)
	loader := service.NewDataLoaderService(memberRepo, priceRepo, companyRepo, dividendRepo)

	services := api.Services{
		System: service.NewSystemService(db, map[string]bool{
			"priceCache":   priceCache != nil,
			"balanceSweep": cfg.Scheduler.BalanceSweep != "",
			"internalAuth": cfg.Internal.APIKey != "",
		}),
		Members:  service.NewMemberService(db, memberRepo, activityRepo, priceService, companyService, opts),
		Ledger:   service.NewLedgerService(db, memberRepo, activityRepo, priceService, companyService, opts),
		Prices:   priceService,
		Company:  companyService,
		Dividend: service.NewDividendService(db, dividendRepo, companyRepo, activityRepo, memberRepo, loader, opts),
		Reports:  service.NewReportService(loader, opts),
	}

	// Background jobs
	sched := scheduler.New(logger)
	if err := sched.AddBalanceSweep(cfg.Scheduler.BalanceSweep, companyService, service.TriggerSchedule); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule balance sweep")
	}
	sched.Start()

	if cfg.Internal.APIKey == "" {
		logger.Warn().Msg("INTERNAL_API_KEY is not set, administrative routes will reject every request")
	}

	// Create router
	router := api.NewRouter(services, cfg, logger, m)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	logger.Info().Msg("server exited")
}
