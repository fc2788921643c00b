package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/mandibook/mandiledger/internal/adapter/http"
	"github.com/mandibook/mandiledger/internal/adapter/http/handler"
	"github.com/mandibook/mandiledger/internal/adapter/http/middleware"
	"github.com/mandibook/mandiledger/internal/adapter/remote"
	postgresRepo "github.com/mandibook/mandiledger/internal/adapter/repository/postgres"
	redisRepo "github.com/mandibook/mandiledger/internal/adapter/repository/redis"
	"github.com/mandibook/mandiledger/internal/infrastructure/auth"
	"github.com/mandibook/mandiledger/internal/infrastructure/config"
	"github.com/mandibook/mandiledger/internal/infrastructure/logger"
	"github.com/mandibook/mandiledger/internal/infrastructure/metrics"
	"github.com/mandibook/mandiledger/internal/infrastructure/postgres"
	"github.com/mandibook/mandiledger/internal/infrastructure/redis"
	"github.com/mandibook/mandiledger/internal/infrastructure/syncworker"
	"github.com/mandibook/mandiledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zlog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = zlog

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	zlog.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	zlog.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	buyRepo := postgresRepo.NewBuyRepository(pool)
	sellRepo := postgresRepo.NewSellRepository(pool)
	lendRepo := postgresRepo.NewLendRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceSequenceRepository(pool)
	mappingRepo := postgresRepo.NewMappingRepository(pool)
	syncLogRepo := postgresRepo.NewSyncLogRepository(pool)
	cashBookRepo := postgresRepo.NewCashBookRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	m := metrics.New()

	// Cloud mirror is optional; without it the ledger runs local-only and
	// sync sweeps are rejected with a clear error.
	var mirror usecase.RemoteMirror
	if cfg.MirrorEnabled() {
		mirror = remote.NewClient(cfg.MirrorBaseURL, zlog,
			remote.WithAuthToken(cfg.MirrorAuthToken))
		zlog.Info().Str("base_url", cfg.MirrorBaseURL).Msg("cloud mirror configured")
	} else {
		zlog.Info().Msg("cloud mirror disabled, running local-only")
	}

	// Use cases
	cashBookUC := usecase.NewCashBookUseCase(cashBookRepo, zlog)
	syncUC := usecase.NewSyncUseCase(txManager, buyRepo, sellRepo, lendRepo, expenseRepo,
		mappingRepo, syncLogRepo, mirror, idGen, zlog, m, cfg.SyncBatchSize)
	transactionUC := usecase.NewTransactionUseCase(txManager, buyRepo, sellRepo, lendRepo,
		expenseRepo, paymentRepo, invoiceRepo, mappingRepo, cashBookUC, syncUC, idGen, m)
	paymentUC := usecase.NewPaymentUseCase(txManager, buyRepo, sellRepo, lendRepo,
		paymentRepo, cashBookUC, syncUC, idGen, m)
	lendUC := usecase.NewLendUseCase(txManager, lendRepo, paymentRepo, cashBookUC, syncUC, idGen, m)
	dashboardUC := usecase.NewDashboardUseCase(buyRepo, sellRepo, lendRepo, expenseRepo,
		paymentRepo, cashBookUC, cache, cfg.DashboardCacheTTL, zlog)

	// Session is optional; without a JWT secret the API is open and the
	// ledger never leaves the machine.
	var (
		jwtManager     *auth.JWTManager
		sessionHandler *handler.SessionHandler
	)
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		sessionHandler = handler.NewSessionHandler(jwtManager,
			cfg.SessionUserID, cfg.SessionPhone, cfg.SessionPIN)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rateLimiter.StartJanitor(ctx, time.Hour)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		PaymentHandler:     handler.NewPaymentHandler(paymentUC, lendUC),
		DashboardHandler:   handler.NewDashboardHandler(dashboardUC),
		CashBookHandler:    handler.NewCashBookHandler(cashBookUC),
		SyncHandler:        handler.NewSyncHandler(syncUC),
		SessionHandler:     sessionHandler,
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		JWTManager:         jwtManager,
		IdempotencyStore:   idempotencyStore,
		RateLimiter:        rateLimiter,
		Logger:             zlog,
	})

	// Periodic reconciliation against the mirror
	if cfg.MirrorEnabled() {
		worker := syncworker.New(syncworker.Config{
			Syncer:   syncUC,
			Retrier:  postgresRepo.NewRetrier(),
			Interval: cfg.SyncInterval,
			UserID:   cfg.SessionUserID,
		})
		go func() {
			if err := worker.Start(ctx); err != nil && ctx.Err() == nil {
				zlog.Error().Err(err).Msg("sync worker stopped")
			}
		}()
	}

	server := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		zlog.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	zlog.Info().Msg("server stopped")
}

// listenAddr accepts either a bare port or a full host:port.
func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
