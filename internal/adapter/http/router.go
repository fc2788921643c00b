package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mandibook/mandiledger/internal/adapter/http/handler"
	"github.com/mandibook/mandiledger/internal/adapter/http/middleware"
	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/infrastructure/auth"
	"github.com/mandibook/mandiledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransactionHandler *handler.TransactionHandler
	PaymentHandler     *handler.PaymentHandler
	DashboardHandler   *handler.DashboardHandler
	CashBookHandler    *handler.CashBookHandler
	SyncHandler        *handler.SyncHandler
	SessionHandler     *handler.SessionHandler
	HealthHandler      *handler.HealthHandler
	JWTManager         *auth.JWTManager
	IdempotencyStore   usecase.IdempotencyStore
	RateLimiter        *middleware.RateLimiter
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.Session(cfg.JWTManager))
		}
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		if cfg.SessionHandler != nil {
			r.Post("/session/login", cfg.SessionHandler.Login)
		}

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Route("/buy", func(r chi.Router) {
				r.Post("/", cfg.TransactionHandler.CreateBuy)
				r.Get("/", cfg.TransactionHandler.ListBuys)
				r.Get("/{id}", cfg.TransactionHandler.GetBuy)
				r.Put("/{id}", cfg.TransactionHandler.UpdateBuy)
				r.Delete("/{id}", cfg.TransactionHandler.Delete(domain.TypeBuy))
				r.Get("/{id}/payments", cfg.PaymentHandler.ListByTransaction(domain.TypeBuy))
			})
			r.Route("/sell", func(r chi.Router) {
				r.Post("/", cfg.TransactionHandler.CreateSell)
				r.Get("/", cfg.TransactionHandler.ListSells)
				r.Get("/{id}", cfg.TransactionHandler.GetSell)
				r.Put("/{id}", cfg.TransactionHandler.UpdateSell)
				r.Delete("/{id}", cfg.TransactionHandler.Delete(domain.TypeSell))
				r.Get("/{id}/payments", cfg.PaymentHandler.ListByTransaction(domain.TypeSell))
			})
			r.Route("/lend", func(r chi.Router) {
				r.Post("/", cfg.TransactionHandler.CreateLend)
				r.Get("/", cfg.TransactionHandler.ListLends)
				r.Get("/{id}", cfg.TransactionHandler.GetLend)
				r.Put("/{id}", cfg.TransactionHandler.UpdateLend)
				r.Delete("/{id}", cfg.TransactionHandler.Delete(domain.TypeLend))
				r.Get("/{id}/accrual", cfg.PaymentHandler.PreviewAccrual)
				r.Post("/{id}/payments", cfg.PaymentHandler.AddLendPayment)
				r.Get("/{id}/payments", cfg.PaymentHandler.ListByTransaction(domain.TypeLend))
			})
			r.Route("/expense", func(r chi.Router) {
				r.Post("/", cfg.TransactionHandler.CreateExpense)
				r.Get("/", cfg.TransactionHandler.ListExpenses)
				r.Get("/{id}", cfg.TransactionHandler.GetExpense)
				r.Put("/{id}", cfg.TransactionHandler.UpdateExpense)
				r.Delete("/{id}", cfg.TransactionHandler.Delete(domain.TypeExpense))
			})
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Post("/", cfg.PaymentHandler.Add)
			r.Delete("/{id}", cfg.PaymentHandler.Delete)
		})

		// Dashboard
		r.Get("/dashboard/summary", cfg.DashboardHandler.Summary)

		// Cash book
		r.Route("/cashbook", func(r chi.Router) {
			r.Get("/", cfg.CashBookHandler.Balance)
			r.Put("/override", cfg.CashBookHandler.Override)
			r.Post("/reset", cfg.CashBookHandler.Reset)
		})

		// Sync
		r.Route("/sync", func(r chi.Router) {
			r.With(middleware.RequireSession).Post("/now", cfg.SyncHandler.SyncNow)
			r.Get("/logs", cfg.SyncHandler.ListLogs)
		})
	})

	return r
}
