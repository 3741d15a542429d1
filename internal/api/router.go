package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/middleware"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/config"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/metrics"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/service"
)

// Services holds the services the router exposes.
type Services struct {
	System   *service.SystemService
	Members  *service.MemberService
	Ledger   *service.LedgerService
	Prices   *service.SharePriceService
	Company  *service.CompanyService
	Dividend *service.DividendService
	Reports  *service.ReportService
}

// NewRouter creates and configures the HTTP router. m may be nil, in which
// case no /metrics endpoint is mounted.
func NewRouter(svc Services, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	if cfg.RateLimit.PerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit.PerMinute, time.Minute))
	}

	if m != nil {
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	requireAPIKey := custommiddleware.NewAPIKeyMiddleware(cfg.Internal.APIKey)

	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/member", func(r chi.Router) {
			memberHandler := handlers.NewMemberHandler(svc.Members, svc.Ledger)
			r.Get("/", memberHandler.Members)
			r.Post("/", memberHandler.Register)
			r.Post("/import", memberHandler.Import)
			r.Get("/phone/{phone}", memberHandler.MemberByPhone)
			r.Get("/membership/{membershipId}", memberHandler.MemberByMembershipID)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", memberHandler.Member)
				r.Post("/investment", memberHandler.RecordInvestment)
				r.Post("/withdrawal", memberHandler.RecordWithdrawal)
				r.Get("/cumulative", memberHandler.Cumulative)
			})
		})

		r.Route("/share-price", func(r chi.Router) {
			priceHandler := handlers.NewSharePriceHandler(svc.Prices)
			r.Get("/", priceHandler.SharePrices)
			r.Get("/{year}/{month}", priceHandler.SharePrice)
			r.With(requireAPIKey).Put("/{year}/{month}", priceHandler.SetSharePrice)
		})

		r.Route("/company", func(r chi.Router) {
			companyHandler := handlers.NewCompanyHandler(svc.Company)
			r.Get("/pool", companyHandler.Pool)
			r.Get("/transactions", companyHandler.Transactions)
			r.With(requireAPIKey).Post("/invest-balance", companyHandler.InvestBalance)
		})

		r.Route("/dividend", func(r chi.Router) {
			dividendHandler := handlers.NewDividendHandler(svc.Dividend)
			r.Get("/", dividendHandler.Dividends)
			r.Post("/", dividendHandler.Declare)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", dividendHandler.Dividend)
				r.Get("/distribution", dividendHandler.Distribution)
				r.With(requireAPIKey).Post("/confirm", dividendHandler.Confirm)
			})
		})

		r.Route("/report", func(r chi.Router) {
			reportHandler := handlers.NewReportHandler(svc.Reports)
			r.Get("/{type}", reportHandler.Report)
		})
	})

	return r
}
