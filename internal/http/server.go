// Package http exposes the ledger and the monthly summaries as a JSON API.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
)

// Options tunes the server. Zero values select the defaults.
type Options struct {
	// StoreTimeout bounds the store reads behind previews, dashboards and readiness.
	StoreTimeout time.Duration
	RateLimit    ratelimit.Config
}

type Server struct {
	http.Server
	ledger    *services.LedgerService
	summaries *services.SummaryService
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector

	storeTimeout time.Duration
	started      time.Time
	now          func() time.Time
}

func NewServer(addr string, ledger *services.LedgerService, summaries *services.SummaryService, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 10 * time.Second
	}
	if opts.RateLimit.RequestsPerMinute <= 0 {
		opts.RateLimit = ratelimit.DefaultConfig()
	}

	s := &Server{
		ledger:       ledger,
		summaries:    summaries,
		logger:       logger.WithComponent(log.ComponentHTTP),
		limiter:      ratelimit.NewLimiter(opts.RateLimit),
		detector:     security.NewDetector(),
		storeTimeout: opts.StoreTimeout,
		started:      time.Now(),
		now:          time.Now,
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /cards", s.handleListCards)
	mux.HandleFunc("POST /cards", s.handleCreateCard)
	mux.HandleFunc("GET /cards/{id}", s.handleGetCard)
	mux.HandleFunc("PUT /cards/{id}", s.handleUpdateCard)
	mux.HandleFunc("DELETE /cards/{id}", s.handleDeleteCard)

	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /budgets", s.handleListBudgets)
	mux.HandleFunc("POST /budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PUT /budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /summaries", s.handleListSummaries)
	mux.HandleFunc("POST /summaries", s.handleUpsertSummary)
	mux.HandleFunc("GET /summaries/preview", s.handlePreviewSummary)
	mux.HandleFunc("GET /summaries/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /summaries/export.xlsx", s.handleExportXLSX)
	mux.HandleFunc("GET /summaries/{id}", s.handleGetSummary)
	mux.HandleFunc("DELETE /summaries/{id}", s.handleDeleteSummary)

	mux.HandleFunc("GET /dashboard", s.handleDashboard)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, core.ErrNotFound, "/dashboard")
	})

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = log.RequestMiddleware(s.logger, trace.RequestID, s.detector.ExtractClientIP)(h)
	h = trace.Middleware(h)
	return h
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: errorDetail{
		Kind:     KindRateLimited,
		Message:  "rate limit exceeded, try again later",
		Recovery: r.URL.Path,
	}})
}

// withStoreTimeout bounds read-heavy handlers.
func (s *Server) withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// Shutdown stops background goroutines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// ListenAndServe treats a graceful shutdown as success.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
