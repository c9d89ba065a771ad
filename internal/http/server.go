package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contas/internal/log"
	"contas/internal/middleware/ratelimit"
	"contas/internal/middleware/security"
	"contas/internal/middleware/trace"
	"contas/internal/services"
)

// Pinger is the readiness probe of the storage layer.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the server handles requests with.
type Deps struct {
	Ledger      *services.LedgerService
	Reports     *services.ReportService
	Simulations *services.SimulationService
	Pinger      Pinger
	Logger      *log.Logger
	Registry    *prometheus.Registry

	// WriteRequestsPerMinute caps write-method requests per client IP.
	// Zero means the rate limiter default.
	WriteRequestsPerMinute int
}

type Server struct {
	http.Server

	ledger       *services.LedgerService
	reports      *services.ReportService
	sims         *services.SimulationService
	pinger       Pinger
	limiter      *ratelimit.Limiter
	startedAt    time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer wires the middleware chain and routes, returning a server ready
// for ListenAndServe.
func NewServer(addr string, deps Deps) *Server {
	limiterCfg := ratelimit.DefaultConfig()
	if deps.WriteRequestsPerMinute > 0 {
		limiterCfg.RequestsPerMinute = deps.WriteRequestsPerMinute
	}
	if deps.Registry != nil {
		rejected := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contas_http_rate_limited_total",
			Help: "Write requests rejected by the rate limiter.",
		})
		deps.Registry.MustRegister(rejected)
		limiterCfg.Rejected = rejected
	}

	s := &Server{
		ledger:    deps.Ledger,
		reports:   deps.Reports,
		sims:      deps.Simulations,
		pinger:    deps.Pinger,
		limiter:   ratelimit.NewLimiter(limiterCfg),
		startedAt: time.Now(),
		now:       time.Now,
	}

	mux := http.NewServeMux()
	s.routes(mux, deps.Registry)

	var metrics *trace.Metrics
	if deps.Registry != nil {
		metrics = trace.NewMetrics(deps.Registry)
	}

	var handler http.Handler = mux
	handler = s.limiter.Middleware(security.ExtractClientIP)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(security.ExtractClientIP, metrics).Middleware(handler)
	if deps.Logger != nil {
		handler = log.Middleware(deps.Logger)(handler)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /api/people", s.handleListPeople)
	mux.HandleFunc("POST /api/people", s.handleCreatePerson)
	mux.HandleFunc("GET /api/people/{id}", s.handleGetPerson)
	mux.HandleFunc("PATCH /api/people/{id}", s.handlePatchPerson)
	mux.HandleFunc("DELETE /api/people/{id}", s.handleDeletePerson)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PATCH /api/categories/{id}", s.handlePatchCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handlePatchTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/reports/summary", s.handleReportSummary)
	mux.HandleFunc("GET /api/reports/settlement", s.handleReportSettlement)
	mux.HandleFunc("GET /api/reports/outliers", s.handleReportOutliers)
	mux.HandleFunc("GET /api/reports/health", s.handleReportHealth)
	mux.HandleFunc("POST /api/months/close", s.handleCloseMonth)

	mux.HandleFunc("POST /api/simulations/run", s.handleRunSimulation)
	mux.HandleFunc("GET /api/simulations", s.handleListSimulations)
	mux.HandleFunc("POST /api/simulations", s.handleCreateSimulation)
	mux.HandleFunc("GET /api/simulations/{id}", s.handleGetSimulation)
	mux.HandleFunc("PUT /api/simulations/{id}", s.handleUpdateSimulation)
	mux.HandleFunc("DELETE /api/simulations/{id}", s.handleDeleteSimulation)
	mux.HandleFunc("POST /api/simulations/{id}/run", s.handleRunSavedSimulation)
}

// Shutdown stops the rate limiter's cleanup goroutine alongside the
// listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true

	if s.pinger == nil {
		checks["database"] = "not_configured"
		ready = false
	} else if err := s.pinger.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}

	status := http.StatusOK
	label := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		label = "not_ready"
	}
	writeJSON(w, status, map[string]any{
		"status": label,
		"checks": checks,
	})
}
