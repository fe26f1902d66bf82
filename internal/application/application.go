package application

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/chargeable-weight/internal/api"
	"github.com/eugenenazirov/chargeable-weight/internal/calculator"
	"github.com/eugenenazirov/chargeable-weight/internal/config"
	"github.com/eugenenazirov/chargeable-weight/internal/metrics"
	"github.com/eugenenazirov/chargeable-weight/internal/storage"
)

const minSweepInterval = time.Second

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage    *storage.MemoryStorage
	calculator calculator.Calculator
	metrics    *metrics.Metrics
	handler    *api.Handler
	router     http.Handler
	logger     *zap.Logger
	server     *http.Server

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
	janitorDone   chan struct{}
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	store := storage.NewMemoryStorage(
		storage.WithTTL(cfg.SessionTTL),
		storage.WithMaxSessions(cfg.MaxSessions),
	)
	calc := calculator.New()
	m := metrics.New()

	handler := api.NewHandler(calc, store,
		api.WithMetrics(m),
		api.WithDefaults(cfg.SessionDefaults),
		api.WithMaxBoxes(cfg.MaxBoxes),
	)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage:       store,
		calculator:    calc,
		metrics:       m,
		handler:       handler,
		router:        apiRouter,
		logger:        logger,
		server:        NewServer(cfg, BuildRootHandler(apiRouter)),
		sweepInterval: max(cfg.SessionTTL/2, minSweepInterval),
		stop:          make(chan struct{}),
		janitorDone:   make(chan struct{}),
	}, nil
}

// BuildRootHandler mounts the API and metrics routes. Anything else is 404,
// except "/" which points callers at the mode catalogue.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/metrics", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/api/modes", http.StatusFound)
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server and the session janitor in goroutines.
func (a *App) Start() error {
	go a.runJanitor()
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop halts background work started by Start. It is safe to call more than once.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
	})
}

// Done is closed once the janitor started by Start has exited.
func (a *App) Done() <-chan struct{} {
	return a.janitorDone
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

func (a *App) runJanitor() {
	defer close(a.janitorDone)
	ticker := time.NewTicker(a.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.sweep()
		}
	}
}

func (a *App) sweep() int {
	removed := a.storage.Sweep()
	a.metrics.SetActiveSessions(a.storage.Len())
	if removed > 0 {
		a.logger.Debug("expired sessions removed",
			zap.Int("removed", removed),
			zap.Int("active", a.storage.Len()),
		)
	}
	return removed
}
