// ABOUTME: HTTP API exposing meals, workouts, weigh-ins and live dashboards.
// ABOUTME: Builds the chi router with CORS, request metrics and the Prometheus endpoint.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/harperreed/fitlog/internal/dailylog"
	"github.com/harperreed/fitlog/internal/generate"
	"github.com/harperreed/fitlog/internal/identity"
	"github.com/harperreed/fitlog/internal/logging"
	"github.com/harperreed/fitlog/internal/progress"
	"github.com/harperreed/fitlog/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const (
	requestTimeout = 60 * time.Second
	maxBodyBytes   = 1 << 20
)

// Params configures the API.
type Params struct {
	Aggregator     *dailylog.Aggregator
	Reader         *progress.Reader
	Coach          *generate.Coach
	Session        *identity.Session
	Logger         *log.Logger
	Metrics        *telemetry.Manager
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	Now            func() time.Time
}

// API serves the HTTP endpoints.
type API struct {
	agg            *dailylog.Aggregator
	reader         *progress.Reader
	coach          *generate.Coach
	session        *identity.Session
	logger         *log.Logger
	metrics        *telemetry.Manager
	gatherer       prometheus.Gatherer
	allowedOrigins []string
	now            func() time.Time
	upgrader       websocket.Upgrader
}

// New creates the API. Aggregator, Reader and Session are required.
func New(p Params) (*API, error) {
	if p.Aggregator == nil || p.Reader == nil || p.Session == nil {
		return nil, errors.New("api needs an aggregator, a progress reader and a session")
	}
	a := &API{
		agg:            p.Aggregator,
		reader:         p.Reader,
		coach:          p.Coach,
		session:        p.Session,
		logger:         p.Logger,
		metrics:        p.Metrics,
		gatherer:       p.Gatherer,
		allowedOrigins: p.AllowedOrigins,
		now:            p.Now,
	}
	if a.logger == nil {
		a.logger = logging.Discard()
	}
	if a.metrics == nil {
		a.metrics = telemetry.NewTestManager()
	}
	if a.gatherer == nil {
		a.gatherer = prometheus.DefaultGatherer
	}
	if len(a.allowedOrigins) == 0 {
		a.allowedOrigins = []string{"*"}
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.upgrader = websocket.Upgrader{CheckOrigin: a.checkOrigin}
	return a, nil
}

// Router returns the HTTP handler.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(a.requestMetrics)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: a.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(corsMiddleware.Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			// {date} is YYYY-MM-DD or "today"
			r.Get("/days/{date}/diet", a.GetDietLog)
			r.Post("/days/{date}/meals", a.AddMeal)
			r.Delete("/days/{date}/meals/{mealId}", a.DeleteMeal)
			r.Post("/days/{date}/meals/estimate", a.EstimateMeal)

			r.Get("/days/{date}/plan", a.GetPlan)
			r.Post("/days/{date}/plan", a.GeneratePlan)
			r.Get("/days/{date}/workout", a.GetWorkout)
			r.Post("/days/{date}/workout", a.FinishWorkout)

			r.Get("/days/{date}/summary", a.GetSummary)

			r.Get("/progress", a.GetProgress)
			r.Post("/progress", a.LogWeight)
			r.Post("/progress/summary", a.SummarizeProgress)
		})

		// WebSockets
		r.Get("/ws/days/{date}", a.StreamDay)
		r.Get("/ws/progress", a.StreamProgress)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	return r
}

// ListenAndServe serves until ctx ends, then shuts down gracefully.
func (a *API) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("api listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// requestMetrics counts and times every request and logs it.
func (a *API) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(begin)
		a.metrics.HistRequestDuration.Observe(elapsed.Seconds())
		a.metrics.CounterRequests.With(prometheus.Labels{
			"method": r.Method,
			"status": strconv.Itoa(status),
		}).Inc()
		a.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (a *API) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range a.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
