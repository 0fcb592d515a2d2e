package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/couchcryptid/air-quality-dashboard/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboard is the read side of the pipeline served over HTTP.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Years(ctx context.Context) ([]int, error)
	Refresh(ctx context.Context, sel pipeline.Selection) (pipeline.View, error)
	Daily(ctx context.Context, sel pipeline.Selection) (string, []domain.DailyAggregate, error)
	Correlation(ctx context.Context, sel pipeline.Selection) (domain.CorrelationMatrix, error)
	ClearCache() bool
}

// Server exposes the dashboard API, charts, health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the health, metrics, API, and chart routes.
func NewServer(addr string, dashboard Dashboard, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboard: dashboard,
		logger:    logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(dashboard))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/years", s.handleYears)
		r.Get("/view", s.handleView)
		r.Get("/daily", s.handleDaily)
		r.Get("/correlation", s.handleCorrelation)
		r.Post("/cache/clear", s.handleClearCache)
	})

	r.Route("/charts", func(r chi.Router) {
		r.Get("/daily.png", s.handleDailyChart)
		r.Get("/correlation.png", s.handleCorrelationChart)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.dashboard.Years(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string][]int{"years": years})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.dashboard.Refresh(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

type dailyResponse struct {
	Field string                  `json:"field"`
	Year  int                     `json:"year,omitempty"`
	Daily []domain.DailyAggregate `json:"daily"`
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	field, daily, err := s.dashboard.Daily(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, dailyResponse{Field: field, Year: sel.Year, Daily: daily})
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.dashboard.Correlation(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, m)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]bool{"cleared": s.dashboard.ClearCache()})
}

func (s *Server) handleDailyChart(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	field, daily, err := s.dashboard.Daily(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.WriteDailyPNG(&buf, field, daily); err != nil {
		s.writeError(w, r, err)
		return
	}
	writePNG(w, buf.Bytes())
}

func (s *Server) handleCorrelationChart(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.dashboard.Correlation(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.WriteCorrelationPNG(&buf, m); err != nil {
		s.writeError(w, r, err)
		return
	}
	writePNG(w, buf.Bytes())
}

// writeError maps pipeline and input errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadQuery), errors.Is(err, pipeline.ErrInvalidSelection):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrParse):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

var errBadQuery = errors.New("bad query")

// parseSelection reads year, field, and an optional low/high range from the
// query string. range_field picks the ranged field; it defaults to field.
func parseSelection(r *http.Request) (pipeline.Selection, error) {
	q := r.URL.Query()
	sel := pipeline.Selection{Field: q.Get("field")}

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return pipeline.Selection{}, fmt.Errorf("%w: year %q is not an integer", errBadQuery, v)
		}
		sel.Year = year
	}

	low, high := q.Get("low"), q.Get("high")
	if low == "" && high == "" {
		return sel, nil
	}
	if low == "" || high == "" {
		return pipeline.Selection{}, fmt.Errorf("%w: low and high must be given together", errBadQuery)
	}
	lo, err := strconv.ParseFloat(low, 64)
	if err != nil {
		return pipeline.Selection{}, fmt.Errorf("%w: low %q is not a number", errBadQuery, low)
	}
	hi, err := strconv.ParseFloat(high, 64)
	if err != nil {
		return pipeline.Selection{}, fmt.Errorf("%w: high %q is not a number", errBadQuery, high)
	}
	rangeField := q.Get("range_field")
	if rangeField == "" {
		rangeField = sel.Field
	}
	sel.Range = &pipeline.Range{Field: rangeField, Low: lo, High: hi}
	return sel, nil
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client went away
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
