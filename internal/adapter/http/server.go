package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heatwise/wetbulb-etl/internal/adapter/prefs"
	"github.com/heatwise/wetbulb-etl/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// PreferenceStore persists the operator's display theme override.
type PreferenceStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, theme string) error
	Clear(ctx context.Context) error
}

// Server exposes health, readiness, metrics, on-demand estimate, and display
// preference HTTP endpoints.
type Server struct {
	httpServer   *http.Server
	logger       *slog.Logger
	prefStore    PreferenceStore
	defaultTheme string
}

// NewServer creates the HTTP server and registers all routes. prefStore may be
// nil, in which case the preference endpoints return 503.
func NewServer(addr string, ready ReadinessChecker, prefStore PreferenceStore, defaultTheme string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:       logger,
		prefStore:    prefStore,
		defaultTheme: defaultTheme,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/wetbulb", s.handleEstimate)
	mux.HandleFunc("GET /api/v1/preferences/display", s.handleGetPreference)
	mux.HandleFunc("PUT /api/v1/preferences/display", s.handlePutPreference)
	mux.HandleFunc("DELETE /api/v1/preferences/display", s.handleDeletePreference)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// estimateResponse is the on-demand estimate payload. WetBulbC is null when
// the estimate is undefined; Display always carries a printable string. The
// echoed inputs are pointers because a non-finite query value has no JSON
// number representation and must serialize as null.
type estimateResponse struct {
	TemperatureC *float64 `json:"temperature_c"`
	HumidityPct  *float64 `json:"humidity_pct"`
	InputClamped bool     `json:"input_clamped"`
	WetBulbC     *float64 `json:"wet_bulb_c"`
	HeatRisk     string   `json:"heat_risk,omitempty"`
	Display      string   `json:"display"`
}

// handleEstimate computes a wet-bulb estimate for query parameters
// temperature and humidity. Values are parsed with strconv.ParseFloat, so
// "NaN" and "Inf" are accepted and flow through to the undefined-estimate path
// rather than being rejected.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	temp, err := parseQueryFloat(q.Get("temperature"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "temperature: " + err.Error()})
		return
	}
	rh, err := parseQueryFloat(q.Get("humidity"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "humidity: " + err.Error()})
		return
	}

	resp := estimateResponse{
		TemperatureC: finiteOrNil(temp),
		HumidityPct:  finiteOrNil(rh),
		Display:      "—",
	}

	if wb, ok := domain.EstimateWetBulb(temp, rh); ok {
		resp.WetBulbC = &wb
		resp.HeatRisk = domain.HeatRiskLabel(wb)
		resp.Display = fmt.Sprintf("%.1f °C", wb)
		resp.InputClamped = temp != clampQueryValue(temp, domain.TemperatureMinC, domain.TemperatureMaxC) ||
			rh != clampQueryValue(rh, domain.HumidityMinPct, domain.HumidityMaxPct)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	if s.prefStore == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "preference store unavailable"})
		return
	}

	theme, err := s.prefStore.Get(r.Context())
	if errors.Is(err, prefs.ErrNotSet) {
		writeJSON(w, http.StatusOK, map[string]any{
			"theme":  s.defaultTheme,
			"source": "default",
		})
		return
	}
	if err != nil {
		s.logger.Error("get display preference failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "preference lookup failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"theme":  theme,
		"source": "override",
	})
}

func (s *Server) handlePutPreference(w http.ResponseWriter, r *http.Request) {
	if s.prefStore == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "preference store unavailable"})
		return
	}

	var body struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := s.prefStore.Set(r.Context(), body.Theme); err != nil {
		if errors.Is(err, prefs.ErrInvalidTheme) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "theme must be light or dark"})
			return
		}
		s.logger.Error("set display preference failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "preference update failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"theme":  body.Theme,
		"source": "override",
	})
}

func (s *Server) handleDeletePreference(w http.ResponseWriter, r *http.Request) {
	if s.prefStore == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "preference store unavailable"})
		return
	}

	if err := s.prefStore.Clear(r.Context()); err != nil {
		s.logger.Error("clear display preference failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "preference reset failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"theme":  s.defaultTheme,
		"source": "default",
	})
}

// finiteOrNil returns a pointer to v, or nil when v cannot be represented as
// a JSON number.
func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseQueryFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("missing required parameter")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	return v, nil
}

func clampQueryValue(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
