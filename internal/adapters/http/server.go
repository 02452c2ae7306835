package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/sieve"
)

// Metrics holds the counters the validation endpoint records.
type Metrics struct {
	Validations *prometheus.CounterVec
	Duration    prometheus.Histogram
}

// NewMetrics registers the server's metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sieve_validations_total",
				Help: "Total number of validation requests by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "sieve_validation_duration_seconds",
				Help: "Duration of validation requests",
			},
		),
	}
	reg.MustRegister(m.Validations, m.Duration)
	return m
}

// ValidateRequest is the body of POST /v1/validate. Schema and Data
// are raw YAML, each possibly holding multiple documents.
type ValidateRequest struct {
	Schema string `json:"schema"`
	Data   string `json:"data"`
	Strict bool   `json:"strict"`
}

// DocumentResult mirrors one per-document validation result.
type DocumentResult struct {
	DataPath   string   `json:"data_path"`
	SchemaPath string   `json:"schema_path"`
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors"`
}

// ValidateResponse is the body of a successful validation call.
// Valid is false when any document failed; per-document detail is in
// Results.
type ValidateResponse struct {
	Valid   bool             `json:"valid"`
	Results []DocumentResult `json:"results"`
}

// Server exposes schema validation over HTTP.
type Server struct {
	log     *slog.Logger
	metrics *Metrics
}

// NewHandler builds the HTTP routing tree: the validation endpoint, a
// health probe and the Prometheus scrape endpoint.
func NewHandler(log *slog.Logger, reg *prometheus.Registry) http.Handler {
	s := &Server{log: log, metrics: NewMetrics(reg)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/v1/validate", s.Validate)
	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r
}

// Validate handles POST /v1/validate.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.Validations.WithLabelValues("bad_request").Inc()
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Schema == "" {
		s.metrics.Validations.WithLabelValues("bad_request").Inc()
		http.Error(w, "Missing schema", http.StatusBadRequest)
		return
	}

	compiled, err := sieve.MakeSchemaFromString(req.Schema, "<request>")
	if err != nil {
		s.metrics.Validations.WithLabelValues("bad_schema").Inc()
		s.log.Debug("schema rejected", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := sieve.MakeDataFromString(req.Data)
	if err != nil {
		s.metrics.Validations.WithLabelValues("bad_data").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, verr := sieve.Validate(compiled, data, req.Strict)
	resp := ValidateResponse{Valid: verr == nil, Results: make([]DocumentResult, 0, len(results))}
	for _, res := range results {
		errs := res.Errors
		if errs == nil {
			errs = []string{}
		}
		resp.Results = append(resp.Results, DocumentResult{
			DataPath:   res.DataPath,
			SchemaPath: res.SchemaPath,
			Valid:      res.IsValid(),
			Errors:     errs,
		})
	}

	outcome := "valid"
	if !resp.Valid {
		outcome = "invalid"
	}
	s.metrics.Validations.WithLabelValues(outcome).Inc()
	s.metrics.Duration.Observe(time.Since(start).Seconds())
	s.log.Info("validated", "documents", len(results), "valid", resp.Valid, "strict", req.Strict)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("encode response", "err", err)
	}
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
