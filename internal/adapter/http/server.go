package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// ReportProvider returns the most recent report, if any.
type ReportProvider interface {
	LastReport() (domain.Report, bool)
}

// Pipeline is what the server needs from the job.
type Pipeline interface {
	sharedobs.ReadinessChecker
	ReportProvider
}

// Server exposes health, readiness, metrics and the latest exceedance records.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /exceedances routes.
func NewServer(addr string, p Pipeline, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(p))
	mux.HandleFunc("GET /exceedances", handleExceedances(p))
	mux.Handle("GET /metrics", promhttp.Handler())

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

// exceedanceResponse is the /exceedances body.
type exceedanceResponse struct {
	Years       []int                     `json:"years"`
	Norm        float64                   `json:"norm"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Records     []domain.ExceedanceRecord `json:"records"`
	Skipped     []skippedAdjustment       `json:"skipped_adjustments,omitempty"`
}

type skippedAdjustment struct {
	Rule    string `json:"rule"`
	Station string `json:"station"`
	Reason  string `json:"reason"`
}

func handleExceedances(reports ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		report, ok := reports.LastReport()
		if !ok {
			sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no report yet"})
			return
		}

		resp := exceedanceResponse{
			Years:       report.Years,
			Norm:        report.Exceedance.Norm,
			GeneratedAt: report.GeneratedAt,
			Records:     report.ExceedanceRecords(),
		}
		for _, o := range report.Exceedance.Adjustments {
			if o.Status == domain.AdjustmentSkipped {
				resp.Skipped = append(resp.Skipped, skippedAdjustment{Rule: o.Rule, Station: o.Column.Code, Reason: o.Reason})
			}
		}
		sharedobs.WriteJSON(w, http.StatusOK, resp)
	}
}
