package httpctrl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Agrid-Dev/coolsim/internal/logging"
	"github.com/Agrid-Dev/coolsim/internal/ports"
	"github.com/Agrid-Dev/coolsim/internal/report"
	"github.com/Agrid-Dev/coolsim/internal/thermal"
)

// Commentator produces a natural-language comment on a summary.
type Commentator interface {
	Comment(ctx context.Context, s report.Summary) string
}

type Server struct {
	svc      ports.PlannerService
	srv      *http.Server
	deviceID string

	log        *zap.Logger
	gatherer   prometheus.Gatherer
	ws         http.Handler
	commentary Commentator
}

type Option func(*Server)

func WithLogger(log *zap.Logger) Option { return func(s *Server) { s.log = log } }

// WithMetrics serves the gatherer on /metrics.
func WithMetrics(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }

// WithWebSocket mounts the report stream on /v1/ws.
func WithWebSocket(h http.Handler) Option { return func(s *Server) { s.ws = h } }

// WithCommentary enables POST /v1/commentary.
func WithCommentary(c Commentator) Option { return func(s *Server) { s.commentary = c } }

// New returns a runnable server.
func New(svc ports.PlannerService, addr string, deviceID string, opts ...Option) *Server {
	s := &Server{svc: svc, deviceID: deviceID, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()

	// Read
	mux.HandleFunc("GET /v1", s.handleGet)
	mux.HandleFunc("GET /v1/comparison", s.handleGetComparison)

	// Write: one endpoint per scenario field
	mux.HandleFunc("POST /v1/surface", s.handlePostSurface)
	mux.HandleFunc("POST /v1/height", s.handlePostHeight)
	mux.HandleFunc("POST /v1/temperature_setpoint", s.handlePostSetpoint)
	mux.HandleFunc("POST /v1/insulation", s.handlePostInsulation)
	mux.HandleFunc("POST /v1/unit_type", s.handlePostUnitType)

	mux.HandleFunc("POST /v1/simulate", s.handlePostSimulate)
	if s.commentary != nil {
		mux.HandleFunc("POST /v1/commentary", s.handlePostCommentary)
	}
	if s.ws != nil {
		mux.Handle("GET /v1/ws", s.ws)
	}
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	access := logging.NewWriter(s.log.With(zap.String("component", "http")), zapcore.InfoLevel)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           handlers.LoggingHandler(access, handlers.RecoveryHandler()(mux)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ---- Handlers ----

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	s.respondReport(w, false)
}

func (s *Server) handleGetComparison(w http.ResponseWriter, _ *http.Request) {
	s.respondReport(w, true)
}

func (s *Server) handlePostSurface(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetSurface)
}

func (s *Server) handlePostHeight(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetHeight)
}

func (s *Server) handlePostSetpoint(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, s.svc.SetSetpoint)
}

func (s *Server) handlePostInsulation(w http.ResponseWriter, r *http.Request) {
	// body: {"value": "good"}
	postValue(s, w, r, func(v string) error {
		i, err := thermal.ParseInsulation(v)
		if err != nil {
			return err
		}
		return s.svc.SetInsulation(i)
	})
}

func (s *Server) handlePostUnitType(w http.ResponseWriter, r *http.Request) {
	// body: {"value": "high_efficiency"}
	postValue(s, w, r, func(v string) error {
		u, err := thermal.ParseUnitType(v)
		if err != nil {
			return err
		}
		return s.svc.SetUnitType(u)
	})
}

// handlePostSimulate runs a one-off scenario; the held one is untouched.
func (s *Server) handlePostSimulate(w http.ResponseWriter, r *http.Request) {
	var req report.Scenario
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	sc, err := req.ToScenario()
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.svc.Simulate(sc)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	out := report.FromComparison(c, true)
	out.DeviceID = s.deviceID
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePostCommentary(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Get()
	text := s.commentary.Comment(r.Context(), report.Summarize(snap.Comparison))
	writeJSON(w, http.StatusOK, map[string]string{
		"run_id":     snap.RunID,
		"commentary": text,
	})
}

// ---- generic helpers ----
func (s *Server) respondReport(w http.ResponseWriter, withHours bool) {
	writeJSON(w, http.StatusOK, report.New(s.deviceID, s.svc.Get(), withHours))
}

func postValue[T any](s *Server, w http.ResponseWriter, r *http.Request, apply func(T) error) {
	dec := json.NewDecoder(r.Body)
	var req struct {
		Value *T `json:"value"`
	}
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Value == nil {
		writeErr(w, http.StatusBadRequest, "missing field 'value'")
		return
	}

	if err := apply(*req.Value); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondReport(w, false)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
