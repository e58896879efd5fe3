package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/san-kum/physview/internal/apiclient"
	"github.com/san-kum/physview/internal/store"
	"github.com/san-kum/physview/internal/telemetry"
	"github.com/san-kum/physview/internal/web"
)

const pageTitle = "Physics Formula Viewer"

// Server serves the formulas API and the HTML formula page.
type Server struct {
	httpServer *http.Server
	store      store.Store
	logger     *zap.Logger
}

type Config struct {
	Addr           string
	AllowedOrigins []string
}

// New creates a configured HTTP server.
func New(cfg Config, st store.Store, logger *zap.Logger) *Server {
	s := &Server{store: st, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthz)
	mux.HandleFunc("GET /readyz", s.readyz)
	mux.HandleFunc("GET "+apiclient.FormulasPath, s.listFormulas)
	mux.HandleFunc("GET /{$}", s.index)

	// Build middleware chain: logging -> cors -> mux.
	var handler http.Handler = mux
	handler = corsMiddleware(cfg.AllowedOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) listFormulas(w http.ResponseWriter, r *http.Request) {
	ctx, span := telemetry.Tracer("server").Start(r.Context(), "formulas.list")
	defer span.End()

	formulas, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("listing formulas", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.Int("formulas.count", len(formulas)))
	s.writeJSON(w, http.StatusOK, formulas)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	data := web.PageData{Title: pageTitle}
	status := http.StatusOK

	formulas, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("listing formulas for page", zap.Error(err))
		data.Error = err.Error()
		status = http.StatusInternalServerError
	} else {
		data.Formulas = formulas
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := web.RenderIndex(w, data); err != nil {
		s.logger.Error("rendering page", zap.Error(err))
	}
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", zap.Error(err))
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not ready\n"))
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready\n"))
}

// healthz returns 200 "ok\n" unconditionally.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// writeJSON sends v with status. Once the header is out an encode failure can
// only be logged.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("writing json response", zap.Int("status", status), zap.Error(err))
	}
}
