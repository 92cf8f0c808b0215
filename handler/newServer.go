package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dropzone/live"
	"dropzone/metrics"
	"dropzone/models"
	"dropzone/widget"
)

// RecordStore persists uploaded files.
type RecordStore interface {
	Put(ctx context.Context, rec models.Record, r io.Reader) error
	List(ctx context.Context) ([]models.Record, error)
	Remove(ctx context.Context, id string) error
}

type Deps struct {
	Store    RecordStore
	Policy   widget.Policy
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// SessionKey signs the flash cookie.
	SessionKey []byte
}

type Server struct {
	HTTPServer *http.Server
	Ctx        context.Context
	Router     *chi.Mux

	store      RecordStore
	policy     widget.Policy
	extensions []string
	sessions   sessions.Store
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewServer(ctx context.Context, deps Deps, addr string) *Server {
	router := chi.NewRouter()

	s := &Server{
		Router:     router,
		Ctx:        ctx,
		store:      deps.Store,
		policy:     deps.Policy,
		extensions: deps.Policy.Extensions(),
		sessions:   newSessionStore(deps.SessionKey),
		metrics:    deps.Metrics,
		now:        time.Now,
	}

	s.setupRoutes(deps)

	s.HTTPServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("server created", "address", s.HTTPServer.Addr)
	return s
}

func (s *Server) setupRoutes(deps Deps) {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.RealIP)
	s.Router.Use(middleware.Recoverer)

	liveCfg := live.DefaultConfig()
	liveCfg.Policy = s.policy
	liveCfg.Metrics = s.metrics
	s.Router.Get("/ws", live.Handler(s.Ctx, liveCfg))

	s.Router.Group(func(r chi.Router) {
		r.Use(requestLogger)

		r.Get("/", s.Index)
		r.Get("/static/upload.js", s.Script)
		r.Post("/upload", s.Upload)
		r.Get("/records", s.Records)
		r.Post("/records/{record_id}/delete", s.DeleteRecord)
		r.Get("/healthz", s.Health)

		gatherer := deps.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}
