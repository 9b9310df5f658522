package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"llamable/config"
	"llamable/generator"
)

// maxBodyBytes bounds request bodies; prior artifacts travel inline.
const maxBodyBytes = 8 << 20

type Server struct {
	agent   *generator.Agent
	cfg     config.ServerConfig
	logger  *zap.Logger
	metrics *Metrics
}

func New(agent *generator.Agent, cfg config.ServerConfig, logger *zap.Logger) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		agent:   agent,
		cfg:     cfg,
		logger:  logger,
		metrics: NewMetrics(),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Options("/*", handleOptions)
		r.Post("/generate-code", s.handleGenerate)
		r.Post("/preview", s.handlePreview)
	})
	return r
}
