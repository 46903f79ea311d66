package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"newsradar/config"
	"newsradar/internal/usecase"
)

// Server is the HTTP front of the service.
type Server struct {
	cfg      config.ServerConfig
	search   *usecase.SearchService
	analysis *usecase.AnalysisService
	log      *logrus.Entry
	srv      *http.Server
}

func NewServer(cfg config.ServerConfig, search *usecase.SearchService, analysis *usecase.AnalysisService) *Server {
	return &Server{
		cfg:      cfg,
		search:   search,
		analysis: analysis,
		log:      logrus.WithField("component", "api"),
	}
}

// Handler builds the routed, middleware-wrapped handler. Rate limiting
// applies to everything except the health probe.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/news").Subrouter()
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)
	api.HandleFunc("/semantic-search", s.handleSemanticSearch).Methods(http.MethodPost)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)

	var handler http.Handler = r
	handler = newRateLimiter(s.cfg.RateLimitPerMinute).middleware(handler)
	handler = requestLogging(s.log)(handler)
	handler = requestID(handler)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	})
	return c.Handler(handler)
}

// ListenAndServe runs the server until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
