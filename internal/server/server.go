package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pathshare/tracker/internal/service"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	tracker    *service.Tracker
	logger     *logrus.Logger
	validate   *validator.Validate
	upgrader   websocket.Upgrader
}

// Config holds server configuration
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server around the tracker service
func NewServer(cfg Config, tracker *service.Tracker, logger *logrus.Logger) *Server {
	s := &Server{
		tracker:  tracker,
		logger:   logger,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Viewers connect from arbitrary origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/api/positions", s.handleSubmitFix).Methods("POST")
	router.HandleFunc("/api/routes", s.handleSubmitRoute).Methods("POST")
	router.HandleFunc("/api/snapshot", s.handleSnapshot).Methods("GET")
	router.HandleFunc("/api/devices", s.handleDevices).Methods("GET")
	router.HandleFunc("/ws", s.handleObserver).Methods("GET")

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Infof("Starting server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %v", err)
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
