// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application
// service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uptpik/amanat/internal/application/service"
	"github.com/uptpik/amanat/internal/report"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxUploadMB  int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		MaxUploadMB:  10,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config             ServerConfig
	httpServer         *http.Server
	router             *gin.Engine
	letterService      service.LetterService
	dispositionService service.DispositionService
	trackingService    service.TrackingService
	dashboardService   service.DashboardService
	attachmentService  service.AttachmentService
	userService        service.UserService
	registerExporter   *report.RegisterExporter
	logger             Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	letterService service.LetterService,
	dispositionService service.DispositionService,
	trackingService service.TrackingService,
	dashboardService service.DashboardService,
	attachmentService service.AttachmentService,
	userService service.UserService,
	registerExporter *report.RegisterExporter,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = config.MaxUploadMB << 20

	server := &Server{
		config:             config,
		router:             router,
		letterService:      letterService,
		dispositionService: dispositionService,
		trackingService:    trackingService,
		dashboardService:   dashboardService,
		attachmentService:  attachmentService,
		userService:        userService,
		registerExporter:   registerExporter,
		logger:             logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(
		s.letterService,
		s.dispositionService,
		s.trackingService,
		s.dashboardService,
		s.attachmentService,
		s.userService,
		s.registerExporter,
		s.logger,
	)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// API routes; every call carries the acting user in X-Actor-ID
	api := s.router.Group("/api")
	api.Use(handlers.ActorMiddleware())
	{
		incoming := api.Group("/letters/incoming")
		{
			incoming.POST("", handlers.CreateIncomingLetter)
			incoming.GET("", handlers.ListIncomingLetters)
			incoming.GET("/:id", handlers.GetIncomingLetter)
			incoming.POST("/:id/transition", handlers.TransitionIncomingLetter)
			incoming.DELETE("/:id", handlers.DeleteIncomingLetter)
			incoming.GET("/:id/tracking", handlers.GetIncomingTracking)
			incoming.POST("/:id/attachments", handlers.UploadIncomingAttachment)
			incoming.GET("/:id/attachments", handlers.ListIncomingAttachments)
		}

		outgoing := api.Group("/letters/outgoing")
		{
			outgoing.POST("", handlers.CreateOutgoingLetter)
			outgoing.GET("", handlers.ListOutgoingLetters)
			outgoing.GET("/:id", handlers.GetOutgoingLetter)
			outgoing.POST("/:id/transition", handlers.TransitionOutgoingLetter)
			outgoing.DELETE("/:id", handlers.DeleteOutgoingLetter)
			outgoing.GET("/:id/tracking", handlers.GetOutgoingTracking)
			outgoing.POST("/:id/attachments", handlers.UploadOutgoingAttachment)
			outgoing.GET("/:id/attachments", handlers.ListOutgoingAttachments)
		}

		api.GET("/attachments/:id/download", handlers.DownloadAttachment)

		dispositions := api.Group("/dispositions")
		{
			dispositions.POST("", handlers.CreateDisposition)
			dispositions.GET("", handlers.ListDispositions)
			dispositions.GET("/:id", handlers.GetDisposition)
			dispositions.PATCH("/:id/status", handlers.UpdateDispositionStatus)
			dispositions.DELETE("/:id", handlers.DeleteDisposition)
		}

		api.GET("/dashboard/summary", handlers.DashboardSummary)
		api.GET("/dashboard/dispositions", handlers.DispositionSummary)

		api.GET("/users", handlers.ListUsers)

		api.GET("/reports/register", handlers.ExportRegister)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
