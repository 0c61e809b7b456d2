package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ridwanfathin/donation-invoice-service/docs"
	"github.com/ridwanfathin/donation-invoice-service/internal/config"
	"github.com/ridwanfathin/donation-invoice-service/internal/handler"
	"github.com/ridwanfathin/donation-invoice-service/internal/middleware"
	"github.com/ridwanfathin/donation-invoice-service/internal/model"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the handlers and auth collaborators the routes are built from
type Dependencies struct {
	InvoiceHandler *handler.InvoiceHandler
	AuthHandler    *handler.AuthHandler
	PublicHandler  *handler.PublicHandler
	Sessions       middleware.SessionResolver
	Authorizer     *service.Authorizer
}

// Server represents the HTTP server for the invoice service
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *config.Config
	logger     *slog.Logger
}

// NewServer creates and configures a new server instance
func NewServer(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	maxBody, err := cfg.MaxRequestBytes()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestResponseLogger(logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.BodyLimit(maxBody))
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	server := &Server{
		router: router,
		config: cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}

	server.setupRoutes(deps)

	return server, nil
}

// GetRouter returns the gin router instance
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// setupRoutes configures all application routes
func (s *Server) setupRoutes(deps Dependencies) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.HealthResponse{Status: "ok"})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Access the Swagger UI at http://localhost:8080/api-docs/index.html
	swaggerHandler := ginSwagger.WrapHandler(swaggerFiles.Handler)
	s.router.GET("/api-docs/*any", swaggerHandler)

	s.router.GET("/api-docs", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api-docs/index.html")
	})

	auth := s.router.Group("/auth")
	{
		auth.GET("/login", deps.AuthHandler.Login)
		auth.GET("/callback", deps.AuthHandler.Callback)
		auth.POST("/logout", deps.AuthHandler.Logout)
		auth.GET("/me", middleware.Auth(deps.Sessions), deps.AuthHandler.Me)
	}

	invoices := s.router.Group("/invoices")
	{
		// The serial number is the capability on these routes
		invoices.GET("/download", deps.InvoiceHandler.DownloadInvoice)
		invoices.GET("/regenerate", deps.InvoiceHandler.RegenerateInvoice)
		invoices.POST("/regenerate", deps.InvoiceHandler.RegenerateInvoice)

		admin := invoices.Group("")
		admin.Use(middleware.Auth(deps.Sessions), middleware.RequireAdmin(deps.Authorizer))
		admin.POST("", deps.InvoiceHandler.CreateInvoice)
		admin.GET("", deps.InvoiceHandler.ListInvoices)
		admin.GET("/:id/download", deps.InvoiceHandler.GetInvoiceLink)
	}

	s.router.POST("/contact", deps.PublicHandler.SubmitContact)
	s.router.POST("/join", deps.PublicHandler.SubmitJoin)
	s.router.POST("/donations/orders", deps.PublicHandler.CreateDonationOrder)
}

// Start begins listening for requests and handles graceful shutdown
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "port", s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	s.logger.Info("shutting down server")
	if err := s.Shutdown(); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("server exited gracefully")
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
