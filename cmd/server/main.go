package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ridwanfathin/donation-invoice-service/internal/bootstrap"
	"github.com/ridwanfathin/donation-invoice-service/internal/config"
	"github.com/ridwanfathin/donation-invoice-service/internal/handler"
	"github.com/ridwanfathin/donation-invoice-service/internal/logger"
	"github.com/ridwanfathin/donation-invoice-service/internal/metrics"
	"github.com/ridwanfathin/donation-invoice-service/internal/server"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
)

// @title Donation Invoice Service API
// @version 1.0
// @description Administrator-gated invoice generation and the public forms of the donation site.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := cfg.CheckAuth(); err != nil {
		log.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server shutdown complete")
}

func run(cfg *config.Config, log *slog.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	metrics.Register()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Info("connecting to database")
	db, err := bootstrap.OpenDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	authorizer := service.NewAuthorizer(cfg.AdminEmail)

	log.Info("creating services")
	invoiceService, err := bootstrap.NewInvoiceService(cfg, db.GetPool(), authorizer, log)
	if err != nil {
		return err
	}
	authService := bootstrap.NewAuthService(cfg, authorizer, log)
	outreachService := bootstrap.NewOutreachService(cfg, log)

	appServer, err := server.NewServer(cfg, server.Dependencies{
		InvoiceHandler: handler.NewInvoiceHandler(invoiceService, log),
		AuthHandler: handler.NewAuthHandler(authService, handler.AuthHandlerConfig{
			Cookies:           handler.CookieConfig{Secure: cfg.CookieSecure},
			AdminRedirectPath: cfg.AdminRedirectPath,
			Logger:            log,
		}),
		PublicHandler: handler.NewPublicHandler(outreachService, log),
		Sessions:      authService,
		Authorizer:    authorizer,
	}, log)
	if err != nil {
		return err
	}

	return appServer.Start()
}
