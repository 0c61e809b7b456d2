// Package bootstrap assembles the clients and services shared by the server and the admin CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ridwanfathin/donation-invoice-service/internal/captcha"
	"github.com/ridwanfathin/donation-invoice-service/internal/config"
	"github.com/ridwanfathin/donation-invoice-service/internal/database"
	"github.com/ridwanfathin/donation-invoice-service/internal/identity"
	"github.com/ridwanfathin/donation-invoice-service/internal/invoicepdf"
	"github.com/ridwanfathin/donation-invoice-service/internal/notify"
	"github.com/ridwanfathin/donation-invoice-service/internal/payment"
	"github.com/ridwanfathin/donation-invoice-service/internal/repository"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
	"github.com/ridwanfathin/donation-invoice-service/internal/storage"
)

const callbackPath = "/auth/callback"

// OpenDatabase connects to Postgres and applies pending migrations when enabled
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*database.PostgresDB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("POSTGRES_DB_URL is required")
	}

	if cfg.RunMigrations {
		logger.Info("applying database migrations")
		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewMailer creates the transactional email client
func NewMailer(cfg *config.Config) *notify.BrevoClient {
	return notify.NewBrevoClient(&notify.Config{
		APIKey:      cfg.BrevoAPIKey,
		SenderName:  cfg.EmailSenderName,
		SenderEmail: cfg.EmailSenderAddress,
		Timeout:     cfg.UpstreamTimeout,
	})
}

// NewInvoiceService wires the invoice workflow to Postgres, object storage, the PDF generator and email
func NewInvoiceService(cfg *config.Config, pool *pgxpool.Pool, authorizer *service.Authorizer, logger *slog.Logger) (*service.InvoiceServiceImpl, error) {
	blobs, err := storage.NewS3Store(&storage.Config{
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		AccessKeySecret: cfg.S3AccessKeySecret,
		Bucket:          cfg.InvoiceBucket,
		Region:          cfg.S3Region,
		Timeout:         cfg.UpstreamTimeout,
	})
	if err != nil {
		return nil, err
	}

	generator, err := invoicepdf.NewGenerator(invoicepdf.Config{
		Organization: invoicepdf.Organization{
			Name:    cfg.OrgName,
			Address: cfg.OrgAddress,
			Email:   cfg.OrgEmail,
		},
		LogoPath: cfg.OrgLogoPath,
		FontPath: cfg.InvoiceFontPath,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	serials, err := service.NewSnowflakeSerials(cfg.NodeID, nil)
	if err != nil {
		return nil, err
	}

	return service.NewInvoiceService(service.InvoiceServiceConfig{
		Records:              repository.NewPostgresInvoiceRepository(pool),
		Blobs:                blobs,
		Generator:            generator,
		Mailer:               NewMailer(cfg),
		Serials:              serials,
		Authorizer:           authorizer,
		DownloadTTL:          cfg.DownloadURLTTL,
		PreviewTTL:           cfg.PreviewURLTTL,
		OrgName:              cfg.OrgName,
		MaxConcurrentRenders: cfg.MaxConcurrentRenders,
		Logger:               logger,
	}), nil
}

// NewAuthService wires session resolution and the login flow to the identity provider
func NewAuthService(cfg *config.Config, authorizer *service.Authorizer, logger *slog.Logger) service.AuthService {
	provider := identity.NewClient(&identity.Config{
		BaseURL:     cfg.SupabaseURL,
		AnonKey:     cfg.SupabaseAnonKey,
		Provider:    cfg.OAuthProvider,
		RedirectURL: strings.TrimRight(cfg.PublicBaseURL, "/") + callbackPath,
		Timeout:     cfg.UpstreamTimeout,
	})

	return service.NewAuthService(service.AuthServiceConfig{
		Provider:      provider,
		Authorizer:    authorizer,
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		Logger:        logger,
	})
}

// NewOutreachService wires the public forms to CAPTCHA, email and the payment gateway
func NewOutreachService(cfg *config.Config, logger *slog.Logger) service.OutreachService {
	inbox := cfg.ContactInbox
	if inbox == "" {
		inbox = cfg.OrgEmail
	}

	return service.NewOutreachService(service.OutreachServiceConfig{
		Captcha: captcha.NewRecaptchaClient(&captcha.Config{
			Secret:  cfg.RecaptchaSecret,
			Timeout: cfg.UpstreamTimeout,
		}),
		Mailer: NewMailer(cfg),
		Gateway: payment.NewRazorpayClient(&payment.Config{
			KeyID:     cfg.RazorpayKeyID,
			KeySecret: cfg.RazorpayKeySecret,
			Timeout:   cfg.UpstreamTimeout,
		}),
		ContactInbox: inbox,
		MaxDonation:  decimal.NewFromInt(cfg.MaxDonationRupees),
		Now:          time.Now,
		Logger:       logger,
	})
}
