package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/docker/go-units"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port           int           `env:"PORT" envDefault:"8080"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MaxRequestSize string        `env:"MAX_REQUEST_SIZE" envDefault:"1MB"`
	CORSOrigins    []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// Logging configuration
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Database configuration
	DatabaseURL       string        `env:"POSTGRES_DB_URL"`
	RunMigrations     bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`

	// Identity provider configuration
	SupabaseURL     string `env:"SUPABASE_URL"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY"`
	OAuthProvider   string `env:"AUTH_OAUTH_PROVIDER" envDefault:"google"`

	// Session and authorization configuration
	AdminEmail        string        `env:"ADMIN_EMAIL"`
	SessionSecret     string        `env:"SESSION_SECRET"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	CookieSecure      bool          `env:"COOKIE_SECURE" envDefault:"true"`
	AdminRedirectPath string        `env:"ADMIN_REDIRECT_PATH" envDefault:"/admin/invoices"`

	// Storage configuration
	S3Endpoint        string        `env:"SUPABASE_S3_ENDPOINT"`
	S3AccessKeyID     string        `env:"SUPABASE_ACCESS_KEY_ID"`
	S3AccessKeySecret string        `env:"SUPABASE_ACCESS_KEY_SECRET"`
	S3Region          string        `env:"SUPABASE_S3_REGION" envDefault:"ap-south-1"`
	InvoiceBucket     string        `env:"SUPABASE_BUCKET" envDefault:"invoices"`
	DownloadURLTTL    time.Duration `env:"DOWNLOAD_URL_TTL" envDefault:"24h"`
	PreviewURLTTL     time.Duration `env:"PREVIEW_URL_TTL" envDefault:"60s"`

	// Invoice document configuration
	OrgName         string `env:"ORG_NAME" envDefault:"Sahyog Foundation"`
	OrgAddress      string `env:"ORG_ADDRESS"`
	OrgEmail        string `env:"ORG_EMAIL"`
	OrgLogoPath     string `env:"ORG_LOGO_PATH"`
	InvoiceFontPath string `env:"INVOICE_FONT_PATH"`

	// Invoice workflow configuration
	NodeID               int64 `env:"NODE_ID" envDefault:"1"`
	MaxConcurrentRenders int   `env:"MAX_CONCURRENT_RENDERS" envDefault:"4"`

	// Email provider configuration
	BrevoAPIKey        string `env:"BREVO_API_KEY"`
	EmailSenderName    string `env:"EMAIL_SENDER_NAME" envDefault:"Sahyog Foundation"`
	EmailSenderAddress string `env:"EMAIL_SENDER_ADDRESS"`
	ContactInbox       string `env:"CONTACT_INBOX_EMAIL"`

	// Payment gateway configuration
	RazorpayKeyID     string `env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `env:"RAZORPAY_KEY_SECRET"`
	MaxDonationRupees int64  `env:"MAX_DONATION_RUPEES" envDefault:"500000"`

	// CAPTCHA configuration
	RecaptchaSecret string `env:"RECAPTCHA_SECRET"`

	// Upstream HTTP clients
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"15s"`
}

// LoadConfig loads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	loadDotEnv()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if _, err := config.MaxRequestBytes(); err != nil {
		return nil, err
	}

	// Validate critical configuration
	validateConfig(config)

	return config, nil
}

// loadDotEnv loads a .env file from the project root or the current directory
func loadDotEnv() {
	// Get the executable directory
	execPath, err := os.Executable()
	if err != nil {
		log.Printf("Warning: Could not determine executable path: %v", err)
	}

	// Determine project root directory
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(execPath)))
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		// Try loading from current directory as fallback
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading .env file. Using environment variables.")
		} else {
			log.Println("Loaded environment variables from current directory .env file")
		}
	} else {
		log.Printf("Loaded environment variables from %s", envPath)
	}
}

// MaxRequestBytes parses MaxRequestSize ("1MB", "512KiB", ...) into bytes
func (c *Config) MaxRequestBytes() (int64, error) {
	size, err := units.FromHumanSize(c.MaxRequestSize)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_REQUEST_SIZE %q: %w", c.MaxRequestSize, err)
	}
	return size, nil
}

// CheckAuth reports configuration without which the admin gate cannot operate
func (c *Config) CheckAuth() error {
	if c.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	return nil
}

// validateConfig checks if critical configuration values are set and logs warnings if they're missing
func validateConfig(config *Config) {
	if config.DatabaseURL == "" {
		log.Println("Warning: No POSTGRES_DB_URL provided. Invoice records cannot be stored.")
	}

	if config.SupabaseURL == "" || config.SupabaseAnonKey == "" {
		log.Println("Warning: No Supabase URL or anon key provided. Sign-in will fail.")
	}

	if config.S3Endpoint == "" || config.S3AccessKeyID == "" || config.S3AccessKeySecret == "" {
		log.Println("Warning: Storage configuration is incomplete. Invoice uploads will fail.")
	}

	if config.BrevoAPIKey == "" {
		log.Println("Warning: No Brevo API key provided. Emails will not be sent.")
	}

	if config.RazorpayKeyID == "" || config.RazorpayKeySecret == "" {
		log.Println("Warning: No Razorpay key pair provided. Donation orders will fail.")
	}

	if config.RecaptchaSecret == "" {
		log.Println("Warning: No reCAPTCHA secret provided. Contact and join forms will be rejected.")
	}

	if config.AdminEmail == "" {
		log.Println("Warning: No ADMIN_EMAIL provided. Nobody can access invoices.")
	}
}
