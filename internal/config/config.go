package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds all configuration for the application
type Config struct {
	App          AppConfig
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Verification VerificationConfig
	Email        EmailConfig
	Frontend     FrontendConfig
	Jamendo      JamendoConfig
	Stripe       StripeConfig
	GoogleOAuth  GoogleOAuthConfig
	Redis        RedisConfig
	CORS         CORSConfig

	// OutboundTimeout bounds every call to mail, catalog and payment providers.
	OutboundTimeout time.Duration
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Env      string
	LogLevel string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL         string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	MaxLifetime time.Duration
	ConnTimeout time.Duration
	AutoMigrate bool
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// VerificationConfig holds email verification token settings
type VerificationConfig struct {
	TokenTTL       time.Duration
	ResendCooldown time.Duration
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	Provider       string // smtp | sendgrid
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	UseTLS         bool
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

// FrontendConfig holds the public web client location
type FrontendConfig struct {
	BaseURL string
}

// JamendoConfig holds music catalog settings
type JamendoConfig struct {
	ClientID      string
	BaseURL       string
	ResultLimit   int
	RatePerSecond float64
}

// StripeConfig holds payment provider settings
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	ProductName   string
	UnitAmount    int64
	Currency      string
}

// GoogleOAuthConfig holds Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// RedisConfig holds the optional cache connection
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// Load loads configuration from the given .env file (if any) and environment variables.
func Load(envFile string) (*Config, error) {
	loadDotEnv(envFile)

	config := &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			URL:         getEnv("DATABASE_URL", ""),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Name:        getEnv("DB_NAME", "postgres"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getInt32Env("DB_MAX_CONNS", 10),
			MinConns:    getInt32Env("DB_MIN_CONNS", 0),
			MaxLifetime: getDurationEnv("DB_MAX_LIFETIME", time.Hour),
			ConnTimeout: getDurationEnv("DB_CONN_TIMEOUT", 10*time.Second),
			AutoMigrate: getBoolEnv("DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", defaultJWTSecret),
			Issuer:         getEnv("JWT_ISSUER", "amuzz"),
			AccessTokenTTL: getDurationEnv("JWT_ACCESS_TTL", time.Hour),
		},
		Verification: VerificationConfig{
			TokenTTL:       getDurationEnv("VERIFICATION_TOKEN_TTL", 24*time.Hour),
			ResendCooldown: getDurationEnv("VERIFICATION_RESEND_COOLDOWN", time.Hour),
		},
		Email: EmailConfig{
			Provider:       strings.ToLower(getEnv("EMAIL_PROVIDER", "smtp")),
			SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:       getEnv("SMTP_PORT", "587"),
			SMTPUsername:   getEnv("SMTP_USERNAME", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
			UseTLS:         getBoolEnv("SMTP_USE_TLS", true),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("EMAIL_FROM", ""),
			FromName:       getEnv("EMAIL_FROM_NAME", "Amuzz Team"),
		},
		Frontend: FrontendConfig{
			BaseURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		},
		Jamendo: JamendoConfig{
			ClientID:      getEnv("JAMENDO_CLIENT_ID", ""),
			BaseURL:       strings.TrimRight(getEnv("JAMENDO_BASE_URL", "https://api.jamendo.com/v3.0"), "/"),
			ResultLimit:   getIntEnv("JAMENDO_RESULT_LIMIT", 20),
			RatePerSecond: getFloatEnv("JAMENDO_RATE_PER_SECOND", 5),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			ProductName:   getEnv("STRIPE_PRODUCT_NAME", "Amuzz Premium Access"),
			UnitAmount:    int64(getIntEnv("STRIPE_UNIT_AMOUNT", 500)),
			Currency:      strings.ToLower(getEnv("STRIPE_CURRENCY", "eur")),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			CacheTTL: getDurationEnv("MUSIC_CACHE_TTL", 10*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getStringSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getStringSliceEnv("CORS_ALLOWED_HEADERS", []string{"*"}),
			AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		},
		OutboundTimeout: getDurationEnv("OUTBOUND_TIMEOUT", 10*time.Second),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadDotEnv(envFile string) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err == nil {
			return
		}
	}
	if err := godotenv.Load("../.env"); err != nil {
		// Try loading from current directory if not found in parent
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: .env file not found: %v", err)
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" && c.Database.Password == "" {
		return fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
	}

	if c.IsProduction() && (c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	if c.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}

	if c.Verification.ResendCooldown >= c.Verification.TokenTTL {
		return fmt.Errorf("VERIFICATION_RESEND_COOLDOWN must be shorter than VERIFICATION_TOKEN_TTL")
	}

	switch c.Email.Provider {
	case "smtp", "sendgrid":
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be smtp or sendgrid, got %q", c.Email.Provider)
	}

	if !c.IsEmailConfigured() {
		log.Printf("Warning: %s email credentials not configured. Registration will fail to send verification emails.", c.Email.Provider)
	}

	if c.Jamendo.ClientID == "" {
		log.Println("Warning: JAMENDO_CLIENT_ID not configured. Music search will fail.")
	}

	if c.Stripe.SecretKey == "" || c.Stripe.WebhookSecret == "" {
		log.Println("Warning: Stripe keys not configured. Checkout and webhooks will fail.")
	}

	if !c.IsGoogleOAuthConfigured() {
		log.Println("Warning: Google OAuth credentials not configured. Google login will not work.")
	}

	return nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// GetDSN returns the database connection string. Credentials are escaped
// so passwords may contain URL delimiters.
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	query := url.Values{}
	query.Set("sslmode", c.Database.SSLMode)
	query.Set("connect_timeout", strconv.Itoa(int(c.Database.ConnTimeout.Seconds())))

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: query.Encode(),
	}
	return dsn.String()
}

// IsEmailConfigured checks if the selected email provider is properly configured
func (c *Config) IsEmailConfigured() bool {
	if c.Email.Provider == "sendgrid" {
		return c.Email.SendGridAPIKey != "" && c.Email.FromEmail != ""
	}
	return c.Email.SMTPUsername != "" && c.Email.SMTPPassword != ""
}

// IsGoogleOAuthConfigured checks if Google OAuth is properly configured
func (c *Config) IsGoogleOAuthConfigured() bool {
	return c.GoogleOAuth.ClientID != "" && c.GoogleOAuth.ClientSecret != ""
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt32Env(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intValue)
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := []string{}
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
