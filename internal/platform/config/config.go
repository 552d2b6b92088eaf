// Package config loads application configuration from environment variables
// so main stays lean. A .env file in the working directory is honored for
// local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Development-only fallbacks. The process refuses to start in production
// while any of these is still active.
const (
	DevAdminEmail    = "admin@inova.dev"
	DevAdminPassword = "inova-dev-password"
	DevJWTSecret     = "inova-dev-secret-do-not-deploy"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr         string
	Env          string
	TrustProxy   bool
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Admin holds the single administrative identity configuration. When
// PasswordHash is set it takes precedence over the plaintext Password.
type Admin struct {
	Email        string
	Password     string
	PasswordHash string
}

// Token configures session token issuance.
type Token struct {
	SigningKey string
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// Database configures the embedded registration store.
type Database struct {
	Path         string
	QueryTimeout time.Duration
}

// Redis configures the optional rate-limit backend. Empty URL means the
// in-memory store is used.
type Redis struct {
	URL string
}

// RateLimit configures the fixed-window request limiters.
type RateLimit struct {
	Window      time.Duration
	GlobalLimit int
	LoginLimit  int
	Disabled    bool
}

// Config is the root configuration object wired through cmd/server.
type Config struct {
	Server    Server
	Admin     Admin
	Token     Token
	Database  Database
	Redis     Redis
	RateLimit RateLimit
}

// Load builds a Config from environment variables, reading .env first when
// present. It fails when production mode still carries a development
// fallback credential or signing key.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: Server{
			Addr:         getEnv("INOVA_ADDR", ":8080"),
			Env:          getEnv("APP_ENV", "development"),
			TrustProxy:   getEnv("TRUST_PROXY", "") == "true",
			CORSOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Admin: Admin{
			Email:        getEnv("ADMIN_EMAIL", DevAdminEmail),
			Password:     getEnv("ADMIN_PASSWORD", DevAdminPassword),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Token: Token{
			SigningKey: getEnv("JWT_SECRET", DevJWTSecret),
			Issuer:     getEnv("JWT_ISSUER", "inova-registration"),
			Audience:   getEnv("JWT_AUDIENCE", "admin-dashboard"),
			TTL:        getEnvDuration("SESSION_TTL", 2*time.Hour),
		},
		Database: Database{
			Path:         getEnv("DATABASE_PATH", "registrations.db"),
			QueryTimeout: getEnvDuration("DATABASE_QUERY_TIMEOUT", 5*time.Second),
		},
		Redis: Redis{
			URL: getEnv("REDIS_URL", ""),
		},
		RateLimit: RateLimit{
			Window:      getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			GlobalLimit: getEnvInt("RATE_LIMIT_GLOBAL", 100),
			LoginLimit:  getEnvInt("RATE_LIMIT_LOGIN", 5),
			Disabled:    getEnv("RATE_LIMIT_DISABLED", "") == "true",
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the process runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func (c *Config) validate() error {
	if !c.IsProduction() {
		return nil
	}
	if c.Admin.Email == DevAdminEmail {
		return fmt.Errorf("ADMIN_EMAIL must be set in production")
	}
	if c.Admin.PasswordHash == "" && c.Admin.Password == DevAdminPassword {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set in production")
	}
	if c.Token.SigningKey == DevJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
