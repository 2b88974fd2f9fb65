package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Jahir7946/Cat-store/models"
)

const devJWTSecret = "dev-only-secret"

type Config struct {
	// Server Settings
	AppEnv  string
	AppPort string
	HOST    string

	// Database Settings
	DBDriver    string // postgres, mysql, sqlite
	DatabaseURL string

	// JWT Settings
	JWTSecret     string
	JWTExpiration time.Duration

	// Emails granted the admin role at registration
	AdminEmails []string

	UploadDir string
	LogLevel  string

	// CORS Settings
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
}

// LoadConfig reads envFile (when present) and then the process environment.
// A missing env file is not an error.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
			slog.Debug("no env file found, using process environment", "path", envFile)
		}
	}

	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "dev"),
		AppPort:     getEnv("PORT", "3000"),
		HOST:        getEnv("HOST", "0.0.0.0"),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL: getEnv("DATABASE_URL", "catstore.db"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminEmails: splitList(os.Getenv("ADMIN_EMAILS")),
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		CORSAllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}

	for i, email := range cfg.AdminEmails {
		cfg.AdminEmails[i] = models.NormalizeEmail(email)
	}

	ttl, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	cfg.JWTExpiration = ttl

	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return nil, errors.New("JWT_SECRET is required outside dev")
		}
		cfg.JWTSecret = devJWTSecret
	}

	switch cfg.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool { return c.AppEnv == "dev" || c.AppEnv == "test" }

// IsAdminEmail reports whether email is on the admin allow-list.
func (c *Config) IsAdminEmail(email string) bool {
	email = models.NormalizeEmail(email)
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

// RoleFor returns the role a newly registered account receives.
func (c *Config) RoleFor(email string) string {
	if c.IsAdminEmail(email) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
