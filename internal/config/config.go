package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	// Server
	Port            int
	Environment     string
	APIKey          string
	CORSAllowOrigin string
	LogLevel        string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Price provider
	CoinGeckoBaseURL string
	APITimeoutSecs   int
	APIRetries       int

	// Email (SMTP)
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPSecure bool
	EmailFrom  string

	// Alert checking
	AlertCheckSchedule string
	MaxHistoryLimit    int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            envInt("PORT", 3000),
		Environment:     envStr("APP_ENV", "development"),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),
		LogLevel:        envStr("LOG_LEVEL", ""),

		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "crypto_alert"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		CoinGeckoBaseURL: envStr("COINGECKO_API_URL", "https://api.coingecko.com/api/v3"),
		APITimeoutSecs:   envInt("API_TIMEOUT_SECONDS", 10),
		APIRetries:       envInt("API_RETRIES", 3),

		SMTPHost:   envStr("SMTP_HOST", ""),
		SMTPPort:   envInt("SMTP_PORT", 587),
		SMTPUser:   envStr("SMTP_USER", ""),
		SMTPPass:   envStr("SMTP_PASS", ""),
		SMTPSecure: envBool("SMTP_SECURE", false),
		EmailFrom:  envStr("EMAIL_FROM", ""),

		AlertCheckSchedule: envStr("ALERT_CHECK_SCHEDULE", "*/5 * * * *"),
		MaxHistoryLimit:    envInt("MAX_HISTORY_LIMIT", 1000),
	}

	if cfg.EmailFrom == "" {
		cfg.EmailFrom = cfg.SMTPUser
	}
	if cfg.LogLevel == "" {
		if cfg.Environment == "production" {
			cfg.LogLevel = "info"
		} else {
			cfg.LogLevel = "debug"
		}
	}

	return cfg, nil
}

// EmailEnabled reports whether SMTP delivery is configured.
// Alerts still trigger without it; they just don't send mail.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid PORT value: %d", c.Port))
	}
	if c.EmailEnabled() {
		if c.SMTPUser == "" {
			errs = append(errs, "SMTP_USER is required when SMTP_HOST is set")
		}
		if c.SMTPPass == "" {
			errs = append(errs, "SMTP_PASS is required when SMTP_HOST is set")
		}
	}
	if _, err := cron.ParseStandard(c.AlertCheckSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("invalid ALERT_CHECK_SCHEDULE %q: %v", c.AlertCheckSchedule, err))
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set, REST API has no authentication")
	}
	if !c.EmailEnabled() {
		fmt.Println("[WARN] SMTP_HOST not set, email notifications disabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== CryptoAlert Configuration ===")
	fmt.Printf("Environment: %s\n", c.Environment)
	fmt.Printf("Port: %d\n", c.Port)
	fmt.Printf("Database: %s:%d/%s\n", c.DBHost, c.DBPort, c.DBName)
	fmt.Printf("Price provider: %s\n", c.CoinGeckoBaseURL)
	fmt.Printf("Alert check schedule: %s\n", c.AlertCheckSchedule)
	fmt.Printf("Email enabled: %v\n", c.EmailEnabled())
	if c.EmailEnabled() {
		fmt.Printf("SMTP: %s:%d (secure: %v)\n", c.SMTPHost, c.SMTPPort, c.SMTPSecure)
	}
	fmt.Println("=================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}
