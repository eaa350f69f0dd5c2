package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded once at startup.
type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// HTTP
	Port           string
	AllowedOrigins string
	BodyLimitBytes int
	RateLimitMax   int
	RateLimitWinS  int

	// Auth
	JWTSecret string

	// Automation engine (command forwarding + callback secret)
	AutomationURL    string
	AutomationSecret string

	// External PDF renderer (optional; empty means "return payload only")
	PDFRendererURL string

	// Background validity sweep; empty disables it.
	ExpirySweepCron string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file is
// loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:           getEnv("DB_HOST", "db"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   getEnv("ALLOWED_ORIGINS", "*"),
		BodyLimitBytes:   envInt("BODY_LIMIT_BYTES", 4*1024*1024),
		RateLimitMax:     envInt("RATE_LIMIT_MAX", 60),
		RateLimitWinS:    envInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AutomationURL:    os.Getenv("AUTOMATION_URL"),
		AutomationSecret: os.Getenv("AUTOMATION_SECRET"),
		PDFRendererURL:   os.Getenv("PDF_RENDERER_URL"),
		ExpirySweepCron:  os.Getenv("EXPIRY_SWEEP_CRON"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AutomationSecret == "" {
		return nil, fmt.Errorf("AUTOMATION_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
