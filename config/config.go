package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	FrontendURL string
	// Auth Configuration
	JWTSecret string // HS256 shared secret
	JWKSUrl   string // RS256 key set endpoint
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Job lifecycle Configuration
	JobExpiryDays    int    // default expiry window applied at publish time
	ExpirySweepCron  string // cron spec for the expiry sweep
	ExpirySweepOnOff bool   // disable the sweep entirely (useful in tests)
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally, ignored in production if absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Auth Configuration
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWKSUrl:   getEnv("JWKS_URL", ""),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Job lifecycle Configuration (with sensible defaults)
		JobExpiryDays:    getEnvInt("JOB_EXPIRY_DAYS", 30),
		ExpirySweepCron:  getEnv("EXPIRY_SWEEP_CRON", "0 * * * *"), // hourly
		ExpirySweepOnOff: getEnvBool("EXPIRY_SWEEP_ENABLED", true),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" && cfg.JWKSUrl == "" {
		log.Println("WARNING: Neither JWT_SECRET nor JWKS_URL configured. All tokens will be rejected.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Domain events will only be logged.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
