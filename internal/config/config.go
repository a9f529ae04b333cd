package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret string

	// Cron specs for the scheduled jobs
	DailyTaskResetSpec  string
	WeeklyTaskResetSpec string
	StreakCheckSpec     string

	// How long a batch job may run before its context is cancelled
	JobTimeout time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "12345"),

		DailyTaskResetSpec:  getEnv("CRON_DAILY_TASK_RESET", "0 0 * * *"),
		WeeklyTaskResetSpec: getEnv("CRON_WEEKLY_TASK_RESET", "0 0 * * 1"),
		StreakCheckSpec:     getEnv("CRON_STREAK_CHECK", "30 0 * * *"),
	}

	var err error
	cfg.JobTimeout, err = parseDuration(getEnv("JOB_TIMEOUT", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TIMEOUT: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
