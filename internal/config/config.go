package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL   string
	MigrationsDir string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Course
	DefaultTotalDays    int
	InternalEmailDomain string

	// Background work
	WorkerCount           int
	LeaderboardCron       string
	LeaderboardTTLMinutes int
	SchedulerTimezone     string

	// Support
	SupportWhatsAppNumber string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Env:                   getEnvOrDefault("ENV", "development"),
		DatabaseURL:           mustGetEnv("DATABASE_URL"),
		MigrationsDir:         getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:              mustGetEnv("REDIS_URL"),
		JWTSecret:             mustGetEnv("JWT_SECRET"),
		DefaultTotalDays:      getEnvAsIntOrDefault("DEFAULT_TOTAL_DAYS", 30),
		InternalEmailDomain:   getEnvOrDefault("INTERNAL_EMAIL_DOMAIN", "speakai.app"),
		WorkerCount:           getEnvAsIntOrDefault("WORKER_COUNT", 2),
		LeaderboardCron:       getEnvOrDefault("LEADERBOARD_CRON", "0 */6 * * *"),
		LeaderboardTTLMinutes: getEnvAsIntOrDefault("LEADERBOARD_TTL_MINUTES", 360),
		SchedulerTimezone:     getEnvOrDefault("SCHEDULER_TIMEZONE", "Asia/Kolkata"),
		SupportWhatsAppNumber: getEnvOrDefault("SUPPORT_WHATSAPP_NUMBER", "917593879279"),
		FrontendURL:           getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
