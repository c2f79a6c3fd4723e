package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the API service.
type Config struct {
	Environment        string
	Addr               string
	APIBasePath        string
	DatabaseURL        string
	MigrationsDir      string
	DBConnectAttempts  int
	DBConnectBaseDelay time.Duration
	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	BackupQueueSize    int
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// Load constructs a Config from the environment, reading a .env file first
// when one is present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":8000"),
		APIBasePath:        GetString("API_BASE_PATH", "/api/v1"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://teamstack:teamstack@db:5432/teamstack?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		DBConnectAttempts:  GetInt("DB_CONNECT_ATTEMPTS", 5),
		DBConnectBaseDelay: time.Duration(GetInt("DB_CONNECT_BASE_DELAY_MS", 1000)) * time.Millisecond,
		AccessTokenSecret:  GetString("ACCESS_TOKEN_SECRET", "supersecuresecret"),
		AccessTokenTTL:     time.Duration(GetInt("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		BackupQueueSize:    GetInt("BACKUP_QUEUE_SIZE", 64),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}

// GetString retrieves an environment variable or returns a fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as integer or returns fallback.
func GetInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid value for %s: %v", key, err)
			return fallback
		}
		return parsed
	}
	return fallback
}
