package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv           string
	Port             string
	DBPath           string
	JWTSecret        string
	JWTExpire        time.Duration
	RedisHost        string
	RedisPort        int
	CacheTTL         time.Duration
	CORSOrigins      string
	RateLimitMax     int
	LogDir           string
	ResetTokenTTL    time.Duration
	ExposeResetToken bool
}

// LoadConfig reads .env (if present) and the process environment.
// Unset or unparsable values fall back to development defaults.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "3004"),
		DBPath:           getEnv("DB_PATH", "data/teamtask.db"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		JWTExpire:        getDuration("JWT_EXPIRE", 24*time.Hour),
		RedisHost:        os.Getenv("REDIS_HOST"),
		RedisPort:        getInt("REDIS_PORT", 6379),
		CacheTTL:         getDuration("CACHE_TTL", 5*time.Minute),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000, http://localhost:3001"),
		RateLimitMax:     getInt("RATE_LIMIT_MAX", 100),
		LogDir:           getEnv("LOG_DIR", "logs"),
		ResetTokenTTL:    getDuration("RESET_TOKEN_TTL", 10*time.Minute),
		ExposeResetToken: getBool("EXPOSE_RESET_TOKEN", false),
	}
}

// CacheEnabled reports whether a Redis host was configured.
func (c Config) CacheEnabled() bool {
	return c.RedisHost != ""
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
