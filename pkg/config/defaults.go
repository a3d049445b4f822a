// Package config provides centralized default values for TercihBot
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Configuration
	DBDriver                 string
	DBPath                   string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration

	// Conversation Configuration
	SessionIdleTTL       time.Duration
	SweepInterval        time.Duration
	ContextWindowSize    int
	RepeatDetectionDepth int
	MaxSuggestions       int

	// Catalog Cache Configuration
	CatalogCacheTTL time.Duration

	// Rate Limiting
	RateLimitWindow   time.Duration
	RateLimitRequests int

	// Security
	JWTSecret         string
	JWTExpiry         time.Duration
	AdminPasswordHash string

	// Importer Configuration
	ImportSourceURL    string
	ImportConcurrency  int
	ImportFetchTimeout time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database Configuration
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "tercihbot.db")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Conversation Configuration
	SessionIdleTTL = getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute)
	SweepInterval = getEnvDuration("SWEEP_INTERVAL", 5*time.Minute)
	ContextWindowSize = getEnvInt("CONTEXT_WINDOW_SIZE", 10)
	RepeatDetectionDepth = getEnvInt("REPEAT_DETECTION_DEPTH", 3)
	MaxSuggestions = getEnvInt("MAX_SUGGESTIONS", 4)

	// Catalog Cache Configuration
	CatalogCacheTTL = getEnvDuration("CATALOG_CACHE_TTL", 24*time.Hour)

	// Rate Limiting
	RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", time.Minute)
	RateLimitRequests = getEnvInt("RATE_LIMIT_REQUESTS", 60)

	// Security
	JWTSecret = getEnvString("JWT_SECRET", "")
	JWTExpiry = getEnvDuration("JWT_EXPIRY", 24*time.Hour)
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")

	// Importer Configuration
	ImportSourceURL = getEnvString("IMPORT_SOURCE_URL", "")
	ImportConcurrency = getEnvInt("IMPORT_CONCURRENCY", 4)
	ImportFetchTimeout = getEnvDuration("IMPORT_FETCH_TIMEOUT", 20*time.Second)
}
