package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	DBHost         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPort         string
	DBSSLMode      string
	AppPort        string
	AppEnv         string
	StoreDriver    string
	JWTSecret      string
	JWTTTL         time.Duration
	CORSOrigins    []string
	MigrateOnStart bool
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:         os.Getenv("DB_HOST"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBPort:         getenv("DB_PORT", "5432"),
		DBSSLMode:      getenv("DB_SSLMODE", "disable"),
		AppPort:        getenv("APP_PORT", "5000"),
		AppEnv:         getenv("APP_ENV", "development"),
		StoreDriver:    getenv("STORE_DRIVER", StoreDriverPostgres),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTTL:         parseDuration(os.Getenv("JWT_TTL"), 7*24*time.Hour),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "*")),
		MigrateOnStart: parseBool(os.Getenv("MIGRATE_ON_START")),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Environment variables not loaded properly: %v", err)
	}

	return cfg
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.StoreDriver {
	case StoreDriverMemory:
		return nil
	case StoreDriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres store")
		}
		return nil
	default:
		return errors.New("STORE_DRIVER must be postgres or memory")
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
