package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every setting of the dashboard backend, read from the environment
type Config struct {
	Env      string
	Port     string
	Database Database
	Catalog  Catalog
	Client   Client
}

// Database selects the SQL driver and how to reach it
type Database struct {
	Driver     string // "pgx" or "sqlite"
	URL        string // Connection string for pgx
	SQLitePath string
}

// Catalog configures the upstream Strapi catalog
type Catalog struct {
	URL             string // Full collection endpoint, e.g. https://cms.example.com/api/var-products
	AssetOrigin     string // Prefix for relative media paths
	Locale          string
	V4Response      bool
	APIToken        string
	Timeout         time.Duration
	RateLimitRPS    float64
	DefaultPage     int
	DefaultPageSize int
}

// Client configures the operator-side cache and API client
type Client struct {
	APIURL        string
	CacheFile     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

const (
	DriverPgx    = "pgx"
	DriverSQLite = "sqlite"
)

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env:  os.Getenv("ENV"),
		Port: normalizePort(envOrDefault("PORT", "8080")),
		Database: Database{
			Driver:     strings.ToLower(envOrDefault("DB_DRIVER", DriverPgx)),
			SQLitePath: envOrDefault("SQLITE_PATH", "ar-dashboard.db"),
		},
		Catalog: Catalog{
			URL:             os.Getenv("STRAPI_URL"),
			AssetOrigin:     os.Getenv("STRAPI_BASE"),
			Locale:          envOrDefault("STRAPI_LOCALE", "ru"),
			V4Response:      os.Getenv("STRAPI_V4_RESPONSE") == "1",
			APIToken:        os.Getenv("STRAPI_API_TOKEN"),
			DefaultPage:     1,
			DefaultPageSize: 100,
		},
	}

	timeoutSeconds, err := intFromEnv("STRAPI_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.Catalog.Timeout = time.Duration(timeoutSeconds) * time.Second

	rps, err := floatFromEnv("STRAPI_RATE_LIMIT_RPS", 0)
	if err != nil {
		return nil, err
	}
	cfg.Catalog.RateLimitRPS = rps

	clientCfg, err := LoadClient()
	if err != nil {
		return nil, err
	}
	cfg.Client = clientCfg

	if cfg.Database.Driver != DriverPgx && cfg.Database.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use %s or %s)", cfg.Database.Driver, DriverPgx, DriverSQLite)
	}
	if cfg.Database.Driver == DriverPgx {
		url, err := postgresURL()
		if err != nil {
			return nil, err
		}
		cfg.Database.URL = url
	}

	return cfg, nil
}

// LoadClient reads only the operator-side settings; it needs no database configuration
func LoadClient() (Client, error) {
	c := Client{
		APIURL:        envOrDefault("DASHBOARD_API_URL", "http://localhost:8080"),
		CacheFile:     envOrDefault("DASHBOARD_CACHE_FILE", "ar-model-test-statuses.json"),
		RedisAddr:     os.Getenv("DASHBOARD_CACHE_REDIS_ADDR"),
		RedisPassword: os.Getenv("DASHBOARD_CACHE_REDIS_PASSWORD"),
	}

	redisDB, err := intFromEnv("DASHBOARD_CACHE_REDIS_DB", 0)
	if err != nil {
		return Client{}, err
	}
	c.RedisDB = redisDB
	return c, nil
}

// IsProduction reports whether ENV=production. It reads the process environment so it
// can decide whether to load .env before Load runs.
func IsProduction() bool {
	return os.Getenv("ENV") == "production"
}

// postgresURL returns DATABASE_URL or builds a connection string from DB_* variables
func postgresURL() (string, error) {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		return connStr, nil
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}

	port := envOrDefault("DB_PORT", "5432")
	sslmode := envOrDefault("DB_SSLMODE", "disable")
	password := os.Getenv("DB_PASSWORD")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode), nil
}

// normalizePort removes a leading colon (some platforms set PORT=":8080")
func normalizePort(port string) string {
	return strings.TrimPrefix(port, ":")
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s=%q: expected a non-negative integer", key, v)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid %s=%q: expected a non-negative number", key, v)
	}
	return f, nil
}
