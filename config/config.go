package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Source modes understood by source.Open.
const (
	ModeHTTP     = "http"
	ModePostgres = "postgres"
	ModeMongo    = "mongo"
	ModeMock     = "mock"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SourceMode       string
	ListingSourceURL string
	RequestTimeout   time.Duration
	ScrapeTimeout    time.Duration
	MaxRetries       int
	RetryDelayMs     int
	RateLimitMs      int

	ItemsPerPage int
	LogLevel     string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MongoURI        string
	MongoDB         string
	MongoCollection string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	CSVOutputPath    string
	ReportOutputPath string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		SourceMode:       getEnv("SOURCE_MODE", ModeHTTP),
		ListingSourceURL: getEnv("LISTING_SOURCE_URL", "http://localhost:5000"),
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		ScrapeTimeout:    time.Duration(getEnvInt("SCRAPE_TIMEOUT_SEC", 600)) * time.Second,
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		RetryDelayMs:     getEnvInt("RETRY_DELAY_MS", 1000),
		RateLimitMs:      getEnvInt("RATE_LIMIT_MS", 500),

		ItemsPerPage: getEnvInt("ITEMS_PER_PAGE", 25),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "airbnb"),
		MongoCollection: getEnv("MONGO_COLLECTION", "listings"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SEC", 0)) * time.Second,

		CSVOutputPath:    getEnv("CSV_OUTPUT_PATH", "./output/listings.csv"),
		ReportOutputPath: getEnv("REPORT_OUTPUT_PATH", "./output/report.html"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// RedisAddr returns host:port of the cache server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// RetryDelay is the base back-off between fetch retries.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// RateLimit is the minimum interval between calls to the listing source.
func (c *Config) RateLimit() time.Duration {
	return time.Duration(c.RateLimitMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
