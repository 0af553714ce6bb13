package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Docstore driver names accepted by DOCSTORE_DRIVER.
const (
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Docstore  DocstoreConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// DocstoreConfig selects and configures the document store backend.
type DocstoreConfig struct {
	Driver    string
	Mongo     MongoConfig
	Firestore FirestoreConfig
}

// MongoConfig holds settings for MongoDB.
type MongoConfig struct {
	URI    string
	DBName string
}

// FirestoreConfig holds settings for the Firestore REST backend.
type FirestoreConfig struct {
	ProjectID string
	APIKey    string
}

// CacheConfig holds settings for the Redis report cache. An empty Addr
// disables caching entirely.
type CacheConfig struct {
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

// SchedulerConfig holds cron-related settings.
type SchedulerConfig struct {
	RolloverCron string
	Timezone     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Docstore: DocstoreConfig{
			Driver: getenvWithDefault("DOCSTORE_DRIVER", DriverMongo),
			Mongo: MongoConfig{
				URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
				DBName: getenvWithDefault("MONGODB_DB_NAME", "kulfiwala"),
			},
			Firestore: FirestoreConfig{
				ProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
				APIKey:    os.Getenv("FIRESTORE_API_KEY"),
			},
		},
		Cache: CacheConfig{
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         getenvInt("REDIS_DB", 0),
			TTLSeconds: getenvInt("REPORT_CACHE_TTL_SECONDS", 300),
		},
		Scheduler: SchedulerConfig{
			RolloverCron: getenvWithDefault("ROLLOVER_CRON_SCHEDULE", "15 0 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Docstore.Driver {
	case DriverMongo:
		if c.Docstore.Mongo.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.Docstore.Mongo.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case DriverFirestore:
		if c.Docstore.Firestore.ProjectID == "" {
			return errors.New("FIRESTORE_PROJECT_ID must be provided")
		}
	case DriverMemory:
		// nothing to validate
	default:
		return fmt.Errorf("unknown DOCSTORE_DRIVER %q", c.Docstore.Driver)
	}

	if c.Scheduler.RolloverCron == "" {
		return errors.New("ROLLOVER_CRON_SCHEDULE must be provided")
	}

	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
