package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/brahma-hq/datasheet-tracker/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Store    StoreConfig
	Publish  PublishConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr      string
	BasicUser string
	BasicPass string
}

// StoreConfig holds object-store layout configuration
type StoreConfig struct {
	Root          string
	RawRoot       string
	CandidateRoot string
	ReviewRoot    string
	MasterRoot    string
}

// PublishConfig holds release publishing configuration
type PublishConfig struct {
	MasterRoot    string
	StandardsRoot string
	ReleaseRoot   string
	ActiveObject  string
	SchemaVersion string
	ProductDBName string
}

// LoadConfig loads configuration from the environment, reading a .env file
// first when one is present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	releaseRoot := getEnv("RELEASE_ROOT", constants.ReleaseRoot)
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			Addr:      getEnv("HTTP_ADDR", ":8080"),
			BasicUser: getEnv("BASIC_USER", "admin"),
			BasicPass: getEnv("BASIC_PASS", ""),
		},
		Store: StoreConfig{
			Root:          getEnv("STORE_ROOT", "./data"),
			RawRoot:       getEnv("RAW_ROOT", constants.RawRoot),
			CandidateRoot: getEnv("CANDIDATE_ROOT", constants.CandidateRoot),
			ReviewRoot:    getEnv("REVIEW_ROOT", constants.ReviewRoot),
			MasterRoot:    getEnv("MASTER_ROOT", constants.MasterRoot),
		},
		Publish: PublishConfig{
			MasterRoot:    getEnv("MASTER_ROOT", constants.MasterRoot),
			StandardsRoot: getEnv("STANDARDS_ROOT", "02_databases/standards"),
			ReleaseRoot:   releaseRoot,
			ActiveObject:  getEnv("ACTIVE_OBJECT", releaseRoot+"/ACTIVE"),
			SchemaVersion: getEnv("SCHEMA_VERSION", "1.0.0"),
			ProductDBName: getEnv("PRODUCT_DB_NAME", "module_products.sqlite"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration for required values.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.BasicPass == "" {
		return NewAppError("CONFIG_ERROR", "BASIC_PASS is required", ErrInvalidInput)
	}
	if c.Store.Root == "" {
		return NewAppError("CONFIG_ERROR", "STORE_ROOT is required", ErrInvalidInput)
	}
	return nil
}
