package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DBDriver      string // mongo, postgres, mysql or sqlite
	MongoURI      string
	MongoDatabase string
	DSN           string // Used by the GORM drivers
	DBTimeout     time.Duration

	UploadDir     string
	MaxUploadSize int64

	AllowOrigins string
}

// LoadConfig reads configuration from environment variables, falling back to a
// .env file and then to defaults.
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "mongo")),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "registration_desk"),
		DSN:           getEnv("DB_DSN", "registration_desk.db"),
		DBTimeout:     time.Duration(getEnvInt("DB_TIMEOUT", 10)) * time.Second,

		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_SIZE", 5*1024*1024)),

		AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
	}

	if cfg.DBDriver != "mongo" && cfg.DSN == "registration_desk.db" {
		log.Println("Warning: Using default DB_DSN. Update it in your environment.")
	}

	return cfg
}

// CredentialedCORS reports whether cross-origin requests may carry credentials.
// Browsers reject credentials on a wildcard origin, so they are only enabled
// for an explicit origin list.
func (c *Config) CredentialedCORS() bool {
	return strings.TrimSpace(c.AllowOrigins) != "*"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
