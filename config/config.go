package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultJWTSecret = "foodgram-dev-secret"
	defaultPageSize  = 6
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost string
	ServerPort string
	// BaseURL is used to build absolute links (images, short links, pagination).
	BaseURL string
	// CORSOrigins empty allows every origin.
	CORSOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string
	// MigrationsDir holds the raw SQL files applied after AutoMigrate.
	MigrationsDir string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	LogLevel string

	// Media storage: "local" or "s3"
	MediaStorage string
	MediaRoot    string
	S3Bucket     string
	AWSRegion    string
	S3PublicURL  string

	// RecipeCreateLimit is the number of recipes a user may create per hour.
	RecipeCreateLimit int
	PageSize          int
}

// LoadConfig builds a Config from defaults, environment variables and docker secrets
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	env := GetEnvironment()
	cfg := &Config{
		Environment:       env,
		ServerHost:        v.GetString("SERVER_HOST"),
		ServerPort:        v.GetString("SERVER_PORT"),
		BaseURL:           strings.TrimRight(v.GetString("BASE_URL"), "/"),
		CORSOrigins:       splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBName:            v.GetString("DB_NAME"),
		DBSSLMode:         v.GetString("DB_SSL_MODE"),
		SQLitePath:        v.GetString("SQLITE_PATH"),
		MigrationsDir:     v.GetString("MIGRATIONS_DIR"),
		RedisHost:         v.GetString("REDIS_HOST"),
		RedisPort:         v.GetString("REDIS_PORT"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		RedisURL:          v.GetString("REDIS_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          v.GetDuration("TOKEN_TTL"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		MediaStorage:      strings.ToLower(v.GetString("MEDIA_STORAGE")),
		MediaRoot:         v.GetString("MEDIA_ROOT"),
		S3Bucket:          v.GetString("S3_BUCKET_NAME"),
		AWSRegion:         v.GetString("AWS_REGION"),
		S3PublicURL:       strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
		RecipeCreateLimit: v.GetInt("RECIPE_CREATE_LIMIT"),
		PageSize:          v.GetInt("PAGE_SIZE"),
	}

	// Docker secrets win over plain environment variables outside CI
	if env != CI {
		overrideFromSecret(&cfg.DBPassword, "db_password")
		overrideFromSecret(&cfg.JWTSecret, "jwt_secret")
		overrideFromSecret(&cfg.RedisPassword, "redis_password")
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "foodgram")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "foodgram.db")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MEDIA_STORAGE", "local")
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("S3_BUCKET_NAME", "foodgram-media")
	v.SetDefault("RECIPE_CREATE_LIMIT", 20)
	v.SetDefault("PAGE_SIZE", defaultPageSize)
}

// Addr returns the host:port pair the HTTP server listens on
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// DSN returns the Postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether enough Redis settings are present to connect
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func overrideFromSecret(dst *string, name string) {
	if value := readSecret(name); value != "" {
		*dst = value
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
