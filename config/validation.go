package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration is usable for the current environment
func ValidateConfig(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.ServerPort) == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "must not be empty"})
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		errs = append(errs, ValidationError{"BASE_URL", "must be an absolute http(s) URL"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST", "host and database name are required for postgres"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "must not be empty"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.MediaStorage {
	case "local":
		if cfg.MediaRoot == "" {
			errs = append(errs, ValidationError{"MEDIA_ROOT", "must not be empty"})
		}
	case "s3":
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "must not be empty"})
		}
	default:
		errs = append(errs, ValidationError{"MEDIA_STORAGE", fmt.Sprintf("unsupported storage %q", cfg.MediaStorage)})
	}

	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"TOKEN_TTL", "must be positive"})
	}
	if cfg.PageSize <= 0 {
		errs = append(errs, ValidationError{"PAGE_SIZE", "must be positive"})
	}

	// Sensitive values must be real in production
	if cfg.Environment == Production {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			errs = append(errs, ValidationError{"jwt_secret", "a non-default secret is required in production"})
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"db_password", "secret is required in production"})
		}
	}

	return errors.Join(errs...)
}
