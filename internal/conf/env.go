// env.go - Environment variable configuration and validation for HogwartsHeroes
package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tphakala/hogwarts-heroes/internal/logger"
)

// EnvPrefix is the prefix of every environment variable the application reads
const EnvPrefix = "HOGWARTS"

// dotEnvFile is loaded from the working directory when present
var dotEnvFile = ".env"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "HOGWARTS_DEBUG", validateEnvBool},

		// PotterDB API
		{"api.baseurl", "HOGWARTS_API_BASEURL", validateEnvURL},
		{"api.timeout", "HOGWARTS_API_TIMEOUT", validateEnvDuration},
		{"api.ratelimit", "HOGWARTS_API_RATELIMIT", validateEnvRateLimit},
		{"api.useragent", "HOGWARTS_API_USERAGENT", nil},

		{"cache.ttl", "HOGWARTS_CACHE_TTL", validateEnvDuration},

		// Store
		{"store.type", "HOGWARTS_STORE_TYPE", validateEnvStoreType},
		{"store.sqlite.path", "HOGWARTS_STORE_SQLITE_PATH", nil},
		{"store.mysql.host", "HOGWARTS_STORE_MYSQL_HOST", nil},
		{"store.mysql.port", "HOGWARTS_STORE_MYSQL_PORT", validateEnvPort},
		{"store.mysql.username", "HOGWARTS_STORE_MYSQL_USERNAME", nil},
		{"store.mysql.password", "HOGWARTS_STORE_MYSQL_PASSWORD", nil},
		{"store.mysql.database", "HOGWARTS_STORE_MYSQL_DATABASE", nil},

		// Logging
		{"log.level", "HOGWARTS_LOG_LEVEL", validateEnvLogLevel},
		{"log.file.enabled", "HOGWARTS_LOG_FILE_ENABLED", validateEnvBool},
		{"log.file.path", "HOGWARTS_LOG_FILE_PATH", nil},

		{"webserver.enabled", "HOGWARTS_WEBSERVER_ENABLED", validateEnvBool},
		{"webserver.port", "HOGWARTS_WEBSERVER_PORT", validateEnvPort},

		{"sentry.enabled", "HOGWARTS_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "HOGWARTS_SENTRY_DSN", nil},

		{"quiz.path", "HOGWARTS_QUIZ_PATH", nil},
	}
}

// loadDotEnv loads variables from .env without overriding ones already set
func loadDotEnv() {
	err := godotenv.Load(dotEnvFile)
	switch {
	case err == nil:
		GetLogger().Debug("loaded environment file", logger.String("path", dotEnvFile))
	case errors.Is(err, fs.ErrNotExist):
	default:
		GetLogger().Warn("failed to load environment file",
			logger.String("path", dotEnvFile),
			logger.Error(err))
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f", value)
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	return nil
}

func validateEnvRateLimit(value string) error {
	limit, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid rate limit: %w", err)
	}
	if limit < 0 {
		return fmt.Errorf("rate limit must be non-negative, got %g", limit)
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

func validateEnvStoreType(value string) error {
	if !slices.Contains(validStoreTypes, value) {
		return fmt.Errorf("must be one of: %s", strings.Join(validStoreTypes, ", "))
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	if !slices.Contains(validLogLevels, value) {
		return fmt.Errorf("must be one of: %s", strings.Join(validLogLevels, ", "))
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return bindEnvVars()
}
