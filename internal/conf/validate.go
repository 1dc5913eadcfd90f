// conf/validate.go

package conf

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	validStoreTypes = []string{"memory", "sqlite", "mysql"}
	validLogLevels  = []string{"trace", "debug", "info", "warn", "error"}
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct, collecting every problem
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) error{
		validateAPISettings,
		validateCacheSettings,
		validateStoreSettings,
		validateLogSettings,
		validateWebServerSettings,
		validateSentrySettings,
	}
	for _, validate := range validators {
		if err := validate(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateAPISettings(settings *Settings) error {
	var errs []string

	if err := validateEnvURL(settings.API.BaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("api.baseurl: %v", err))
	}
	if settings.API.Timeout <= 0 {
		errs = append(errs, "api.timeout must be positive")
	}
	if settings.API.RateLimit < 0 {
		errs = append(errs, "api.ratelimit must be non-negative")
	}

	return joinErrors("API", errs)
}

func validateCacheSettings(settings *Settings) error {
	if settings.Cache.TTL <= 0 {
		return fmt.Errorf("cache settings errors: cache.ttl must be positive")
	}
	return nil
}

func validateStoreSettings(settings *Settings) error {
	var errs []string
	store := settings.Store

	switch store.Type {
	case "memory":
	case "sqlite":
		if store.SQLite.Path == "" {
			errs = append(errs, "store.sqlite.path is required for the sqlite store")
		}
	case "mysql":
		if store.MySQL.Host == "" {
			errs = append(errs, "store.mysql.host is required for the mysql store")
		}
		if store.MySQL.Database == "" {
			errs = append(errs, "store.mysql.database is required for the mysql store")
		}
		if err := validateEnvPort(store.MySQL.Port); err != nil {
			errs = append(errs, fmt.Sprintf("store.mysql.port: %v", err))
		}
	default:
		errs = append(errs, fmt.Sprintf("store.type must be one of %s, got %q",
			strings.Join(validStoreTypes, ", "), store.Type))
	}

	return joinErrors("store", errs)
}

func validateLogSettings(settings *Settings) error {
	var errs []string

	if !slices.Contains(validLogLevels, settings.Log.Level) {
		errs = append(errs, fmt.Sprintf("log.level must be one of %s", strings.Join(validLogLevels, ", ")))
	}
	if settings.Log.File.Enabled {
		if settings.Log.File.Path == "" {
			errs = append(errs, "log.file.path is required when file logging is enabled")
		}
		if settings.Log.File.Level != "" && !slices.Contains(validLogLevels, settings.Log.File.Level) {
			errs = append(errs, fmt.Sprintf("log.file.level must be one of %s", strings.Join(validLogLevels, ", ")))
		}
	}
	for _, module := range slices.Sorted(maps.Keys(settings.Log.Modules)) {
		if !slices.Contains(validLogLevels, settings.Log.Modules[module]) {
			errs = append(errs, fmt.Sprintf("log.modules.%s must be one of %s", module, strings.Join(validLogLevels, ", ")))
		}
	}

	return joinErrors("log", errs)
}

func validateWebServerSettings(settings *Settings) error {
	if !settings.WebServer.Enabled {
		return nil
	}
	if err := validateEnvPort(settings.WebServer.Port); err != nil {
		return fmt.Errorf("webserver settings errors: webserver.port: %w", err)
	}
	return nil
}

func validateSentrySettings(settings *Settings) error {
	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		return fmt.Errorf("sentry settings errors: sentry.dsn is required when sentry is enabled")
	}
	return nil
}

func joinErrors(section string, errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s settings errors: %v", section, errs)
}
