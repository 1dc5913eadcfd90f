// config.go: settings for the hogwarts CLI and API server
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/hogwarts-heroes/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// APISettings contains settings for the PotterDB API client
type APISettings struct {
	BaseURL   string        `yaml:"baseurl"`   // API root, e.g. https://api.potterdb.com/v1
	Timeout   time.Duration `yaml:"timeout"`   // per-request timeout
	RateLimit float64       `yaml:"ratelimit"` // requests per second, 0 disables limiting
	UserAgent string        `yaml:"useragent"` // User-Agent header sent with requests
}

// CacheSettings contains settings for the character list cache
type CacheSettings struct {
	TTL time.Duration `yaml:"ttl"` // freshness window of the cached list
}

// SQLiteSettings contains settings for the SQLite store
type SQLiteSettings struct {
	Path string `yaml:"path"` // database file path
}

// MySQLSettings contains settings for the MySQL store
type MySQLSettings struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// StoreSettings selects and configures the key-value store backend
type StoreSettings struct {
	Type   string         `yaml:"type"` // memory, sqlite or mysql
	SQLite SQLiteSettings `yaml:"sqlite"`
	MySQL  MySQLSettings  `yaml:"mysql"`
}

// LogFileSettings contains settings for the JSON log file
type LogFileSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Level   string `yaml:"level"`
}

// LogSettings contains logging settings
type LogSettings struct {
	Level     string            `yaml:"level"`     // console level
	Timezone  string            `yaml:"timezone"`  // timestamp zone for file output
	File      LogFileSettings   `yaml:"file"`      // JSON file output
	AccessLog string            `yaml:"accesslog"` // API access log path, empty disables
	Modules   map[string]string `yaml:"modules"`   // per-module level overrides, e.g. potterdb: debug
}

// WebServerSettings contains settings for the HTTP API server
type WebServerSettings struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
}

// SentrySettings contains settings for error telemetry
type SentrySettings struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// QuizSettings contains settings for the quiz question bank
type QuizSettings struct {
	Path string `yaml:"path"` // JSON question file, empty uses the built-in bank
}

// Settings contains all configuration options
type Settings struct {
	Debug     bool              `yaml:"debug"`
	API       APISettings       `yaml:"api"`
	Cache     CacheSettings     `yaml:"cache"`
	Store     StoreSettings     `yaml:"store"`
	Log       LogSettings       `yaml:"log"`
	WebServer WebServerSettings `yaml:"webserver"`
	Sentry    SentrySettings    `yaml:"sentry"`
	Quiz      QuizSettings      `yaml:"quiz"`
}

// MySQLDSN returns the go-sql-driver DSN for the configured MySQL store.
func (s *Settings) MySQLDSN() string {
	m := s.Store.MySQL
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.Username, m.Password, net.JoinHostPort(m.Host, m.Port), m.Database)
}

// PortNumber returns the web server port as an integer, 0 when unparsable.
func (w WebServerSettings) PortNumber() int {
	port, err := strconv.Atoi(w.Port)
	if err != nil {
		return 0
	}
	return port
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
	configFile       string
)

// SetConfigFile makes Load read path instead of searching the default locations.
func SetConfigFile(path string) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	configFile = path
}

// Load reads .env, the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	loadDotEnv()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets defaults, binds the environment and reads the configuration file.
func initViper() error {
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		GetLogger().Warn("environment configuration issues", logger.Error(err))
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded config.yaml into dir and reads it back
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	defaultConfig, err := getDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, defaultConfig, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	GetLogger().Info("created default config file", logger.String("path", configPath))
	return viper.ReadInConfig()
}

// getDefaultConfig returns the embedded default configuration.
func getDefaultConfig() ([]byte, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("error reading embedded config: %w", err)
	}
	return data, nil
}

// GetSettings returns the current settings instance, nil before Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveSettings writes the current settings to the active config file.
func SaveSettings() error {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()

	if settingsInstance == nil {
		return fmt.Errorf("settings not loaded")
	}

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		var err error
		if configPath, err = FindConfigFile(); err != nil {
			return fmt.Errorf("error finding config file: %w", err)
		}
	}

	settingsCopy := *settingsInstance
	if err := SaveYAMLConfig(configPath, &settingsCopy); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	GetLogger().Info("settings saved", logger.String("path", configPath))
	return nil
}

// SaveYAMLConfig writes settings to configPath through a temporary file.
// Comments and ordering of the existing file are not preserved.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		// cross-device rename, e.g. a bind-mounted config file
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (s *Settings) Redacted() Settings {
	c := *s
	if c.Store.MySQL.Password != "" {
		c.Store.MySQL.Password = "********"
	}
	if c.Sentry.DSN != "" {
		c.Sentry.DSN = "********"
	}
	return c
}
