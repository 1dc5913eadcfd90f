package logger

// AccessModule is the module name used for API access lines. When an
// access log is configured its records go there instead of the main outputs.
const AccessModule = "api.access"

// Defaults shared with conf/defaults.go.
const (
	DefaultLogLevel      = "info"
	DefaultLogPath       = "logs/hogwarts.log"
	DefaultAccessLogPath = "logs/access.log"
)

// LoggingConfig describes where log records go.
type LoggingConfig struct {
	Timezone     string            `yaml:"timezone" json:"timezone"` // "Local", "UTC" or an IANA name
	DefaultLevel string            `yaml:"default_level" json:"default_level"`
	Console      *ConsoleOutput    `yaml:"console" json:"console"`
	FileOutput   *FileOutput       `yaml:"file_output" json:"file_output"`
	AccessLog    *FileOutput       `yaml:"access_log" json:"access_log"`
	ModuleLevels map[string]string `yaml:"module_levels" json:"module_levels"` // keyed by module; "api" also covers "api.access"
}

// ConsoleOutput is human-readable text on stderr without timestamps.
type ConsoleOutput struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Level   string `yaml:"level" json:"level"`
}

// FileOutput is a JSON-lines file with RFC3339 timestamps.
type FileOutput struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Level   string `yaml:"level" json:"level"`
}

// applyConfigDefaults fills the gaps of a partial config. Console output is
// on unless explicitly configured; files stay off unless enabled.
func applyConfigDefaults(cfg *LoggingConfig) {
	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = DefaultLogLevel
	}
	if cfg.Console == nil {
		cfg.Console = &ConsoleOutput{Enabled: true, Level: cfg.DefaultLevel}
	}
	fillFileDefaults(cfg.FileOutput, DefaultLogPath, cfg.DefaultLevel)
	fillFileDefaults(cfg.AccessLog, DefaultAccessLogPath, DefaultLogLevel)
}

func fillFileDefaults(out *FileOutput, path, level string) {
	if out == nil {
		return
	}
	if out.Path == "" {
		out.Path = path
	}
	if out.Level == "" {
		out.Level = level
	}
}

// WithAccessLog enables the access log at path, or at DefaultAccessLogPath
// when path is empty. An access log configured earlier is kept.
func WithAccessLog(cfg *LoggingConfig, path string) {
	if cfg.AccessLog != nil {
		return
	}
	cfg.AccessLog = &FileOutput{Enabled: true, Path: path, Level: DefaultLogLevel}
}
