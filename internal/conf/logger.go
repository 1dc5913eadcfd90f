// Package conf provides configuration management for HogwartsHeroes.
package conf

import "github.com/tphakala/hogwarts-heroes/internal/logger"

// GetLogger returns the config package logger scoped to the config module.
// It is fetched from the global logger on each call because configuration
// is loaded before the central logger exists.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}

// LoggingConfig translates the log section into a central logger config.
// Debug mode lowers the console level to debug.
func (s *Settings) LoggingConfig() *logger.LoggingConfig {
	level := s.Log.Level
	if s.Debug {
		level = string(logger.LogLevelDebug)
	}

	cfg := &logger.LoggingConfig{
		Timezone:     s.Log.Timezone,
		DefaultLevel: level,
		Console: &logger.ConsoleOutput{
			Enabled: true,
			Level:   level,
		},
		ModuleLevels: s.Log.Modules,
	}
	if s.Log.File.Enabled {
		cfg.FileOutput = &logger.FileOutput{
			Enabled: true,
			Path:    s.Log.File.Path,
			Level:   s.Log.File.Level,
		}
	}
	if s.Log.AccessLog != "" {
		logger.WithAccessLog(cfg, s.Log.AccessLog)
	}
	return cfg
}
