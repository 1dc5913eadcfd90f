package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	// LoadLocation must work on hosts without a zoneinfo database
	_ "time/tzdata"

	"github.com/tphakala/hogwarts-heroes/internal/errors"
)

// traceLevelValue sits below slog.LevelDebug (-4)
const traceLevelValue = slog.Level(-8)

var levelByName = map[string]slog.Level{
	"trace": traceLevelValue,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var (
	globalLogger   *CentralLogger
	globalLoggerMu sync.Mutex
)

// SetGlobal installs cl as the process-wide logger. Passing nil restores
// the stderr fallback.
func SetGlobal(cl *CentralLogger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = cl
}

// Global returns the logger installed by SetGlobal. Until then records go
// to stderr at info level, which covers configuration loading.
func Global() *CentralLogger {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()

	if globalLogger == nil {
		globalLogger = &CentralLogger{
			timezone:     time.Local,
			defaultLevel: slog.LevelInfo,
			base:         newTextHandler(os.Stderr, slog.LevelInfo, time.Local),
		}
	}
	return globalLogger
}

type traceIDContextKey struct{}

// WithTraceID returns a context carrying traceID for WithContext.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDContextKey{}, traceID)
}

// TraceIDFromContext returns the trace ID stored in ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(traceIDContextKey{}).(string)
	return traceID
}

// CentralLogger owns the log outputs and hands out module loggers.
type CentralLogger struct {
	timezone     *time.Location
	defaultLevel slog.Level
	moduleLevels map[string]slog.Level

	base        slog.Handler // console and main file
	access      slog.Handler // nil unless an access log is configured
	accessLevel slog.Level

	mu      sync.Mutex
	writers []*BufferedFileWriter
}

// NewCentralLogger opens the outputs described by cfg. Files opened before
// a failure are closed again.
func NewCentralLogger(cfg *LoggingConfig) (*CentralLogger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logging config cannot be nil")
	}
	applyConfigDefaults(cfg)

	tz, err := loadTimezone(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	cl := &CentralLogger{
		timezone:     tz,
		defaultLevel: parseLogLevel(cfg.DefaultLevel),
		moduleLevels: make(map[string]slog.Level, len(cfg.ModuleLevels)),
	}
	for module, level := range cfg.ModuleLevels {
		cl.moduleLevels[module] = parseLogLevel(level)
	}

	var outputs []slog.Handler
	if cfg.Console.Enabled {
		// stderr keeps stdout free for command output
		outputs = append(outputs, newTextHandler(os.Stderr, parseLogLevel(cfg.Console.Level), tz))
	}
	if cfg.FileOutput != nil && cfg.FileOutput.Enabled {
		handler, err := cl.openFile(cfg.FileOutput)
		if err != nil {
			_ = cl.Close()
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		outputs = append(outputs, handler)
	}
	if len(outputs) == 0 {
		outputs = append(outputs, newTextHandler(os.Stderr, cl.defaultLevel, tz))
	}
	cl.base = newFanoutHandler(outputs...)

	if cfg.AccessLog != nil && cfg.AccessLog.Enabled {
		handler, err := cl.openFile(cfg.AccessLog)
		if err != nil {
			_ = cl.Close()
			return nil, fmt.Errorf("failed to open access log: %w", err)
		}
		cl.access = handler
		cl.accessLevel = parseLogLevel(cfg.AccessLog.Level)
	}

	return cl, nil
}

func loadTimezone(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", name, err)
	}
	return tz, nil
}

// openFile opens a buffered JSON output and tracks it for Close.
func (cl *CentralLogger) openFile(out *FileOutput) (slog.Handler, error) {
	if dir := filepath.Dir(out.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}
	writer, err := NewBufferedFileWriter(out.Path)
	if err != nil {
		return nil, err
	}

	cl.mu.Lock()
	cl.writers = append(cl.writers, writer)
	cl.mu.Unlock()

	return newJSONHandler(writer, parseLogLevel(out.Level), cl.timezone), nil
}

// Module returns a logger for name. AccessModule goes to the access log
// when one is open.
func (cl *CentralLogger) Module(name string) Logger {
	if cl == nil {
		return nil
	}

	handler, level := cl.base, cl.levelFor(name)
	if cl.access != nil && name == AccessModule {
		handler, level = cl.access, cl.accessLevel
	}

	return &moduleLogger{
		module: name,
		logger: slog.New(handler),
		level:  level,
	}
}

// levelFor returns the most specific configured level for module, walking
// up dotted parents before falling back to the default.
func (cl *CentralLogger) levelFor(module string) slog.Level {
	name := module
	for {
		if level, ok := cl.moduleLevels[name]; ok {
			return level
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			return cl.defaultLevel
		}
		name = name[:i]
	}
}

// Close flushes and closes every log file. Loggers handed out earlier keep
// working for console output.
func (cl *CentralLogger) Close() error {
	if cl == nil {
		return nil
	}

	cl.mu.Lock()
	writers := cl.writers
	cl.writers = nil
	cl.mu.Unlock()

	var errs []error
	for _, writer := range writers {
		if err := writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", writer.FilePath(), err))
		}
	}
	return errors.Join(errs...)
}

// parseLogLevel maps a level name to slog, defaulting to info.
func parseLogLevel(name string) slog.Level {
	if level, ok := levelByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return slog.LevelInfo
}

func parseSlogLevel(level LogLevel) slog.Level {
	return parseLogLevel(string(level))
}
