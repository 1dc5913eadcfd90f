package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	testCases := []struct {
		name        string
		configLevel LogLevel
		logFunc     func(l Logger)
		shouldLog   bool
	}{
		{"debug at info", LogLevelInfo, func(l Logger) { l.Debug("msg") }, false},
		{"info at info", LogLevelInfo, func(l Logger) { l.Info("msg") }, true},
		{"warn at error", LogLevelError, func(l Logger) { l.Warn("msg") }, false},
		{"error at error", LogLevelError, func(l Logger) { l.Error("msg") }, true},
		{"trace at debug", LogLevelDebug, func(l Logger) { l.Trace("msg") }, false},
		{"trace at trace", LogLevelTrace, func(l Logger) { l.Trace("msg") }, true},
		{"explicit warn at info", LogLevelInfo, func(l Logger) { l.Log(LogLevelWarn, "msg") }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewSlogLogger(&buf, tc.configLevel, time.UTC)
			tc.logFunc(log)
			assert.Equal(t, tc.shouldLog, strings.Contains(buf.String(), "msg=msg"), buf.String())
		})
	}
}

func TestTraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	NewSlogLogger(&buf, LogLevelTrace, nil).Trace("deep")
	assert.Contains(t, buf.String(), "level=TRACE")
}

func TestConsoleOmitsTimestamp(t *testing.T) {
	var buf bytes.Buffer
	NewSlogLogger(&buf, LogLevelInfo, nil).Info("hello")
	assert.NotContains(t, buf.String(), "time=")
}

func TestFieldRendering(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelInfo, nil).Module("potterdb")

	log.Info("fetched",
		Int("page", 2),
		Float64("ratio", 0.123456),
		Duration("elapsed", 1500*time.Millisecond),
		Error(fmt.Errorf("boom")),
		Bool("cached", true))

	out := buf.String()
	assert.Contains(t, out, "module=potterdb")
	assert.Contains(t, out, "page=2")
	assert.Contains(t, out, "ratio=0.123")
	assert.Contains(t, out, "elapsed=1.5s")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "cached=true")
}

func TestSensitiveFieldsRedacted(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelInfo, nil)

	log.Info("connecting",
		String("password", "hunter22"),
		String("dsn", "hogwarts:s3cret@tcp(db:3306)/heroes"),
		String("url", "https://api.potterdb.com/v1/characters"))

	out := buf.String()
	assert.NotContains(t, out, "hunter22")
	assert.NotContains(t, out, "s3cret")
	assert.Contains(t, out, "https://api.potterdb.com/v1/characters")
}

func TestModuleNaming(t *testing.T) {
	var buf bytes.Buffer
	root := NewSlogLogger(&buf, LogLevelInfo, nil)

	root.Module("api").Module("access").Info("request")
	assert.Contains(t, buf.String(), "module=api.access")
}

func TestWithAccumulatesFields(t *testing.T) {
	var buf bytes.Buffer
	parent := NewSlogLogger(&buf, LogLevelInfo, nil).With(String("component", "character"))
	child := parent.With(Int("page", 1))

	child.Info("child")
	parent.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "component=character")
	assert.Contains(t, lines[0], "page=1")
	assert.NotContains(t, lines[1], "page=1")
}

func TestWithContextAddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(&buf, LogLevelInfo, nil)

	ctx := WithTraceID(context.Background(), "req-42")
	log.WithContext(ctx).Info("traced")
	log.WithContext(context.Background()).Info("untraced")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "trace_id=req-42")
	assert.NotContains(t, lines[1], "trace_id")
	assert.Equal(t, "req-42", TraceIDFromContext(ctx))
}

func TestNilModuleLoggerIsSafe(t *testing.T) {
	var log *moduleLogger
	assert.NotPanics(t, func() {
		log.Info("nothing")
		log.Error("nothing")
		assert.Nil(t, log.With(String("k", "v")))
	})
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		log := NewNopLogger()
		log.Error("dropped")
		log.Module("x").Info("dropped")
	})
}

func TestCentralLoggerFileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "hogwarts.log")

	cl, err := NewCentralLogger(&LoggingConfig{
		DefaultLevel: "debug",
		Timezone:     "UTC",
		Console:      &ConsoleOutput{Enabled: false},
		FileOutput:   &FileOutput{Enabled: true, Path: path, Level: "debug"},
	})
	require.NoError(t, err)

	cl.Module("kvstore").Debug("stored", String("key", "hogwarts:characters:v1"))
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "stored", entry["msg"])
	assert.Equal(t, "kvstore", entry["module"])
	assert.Equal(t, "hogwarts:characters:v1", entry["key"])

	ts, ok := entry["time"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestCentralLoggerModuleOutput(t *testing.T) {
	dir := t.TempDir()
	accessPath := filepath.Join(dir, "access.log")

	cfg := &LoggingConfig{
		Console: &ConsoleOutput{Enabled: false},
	}
	WithAccessLog(cfg, accessPath)

	cl, err := NewCentralLogger(cfg)
	require.NoError(t, err)

	cl.Module("api.access").Info("GET /api/v1/health")
	require.NoError(t, cl.Close())

	data, err := os.ReadFile(accessPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "GET /api/v1/health")
}

func TestCentralLoggerModuleLevels(t *testing.T) {
	cl, err := NewCentralLogger(&LoggingConfig{
		DefaultLevel: "info",
		ModuleLevels: map[string]string{"potterdb": "error"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	ml, ok := cl.Module("potterdb").(*moduleLogger)
	require.True(t, ok)
	assert.Equal(t, parseLogLevel("error"), ml.level)
}

func TestCentralLoggerDottedModuleLevels(t *testing.T) {
	cl, err := NewCentralLogger(&LoggingConfig{
		DefaultLevel: "warn",
		ModuleLevels: map[string]string{"api": "debug", "api.middleware": "error"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	assert.Equal(t, slog.LevelDebug, cl.levelFor("api"))
	assert.Equal(t, slog.LevelDebug, cl.levelFor("api.access"), "inherits from api")
	assert.Equal(t, slog.LevelError, cl.levelFor("api.middleware.cors"))
	assert.Equal(t, slog.LevelWarn, cl.levelFor("potterdb"))
}

func TestAccessLogKeepsOwnLevel(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.log")
	accessPath := filepath.Join(dir, "access.log")

	cfg := &LoggingConfig{
		DefaultLevel: "error",
		Console:      &ConsoleOutput{Enabled: false},
		FileOutput:   &FileOutput{Enabled: true, Path: mainPath},
	}
	WithAccessLog(cfg, accessPath)

	cl, err := NewCentralLogger(cfg)
	require.NoError(t, err)

	cl.Module(AccessModule).Info("GET /api/v1/characters")
	cl.Module("character").Error("traversal failed")
	require.NoError(t, cl.Close())

	access, err := os.ReadFile(accessPath)
	require.NoError(t, err)
	assert.Contains(t, string(access), "GET /api/v1/characters", "access lines pass at info under an error default")
	assert.NotContains(t, string(access), "traversal failed")

	mainLog, err := os.ReadFile(mainPath)
	require.NoError(t, err)
	assert.Contains(t, string(mainLog), "traversal failed")
	assert.NotContains(t, string(mainLog), "GET /api/v1/characters")
}

func TestFanoutRespectsEachOutputLevel(t *testing.T) {
	var verbose, quiet bytes.Buffer
	h := newFanoutHandler(
		newTextHandler(&verbose, slog.LevelDebug, nil),
		newTextHandler(&quiet, slog.LevelWarn, nil),
	)
	log := slog.New(h).With("module", "kvstore")

	log.Debug("cache miss")
	log.Warn("store slow")

	assert.Contains(t, verbose.String(), "cache miss")
	assert.Contains(t, verbose.String(), "store slow")
	assert.NotContains(t, quiet.String(), "cache miss")
	assert.Contains(t, quiet.String(), "module=kvstore")
	assert.False(t, h.Enabled(context.Background(), traceLevelValue))
}

func TestNewCentralLoggerRejectsBadInput(t *testing.T) {
	_, err := NewCentralLogger(nil)
	require.Error(t, err)

	_, err = NewCentralLogger(&LoggingConfig{Timezone: "Not/AZone"})
	require.Error(t, err)
}

func TestGlobalFallback(t *testing.T) {
	SetGlobal(nil)
	t.Cleanup(func() { SetGlobal(nil) })

	assert.NotNil(t, Global())
	assert.NotNil(t, Global().Module("quiz"))
}
