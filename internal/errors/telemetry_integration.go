// Package errors - telemetry integration (optional)
package errors

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TelemetryReporter is an interface for reporting errors to telemetry systems
type TelemetryReporter interface {
	ReportError(err *EnhancedError)
	IsEnabled() bool
}

// SentryReporter implements TelemetryReporter for Sentry
type SentryReporter struct {
	enabled bool
}

// NewSentryReporter creates a new Sentry telemetry reporter
func NewSentryReporter(enabled bool) *SentryReporter {
	return &SentryReporter{
		enabled: enabled,
	}
}

// InitSentry initializes the Sentry SDK and installs a SentryReporter.
// An empty dsn leaves telemetry disabled and is not an error.
func InitSentry(dsn, release string) (flush func(time.Duration) bool, err error) {
	if dsn == "" {
		return func(time.Duration) bool { return true }, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		AttachStacktrace: true,
		SendDefaultPII:   false,
	}); err != nil {
		return nil, New(err).
			Category(CategoryConfiguration).
			Component("telemetry").
			Context("operation", "sentry_init").
			Build()
	}

	SetTelemetryReporter(NewSentryReporter(true))
	return sentry.Flush, nil
}

// IsEnabled returns whether Sentry telemetry is enabled
func (sr *SentryReporter) IsEnabled() bool {
	return sr.enabled
}

// ReportError sends ee to Sentry once.
func (sr *SentryReporter) ReportError(ee *EnhancedError) {
	if !sr.enabled || ee.IsReported() {
		return
	}
	sentry.CaptureEvent(buildSentryEvent(ee))
	ee.MarkReported()
}

// buildSentryEvent turns ee into an event with scrubbed message and context.
// The exception type carries the generated title, which Sentry uses as the
// issue name.
func buildSentryEvent(ee *EnhancedError) *sentry.Event {
	title := generateErrorTitle(ee)
	message := scrubMessageForPrivacy(fmt.Sprintf("[%s] %s", ee.Category, ee.Err.Error()))
	component := ee.GetComponent()

	details := make(sentry.Context, len(ee.Context))
	for key, value := range ee.Context {
		if text, ok := value.(string); ok {
			value = scrubMessageForPrivacy(text)
		}
		details[key] = value
	}

	event := sentry.NewEvent()
	event.Message = message
	event.Level = getErrorLevel(ee.Category)
	event.Timestamp = ee.Timestamp
	event.Tags = map[string]string{
		"error_title": title,
		"component":   component,
		"category":    string(ee.Category),
		"error_type":  fmt.Sprintf("%T", ee.Err),
	}
	event.Contexts = map[string]sentry.Context{"error_details": details}
	event.Fingerprint = []string{title, component, string(ee.Category)}
	event.Exception = []sentry.Exception{{Type: title, Value: message}}
	return event
}

// categoryTitles names categories in Sentry issue titles
var categoryTitles = map[ErrorCategory]string{
	CategoryValidation:    "Validation Error",
	CategoryNetwork:       "Network Error",
	CategoryDatabase:      "Database Error",
	CategoryCache:         "Cache Error",
	CategoryFileIO:        "File I/O Error",
	CategoryFileParsing:   "Parsing Error",
	CategoryConfiguration: "Configuration Error",
	CategoryLimit:         "Rate Limit Error",
	CategoryTimeout:       "Timeout",
	CategorySystem:        "System Error",
}

// categoryLevels overrides the default error level; transient upstream
// failures are warnings and expected outcomes are info.
var categoryLevels = map[ErrorCategory]sentry.Level{
	CategoryNetwork:      sentry.LevelWarning,
	CategoryLimit:        sentry.LevelWarning,
	CategoryTimeout:      sentry.LevelWarning,
	CategoryFileIO:       sentry.LevelWarning,
	CategoryCache:        sentry.LevelWarning,
	CategoryNotFound:     sentry.LevelInfo,
	CategoryCancellation: sentry.LevelInfo,
}

// generateErrorTitle builds "<Component> <Category> <Operation>", e.g.
// "Potterdb Network Error List Characters", skipping unknown parts.
func generateErrorTitle(ee *EnhancedError) string {
	title := cases.Title(language.Und)
	var parts []string

	if component := ee.GetComponent(); component != "" && component != ComponentUnknown {
		parts = append(parts, title.String(component))
	}
	if name, ok := categoryTitles[ee.Category]; ok {
		parts = append(parts, name)
	} else if ee.Category != "" {
		parts = append(parts, string(ee.Category))
	}
	if operation, _ := ee.Context["operation"].(string); operation != "" {
		parts = append(parts, title.String(strings.ReplaceAll(operation, "_", " ")))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%T", ee.Err)
	}
	return strings.Join(parts, " ")
}

func getErrorLevel(category ErrorCategory) sentry.Level {
	if level, ok := categoryLevels[category]; ok {
		return level
	}
	return sentry.LevelError
}

var (
	globalTelemetryReporter TelemetryReporter
	reporterMu              sync.RWMutex
)

// SetTelemetryReporter sets the global telemetry reporter
func SetTelemetryReporter(reporter TelemetryReporter) {
	reporterMu.Lock()
	globalTelemetryReporter = reporter
	reporterMu.Unlock()

	errorHooksMu.Lock()
	updateReportingState()
	errorHooksMu.Unlock()
}

// GetTelemetryReporter returns the current telemetry reporter
func GetTelemetryReporter() TelemetryReporter {
	reporterMu.RLock()
	defer reporterMu.RUnlock()
	return globalTelemetryReporter
}

// reportToTelemetry reports an error to the configured telemetry system
func reportToTelemetry(ee *EnhancedError) {
	if reporter := GetTelemetryReporter(); reporter != nil && reporter.IsEnabled() {
		reporter.ReportError(ee)
	}
}

// Pre-compiled scrubbing patterns
var (
	urlQueryRegex   = regexp.MustCompile(`(https?://[^?\s]+)\?\S*`)
	queryParamRegex = regexp.MustCompile(`[?&]([^=\s]+)=([^&\s]+)`)
	apiKeyRegexes   = []*regexp.Regexp{
		regexp.MustCompile(`api[_-]?key[=:]\S+`),
		regexp.MustCompile(`token[=:]\S+`),
		regexp.MustCompile(`auth[=:]\S+`),
		regexp.MustCompile(`password[=:]\S+`),
		regexp.MustCompile(`[0-9a-fA-F]{32,}`),
	}
	dsnCredentialRegex = regexp.MustCompile(`([a-zA-Z0-9_]+):([^@\s]+)@tcp\(`)
)

// scrubMessageForPrivacy applies privacy protection to error messages
func scrubMessageForPrivacy(message string) string {
	return basicURLScrub(message)
}

// basicURLScrub removes query strings, API keys and database credentials
func basicURLScrub(message string) string {
	scrubbed := urlQueryRegex.ReplaceAllString(message, "$1?[REDACTED]")
	scrubbed = queryParamRegex.ReplaceAllString(scrubbed, "?[REDACTED]")

	for _, regex := range apiKeyRegexes {
		scrubbed = regex.ReplaceAllString(scrubbed, "[API_KEY_REDACTED]")
	}

	return dsnCredentialRegex.ReplaceAllString(scrubbed, "[CREDENTIALS_REDACTED]@tcp(")
}
