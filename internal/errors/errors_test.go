package errors

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingReporter counts reported errors
type recordingReporter struct {
	enabled  bool
	reported []*EnhancedError
}

func (r *recordingReporter) IsEnabled() bool { return r.enabled }

func (r *recordingReporter) ReportError(ee *EnhancedError) {
	r.reported = append(r.reported, ee)
	ee.MarkReported()
}

func TestFastPathNoTelemetry(t *testing.T) {
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Err.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent(), "fast path does not walk the stack")
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}

func TestBuilderKeepsExplicitValues(t *testing.T) {
	ee := Newf("page %d failed", 3).
		Component("potterdb").
		Category(CategoryNetwork).
		Priority(PriorityHigh).
		Context("status_code", 502).
		Build()

	assert.Equal(t, "page 3 failed", ee.Error())
	assert.Equal(t, "potterdb", ee.GetComponent())
	assert.Equal(t, CategoryNetwork, ee.Category)
	assert.Equal(t, PriorityHigh, ee.GetPriority())
	assert.Equal(t, 502, ee.GetContext()["status_code"])
}

func TestPriorityFallsBackToMedium(t *testing.T) {
	ee := NewStd("x")
	built := New(ee).Priority("urgent").Build()
	assert.Equal(t, PriorityMedium, built.Priority)
}

func TestGetContextReturnsCopy(t *testing.T) {
	ee := Newf("boom").Context("key", "value").Build()

	ctx := ee.GetContext()
	ctx["key"] = "changed"

	assert.Equal(t, "value", ee.GetContext()["key"])
}

func TestCategoryHelpers(t *testing.T) {
	notFound := Newf("character missing").Category(CategoryNotFound).Build()
	wrapped := fmt.Errorf("lookup: %w", notFound)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.True(t, IsCategory(wrapped, CategoryNotFound))
	assert.False(t, IsNotFound(fmt.Errorf("plain")))
}

func TestStatusCode(t *testing.T) {
	err := Newf("bad gateway").Context("status_code", 502).Build()
	assert.Equal(t, 502, StatusCode(fmt.Errorf("wrapped: %w", err)))
	assert.Zero(t, StatusCode(fmt.Errorf("plain")))
}

func TestEnhancedErrorIsMatchesCategory(t *testing.T) {
	a := Newf("a").Category(CategoryLimit).Build()
	b := Newf("b").Category(CategoryLimit).Build()
	c := Newf("c").Category(CategoryNetwork).Build()

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}

func TestTelemetryReporterReceivesErrors(t *testing.T) {
	reporter := &recordingReporter{enabled: true}
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	ee := Newf("connection refused").Build()

	require.Len(t, reporter.reported, 1)
	assert.True(t, ee.IsReported())
	assert.Equal(t, CategoryNetwork, ee.Category, "category is detected when reporting is active")
}

func TestErrorHooks(t *testing.T) {
	var seen []string
	AddErrorHook(func(ee *EnhancedError) {
		seen = append(seen, ee.Error())
	})
	t.Cleanup(ClearErrorHooks)

	_ = Newf("first").Category(CategoryCache).Build()
	_ = Newf("second").Category(CategoryCache).Build()

	assert.Equal(t, []string{"first", "second"}, seen)

	ClearErrorHooks()
	_ = Newf("third").Build()
	assert.Len(t, seen, 2)
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		component string
		want      ErrorCategory
	}{
		{"timeout", fmt.Errorf("context deadline exceeded"), "", CategoryTimeout},
		{"wrapped deadline", fmt.Errorf("get page 2: %w", context.DeadlineExceeded), "potterdb", CategoryTimeout},
		{"wrapped cancel", fmt.Errorf("get page 2: %w", context.Canceled), "potterdb", CategoryCancellation},
		{"inner category wins", Newf("boom").Category(CategoryLimit).Build(), "potterdb", CategoryLimit},
		{"canceled", fmt.Errorf("context canceled"), "", CategoryCancellation},
		{"dial", fmt.Errorf("dial tcp: connection refused"), "", CategoryNetwork},
		{"invalid", fmt.Errorf("invalid filter field"), "", CategoryValidation},
		{"kvstore component", fmt.Errorf("boom"), "kvstore", CategoryDatabase},
		{"potterdb component", fmt.Errorf("boom"), "potterdb", CategoryNetwork},
		{"unknown", fmt.Errorf("boom"), "", CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectCategory(tt.err, tt.component))
		})
	}
}

func TestRegexPrecompilation(t *testing.T) {
	scrubbed := basicURLScrub("Error at https://api.potterdb.com/v1/characters?filter[house_cont]=Gryffindor")
	assert.Equal(t, "Error at https://api.potterdb.com/v1/characters?[REDACTED]", scrubbed)

	scrubbed = basicURLScrub("Config error: api_key=secret123 is invalid")
	assert.Contains(t, scrubbed, "[API_KEY_REDACTED]")

	scrubbed = basicURLScrub("Auth failed with token=abc123 and auth=xyz789")
	assert.NotContains(t, scrubbed, "abc123")
	assert.NotContains(t, scrubbed, "xyz789")

	scrubbed = basicURLScrub("dial failed: hogwarts:s3cret@tcp(db:3306)/heroes")
	assert.False(t, strings.Contains(scrubbed, "s3cret"), "got %s", scrubbed)
}

func TestGenerateErrorTitle(t *testing.T) {
	ee := Newf("boom").
		Component("potterdb").
		Category(CategoryNetwork).
		Context("operation", "list_characters").
		Build()

	assert.Equal(t, "Potterdb Network Error List Characters", generateErrorTitle(ee))
}

func TestComponentOf(t *testing.T) {
	tests := []struct {
		function string
		want     string
	}{
		{"github.com/tphakala/hogwarts-heroes/internal/potterdb.(*Client).doRequest", "potterdb"},
		{"github.com/tphakala/hogwarts-heroes/internal/character.traverse.func1", "character"},
		{"github.com/tphakala/hogwarts-heroes/internal/conf.Load", "configuration"},
		{"github.com/tphakala/hogwarts-heroes/internal/api/middleware.NewRequestID.func1", "api"},
		{"github.com/tphakala/hogwarts-heroes/internal/errors.(*ErrorBuilder).Build", ""},
		{"net/http.(*Client).Do", ""},
		{"testing.tRunner", ""},
	}

	for _, tt := range tests {
		t.Run(tt.function, func(t *testing.T) {
			assert.Equal(t, tt.want, componentOf(tt.function))
		})
	}
}

func TestDetectComponentOutsideModule(t *testing.T) {
	// only this package and the testing runtime are on the stack
	assert.Equal(t, ComponentUnknown, detectComponent())
}

func TestNetworkContextHidesURL(t *testing.T) {
	ee := Newf("boom").NetworkContext("HTTPS://api.potterdb.com/v1/characters?page[number]=2", 0).Build()

	assert.Equal(t, map[string]any{"url_category": "https-endpoint"}, ee.GetContext())
}

func TestBuildSentryEvent(t *testing.T) {
	ee := Newf("GET https://api.potterdb.com/v1/characters?page[number]=2 failed").
		Component("potterdb").
		Category(CategoryTimeout).
		Context("operation", "list_characters").
		Context("url", "https://api.potterdb.com/v1/characters?filter[name_cont]=harry").
		Build()

	event := buildSentryEvent(ee)

	assert.Equal(t, sentry.LevelWarning, event.Level)
	assert.Equal(t, "Potterdb Timeout List Characters", event.Tags["error_title"])
	assert.Equal(t, "timeout", event.Tags["category"])
	assert.Equal(t, ee.Timestamp, event.Timestamp)
	assert.NotContains(t, event.Message, "page[number]")
	assert.Equal(t, "https://api.potterdb.com/v1/characters?[REDACTED]", event.Contexts["error_details"]["url"])
	assert.Equal(t, []string{"Potterdb Timeout List Characters", "potterdb", "timeout"}, event.Fingerprint)
	require.Len(t, event.Exception, 1)
	assert.Equal(t, event.Tags["error_title"], event.Exception[0].Type)
}

func TestErrorLevels(t *testing.T) {
	assert.Equal(t, sentry.LevelInfo, getErrorLevel(CategoryCancellation))
	assert.Equal(t, sentry.LevelWarning, getErrorLevel(CategoryLimit))
	assert.Equal(t, sentry.LevelError, getErrorLevel(CategoryConfiguration))
}
