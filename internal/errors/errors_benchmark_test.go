package errors

import (
	"fmt"
	"testing"
)

// BenchmarkErrorCreationNoTelemetry measures the fast path
func BenchmarkErrorCreationNoTelemetry(b *testing.B) {
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	b.ReportAllocs()

	for b.Loop() {
		_ = New(fmt.Errorf("test error")).
			Component("potterdb").
			Category(CategoryNetwork).
			Build()
	}
}

// BenchmarkErrorCreationWithContext measures context map allocation on the fast path
func BenchmarkErrorCreationWithContext(b *testing.B) {
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	b.ReportAllocs()

	for b.Loop() {
		_ = New(fmt.Errorf("test error")).
			Component("potterdb").
			Category(CategoryNetwork).
			Context("status_code", 503).
			Context("page", 2).
			Build()
	}
}

// BenchmarkErrorCreationWithTelemetry measures the full path with detection and reporting
func BenchmarkErrorCreationWithTelemetry(b *testing.B) {
	SetTelemetryReporter(&recordingReporter{enabled: false})
	AddErrorHook(func(ee *EnhancedError) { _ = scrubMessageForPrivacy(ee.Error()) })
	b.Cleanup(ClearErrorHooks)

	b.ReportAllocs()

	for b.Loop() {
		_ = New(fmt.Errorf("request to https://api.potterdb.com/v1/characters?page[number]=2 failed")).Build()
	}
}

// BenchmarkPrivacyScrubbing measures the scrubbing regexes
func BenchmarkPrivacyScrubbing(b *testing.B) {
	msg := "GET https://api.potterdb.com/v1/characters?page[number]=3&filter[house_cont]=Slytherin token=secret"

	b.ReportAllocs()

	for b.Loop() {
		_ = basicURLScrub(msg)
	}
}
