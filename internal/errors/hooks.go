// Package errors - error hooks
package errors

import (
	"sync"
	"sync/atomic"
)

// ErrorHook is called for every enhanced error built while reporting is active.
type ErrorHook func(ee *EnhancedError)

var (
	errorHooks   []ErrorHook
	errorHooksMu sync.RWMutex

	// hasActiveReporting short-circuits Build when nobody is listening
	hasActiveReporting atomic.Bool
)

// AddErrorHook registers a hook. Hooks run synchronously inside Build.
func AddErrorHook(hook ErrorHook) {
	if hook == nil {
		return
	}
	errorHooksMu.Lock()
	defer errorHooksMu.Unlock()
	errorHooks = append(errorHooks, hook)
	updateReportingState()
}

// ClearErrorHooks removes all registered hooks
func ClearErrorHooks() {
	errorHooksMu.Lock()
	defer errorHooksMu.Unlock()
	errorHooks = nil
	updateReportingState()
}

// runErrorHooks invokes each registered hook
func runErrorHooks(ee *EnhancedError) {
	errorHooksMu.RLock()
	hooks := make([]ErrorHook, len(errorHooks))
	copy(hooks, errorHooks)
	errorHooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ee)
	}
}

// updateReportingState must be called with errorHooksMu held
func updateReportingState() {
	reporter := GetTelemetryReporter()
	active := len(errorHooks) > 0 || (reporter != nil && reporter.IsEnabled())
	hasActiveReporting.Store(active)
}
