package errors

import (
	"context"
	"path"
	"runtime"
	"strings"
)

// ErrorCategory groups errors for HTTP status mapping, metrics labels and
// telemetry fingerprints.
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryFileIO        ErrorCategory = "file-io"
	CategoryFileParsing   ErrorCategory = "file-parsing"
	CategoryNetwork       ErrorCategory = "network"
	CategoryHTTP          ErrorCategory = "http-request"
	CategoryDatabase      ErrorCategory = "database"
	CategoryCache         ErrorCategory = "cache"
	CategoryConfiguration ErrorCategory = "configuration"
	CategorySystem        ErrorCategory = "system-resource"
	CategoryGeneric       ErrorCategory = "generic"
	CategoryNotFound      ErrorCategory = "not-found"
	CategoryLimit         ErrorCategory = "limit"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryCancellation  ErrorCategory = "cancellation"
)

// ComponentUnknown is used when no component was given or found.
const ComponentUnknown = "unknown"

const (
	modulePath  = "github.com/tphakala/hogwarts-heroes/"
	selfPackage = modulePath + "internal/errors"
)

// componentPackages maps the last element of a package path in this module
// to its component name. Packages not listed use their own name.
var componentPackages = map[string]string{
	"conf":       "configuration",
	"middleware": "api",
	"metrics":    "observability",
}

// componentCategories is the fallback category per component.
var componentCategories = map[string]ErrorCategory{
	"potterdb":      CategoryNetwork,
	"httpclient":    CategoryNetwork,
	"kvstore":       CategoryDatabase,
	"character":     CategoryCache,
	"api":           CategoryHTTP,
	"configuration": CategoryConfiguration,
}

// messageRules infer a category from the lowercased message, first match wins.
var messageRules = []struct {
	category ErrorCategory
	words    []string
}{
	{CategoryTimeout, []string{"deadline exceeded", "timeout"}},
	{CategoryCancellation, []string{"context canceled"}},
	{CategoryNetwork, []string{"connection", "dial"}},
	{CategoryNotFound, []string{"not found"}},
	{CategoryValidation, []string{"validation", "invalid"}},
	{CategoryFileIO, []string{"file", "open"}},
}

// detectCategory infers a category for err. A wrapped EnhancedError wins,
// then context errors, then the message, then the component default.
func detectCategory(err error, component string) ErrorCategory {
	if err == nil {
		return CategoryGeneric
	}

	var inner *EnhancedError
	switch {
	case As(err, &inner) && inner.Category != "":
		return inner.Category
	case Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case Is(err, context.Canceled):
		return CategoryCancellation
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, word := range rule.words {
			if strings.Contains(msg, word) {
				return rule.category
			}
		}
	}

	if category, ok := componentCategories[component]; ok {
		return category
	}
	return CategoryGeneric
}

// detectComponent returns the component of the nearest caller inside this
// module, skipping this package.
func detectComponent() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if component := componentOf(frame.Function); component != "" {
			return component
		}
		if !more {
			return ComponentUnknown
		}
	}
}

// componentOf maps a fully qualified function name to a component, or ""
// when the function lives outside this module or in this package.
func componentOf(function string) string {
	pkg := packageOf(function)
	if pkg == selfPackage || !strings.HasPrefix(pkg, modulePath) {
		return ""
	}
	name := path.Base(pkg)
	if component, ok := componentPackages[name]; ok {
		return component
	}
	return name
}

// packageOf strips the function and receiver from a qualified name.
func packageOf(function string) string {
	slash := strings.LastIndex(function, "/")
	if dot := strings.Index(function[slash+1:], "."); dot >= 0 {
		return function[:slash+1+dot]
	}
	return function
}

// endpointKind reduces a URL to its scheme for telemetry context.
func endpointKind(url string) string {
	switch lower := strings.ToLower(url); {
	case strings.HasPrefix(lower, "https://"):
		return "https-endpoint"
	case strings.HasPrefix(lower, "http://"):
		return "http-endpoint"
	default:
		return "other-protocol"
	}
}
