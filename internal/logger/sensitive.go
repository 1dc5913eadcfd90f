// sensitive.go
package logger

import (
	"regexp"
	"strings"
)

const redactedValue = "[REDACTED]"

// SensitiveDataPatterns contains regex patterns for sensitive data that should be redacted in logs
var SensitiveDataPatterns = []*regexp.Regexp{
	// Auth tokens (Bearer, JWT, etc.)
	regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9-._~+/]+=*)`),

	// API keys, tokens and secrets
	regexp.MustCompile(`(?i)((api[_-]?key|access[_-]?token|token|secret|passw(or)?d)[\s:=]+)([^;,\s]{5,})`),

	// MySQL DSN credentials: user:pass@tcp(host)
	regexp.MustCompile(`([A-Za-z0-9_]+:)([^@\s]+)(@tcp\()`),
}

// SensitiveKeywords are keywords that indicate fields may contain sensitive data
var SensitiveKeywords = []string{
	"password", "passwd", "secret", "credential", "token", "api_key",
	"apikey", "authorization", "cookie", "dsn",
}

// RedactSensitiveData replaces sensitive information with "[REDACTED]"
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}

	for i, pattern := range SensitiveDataPatterns {
		if i == len(SensitiveDataPatterns)-1 {
			input = pattern.ReplaceAllString(input, "$1"+redactedValue+"$3")
			continue
		}
		input = pattern.ReplaceAllString(input, "$1"+redactedValue)
	}

	return input
}

// isSensitiveKey reports whether a field key names a secret
func isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, sensitiveKey := range SensitiveKeywords {
		if strings.Contains(keyLower, sensitiveKey) {
			return true
		}
	}
	return false
}
