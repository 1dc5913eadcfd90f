// Package potterdb provides a client for the PotterDB character API (v1)
package potterdb

import (
	"net/http"
	"net/url"
	"time"

	"github.com/antonholmquist/jason"
)

const (
	// DefaultBaseURL is the public PotterDB API root
	DefaultBaseURL = "https://api.potterdb.com/v1"

	// DefaultTimeout bounds a single request when the caller sets no deadline
	DefaultTimeout = 10 * time.Second

	// MaxPageSize is the largest page the provider serves
	MaxPageSize = 100

	charactersPath = "/characters"
)

// Config holds configuration for the PotterDB client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	UserAgent string

	// Transport replaces the pooled HTTP transport; tests inject mocks here
	Transport http.RoundTripper
}

// DefaultConfig returns the production configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// ListOptions selects one page of the character listing.
type ListOptions struct {
	Page    int        // 1-based, values below 1 mean 1
	Size    int        // 0 leaves the provider default
	Filters url.Values // already-built filter[...] parameters
}

// Page is one decoded page of the character listing.
type Page struct {
	Number   int
	LastPage int
	Records  []*jason.Object
}

// RequestObserver is notified once per completed request. Status is 0
// when no response was received.
type RequestObserver interface {
	ObserveRequest(method string, status int, duration time.Duration)
}
