package potterdb

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/hogwarts-heroes/internal/logger"
)

// mockResponse represents a mocked HTTP response
type mockResponse struct {
	status      int
	body        string
	contentType string
}

// mockServer serves canned responses keyed by path plus decoded query
type mockServer struct {
	*httptest.Server
	requests atomic.Int64
}

// setupMockServer creates a mock server with predefined responses. Keys look
// like "/characters?page[number]=1&page[size]=100"; unmatched requests get 404.
func setupMockServer(tb testing.TB, responses map[string]mockResponse) *mockServer {
	tb.Helper()

	ms := &mockServer{}
	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ms.requests.Add(1)

		if r.Header.Get("Accept") != "application/json" || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}

		key := r.URL.Path
		if r.URL.RawQuery != "" {
			query, err := url.QueryUnescape(r.URL.RawQuery)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			key += "?" + query
		}

		if response, ok := responses[key]; ok {
			if response.contentType != "" {
				w.Header().Set("Content-Type", response.contentType)
			} else {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(response.status)
			_, _ = w.Write([]byte(response.body))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"status":"404","title":"Not Found"}]}`))
	}))
	tb.Cleanup(ms.Close)

	return ms
}

// setupTestClient creates a client against baseURL that logs into buf
func setupTestClient(tb testing.TB, baseURL string, transport http.RoundTripper) (*Client, *bytes.Buffer) {
	tb.Helper()

	var buf bytes.Buffer
	client, err := New(Config{
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
		Transport: transport,
	}, logger.NewSlogLogger(&buf, logger.LogLevelDebug, time.UTC))
	require.NoError(tb, err)
	tb.Cleanup(client.Close)

	return client, &buf
}

// characterPage renders a listing page with n generated records
func characterPage(startID, n, last int) string {
	records := make([]string, 0, n)
	for i := range n {
		id := startID + i
		records = append(records, fmt.Sprintf(
			`{"id":"char-%d","type":"character","attributes":{"name":"Character %d","image":null}}`, id, id))
	}
	return fmt.Sprintf(`{"data":[%s],"meta":{"pagination":{"current":1,"last":%d}}}`,
		strings.Join(records, ","), last)
}
