package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates a Client and registers cleanup.
func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()
	client := New(cfg)
	t.Cleanup(client.Close)
	return client
}

// newTestServer creates a test HTTP server and registers cleanup.
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// closeResponseBody closes a response body, logging failures.
func closeResponseBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if resp == nil || resp.Body == nil {
		return
	}
	if err := resp.Body.Close(); err != nil {
		t.Logf("failed to close response body: %v", err)
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		client := New(nil)
		assert.Equal(t, DefaultTimeout, client.defaultTimeout)
		assert.Equal(t, defaultUserAgent, client.userAgent)
	})

	t.Run("custom config", func(t *testing.T) {
		client := New(&Config{DefaultTimeout: 5 * time.Second, UserAgent: "TestAgent/1.0"})
		assert.Equal(t, 5*time.Second, client.defaultTimeout)
		assert.Equal(t, "TestAgent/1.0", client.userAgent)
	})

	t.Run("caller headers are copied", func(t *testing.T) {
		headers := http.Header{"Accept": []string{"application/json"}}
		client := New(&Config{Headers: headers})
		headers.Set("Accept", "text/plain")
		assert.Equal(t, "application/json", client.headers.Get("Accept"))
	})
}

func TestDo_BasicRequest(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte("success"))
	})
	client := newTestClient(t, nil)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(t.Context(), req)
	require.NoError(t, err)
	defer closeResponseBody(t, resp)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "body stays readable after Do returns")
	assert.Equal(t, "success", string(body))
}

func TestDo_DefaultHeaders(t *testing.T) {
	var gotUA, gotContentType, gotAccept string
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
	})

	client := newTestClient(t, &Config{
		UserAgent: "CustomAgent/2.0",
		Headers: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
		},
	})

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/vnd.api+json")

	resp, err := client.Do(t.Context(), req)
	require.NoError(t, err)
	closeResponseBody(t, resp)

	assert.Equal(t, "CustomAgent/2.0", gotUA)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "application/vnd.api+json", gotAccept, "request headers win over defaults")
}

func TestDo_ContextCancellation(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	})
	client := newTestClient(t, nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(ctx, req)
	defer closeResponseBody(t, resp)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_DefaultTimeout(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	client := newTestClient(t, &Config{DefaultTimeout: 50 * time.Millisecond})

	resp, err := client.Get(t.Context(), server.URL)
	defer closeResponseBody(t, resp)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_DefaultTimeoutUnderParentDeadline(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	client := newTestClient(t, &Config{DefaultTimeout: 20 * time.Millisecond})

	ctx, cancel := context.WithTimeout(t.Context(), time.Minute)
	defer cancel()

	start := time.Now()
	resp, err := client.Get(ctx, server.URL)
	defer closeResponseBody(t, resp)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "default timeout bounds the request")
}

func TestDo_EarlierParentDeadlineWins(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	client := newTestClient(t, &Config{DefaultTimeout: time.Minute})

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	resp, err := client.Get(ctx, server.URL)
	defer closeResponseBody(t, resp)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_ConcurrentRequests(t *testing.T) {
	var requestCount atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
	})
	client := newTestClient(t, nil)

	const concurrency = 20
	var wg sync.WaitGroup
	errChan := make(chan error, concurrency)

	for range concurrency {
		wg.Go(func() {
			resp, err := client.Get(t.Context(), server.URL)
			if err != nil {
				errChan <- err
				return
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != http.StatusOK {
				errChan <- fmt.Errorf("expected status 200, got %d", resp.StatusCode)
			}
		})
	}
	wg.Wait()
	close(errChan)

	for err := range errChan {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(concurrency), requestCount.Load())
}

func TestDo_Hooks(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	client := newTestClient(t, nil)

	var beforeCalled, afterCalled bool
	var capturedStatus int

	client.SetBeforeRequestHook(func(r *http.Request) {
		beforeCalled = true
		r.Header.Set("X-Request-ID", "req-1")
	})
	client.SetAfterResponseHook(func(r *http.Request, resp *http.Response, err error) {
		afterCalled = true
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		if resp != nil {
			capturedStatus = resp.StatusCode
		}
	})

	resp, err := client.Get(t.Context(), server.URL)
	require.NoError(t, err)
	defer closeResponseBody(t, resp)

	assert.True(t, beforeCalled)
	assert.True(t, afterCalled)
	assert.Equal(t, http.StatusOK, capturedStatus)
}

func TestDo_InjectedTransport(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://api.example.test/ping",
		httpmock.NewStringResponder(http.StatusTeapot, "short and stout"))

	client := newTestClient(t, &Config{Transport: transport})

	resp, err := client.Get(t.Context(), "https://api.example.test/ping")
	require.NoError(t, err)
	defer closeResponseBody(t, resp)

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestDo_NilRequest(t *testing.T) {
	_, err := New(nil).Do(t.Context(), nil)
	require.Error(t, err)
}

func TestClose(t *testing.T) {
	client := New(nil)
	client.Close()
	client.Close()
}
