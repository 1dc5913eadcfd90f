package potterdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tphakala/hogwarts-heroes/internal/errors"
	"github.com/tphakala/hogwarts-heroes/internal/httpclient"
	"github.com/tphakala/hogwarts-heroes/internal/logger"
)

const (
	// maxResponseSize caps how much of a response body is read
	maxResponseSize = 16 << 20

	// bodyPreviewLen caps response bodies copied into log lines
	bodyPreviewLen = 500

	requestIDHeader = "X-Request-ID"
)

type requestStartKey struct{}

// Client provides methods for interacting with the PotterDB API.
// It performs exactly one HTTP exchange per call and never retries.
type Client struct {
	http    *httpclient.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	log     logger.Logger
}

// New creates a PotterDB client. A nil log discards output.
func New(cfg Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	d := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = d.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, errors.Newf("invalid PotterDB base URL %q", cfg.BaseURL).
			Component("potterdb").
			Category(errors.CategoryConfiguration).
			Context("base_url", cfg.BaseURL).
			Build()
	}
	if cfg.RateLimit < 0 {
		return nil, errors.Newf("rate limit must not be negative, got %v", cfg.RateLimit).
			Component("potterdb").
			Category(errors.CategoryConfiguration).
			Build()
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	c := &Client{
		http: httpclient.New(&httpclient.Config{
			DefaultTimeout: cfg.Timeout,
			UserAgent:      cfg.UserAgent,
			Headers:        headers,
			Transport:      cfg.Transport,
		}),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		log:     log,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	c.http.SetBeforeRequestHook(func(req *http.Request) {
		c.log.Trace("API request",
			logger.String("request_id", req.Header.Get(requestIDHeader)),
			logger.String("method", req.Method),
			logger.String("url", req.URL.String()))
	})

	log.Debug("PotterDB client initialized",
		logger.String("base_url", c.baseURL),
		logger.Duration("timeout", cfg.Timeout),
		logger.Float64("rate_limit", cfg.RateLimit))

	return c, nil
}

// SetObserver routes per-request outcomes to obs. A nil obs removes it.
func (c *Client) SetObserver(obs RequestObserver) {
	if obs == nil {
		c.http.SetAfterResponseHook(nil)
		return
	}
	c.http.SetAfterResponseHook(func(req *http.Request, resp *http.Response, _ error) {
		var elapsed time.Duration
		if start, ok := req.Context().Value(requestStartKey{}).(time.Time); ok {
			elapsed = time.Since(start)
		}
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		obs.ObserveRequest(req.Method, status, elapsed)
	})
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.Close()
}

// ListCharacters fetches one page of the character listing.
// A response without meta.pagination.last is treated as a single page.
func (c *Client) ListCharacters(ctx context.Context, opts ListOptions) (*Page, error) {
	page := max(opts.Page, 1)

	query := url.Values{}
	for key, values := range opts.Filters {
		query[key] = append([]string(nil), values...)
	}
	query.Set("page[number]", strconv.Itoa(page))
	if opts.Size > 0 {
		query.Set("page[size]", strconv.Itoa(min(opts.Size, MaxPageSize)))
	}

	reqURL := c.baseURL + charactersPath + "?" + query.Encode()
	root, err := c.getJSON(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(root)
	if err != nil {
		c.log.Error("API error",
			logger.Error(err),
			logger.String("url", reqURL))
		return nil, errors.New(err).
			Component("potterdb").
			Category(errors.CategoryFileParsing).
			Context("url", reqURL).
			Context("page", page).
			Build()
	}

	last := 1
	if v, err := root.GetInt64("meta", "pagination", "last"); err == nil && v > 1 {
		last = int(v)
	}

	c.log.Debug("fetched character page",
		logger.Int("page", page),
		logger.Int("last", last),
		logger.Int("records", len(records)))

	return &Page{Number: page, LastPage: last, Records: records}, nil
}

// GetCharacter fetches a single character record by id. It returns nil
// without error when the response carries no usable data object.
func (c *Client) GetCharacter(ctx context.Context, id string) (*jason.Object, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.Newf("character id is required").
			Component("potterdb").
			Category(errors.CategoryValidation).
			Build()
	}

	reqURL := c.baseURL + charactersPath + "/" + url.PathEscape(id)
	root, err := c.getJSON(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	data, err := root.GetObject("data")
	if err != nil || len(data.Map()) == 0 {
		c.log.Debug("character response without data",
			logger.String("id", id))
		return nil, nil
	}
	return data, nil
}

// decodeRecords extracts the data array. Absent or null data is an empty
// page; elements that are not objects are dropped.
func decodeRecords(root *jason.Object) ([]*jason.Object, error) {
	value, err := root.GetValue("data")
	if err != nil || value.Null() == nil {
		return []*jason.Object{}, nil
	}
	items, err := value.Array()
	if err != nil {
		return nil, fmt.Errorf("data is not an array: %w", err)
	}

	records := make([]*jason.Object, 0, len(items))
	for _, item := range items {
		if obj, err := item.Object(); err == nil {
			records = append(records, obj)
		}
	}
	return records, nil
}

// getJSON performs a GET and decodes a JSON object body. Failures are
// logged as "API error" and returned as enhanced errors.
func (c *Client) getJSON(ctx context.Context, reqURL string) (*jason.Object, error) {
	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	root, err := jason.NewObjectFromBytes(body)
	if err != nil {
		c.log.Error("API error",
			logger.Error(err),
			logger.String("url", reqURL),
			logger.String("response_preview", preview(body)))
		return nil, errors.Newf("failed to parse PotterDB response: %w", err).
			Component("potterdb").
			Category(errors.CategoryFileParsing).
			Context("url", reqURL).
			Context("response_size", len(body)).
			Build()
	}
	return root, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	reqID := uuid.New().String()[:8]
	log := c.log.With(logger.String("request_id", reqID))

	if err := ctx.Err(); err != nil {
		return nil, c.transportError(log, err, reqURL)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.transportError(log, err, reqURL)
		}
	}

	ctx = context.WithValue(ctx, requestStartKey{}, time.Now())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, errors.Newf("failed to create HTTP request: %w", err).
			Component("potterdb").
			Category(errors.CategoryNetwork).
			Context("url", reqURL).
			Build()
	}
	req.Header.Set(requestIDHeader, reqID)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, c.transportError(log, err, reqURL)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Debug("failed to close response body", logger.Error(err))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, c.transportError(log, err, reqURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("API error",
			logger.Int("status_code", resp.StatusCode),
			logger.String("url", reqURL),
			logger.String("response_body", preview(body)))
		return nil, errors.Newf("PotterDB API error (status %d)", resp.StatusCode).
			Component("potterdb").
			Category(statusCategory(resp.StatusCode)).
			Context("status_code", resp.StatusCode).
			Context("url", reqURL).
			Build()
	}

	log.Debug("API response",
		logger.Int("status_code", resp.StatusCode),
		logger.String("url", reqURL),
		logger.Int("response_size", len(body)))
	return body, nil
}

func (c *Client) transportError(log logger.Logger, err error, reqURL string) error {
	log.Error("API error",
		logger.Error(err),
		logger.String("url", reqURL))

	category := errors.CategoryNetwork
	switch {
	case errors.Is(err, context.Canceled):
		category = errors.CategoryCancellation
	case errors.Is(err, context.DeadlineExceeded):
		category = errors.CategoryTimeout
	}
	return errors.Newf("PotterDB request failed: %w", err).
		Component("potterdb").
		Category(category).
		NetworkContext(reqURL, c.timeout).
		Context("url", reqURL).
		Build()
}

// statusCategory maps an HTTP status to an error category
func statusCategory(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.CategoryConfiguration
	case http.StatusTooManyRequests:
		return errors.CategoryLimit
	case http.StatusNotFound:
		return errors.CategoryNotFound
	default:
		return errors.CategoryNetwork
	}
}

func preview(body []byte) string {
	if len(body) > bodyPreviewLen {
		return string(body[:bodyPreviewLen]) + "..."
	}
	return string(body)
}
