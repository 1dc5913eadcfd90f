package character

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/hogwarts-heroes/internal/errors"
	"github.com/tphakala/hogwarts-heroes/internal/kvstore"
	"github.com/tphakala/hogwarts-heroes/internal/potterdb"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 7, 31, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// failingStore fails every operation
type failingStore struct{}

var errStoreDown = errors.NewStd("store unavailable")

func (failingStore) Get(context.Context, string) (string, bool, error) { return "", false, errStoreDown }
func (failingStore) Set(context.Context, string, string) error        { return errStoreDown }
func (failingStore) Delete(context.Context, string) error             { return errStoreDown }
func (failingStore) Close() error                                      { return nil }

var _ kvstore.Store = failingStore{}

// provider fakes the PotterDB listing with fixed page sizes
type provider struct {
	*httptest.Server
	requests  atomic.Int64
	pageSizes []int
	failPage  int
	delay     time.Duration

	mu      sync.Mutex
	queries []map[string]string
}

// newProvider serves len(pageSizes) listing pages and a detail endpoint
// where only "harry-potter" has data.
func newProvider(t *testing.T, pageSizes ...int) *provider {
	t.Helper()
	p := &provider{pageSizes: pageSizes}
	p.Server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.Close)
	return p
}

func (p *provider) serve(w http.ResponseWriter, r *http.Request) {
	p.requests.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	w.Header().Set("Content-Type", "application/json")

	if id, ok := strings.CutPrefix(r.URL.Path, "/characters/"); ok {
		if id == "harry-potter" {
			_, _ = w.Write([]byte(`{"data":{"id":"harry-potter","attributes":{"name":"Harry Potter","house":"Gryffindor","alias_names":["The Boy Who Lived"]}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
		return
	}

	query := map[string]string{}
	for key, values := range r.URL.Query() {
		query[key] = values[0]
	}
	p.mu.Lock()
	p.queries = append(p.queries, query)
	p.mu.Unlock()

	page, err := strconv.Atoi(query["page[number]"])
	if err != nil || page < 1 || page > len(p.pageSizes) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if page == p.failPage {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errors":[{"title":"boom"}]}`))
		return
	}

	start := 0
	for _, n := range p.pageSizes[:page-1] {
		start += n
	}
	records := make([]string, 0, p.pageSizes[page-1])
	for i := range p.pageSizes[page-1] {
		records = append(records, fmt.Sprintf(`{"id":"c-%d","attributes":{"name":"Character %d"}}`, start+i, start+i))
	}
	_, _ = fmt.Fprintf(w, `{"data":[%s],"meta":{"pagination":{"current":%d,"last":%d}}}`,
		strings.Join(records, ","), page, len(p.pageSizes))
}

func (p *provider) recordedQueries() []map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]map[string]string(nil), p.queries...)
}

// newTestRepository wires a repository against the provider with an
// in-memory store.
func newTestRepository(t *testing.T, p *provider, store kvstore.Store, clock *fakeClock) *Repository {
	t.Helper()

	client, err := potterdb.New(potterdb.Config{BaseURL: p.URL, Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	if store == nil {
		store = kvstore.NewMemoryStore()
	}
	repo, err := NewRepository(Options{
		API:   client,
		Store: store,
		Clock: clock.Now,
	})
	require.NoError(t, err)
	return repo
}
