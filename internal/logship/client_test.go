package logship

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/hotel-booking/internal/cache"
)

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return b, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *memoryCache) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendLog_DeliversEntry(t *testing.T) {
	received := make(chan Entry, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var e Entry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		received <- e
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL}, nil, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)

	userID := uuid.New()
	reqCtx := WithRequestInfo(context.Background(), RequestInfo{RequestID: "req-1", IPAddress: "10.0.0.1"})
	c.SendLog(reqCtx, "info", "Booking created", map[string]any{"booking_id": "b-1"}, "booking", userID)

	select {
	case e := <-received:
		assert.Equal(t, ApplicationName, e.ApplicationName)
		assert.Equal(t, "info", e.Level)
		assert.Equal(t, "Booking created", e.Message)
		assert.Equal(t, "booking", e.Source)
		assert.Equal(t, userID.String(), e.UserID)
		assert.Equal(t, "req-1", e.RequestID)
		assert.Equal(t, "10.0.0.1", e.IPAddress)
		assert.Equal(t, "b-1", e.Context["booking_id"])
	case <-time.After(5 * time.Second):
		t.Fatal("entry was not delivered")
	}

	assert.Eventually(t, func() bool { return c.Stats(ctx).Sent == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSendLog_UpstreamFailureIsCounted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL}, nil, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)

	c.SendLog(context.Background(), "info", "Transaction deposit", nil, "wallet", uuid.New())

	assert.Eventually(t, func() bool { return c.Stats(ctx).Failed == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, c.Stats(ctx).Sent)
}

func TestSendLog_DropsWhenQueueFull(t *testing.T) {
	c := New(Config{URL: "http://127.0.0.1:0", QueueSize: 2}, nil, discardLogger())

	for range 5 {
		c.SendLog(context.Background(), "info", "Booking created", nil, "booking", uuid.Nil)
	}

	stats := c.Stats(context.Background())
	assert.Equal(t, 2, stats.Queued)
	assert.Equal(t, int64(3), stats.Dropped)
}

func TestFilterValues_SkipsEmpty(t *testing.T) {
	f := Filter{UserID: "u-1", Level: "info", PerPage: 20}
	assert.Equal(t, "level=info&per_page=20&user_id=u-1", f.Values().Encode())
	assert.Empty(t, Filter{}.Values().Encode())
}

func TestFetch_CachesResponse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "u-1", r.URL.Query().Get("user_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"message":"Booking created"}]}`))
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL, CacheTTL: time.Minute}, newMemoryCache(), discardLogger())
	ctx := context.Background()

	first, err := c.Fetch(ctx, Filter{UserID: "u-1"})
	require.NoError(t, err)
	second, err := c.Fetch(ctx, Filter{UserID: "u-1"})
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, int32(1), calls.Load())

	stats := c.Stats(ctx)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
	assert.Equal(t, 1, stats.CachedQueries)
}

func TestFetch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL, CacheTTL: time.Minute}, newMemoryCache(), discardLogger())

	_, err := c.Fetch(context.Background(), Filter{})
	require.ErrorIs(t, err, ErrUpstream)
	assert.Zero(t, c.Stats(context.Background()).CachedQueries)
}

func TestFetch_NonJSONRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL}, nil, discardLogger())

	_, err := c.Fetch(context.Background(), Filter{})
	require.ErrorIs(t, err, ErrUpstream)
}

func TestFetch_SharedCallSurvivesLeaderCancel(t *testing.T) {
	var calls atomic.Int32
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(arrived)
		}
		<-release
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()
	defer func() {
		select {
		case <-release:
		default:
			close(release)
		}
	}()

	c := New(Config{URL: srv.URL}, nil, discardLogger())

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.Fetch(leaderCtx, Filter{UserID: "u-1"})
		leaderErr <- err
	}()
	<-arrived

	followerErr := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background(), Filter{UserID: "u-1"})
		followerErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancelLeader()
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, <-followerErr)
	require.NoError(t, <-leaderErr)
	assert.Equal(t, int32(1), calls.Load())
}
