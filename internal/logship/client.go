// Package logship forwards business events to the central log service and
// reads them back. Shipping never blocks or fails the request that produced
// the event.
package logship

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const ApplicationName = "Hotel Booking Service"

var ErrUpstream = errors.New("log service request failed")

type Config struct {
	URL          string
	QueueSize    int
	SendTimeout  time.Duration
	FetchTimeout time.Duration
	CacheTTL     time.Duration
}

type responseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Count(ctx context.Context) (int, error)
}

type Stats struct {
	Sent          int64 `json:"sent"`
	Failed        int64 `json:"failed"`
	Dropped       int64 `json:"dropped"`
	Queued        int   `json:"queued"`
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	CachedQueries int   `json:"cached_queries"`
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	queue      chan Entry
	cache      responseCache
	group      singleflight.Group
	logger     *slog.Logger

	sent, failed, dropped atomic.Int64
	hits, misses          atomic.Int64
}

// New builds a client. rc may be nil, in which case fetches always go to the
// log service.
func New(cfg Config, rc responseCache, logger *slog.Logger) *Client {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Second
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		queue:  make(chan Entry, cfg.QueueSize),
		cache:  rc,
		logger: logger,
	}
}

// SendLog enqueues an entry for the background worker. When the queue is
// full the entry is dropped and counted.
func (c *Client) SendLog(ctx context.Context, level, message string, fields map[string]any, source string, userID uuid.UUID) {
	info := RequestInfoFromContext(ctx)
	e := Entry{
		ApplicationName: ApplicationName,
		Level:           level,
		Message:         message,
		Context:         fields,
		Source:          source,
		RequestID:       info.RequestID,
		IPAddress:       info.IPAddress,
		UserAgent:       info.UserAgent,
		Timestamp:       time.Now().UTC(),
	}
	if userID != uuid.Nil {
		e.UserID = userID.String()
	}

	select {
	case c.queue <- e:
	default:
		c.dropped.Add(1)
		c.logger.Warn("log shipping queue full, entry dropped",
			"message", message,
			"source", source,
		)
	}
}

// Start drains the queue until ctx is cancelled, then flushes what is left
// within one send timeout.
func (c *Client) Start(ctx context.Context) {
	c.logger.Info("log shipper started", "url", c.cfg.URL, "queue_size", cap(c.queue))

	for {
		select {
		case <-ctx.Done():
			c.flush()
			c.logger.Info("log shipper stopped")
			return
		case e := <-c.queue:
			c.deliver(ctx, e)
		}
	}
}

func (c *Client) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SendTimeout)
	defer cancel()
	for {
		select {
		case e := <-c.queue:
			c.deliver(ctx, e)
		default:
			return
		}
	}
}

func (c *Client) deliver(ctx context.Context, e Entry) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.SendTimeout)
	defer cancel()

	if err := c.post(ctx, e); err != nil {
		c.failed.Add(1)
		c.logger.Warn("failed to ship log entry",
			"error", err,
			"message", e.Message,
			"source", e.Source,
		)
		return
	}
	c.sent.Add(1)
}

func (c *Client) post(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("post: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post: %w: status %d: %s", ErrUpstream, resp.StatusCode, string(respBody))
	}
	return nil
}

// Stats reports shipping and cache counters since startup.
func (c *Client) Stats(ctx context.Context) Stats {
	s := Stats{
		Sent:        c.sent.Load(),
		Failed:      c.failed.Load(),
		Dropped:     c.dropped.Load(),
		Queued:      len(c.queue),
		CacheHits:   c.hits.Load(),
		CacheMisses: c.misses.Load(),
	}
	if c.cache != nil {
		n, err := c.cache.Count(ctx)
		if err != nil {
			c.logger.Warn("failed to count cached log queries", "error", err)
		}
		s.CachedQueries = n
	}
	return s
}
