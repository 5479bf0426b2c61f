package logship

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/josh-kwaku/hotel-booking/internal/cache"
)

const maxFetchBody = 4 << 20

// Fetch returns the log service's raw JSON response for the filter. Results
// are cached for the configured TTL and concurrent identical fetches share one
// upstream call.
func (c *Client) Fetch(ctx context.Context, f Filter) (json.RawMessage, error) {
	query := f.Values().Encode()

	if c.cache != nil {
		b, err := c.cache.Get(ctx, query)
		if err == nil {
			c.hits.Add(1)
			return b, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.Warn("log cache read failed", "error", err)
		}
		c.misses.Add(1)
	}

	// Followers share this call, so it must outlive the leader's request.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(query, func() (any, error) {
		b, err := c.get(shared, query)
		if err != nil {
			return nil, err
		}
		if c.cache != nil && c.cfg.CacheTTL > 0 {
			if err := c.cache.Set(shared, query, b, c.cfg.CacheTTL); err != nil {
				c.logger.Warn("log cache write failed", "error", err)
			}
		}
		return b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}
	return v.([]byte), nil
}

func (c *Client) get(ctx context.Context, query string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	u := c.cfg.URL
	if query != "" {
		u += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("get: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return nil, fmt.Errorf("get: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get: %w: status %d", ErrUpstream, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("get: %w: response is not JSON", ErrUpstream)
	}
	return body, nil
}
