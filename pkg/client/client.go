// Package client is the consuming side of the menu cache design: a
// read-through cache keyed per resource type that checks the cheap menu
// version before trusting cached payloads, revalidates with conditional
// requests, and falls back to last-known-good data when the network is
// unreachable.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_client_cache_hits_total",
		Help: "Total client cache hits by kind",
	}, []string{"kind"}) // "version_check", "not_modified"

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_client_cache_misses_total",
		Help: "Total client cache misses (full payload fetches)",
	})

	conditionalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_client_conditional_requests_total",
		Help: "Total conditional requests sent with If-None-Match",
	})

	staleFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_client_stale_fallbacks_total",
		Help: "Total reads served from cache because the fetch failed",
	})
)

// Config holds the client configuration.
type Config struct {
	// BaseURL of the menu API, e.g. "https://menu.example.com".
	BaseURL string

	// HTTPClient to use; a 10s-timeout default is used when nil.
	HTTPClient *http.Client

	// Retry configuration for network and server errors.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Retry:   DefaultRetryConfig(),
	}
}

// Client is a menu API client with a per-resource local cache. Entries are
// private to this Client; there is no cross-client invalidation.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
	logger     zerolog.Logger

	mu      sync.Mutex
	entries map[Resource]*Entry
}

// New creates a menu API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig()
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		retry:      retry,
		logger:     log.With().Str("component", "menu-client").Logger(),
		entries:    make(map[Resource]*Entry),
	}, nil
}

// ReadItems returns the items payload, served from cache when the menu
// version is unchanged.
func (c *Client) ReadItems(ctx context.Context) (json.RawMessage, error) {
	return c.read(ctx, ResourceItems)
}

// ReadCategories returns the categories payload.
func (c *Client) ReadCategories(ctx context.Context) (json.RawMessage, error) {
	return c.read(ctx, ResourceCategories)
}

// ReadModifiers returns the modifier groups and modifiers payload.
func (c *Client) ReadModifiers(ctx context.Context) (json.RawMessage, error) {
	return c.read(ctx, ResourceModifiers)
}

// Clear removes the cached entry for one resource type; the next read
// forces a fetch.
func (c *Client) Clear(resource Resource) {
	c.mu.Lock()
	delete(c.entries, resource)
	c.mu.Unlock()
}

// ClearAll removes every cached entry, including the version entry.
func (c *Client) ClearAll() {
	c.mu.Lock()
	c.entries = make(map[Resource]*Entry)
	c.mu.Unlock()
}

// Entry returns a copy of the cached entry for a resource, nil if absent.
func (c *Client) Entry(resource Resource) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[resource].clone()
}

// read is the core read-through flow.
func (c *Client) read(ctx context.Context, resource Resource) (json.RawMessage, error) {
	entry := c.Entry(resource)

	// Step 1: cheap version check before trusting cached data. Never
	// skipped on a cached entry: the check round trip is the staleness
	// guarantee.
	if entry != nil {
		serverVersion, err := c.currentVersion(ctx)
		if err == nil && serverVersion == entry.Version {
			cacheHits.WithLabelValues("version_check").Inc()
			c.logger.Debug().
				Str("resource", string(resource)).
				Int64("version", serverVersion).
				Msg("Version unchanged, serving cached data")
			return entry.Data, nil
		}
		if err != nil {
			c.logger.Debug().Err(err).Msg("Version check failed, falling through to conditional fetch")
		}
	}

	// Step 2: conditional fetch (full fetch when no entry exists).
	fresh, err := c.fetch(ctx, resource, entry)
	if err == nil {
		return fresh.Data, nil
	}

	// Step 3: fetch failed. Serve last-known-good data when we have it;
	// the failure is only surfaced when there is nothing to fall back on.
	if entry != nil {
		staleFallbacks.Inc()
		c.logger.Warn().
			Err(err).
			Str("resource", string(resource)).
			Msg("Fetch failed, serving cached data")
		return entry.Data, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrNoCache, err)
}

// currentVersion resolves the server's menu version. The version resource
// is cached like any other entry, one level up: its own conditional
// request bottoms out in a live fetch when no version entry exists.
func (c *Client) currentVersion(ctx context.Context) (int64, error) {
	ventry := c.Entry(resourceVersion)
	fresh, err := c.fetch(ctx, resourceVersion, ventry)
	if err != nil {
		return 0, err
	}
	return fresh.Version, nil
}

// fetch performs one conditional GET for a resource and updates the cache.
// On 304 the existing entry's data is kept and its bookkeeping refreshed;
// on 200 the entry is replaced.
func (c *Client) fetch(ctx context.Context, resource Resource, entry *Entry) (*Entry, error) {
	url := c.baseURL + resourcePaths[resource]

	var result *Entry
	err := retryWithBackoff(ctx, c.retry, c.logger, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if entry != nil && entry.Fingerprint != "" {
			req.Header.Set("If-None-Match", entry.Fingerprint)
			conditionalRequests.Inc()
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &APIError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotModified:
			if entry == nil {
				// Server confirmed a fingerprint we never sent.
				return &APIError{
					StatusCode: resp.StatusCode,
					ErrorClass: ErrorClassServer,
					Message:    "not-modified without a cached entry",
				}
			}
			cacheHits.WithLabelValues("not_modified").Inc()
			result = c.refreshEntry(resource, entry, resp.Header)
			return nil

		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return &APIError{ErrorClass: ErrorClassNetwork, Message: "read response body", Err: err}
			}
			cacheMisses.Inc()
			result = c.storeEntry(resource, body, resp.Header)
			return nil

		default:
			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: classifyStatus(resp.StatusCode),
				Message:    resp.Status,
			}
		}
	}, classifyError)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// classifyError extracts the error class for retry decisions.
func classifyError(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ErrorClassNetwork
}

// storeEntry replaces the cached entry for a resource after a full fetch.
func (c *Client) storeEntry(resource Resource, body []byte, headers http.Header) *Entry {
	entry := &Entry{
		Data:        body,
		Fingerprint: headers.Get("ETag"),
		Version:     parseVersionHeader(headers),
		FetchedAt:   time.Now(),
	}

	c.mu.Lock()
	c.entries[resource] = entry
	c.mu.Unlock()

	c.logger.Debug().
		Str("resource", string(resource)).
		Int64("version", entry.Version).
		Int("bytes", len(body)).
		Msg("Cached fresh payload")
	return entry.clone()
}

// refreshEntry keeps an entry's data after a 304 but refreshes its
// fingerprint, version, and timestamp bookkeeping.
func (c *Client) refreshEntry(resource Resource, entry *Entry, headers http.Header) *Entry {
	updated := entry.clone()
	if etag := headers.Get("ETag"); etag != "" {
		updated.Fingerprint = etag
	}
	if v := parseVersionHeader(headers); v > 0 {
		updated.Version = v
	}
	updated.FetchedAt = time.Now()

	c.mu.Lock()
	c.entries[resource] = updated
	c.mu.Unlock()

	return updated.clone()
}

// parseVersionHeader reads X-Menu-Version, 0 when absent or malformed.
func parseVersionHeader(headers http.Header) int64 {
	v, err := strconv.ParseInt(headers.Get("X-Menu-Version"), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
