// Package metrics provides the centralized Prometheus metrics reference for
// the menu service. All metrics are defined in their respective packages
// (store, version, responder, api, client) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the menu service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Version Metrics (pkg/version):
//   - menu_version (Gauge): Current menu version counter
//   - menu_version_bumps_total (Counter): Menu version increments
//   - menu_version_bump_failures_total (Counter): Failed increments (cache busting delayed)
//
// Store Metrics (pkg/store):
//   - menu_store_errors_total{operation} (Counter): Document store operation errors
//
// Responder Metrics (pkg/responder):
//   - menu_responses_total{resource, outcome} (Counter): Read responses by resource and outcome
//   - menu_not_modified_total (Counter): Reads short-circuited with a matching fingerprint
//
// HTTP Metrics (pkg/api):
//   - menu_http_request_duration_seconds{route} (Histogram): Request duration by route
//
// Client Metrics (pkg/client):
//   - menu_client_cache_hits_total{kind} (Counter): Cache hits by kind (version_check, not_modified)
//   - menu_client_cache_misses_total (Counter): Full payload fetches
//   - menu_client_conditional_requests_total (Counter): Requests sent with If-None-Match
//   - menu_client_stale_fallbacks_total (Counter): Reads served from cache after fetch failure
//   - menu_client_retries_total{error_class} (Counter): Retry attempts by error class
//   - menu_client_retry_exhausted_total{error_class} (Counter): Requests that exhausted retries
//
// Example Prometheus Queries:
//
//   # Client cache hit rate
//   sum(rate(menu_client_cache_hits_total[5m])) /
//   (sum(rate(menu_client_cache_hits_total[5m])) + sum(rate(menu_client_cache_misses_total[5m])))
//
//   # 304 rate on the serving side
//   rate(menu_not_modified_total[5m]) / sum(rate(menu_responses_total[5m]))
//
//   # Version bump failure ratio (staleness risk)
//   rate(menu_version_bump_failures_total[5m]) / rate(menu_version_bumps_total[5m])
//
//   # P95 read latency
//   histogram_quantile(0.95, rate(menu_http_request_duration_seconds_bucket[5m]))
