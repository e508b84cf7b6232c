// Package testutil provides testing utilities for the menu API client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockResponse defines a canned response for a mock endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockMenuAPI is a configurable mock menu API server. It can proxy to a
// real backend handler (e.g. the api.Server router over a memory store)
// while tracking request counts, and individual paths can be overridden
// with canned responses to inject failures.
type MockMenuAPI struct {
	server  *httptest.Server
	backend http.Handler

	mu               sync.RWMutex
	handlers         map[string]http.HandlerFunc
	requestCount     int
	conditionalCount int
	pathCounts       map[string]int
}

// NewMockMenuAPI creates a mock server. backend may be nil, in which case
// unconfigured paths answer 404.
func NewMockMenuAPI(backend http.Handler) *MockMenuAPI {
	mock := &MockMenuAPI{
		backend:    backend,
		handlers:   make(map[string]http.HandlerFunc),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		if r.Header.Get("If-None-Match") != "" {
			mock.conditionalCount++
		}
		handler, overridden := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if overridden {
			handler(w, r)
			return
		}
		if mock.backend != nil {
			mock.backend.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	}))

	return mock
}

// Backend returns the wrapped backend handler, nil when none was given.
// Path overrides can delegate to it after injecting failures.
func (m *MockMenuAPI) Backend() http.Handler {
	return m.backend
}

// URL returns the mock server URL.
func (m *MockMenuAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockMenuAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters and path overrides.
func (m *MockMenuAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.pathCounts = make(map[string]int)
	m.handlers = make(map[string]http.HandlerFunc)
}

// SetHandler overrides a path with a custom handler.
func (m *MockMenuAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse overrides a path with a canned response.
func (m *MockMenuAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, _ *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// ClearHandler removes a path override, restoring backend behavior.
func (m *MockMenuAPI) ClearHandler(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, path)
}

// RequestCount returns the total number of requests received.
func (m *MockMenuAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// ConditionalCount returns the number of requests carrying If-None-Match.
func (m *MockMenuAPI) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// PathCount returns the number of requests received for one path.
func (m *MockMenuAPI) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}
