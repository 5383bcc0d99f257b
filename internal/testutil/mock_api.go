// Package testutil provides testing utilities for the YouTube Data API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock of a page-token listing API.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requests []RecordedRequest
}

// RecordedRequest is one request seen by the mock.
type RecordedRequest struct {
	Path   string
	Query  url.Values
	Header http.Header
}

// NewMockAPI creates a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		})
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"Not Found","errors":[{"reason":"notFound"}]}}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears recorded requests.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetPages serves pages of items for a path. Page n (0-based) is requested
// with pageToken "page-n"; every page but the last carries the next token.
// Items are raw JSON object strings.
func (m *MockAPI) SetPages(path string, pages ...[]string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		idx := 0
		if token := r.URL.Query().Get("pageToken"); token != "" {
			n, err := strconv.Atoi(strings.TrimPrefix(token, "page-"))
			if err != nil || n >= len(pages) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":{"code":400,"message":"Invalid page token","errors":[{"reason":"invalidPageToken"}]}}`))
				return
			}
			idx = n
		}

		next := ""
		if idx+1 < len(pages) {
			next = fmt.Sprintf("page-%d", idx+1)
		}
		writeJSON(w, PageBody(pages[idx], next, totalItems(pages)))
	})
}

// PageBody renders a page envelope.
func PageBody(items []string, nextPageToken string, total int) string {
	raw := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		raw = append(raw, json.RawMessage(it))
	}
	env := map[string]any{
		"kind":     "youtube#listResponse",
		"items":    raw,
		"pageInfo": map[string]int{"totalResults": total, "resultsPerPage": len(items)},
	}
	if nextPageToken != "" {
		env["nextPageToken"] = nextPageToken
	}
	b, _ := json.Marshal(env)
	return string(b)
}

// Requests returns a copy of the recorded requests.
func (m *MockAPI) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestsFor returns the recorded requests for one path.
func (m *MockAPI) RequestsFor(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range m.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// NewErrorResponse creates a Google-style error response.
func NewErrorResponse(status int, reason, message string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"error":{"code":%d,"message":%q,"errors":[{"reason":%q,"domain":"youtube"}]}}`, status, message, reason),
		Headers:    map[string]string{"Content-Type": "application/json; charset=UTF-8"},
	}
}

// NewQuotaExceededResponse creates the 403 returned when the daily quota is spent.
func NewQuotaExceededResponse() MockResponse {
	return NewErrorResponse(http.StatusForbidden, "quotaExceeded", "The request cannot be completed because you have exceeded your quota.")
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return NewErrorResponse(http.StatusInternalServerError, "backendError", "Backend Error")
}

// NewMalformedResponse creates a 200 response whose body is not a page envelope.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"items": "not-a-list"`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=UTF-8"},
	}
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func totalItems(pages [][]string) int {
	n := 0
	for _, p := range pages {
		n += len(p)
	}
	return n
}
