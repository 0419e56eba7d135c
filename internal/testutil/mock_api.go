// Package testutil provides testing utilities for the Twitter graph client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock API endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// Page is one page of a scripted paginated response. Data is a JSON array
// literal; NextToken is the continuation token the page advertises, empty
// for the terminal page.
type Page struct {
	Data      string
	NextToken string
}

// MockAPI is a configurable mock Twitter API server for testing.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	TokensSeen        []string
	LastRequestHeader http.Header
}

// NewMockAPI creates a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		if token := r.URL.Query().Get("pagination_token"); token != "" {
			mock.TokensSeen = append(mock.TokensSeen, token)
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
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

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.TokensSeen = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		setRateLimitHeaders(w, 100, time.Now().Add(15*time.Minute))
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetPages scripts a paginated endpoint: the first request (no token) serves
// pages[0], and each continuation token routes to the page that follows the
// one advertising it.
func (m *MockAPI) SetPages(path string, pages []Page) {
	byToken := make(map[string]Page, len(pages))
	for i, page := range pages {
		if i == 0 {
			byToken[""] = page
			continue
		}
		byToken[pages[i-1].NextToken] = page
	}

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pagination_token")
		page, ok := byToken[token]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"title":"unknown pagination token %q"}`, token)
			return
		}

		setRateLimitHeaders(w, 100, time.Now().Add(15*time.Minute))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if page.NextToken != "" {
			fmt.Fprintf(w, `{"data":%s,"meta":{"next_token":%q}}`, page.Data, page.NextToken)
			return
		}
		fmt.Fprintf(w, `{"data":%s,"meta":{}}`, page.Data)
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetTokensSeen returns the pagination tokens received, in request order.
func (m *MockAPI) GetTokensSeen() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tokens := make([]string, len(m.TokensSeen))
	copy(tokens, m.TokensSeen)
	return tokens
}

// defaultHandler provides a default API-like empty response.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	setRateLimitHeaders(w, 100, time.Now().Add(15*time.Minute))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"data":[],"meta":{}}`))
}

func setRateLimitHeaders(w http.ResponseWriter, remaining int, resetAt time.Time) {
	w.Header().Set("x-rate-limit-remaining", strconv.Itoa(remaining))
	w.Header().Set("x-rate-limit-reset", strconv.FormatInt(resetAt.Unix(), 10))
}
