package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/edamsoft-sre/twitter-graph-client/internal/testutil"
)

func newTestClient(t *testing.T, baseURL string, mutate func(*Config)) *Client {
	t.Helper()

	cfg := DefaultConfig("test-token", "graph-client-test/0.0.0")
	cfg.BaseURL = baseURL
	cfg.SafetyMargin = 50 * time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetPaged_ThreePagesInOrder(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetPages("/users/123/followers", []testutil.Page{
		{
			Data:      `[{"id":"1","username":"u1","name":"U1"},{"id":"2","username":"u2","name":"U2"}]`,
			NextToken: "a",
		},
		{
			Data:      `[{"id":"3","username":"u3","name":"U3"}]`,
			NextToken: "b",
		},
		{
			Data: `[{"id":"4","username":"u4","name":"U4"}]`,
		},
	})

	c := newTestClient(t, mock.URL(), nil)

	users, err := c.Followers(context.Background(), 123)
	if err != nil {
		t.Fatalf("Followers() error = %v", err)
	}

	if len(users) != 4 {
		t.Fatalf("len(users) = %d, want 4", len(users))
	}
	for i, wantID := range []int64{1, 2, 3, 4} {
		if users[i].ID != wantID {
			t.Errorf("users[%d].ID = %d, want %d (pages must concatenate in request order)", i, users[i].ID, wantID)
		}
	}

	if got := mock.GetRequestCount(); got != 3 {
		t.Errorf("RequestCount = %d, want exactly 3", got)
	}

	tokens := mock.GetTokensSeen()
	if len(tokens) != 2 || tokens[0] != "a" || tokens[1] != "b" {
		t.Errorf("TokensSeen = %v, want [a b]", tokens)
	}
}

func TestGetPaged_SinglePage(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetPages("/users/123/followers", []testutil.Page{
		{Data: `[{"id":"1","username":"u1","name":"U1"}]`},
	})

	c := newTestClient(t, mock.URL(), nil)

	users, err := c.Followers(context.Background(), 123)
	if err != nil {
		t.Fatalf("Followers() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users))
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("RequestCount = %d, want 1", got)
	}
}

func TestGetPaged_NonJSONBodyIsMalformed(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetResponse("/users/123/followers", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       "<html>definitely not json</html>",
	})

	c := newTestClient(t, mock.URL(), nil)

	_, err := c.Followers(context.Background(), 123)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Followers() error = %v, want *APIError", err)
	}
	if apiErr.Kind != KindMalformedPayload {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, KindMalformedPayload)
	}
	if apiErr.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want the original 200", apiErr.StatusCode)
	}
}

func TestGetPaged_MissingDataFieldIsMalformed(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetResponse("/users/123/followers", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"meta":{}}`,
	})

	c := newTestClient(t, mock.URL(), nil)

	_, err := c.Followers(context.Background(), 123)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Followers() error = %v, want *APIError", err)
	}
	if apiErr.Kind != KindMalformedPayload {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, KindMalformedPayload)
	}
}

func TestGetPaged_TransportFailureIsUnavailable(t *testing.T) {
	mock := testutil.NewMockAPI()
	baseURL := mock.URL()
	mock.Close() // connection refused from here on

	c := newTestClient(t, baseURL, nil)

	_, err := c.Followers(context.Background(), 123)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Followers() error = %v, want *APIError", err)
	}
	if apiErr.Kind != KindUnavailable {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, KindUnavailable)
	}
}

func TestGetPaged_PageCeiling(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	// Upstream that never stops emitting a token.
	mock.SetHandler("/users/123/followers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":[],"meta":{"next_token":"again"}}`))
	})

	c := newTestClient(t, mock.URL(), func(cfg *Config) {
		cfg.MaxPages = 3
	})

	_, err := c.Followers(context.Background(), 123)
	if !errors.Is(err, ErrPageLimitExceeded) {
		t.Fatalf("Followers() error = %v, want ErrPageLimitExceeded", err)
	}
	if got := mock.GetRequestCount(); got != 3 {
		t.Errorf("RequestCount = %d, want 3 (the ceiling)", got)
	}
}

func TestGetPaged_CancelledMidOperation(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetResponse("/users/123/followers", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data":[],"meta":{}}`,
		Delay:      500 * time.Millisecond,
	})

	c := newTestClient(t, mock.URL(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	users, err := c.Followers(ctx, 123)
	if err == nil {
		t.Fatal("Followers() should fail when the context expires mid-request")
	}
	if users != nil {
		t.Error("No partial data may be returned on cancellation")
	}
}
