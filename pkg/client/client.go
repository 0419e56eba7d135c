// Package client provides a rate-limit-aware Twitter API v2 client for
// social graph queries: followers, follows, owned lists, list members and
// username-to-id lookup. Every outbound request passes through a request
// interceptor (pre-send throttling against the shared rate-limit tracker)
// and a response interceptor (limit bookkeeping plus typed error mapping),
// and paginated endpoints are aggregated transparently into one result.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/time/rate"

	"github.com/edamsoft-sre/twitter-graph-client/pkg/cache"
	"github.com/edamsoft-sre/twitter-graph-client/pkg/ratelimit"
)

// DefaultBaseURL is the Twitter API v2 base.
const DefaultBaseURL = "https://api.twitter.com/2"

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twitter_requests_total",
		Help: "Total API requests by operation and status",
	}, []string{"operation", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "twitter_operation_duration_seconds",
		Help:    "Logical operation duration in seconds, pagination included",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"operation"})
)

// Client is the Twitter graph API client. It owns the HTTP connection pool
// and the rate-limit tracker; both live exactly as long as the client.
type Client struct {
	httpClient *http.Client
	tracker    ratelimit.Tracker
	request    *requestInterceptor
	response   *responseInterceptor
	idCache    *cache.LRU
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BearerToken authenticates every request (REQUIRED).
	BearerToken string

	// UserAgent identifies this client to the API (REQUIRED).
	UserAgent string

	// BaseURL overrides the API base, mainly for tests.
	BaseURL string

	// Connection pool bounds. When the pool is exhausted new requests
	// queue on the transport rather than fail.
	MaxConnections     int
	MaxIdleConnections int

	// SafetyMargin is added to every rate-limit wait on top of the time
	// until the quota window resets.
	SafetyMargin time.Duration

	// MaxPages bounds a single paginated operation. 0 means unlimited,
	// trusting the upstream to stop emitting continuation tokens.
	MaxPages int

	// RequestsPerSecond enables steady-state client-side pacing in
	// addition to the header-driven throttle. 0 disables the pacer.
	RequestsPerSecond float64

	// IDCacheCapacity bounds the username-to-id lookup cache.
	IDCacheCapacity int

	// Tracker overrides the rate-limit state store, e.g. a Redis-backed
	// tracker shared by several processes. Defaults to an in-memory
	// tracker owned by this client.
	Tracker ratelimit.Tracker
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(bearerToken, userAgent string) Config {
	return Config{
		BearerToken:        bearerToken,
		UserAgent:          userAgent,
		BaseURL:            DefaultBaseURL,
		MaxConnections:     10,
		MaxIdleConnections: 5,
		SafetyMargin:       10 * time.Second,
		MaxPages:           0,
		IDCacheCapacity:    cache.DefaultCapacity,
	}
}

// New creates a new Twitter graph client.
func New(cfg Config) (*Client, error) {
	if cfg.BearerToken == "" {
		return nil, fmt.Errorf("bearer token is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.SafetyMargin <= 0 {
		cfg.SafetyMargin = 10 * time.Second
	}

	logger := log.With().Str("component", "twitter-client").Logger()

	tracker := cfg.Tracker
	if tracker == nil {
		tracker = ratelimit.NewTracker(logger)
	}

	var pacer *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		pacer = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	transport := &http.Transport{
		MaxConnsPerHost:     cfg.MaxConnections,
		MaxIdleConns:        cfg.MaxIdleConnections,
		MaxIdleConnsPerHost: cfg.MaxIdleConnections,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, fmt.Errorf("configure http2 transport: %w", err)
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		tracker: tracker,
		request: &requestInterceptor{
			tracker: tracker,
			margin:  cfg.SafetyMargin,
			pacer:   pacer,
			logger:  logger,
		},
		response: &responseInterceptor{
			tracker: tracker,
			logger:  logger,
		},
		idCache: cache.NewLRU(cfg.IDCacheCapacity),
		config:  cfg,
		logger:  logger,
	}, nil
}

// Followers returns every follower of the given user, all pages aggregated.
func (c *Client) Followers(ctx context.Context, userID int64) ([]User, error) {
	return c.userOperation(ctx, OpFollowers, userID)
}

// Following returns every account the given user follows.
func (c *Client) Following(ctx context.Context, userID int64) ([]User, error) {
	return c.userOperation(ctx, OpFollowing, userID)
}

// ListMembers returns every member of the given list.
func (c *Client) ListMembers(ctx context.Context, listID int64) ([]User, error) {
	return c.userOperation(ctx, OpListMembers, listID)
}

// OwnedLists returns every list owned by the given user.
func (c *Client) OwnedLists(ctx context.Context, userID int64) ([]List, error) {
	if err := validateID(userID); err != nil {
		return nil, err
	}

	records, err := c.getPaged(ctx, OpOwnedLists, c.endpointURL(OpOwnedLists, userID))
	if err != nil {
		return nil, err
	}
	return decodeLists(records)
}

// UserID resolves a username to its numeric id. Lookups are memoized in a
// small bounded cache since ids are referentially stable within a process
// lifetime.
func (c *Client) UserID(ctx context.Context, username string) (int64, error) {
	if username == "" {
		return 0, ErrMissingUsername
	}

	if id, ok := c.idCache.Get(username); ok {
		return id, nil
	}

	env, err := c.getPage(ctx, OpUserLookup, c.lookupURL(username), "")
	if err != nil {
		return 0, err
	}

	if len(env.Data) == 0 {
		return 0, malformed(http.StatusOK, fmt.Errorf("lookup for %q returned no records", username))
	}

	var record struct {
		ID int64 `json:"id,string"`
	}
	if err := json.Unmarshal(env.Data[0], &record); err != nil {
		return 0, malformed(http.StatusOK, fmt.Errorf("decode lookup record: %w", err))
	}

	c.idCache.Set(username, record.ID)
	return record.ID, nil
}

// userOperation runs one paginated user-record operation end to end.
func (c *Client) userOperation(ctx context.Context, op Operation, id int64) ([]User, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	records, err := c.getPaged(ctx, op, c.endpointURL(op, id))
	if err != nil {
		return nil, err
	}
	return decodeUsers(records)
}

// Close releases the connection pool.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
