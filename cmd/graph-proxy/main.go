// Command graph-proxy exposes the Twitter graph client as a small HTTP
// service: one route per logical operation, plus health and Prometheus
// metrics endpoints.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/edamsoft-sre/twitter-graph-client/pkg/client"
	"github.com/edamsoft-sre/twitter-graph-client/pkg/logging"
	"github.com/edamsoft-sre/twitter-graph-client/pkg/ratelimit"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: false,
		Output: os.Stderr,
	})

	bearerToken := os.Getenv("BEARER_TOKEN")
	if bearerToken == "" {
		logger.Fatal().Msg("BEARER_TOKEN is required")
	}

	port := getEnv("PORT", "8080")
	userAgent := getEnv("USER_AGENT", "edamsoft-graph-proxy/0.1.0")

	cfg := client.DefaultConfig(bearerToken, userAgent)

	// Optional shared rate-limit state for multi-instance deployments.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		cfg.Tracker = ratelimit.NewRedisTracker(redisClient, logging.NewLogger("rate-limit"))
		logger.Info().Str("redis", redisURL).Msg("Using Redis-backed rate limit tracker")
	}

	graphClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create graph client")
	}
	defer graphClient.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /users/{id}/followers", usersHandler(graphClient.Followers))
	mux.HandleFunc("GET /users/{id}/following", usersHandler(graphClient.Following))
	mux.HandleFunc("GET /users/{id}/owned_lists", ownedListsHandler(graphClient))
	mux.HandleFunc("GET /lists/{id}/members", usersHandler(graphClient.ListMembers))
	mux.HandleFunc("GET /users/by", userLookupHandler(graphClient))

	addr := ":" + port
	logger.Info().Str("addr", addr).Str("user_agent", userAgent).Msg("Starting graph proxy")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// usersHandler adapts a user-record operation into an HTTP handler.
func usersHandler(op func(ctx context.Context, id int64) ([]client.User, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		users, opErr := op(r.Context(), id)
		if opErr != nil {
			writeError(w, opErr)
			return
		}
		writeJSON(w, users)
	}
}

func ownedListsHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		lists, opErr := c.OwnedLists(r.Context(), id)
		if opErr != nil {
			writeError(w, opErr)
			return
		}
		writeJSON(w, lists)
	}
}

func userLookupHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.URL.Query().Get("username")
		if username == "" {
			http.Error(w, "username is required", http.StatusBadRequest)
			return
		}

		id, err := c.UserID(r.Context(), username)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]int64{"id": id})
	}
}

// writeError maps client error kinds onto proxy status codes.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case client.KindUnavailable:
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		case client.KindQuotaExceeded:
			http.Error(w, err.Error(), http.StatusTooManyRequests)
		case client.KindMalformedPayload:
			http.Error(w, err.Error(), http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
