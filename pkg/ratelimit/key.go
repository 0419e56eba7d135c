package ratelimit

import (
	"net/url"
	"strings"
)

// Key identifies a single rate-limit bucket: one endpoint template plus the
// HTTP method used against it. Immutable once constructed.
type Key struct {
	// Template is the endpoint path with numeric path parameters normalized
	// to "{id}" (e.g. "/users/{id}/followers").
	Template string

	// Method is the HTTP method (e.g. "GET").
	Method string
}

// String returns a human-readable bucket identifier.
// Format: GET /users/{id}/followers
func (k Key) String() string {
	return k.Method + " " + k.Template
}

// NewKey derives the rate-limit bucket for a concrete request URL and method.
// Path parameters are normalized out so that /users/123/followers and
// /users/456/followers map to the same bucket. The query string never
// participates in bucket identity.
func NewKey(u *url.URL, method string) Key {
	return Key{
		Template: NormalizePath(u.Path),
		Method:   strings.ToUpper(method),
	}
}

// NormalizePath replaces every numeric path segment with the "{id}"
// placeholder used by the endpoint templates.
func NormalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if isNumeric(seg) {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
