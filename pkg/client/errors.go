package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrPageLimitExceeded is returned when a paginated call exceeds the
	// configured MaxPages ceiling.
	ErrPageLimitExceeded = errors.New("pagination page limit exceeded")

	// ErrMissingID is returned when an operation is called without a
	// positive numeric id.
	ErrMissingID = errors.New("numeric id is required")

	// ErrMissingUsername is returned when an id lookup is called with an
	// empty username.
	ErrMissingUsername = errors.New("username is required")
)

// ErrorKind classifies API failures.
type ErrorKind string

const (
	// KindUnavailable represents transport-level failures (connection,
	// timeout, DNS) that occur before any response arrives.
	KindUnavailable ErrorKind = "unavailable"

	// KindQuotaExceeded represents an HTTP 429 from the upstream.
	KindQuotaExceeded ErrorKind = "quota_exceeded"

	// KindUpstreamHTTP represents any other non-2xx upstream status.
	KindUpstreamHTTP ErrorKind = "upstream_http"

	// KindMalformedPayload represents an undecodable body or a response
	// missing the expected data envelope.
	KindMalformedPayload ErrorKind = "malformed_payload"
)

// APIError is the typed error surfaced by all client operations.
type APIError struct {
	Kind       ErrorKind
	StatusCode int

	// Path is the failing request path; set for upstream HTTP errors.
	Path string

	// QuotaRemaining is the x-rate-limit-remaining header value carried by
	// 429 responses, empty when the header was absent.
	QuotaRemaining string

	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch e.Kind {
	case KindQuotaExceeded:
		return fmt.Sprintf("quota exceeded (status %d, remaining %q)", e.StatusCode, e.QuotaRemaining)
	case KindUpstreamHTTP:
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Path)
	case KindUnavailable:
		return fmt.Sprintf("upstream unavailable: %v", e.Err)
	case KindMalformedPayload:
		return fmt.Sprintf("malformed payload (status %d): %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("api error (status %d): %v", e.StatusCode, e.Err)
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// unavailable wraps a transport-level failure.
func unavailable(err error) *APIError {
	return &APIError{Kind: KindUnavailable, Err: err}
}

// malformed wraps a decode failure together with the status of the response
// that produced it.
func malformed(statusCode int, err error) *APIError {
	return &APIError{Kind: KindMalformedPayload, StatusCode: statusCode, Err: err}
}
