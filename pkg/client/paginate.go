package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// pageEnvelope is the decoded shape of one response body.
type pageEnvelope struct {
	Data []json.RawMessage `json:"data"`
	Meta struct {
		NextToken string `json:"next_token"`
	} `json:"meta"`
}

// rawEnvelope distinguishes "data": [] from a missing data field: the
// upstream contract requires the field on every page.
type rawEnvelope struct {
	Data *json.RawMessage `json:"data"`
}

// getPaged drives a complete paginated operation: it issues the first GET,
// then repeats the request with the pagination_token query parameter while
// the envelope carries a continuation token, concatenating pages in request
// order. Pages are fetched strictly sequentially since each request depends
// on the previous page's token. The token never outlives this call.
func (c *Client) getPaged(ctx context.Context, op Operation, rawURL string) ([]json.RawMessage, error) {
	var results []json.RawMessage
	token := ""
	pages := 0

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(op.String()).Observe(time.Since(start).Seconds())
	}()

	for {
		env, err := c.getPage(ctx, op, rawURL, token)
		if err != nil {
			return nil, err
		}

		results = append(results, env.Data...)
		pages++

		if env.Meta.NextToken == "" {
			c.logger.Debug().
				Str("operation", op.String()).
				Int("pages", pages).
				Int("records", len(results)).
				Msg("Paginated fetch complete")
			return results, nil
		}

		if c.config.MaxPages > 0 && pages >= c.config.MaxPages {
			return nil, fmt.Errorf("%w after %d pages", ErrPageLimitExceeded, pages)
		}

		token = env.Meta.NextToken
	}
}

// getPage fetches and decodes a single page. An empty token means the first
// page of the operation.
func (c *Client) getPage(ctx context.Context, op Operation, rawURL, token string) (*pageEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if token != "" {
		q := req.URL.Query()
		q.Set("pagination_token", token)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(KindUnavailable)).Inc()
		return nil, unavailable(fmt.Errorf("read response body: %w", err))
	}

	requestsTotal.WithLabelValues(op.String(), fmt.Sprintf("%d", resp.StatusCode)).Inc()

	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErrorsTotal.WithLabelValues(string(KindMalformedPayload)).Inc()
		return nil, malformed(resp.StatusCode, fmt.Errorf("decode page: %w", err))
	}
	if raw.Data == nil {
		apiErrorsTotal.WithLabelValues(string(KindMalformedPayload)).Inc()
		return nil, malformed(resp.StatusCode, fmt.Errorf("response missing data field"))
	}

	var env pageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		apiErrorsTotal.WithLabelValues(string(KindMalformedPayload)).Inc()
		return nil, malformed(resp.StatusCode, fmt.Errorf("decode page: %w", err))
	}

	return &env, nil
}

// send dispatches one request through the interceptor pair: throttle before
// the call, refresh-and-check after. On success the response body is still
// open and owned by the caller.
func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.config.BearerToken)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	if err := c.request.throttle(ctx, req.Method, req.URL); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(KindUnavailable)).Inc()
		c.logger.Error().Err(err).Str("url", req.URL.Path).Msg("Request failed before response")
		return nil, unavailable(err)
	}

	if err := c.response.inspect(ctx, resp); err != nil {
		return nil, err
	}

	return resp, nil
}
