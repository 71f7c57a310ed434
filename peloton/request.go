package peloton

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// apiResponse is a successful response body together with where it came from.
type apiResponse struct {
	StatusCode int
	URL        string
	Body       json.RawMessage
}

// call performs a GET against endpoint and returns the JSON response body.
func (c *Client) call(ctx context.Context, endpoint string, params url.Values, body any) (json.RawMessage, error) {
	resp, err := c.execute(ctx, endpoint, params, body)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// execute is the single place requests are issued. It ensures a live session, merges
// params over the endpoint's own query, always sets the page-size limit, and maps
// non-2xx responses to *APIError.
func (c *Client) execute(ctx context.Context, endpoint string, params url.Values, body any) (*apiResponse, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}

	q := u.Query()
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("limit", strconv.Itoa(c.pageLimit))
	u.RawQuery = q.Encode()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	hc, release, err := c.connection()
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := c.session.ensure(ctx, hc)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	sess.attach(hc, req)

	c.logger.Debug().Str("url", u.String()).Msg("Calling Peloton API")

	resp, err := hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request aborted by context: %w", ctx.Err())
		}
		return nil, fmt.Errorf("http execute request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.metrics.request(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("url", u.String()).
			Msg("Peloton API returned an error")
		return nil, mapHTTPError(resp, data)
	}

	if !json.Valid(data) {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "response body is not valid JSON",
			URL:        u.String(),
		}
	}

	return &apiResponse{
		StatusCode: resp.StatusCode,
		URL:        u.String(),
		Body:       data,
	}, nil
}
