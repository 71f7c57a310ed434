package peloton

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// pageCountKey is the field every page response must carry.
const pageCountKey = "page_count"

var jsonNull = []byte("null")

// collect fetches pages of endpoint starting at page 0 and concatenates the items found
// under itemsKey, in page order. When maxResults is positive it stops once that many
// items are held and truncates the result to maxResults; otherwise it fetches every page.
// The first page is always requested, whatever page count it reports.
func collect[T any](ctx context.Context, c *Client, endpoint, itemsKey string, maxResults int, params url.Values, body any) ([]T, error) {
	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}

	var (
		page       int
		totalPages = -1
		results    []T
	)

	for totalPages < 0 || (page < totalPages && (maxResults <= 0 || len(results) < maxResults)) {
		q.Set("page", strconv.Itoa(page))

		resp, err := c.execute(ctx, endpoint, q, body)
		if err != nil {
			return nil, err
		}

		count, items, err := decodePage[T](resp.Body, itemsKey)
		if err != nil {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    "unable to handle page response",
				URL:        resp.URL,
				Payload:    resp.Body,
				Err:        err,
			}
		}

		if totalPages < 0 {
			totalPages = max(count, 0)
		}
		results = append(results, items...)

		c.metrics.page()
		c.logger.Debug().
			Int("page", page).
			Int("page_count", totalPages).
			Int("count", len(items)).
			Int("total", len(results)).
			Msg("Fetched page")

		page++
	}

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	return results, nil
}

// decodePage extracts the page count and the items under itemsKey from a page response.
// Both keys must be present and non-null.
func decodePage[T any](raw json.RawMessage, itemsKey string) (int, []T, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	countRaw, ok := fields[pageCountKey]
	if !ok || bytes.Equal(countRaw, jsonNull) {
		return 0, nil, fmt.Errorf("%w: missing %q", ErrMalformedPage, pageCountKey)
	}
	itemsRaw, ok := fields[itemsKey]
	if !ok || bytes.Equal(itemsRaw, jsonNull) {
		return 0, nil, fmt.Errorf("%w: missing %q", ErrMalformedPage, itemsKey)
	}

	var count int
	if err := json.Unmarshal(countRaw, &count); err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %v", ErrMalformedPage, pageCountKey, err)
	}

	var items []T
	if err := json.Unmarshal(itemsRaw, &items); err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %v", ErrMalformedPage, itemsKey, err)
	}

	return count, items, nil
}
