package peloton

import (
	"context"
	"encoding/json"
	"net/url"
)

// RideService handles communication with the ride (class) related methods.
type RideService struct {
	client *Client
}

// RideListOptions specifies the optional parameters to RideService.List.
type RideListOptions struct {
	// BrowseCategory restricts the archive to one category, such as "cycling".
	BrowseCategory string

	// MaxResults caps the number of rides returned. Zero fetches all of them.
	MaxResults int
}

// Get fetches a single ride by its ID.
func (s *RideService) Get(ctx context.Context, rideID string) (json.RawMessage, error) {
	if rideID == "" {
		return nil, ErrMissingID
	}
	return s.client.call(ctx, s.client.endpoint(pathRide, rideID), nil, nil)
}

// List fetches archived rides.
func (s *RideService) List(ctx context.Context, opts *RideListOptions) ([]json.RawMessage, error) {
	var (
		maxResults int
		params     url.Values
	)
	if opts != nil {
		maxResults = opts.MaxResults
		if opts.BrowseCategory != "" {
			params = url.Values{"browse_category": {opts.BrowseCategory}}
		}
	}
	return collect[json.RawMessage](ctx, s.client, s.client.endpoint(pathRides), "data", maxResults, params, nil)
}

// Schema fetches the metadata mappings that describe ride fields.
func (s *RideService) Schema(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, s.client.endpoint(pathSchema), nil, nil)
}
