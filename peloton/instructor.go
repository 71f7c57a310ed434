package peloton

import (
	"context"
	"encoding/json"
)

// InstructorService handles communication with the instructor related methods.
type InstructorService struct {
	client *Client
}

// List fetches every instructor.
func (s *InstructorService) List(ctx context.Context) ([]json.RawMessage, error) {
	return collect[json.RawMessage](ctx, s.client, s.client.endpoint(pathInstructor), "data", 0, nil, nil)
}
