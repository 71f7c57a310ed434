package peloton

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// UserService handles communication with the user related methods.
//
// Methods taking a userID fall back to the logged-in user when it is empty.
type UserService struct {
	client *Client
}

// JoinOptions asks the API to embed related resources in workout responses.
type JoinOptions struct {
	// IncludeRide embeds the ride (class) each workout was taken from.
	IncludeRide bool

	// IncludeInstructor embeds the ride's instructor.
	IncludeInstructor bool
}

// values encodes the joins query parameter, or nil when nothing is joined.
func (o *JoinOptions) values() url.Values {
	if o == nil || (!o.IncludeRide && !o.IncludeInstructor) {
		return nil
	}

	var joins []string
	if o.IncludeRide {
		joins = append(joins, "ride")
	}
	if o.IncludeInstructor {
		joins = append(joins, "ride.instructor")
	}
	return url.Values{"joins": {strings.Join(joins, ",")}}
}

// WorkoutListOptions specifies the optional parameters to UserService.Workouts.
type WorkoutListOptions struct {
	JoinOptions

	// MaxResults caps the number of workouts returned, most recent first.
	// Zero fetches all of them.
	MaxResults int
}

// Me fetches the profile of the logged-in user.
func (s *UserService) Me(ctx context.Context) (json.RawMessage, error) {
	return s.client.call(ctx, s.client.endpoint(pathProfile), nil, nil)
}

// GetID looks up the user ID for a username.
func (s *UserService) GetID(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", ErrMissingID
	}

	raw, err := s.client.call(ctx, s.client.endpoint(pathUser, username), nil, nil)
	if err != nil {
		return "", err
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return "", fmt.Errorf("decode user %q: %w", username, err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("user %q: response has no id", username)
	}

	return user.ID, nil
}

// Get fetches the profile of a user.
func (s *UserService) Get(ctx context.Context, userID string) (json.RawMessage, error) {
	id, err := s.client.resolveUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.client.call(ctx, s.client.endpoint(pathUser, id), nil, nil)
}

// Followers fetches the users following a user.
func (s *UserService) Followers(ctx context.Context, userID string) ([]json.RawMessage, error) {
	return s.list(ctx, userID, userFollowers, "data", 0, nil)
}

// Following fetches the users a user follows.
func (s *UserService) Following(ctx context.Context, userID string) ([]json.RawMessage, error) {
	return s.list(ctx, userID, userFollowing, "data", 0, nil)
}

// Achievements fetches the achievements a user has earned.
func (s *UserService) Achievements(ctx context.Context, userID string) ([]json.RawMessage, error) {
	return s.list(ctx, userID, userAchievements, "achievements", 0, nil)
}

// Workouts fetches a user's workouts.
func (s *UserService) Workouts(ctx context.Context, userID string, opts *WorkoutListOptions) ([]json.RawMessage, error) {
	var (
		maxResults int
		params     url.Values
	)
	if opts != nil {
		maxResults = opts.MaxResults
		params = opts.JoinOptions.values()
	}
	return s.list(ctx, userID, userWorkouts, "data", maxResults, params)
}

func (s *UserService) list(ctx context.Context, userID, sub, itemsKey string, maxResults int, params url.Values) ([]json.RawMessage, error) {
	id, err := s.client.resolveUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return collect[json.RawMessage](ctx, s.client, s.client.endpoint(pathUser, id, sub), itemsKey, maxResults, params, nil)
}
