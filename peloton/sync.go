package peloton

import (
	"context"
	"encoding/json"
	"time"
)

// SyncClient is a blocking facade over Client for callers that do not manage contexts.
// Every method forwards to the Client unchanged; errors and results are identical.
type SyncClient struct {
	client  *Client
	timeout time.Duration
}

// NewSyncClient creates a SyncClient. Its page limit defaults to 5, suited to
// interactive use; WithPageLimit overrides it.
func NewSyncClient(usernameOrEmail, password string, opts ...Option) *SyncClient {
	opts = append([]Option{WithPageLimit(interactivePageLimit)}, opts...)
	c := NewClient(usernameOrEmail, password, opts...)
	return &SyncClient{client: c, timeout: c.syncTimeout}
}

// Client returns the underlying context-aware client.
func (s *SyncClient) Client() *Client {
	return s.client
}

// blocking runs fn to completion on a context owned by the call.
func blocking[T any](s *SyncClient, fn func(context.Context) (T, error)) (T, error) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return fn(ctx)
}

// Authenticate logs in if needed and returns the session.
func (s *SyncClient) Authenticate() (Session, error) {
	return blocking(s, s.client.Authenticate)
}

// Instructors fetches every instructor.
func (s *SyncClient) Instructors() ([]json.RawMessage, error) {
	return blocking(s, s.client.Instructor.List)
}

// UserID looks up the user ID for a username.
func (s *SyncClient) UserID(username string) (string, error) {
	return blocking(s, func(ctx context.Context) (string, error) {
		return s.client.User.GetID(ctx, username)
	})
}

// MyProfile fetches the profile of the logged-in user.
func (s *SyncClient) MyProfile() (json.RawMessage, error) {
	return blocking(s, s.client.User.Me)
}

// UserDetail fetches the profile of a user, or of the logged-in user when userID is empty.
func (s *SyncClient) UserDetail(userID string) (json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.User.Get(ctx, userID)
	})
}

// UserFollowers fetches the users following a user.
func (s *SyncClient) UserFollowers(userID string) ([]json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) ([]json.RawMessage, error) {
		return s.client.User.Followers(ctx, userID)
	})
}

// UserFollowing fetches the users a user follows.
func (s *SyncClient) UserFollowing(userID string) ([]json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) ([]json.RawMessage, error) {
		return s.client.User.Following(ctx, userID)
	})
}

// UserAchievements fetches the achievements a user has earned.
func (s *SyncClient) UserAchievements(userID string) ([]json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) ([]json.RawMessage, error) {
		return s.client.User.Achievements(ctx, userID)
	})
}

// UserWorkouts fetches a user's workouts.
func (s *SyncClient) UserWorkouts(userID string, opts *WorkoutListOptions) ([]json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) ([]json.RawMessage, error) {
		return s.client.User.Workouts(ctx, userID, opts)
	})
}

// WorkoutMetadata fetches a single workout.
func (s *SyncClient) WorkoutMetadata(workoutID string, opts *JoinOptions) (json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.Workout.Get(ctx, workoutID, opts)
	})
}

// WorkoutMetrics fetches the performance graph of a workout.
func (s *SyncClient) WorkoutMetrics(workoutID string, every time.Duration) (json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.Workout.Metrics(ctx, workoutID, every)
	})
}

// WorkoutAchievements fetches the achievements earned during a workout.
func (s *SyncClient) WorkoutAchievements(workoutID string) (json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.Workout.Achievements(ctx, workoutID)
	})
}

// WorkoutSummary fetches the summary of a workout.
func (s *SyncClient) WorkoutSummary(workoutID string) (json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.Workout.Summary(ctx, workoutID)
	})
}

// RideMetadata fetches a single ride.
func (s *SyncClient) RideMetadata(rideID string) (json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.Ride.Get(ctx, rideID)
	})
}

// Rides fetches archived rides.
func (s *SyncClient) Rides(opts *RideListOptions) ([]json.RawMessage, error) {
	return blocking(s, func(ctx context.Context) ([]json.RawMessage, error) {
		return s.client.Ride.List(ctx, opts)
	})
}

// Schema fetches the ride metadata mappings.
func (s *SyncClient) Schema() (json.RawMessage, error) {
	return blocking(s, s.client.Ride.Schema)
}
