package peloton

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// defaultMetricsInterval is the sampling interval of Metrics when none is given.
const defaultMetricsInterval = 10 * time.Second

// WorkoutService handles communication with the workout related methods.
type WorkoutService struct {
	client *Client
}

// Get fetches a single workout by its ID.
func (s *WorkoutService) Get(ctx context.Context, workoutID string, opts *JoinOptions) (json.RawMessage, error) {
	if workoutID == "" {
		return nil, ErrMissingID
	}
	return s.client.call(ctx, s.client.endpoint(pathWorkout, workoutID), opts.values(), nil)
}

// Metrics fetches the performance graph of a workout, sampled every interval.
// Intervals below one second default to ten seconds.
func (s *WorkoutService) Metrics(ctx context.Context, workoutID string, every time.Duration) (json.RawMessage, error) {
	if workoutID == "" {
		return nil, ErrMissingID
	}
	if every < time.Second {
		every = defaultMetricsInterval
	}

	params := url.Values{"every_n": {strconv.Itoa(int(every / time.Second))}}
	return s.client.call(ctx, s.client.endpoint(pathWorkout, workoutID, workoutMetrics), params, nil)
}

// Achievements fetches the achievements earned during a workout.
func (s *WorkoutService) Achievements(ctx context.Context, workoutID string) (json.RawMessage, error) {
	if workoutID == "" {
		return nil, ErrMissingID
	}
	return s.client.call(ctx, s.client.endpoint(pathWorkout, workoutID, workoutAchievements), nil, nil)
}

// Summary fetches the summary of a workout.
func (s *WorkoutService) Summary(ctx context.Context, workoutID string) (json.RawMessage, error) {
	if workoutID == "" {
		return nil, ErrMissingID
	}
	return s.client.call(ctx, s.client.endpoint(pathWorkout, workoutID, workoutSummary), nil, nil)
}
