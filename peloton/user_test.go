package peloton

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_DefaultsToSessionUser(t *testing.T) {
	ts := newMockServer(t)
	defer ts.Close()

	client := newMockClient(ts)
	ctx := context.Background()

	workouts, err := client.User.Workouts(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, workouts, 6)
	assert.Equal(t, 3, ts.hitCount("/api/user/user-1/workouts"))

	profile, err := client.User.Get(ctx, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "user-1", "username": "rider", "total_workouts": 6}`, string(profile))

	followers, err := client.User.Followers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	following, err := client.User.Following(ctx, "")
	require.NoError(t, err)
	assert.Len(t, following, 1)

	assert.Equal(t, 1, ts.logins())
}

func TestUserService_ExplicitUser(t *testing.T) {
	ts := newMockServer(t)
	defer ts.Close()

	client := newMockClient(ts)

	_, err := client.User.Followers(context.Background(), "other-user")
	require.NoError(t, err)

	assert.Equal(t, 2, ts.hitCount("/api/user/other-user/followers"))
	assert.Zero(t, ts.hitCount("/api/user/user-1/followers"))
}

func TestUserService_Achievements(t *testing.T) {
	ts := newMockServer(t)
	defer ts.Close()

	client := newMockClient(ts)

	achievements, err := client.User.Achievements(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, achievements, 2)
	assert.JSONEq(t, `{"name": "Century"}`, string(achievements[0]))
}

func TestUserService_WorkoutsWithJoins(t *testing.T) {
	ts := newMockServer(t)
	defer ts.Close()

	client := newMockClient(ts)

	workouts, err := client.User.Workouts(context.Background(), testUserID, &WorkoutListOptions{
		JoinOptions: JoinOptions{IncludeRide: true, IncludeInstructor: true},
		MaxResults:  3,
	})
	require.NoError(t, err)

	assert.Len(t, workouts, 3)
	assert.Equal(t, "ride,ride.instructor", ts.lastQuery(workoutsPath).Get("joins"))
}

func TestUserService_Me(t *testing.T) {
	ts := newMockServer(t)
	defer ts.Close()

	client := newMockClient(ts)

	me, err := client.User.Me(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "user-1", "username": "rider"}`, string(me))
}

func TestUserService_GetID(t *testing.T) {
	ts := newMockServer(t)
	defer ts.Close()

	client := newMockClient(ts)
	ctx := context.Background()

	id, err := client.User.GetID(ctx, "rider")
	require.NoError(t, err)
	assert.Equal(t, testUserID, id)

	_, err = client.User.GetID(ctx, "ghost")
	assert.Error(t, err)

	_, err = client.User.GetID(ctx, "")
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestJoinOptions_Values(t *testing.T) {
	tests := []struct {
		name string
		opts *JoinOptions
		want string
	}{
		{name: "nil", opts: nil, want: ""},
		{name: "none", opts: &JoinOptions{}, want: ""},
		{name: "ride", opts: &JoinOptions{IncludeRide: true}, want: "ride"},
		{name: "instructor", opts: &JoinOptions{IncludeInstructor: true}, want: "ride.instructor"},
		{name: "both", opts: &JoinOptions{IncludeRide: true, IncludeInstructor: true}, want: "ride,ride.instructor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.opts.values()
			if tt.want == "" {
				assert.Nil(t, v)
				return
			}
			assert.Equal(t, tt.want, v.Get("joins"))
		})
	}
}

func TestUserService_LoginErrorPropagates(t *testing.T) {
	ts := newMockServer(t)
	defer ts.Close()

	client := NewClient(testUsername, "wrong", WithBaseURL(ts.URL))

	_, err := client.User.Workouts(context.Background(), "", nil)

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr), "expected AuthError, got %T", err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "login failure must not be wrapped in APIError")
}
