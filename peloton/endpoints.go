package peloton

import (
	"net/url"
	"strings"
)

const (
	defaultBaseURL = "https://api.onepeloton.com"

	// sessionCookieName is the cookie whose Max-Age bounds the login session.
	sessionCookieName = "peloton_session_id"
)

// Endpoint paths, relative to the base URL.
const (
	pathLogin      = "/auth/login"
	pathSchema     = "/api/ride/metadata_mappings"
	pathInstructor = "/api/instructor"
	pathProfile    = "/api/me"
	pathUser       = "/api/user"
	pathWorkout    = "/api/workout"
	pathRide       = "/api/ride"
	pathRides      = "/api/v2/ride/archived?browse_category="
)

// Sub-resources appended to a user path.
const (
	userFollowers    = "followers"
	userFollowing    = "following"
	userAchievements = "achievements"
	userWorkouts     = "workouts"
)

// Sub-resources appended to a workout path.
const (
	workoutMetrics      = "performance_graph"
	workoutAchievements = "achievements"
	workoutSummary      = "summary"
)

// endpoint joins the base URL, a resource path and optional escaped path segments.
func (c *Client) endpoint(path string, segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString(path)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
