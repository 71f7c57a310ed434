// Package peloton provides a Go client for the Peloton REST API.
//
// The client logs in with a username (or email) and password, keeps the session cookie
// until its Max-Age runs out, and logs in again on the next call after that. Collection
// endpoints are paged transparently. Responses are returned as raw JSON.
//
// # Quick Start
//
//	client := peloton.NewClient("user@example.com", "password")
//
//	profile, err := client.User.Me(ctx)
//
// # Pagination
//
// Collection methods fetch every page and return the concatenated items. Limit the
// number of items with the MaxResults field of the options:
//
//	workouts, err := client.User.Workouts(ctx, "", &peloton.WorkoutListOptions{
//	    MaxResults: 10,
//	    JoinOptions: peloton.JoinOptions{IncludeRide: true},
//	})
//
// An empty user ID refers to the logged-in user.
//
// # Connections
//
// By default every call runs on a transient HTTP client. Pass a long-lived client with
// WithHTTPClient to reuse its connection pool; the session cookies are injected for you.
//
// # Errors
//
// Failed logins return *AuthError. Non-2xx responses and malformed pages return *APIError:
//
//	var apiErr *peloton.APIError
//	if errors.As(err, &apiErr) && apiErr.IsNotFound() {
//	    // ...
//	}
//
// # Blocking calls
//
// SyncClient exposes the same accessors without a context argument.
package peloton
