package peloton

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a persistent HTTP client that is reused for every call, keeping
// its connection pool and TLS state. Session cookies are injected into its cookie jar
// when it has one and attached to each request otherwise.
// If this is not provided, each call runs on a transient client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseURL overrides the default Peloton API base URL.
// This is primarily useful for testing or connecting to a proxy.
func WithBaseURL(url string) Option {
	return func(client *Client) {
		client.baseURL = strings.TrimRight(url, "/")
	}
}

// WithPageLimit sets the page size sent as the "limit" query parameter on every call.
// By default, the Client uses 100 and the SyncClient uses 5. Values below 1 are ignored.
func WithPageLimit(limit int) Option {
	return func(client *Client) {
		if limit > 0 {
			client.pageLimit = limit
		}
	}
}

// WithTimeout sets the overall timeout of transient HTTP clients and bounds every
// login, including logins over a WithHTTPClient client. By default, this is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		if ua != "" {
			client.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for session and request diagnostics. The client logs
// at the logger's own level unless WithLogLevel is also given.
// By default, nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
		if !client.logLevelSet {
			client.logLevel = logger.GetLevel()
		}
	}
}

// WithLogLevel sets the minimum level the client logs at, whatever the order of the
// options. Without it the level is the WithLogger logger's own, or warn.
func WithLogLevel(level zerolog.Level) Option {
	return func(client *Client) {
		client.logLevel = level
		client.logLevelSet = true
	}
}

// WithMetrics registers the client's Prometheus collectors on reg.
// Clients sharing a registerer share the collectors.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(client *Client) {
		client.registerer = reg
	}
}

// WithSyncTimeout bounds each SyncClient call. By default, calls are unbounded apart
// from the HTTP timeout.
func WithSyncTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.syncTimeout = d
	}
}
