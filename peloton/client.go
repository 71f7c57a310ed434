package peloton

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

// Version is the library version reported in the User-Agent header.
const Version = "0.3.0"

const (
	userAgent = "peloton-go/" + Version + " (+https://github.com/arvarik/peloton-go)"

	// defaultPageLimit suits bulk calls; the SyncClient uses interactivePageLimit.
	defaultPageLimit     = 100
	interactivePageLimit = 5

	defaultTimeout = 30 * time.Second
)

// Client is the core Peloton API client.
//
// A Client logs in lazily on its first call and again whenever the session cookie
// expires. It is safe for concurrent use.
type Client struct {
	// httpClient is the caller's persistent connection. When nil, every call runs on a
	// transient client that is discarded afterwards.
	httpClient *http.Client

	baseURL   string
	userAgent string
	pageLimit int
	timeout   time.Duration

	logger      zerolog.Logger
	logLevel    zerolog.Level
	logLevelSet bool

	registerer  prometheus.Registerer
	metrics     *metrics
	syncTimeout time.Duration

	session *sessionManager

	// Services used for communicating with the Peloton API endpoints.
	Instructor *InstructorService
	User       *UserService
	Workout    *WorkoutService
	Ride       *RideService
}

// NewClient creates a new Peloton API client for the given username (or email) and
// password. No network call is made until the first request.
func NewClient(usernameOrEmail, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		userAgent: userAgent,
		pageLimit: defaultPageLimit,
		timeout:   defaultTimeout,
		logger:    zerolog.Nop(),
		logLevel:  zerolog.WarnLevel,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.Level(c.logLevel).With().Str("component", "peloton").Logger()
	if c.registerer != nil {
		c.metrics = newMetrics(c.registerer, c.logger)
	}

	c.session = &sessionManager{
		cred:      credential{identifier: usernameOrEmail, secret: password},
		loginURL:  c.baseURL + pathLogin,
		userAgent: c.userAgent,
		timeout:   c.timeout,
		now:       time.Now,
		logger:    c.logger,
		metrics:   c.metrics,
	}

	c.Instructor = &InstructorService{client: c}
	c.User = &UserService{client: c}
	c.Workout = &WorkoutService{client: c}
	c.Ride = &RideService{client: c}

	return c
}

// Authenticate makes sure the client holds a live session, logging in if needed, and
// returns a copy of it. Calling it is optional: every accessor authenticates on demand.
func (c *Client) Authenticate(ctx context.Context) (Session, error) {
	s, err := c.ensureSession(ctx)
	if err != nil {
		return Session{}, err
	}
	return s.clone(), nil
}

// Session returns a copy of the current session and whether one has been established.
// The returned session may already be expired.
func (c *Client) Session() (Session, bool) {
	s := c.session.current()
	if s == nil {
		return Session{}, false
	}
	return s.clone(), true
}

// String redacts the credential so the client is safe to print.
func (c *Client) String() string {
	identifier := ""
	if c.session != nil {
		identifier = c.session.cred.identifier
	}
	return fmt.Sprintf("&{baseURL:%s identifier:%s password:<REDACTED> pageLimit:%d}",
		c.baseURL, identifier, c.pageLimit)
}

// GoString implements fmt.GoStringer with the same redaction as String.
func (c *Client) GoString() string {
	return "peloton.Client" + c.String()
}

// connection returns the HTTP client for a single call and a release func that must be
// called once the call is finished.
func (c *Client) connection() (*http.Client, func(), error) {
	if c.httpClient != nil {
		return c.httpClient, func() {}, nil
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	hc := &http.Client{
		Timeout:   c.timeout,
		Jar:       jar,
		Transport: transport,
	}
	return hc, hc.CloseIdleConnections, nil
}

// ensureSession runs the session check on a connection of its own.
func (c *Client) ensureSession(ctx context.Context) (*Session, error) {
	hc, release, err := c.connection()
	if err != nil {
		return nil, err
	}
	defer release()

	return c.session.ensure(ctx, hc)
}

// resolveUserID falls back to the logged-in user's ID when userID is empty.
func (c *Client) resolveUserID(ctx context.Context, userID string) (string, error) {
	if userID != "" {
		return userID, nil
	}

	s, err := c.ensureSession(ctx)
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}
