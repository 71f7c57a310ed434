package peloton

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// sessionExpiryMargin is subtracted from the cookie lifetime so a session is never used
// in the last moments before the server expires it.
const sessionExpiryMargin = 2 * time.Second

// Session is the authenticated state of a Client.
type Session struct {
	UserID   string
	Username string
	Email    string
	Name     string

	// ExpiresAt is when the client stops reusing the session and logs in again.
	ExpiresAt time.Time

	// Cookies are the cookies set by the login response, stored verbatim.
	Cookies []*http.Cookie
}

// valid reports whether the session can still be used at now.
func (s *Session) valid(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

func (s *Session) clone() Session {
	out := *s
	out.Cookies = make([]*http.Cookie, len(s.Cookies))
	for i, ck := range s.Cookies {
		c := *ck
		out.Cookies[i] = &c
	}
	return out
}

type credential struct {
	identifier string
	secret     string
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

type loginResponse struct {
	UserID   *string `json:"user_id"`
	UserData *struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Name     *string `json:"name"`
	} `json:"user_data"`
}

// sessionManager owns the credential and the session state. The state is replaced
// wholesale by each login and never modified in place.
type sessionManager struct {
	cred      credential
	loginURL  string
	userAgent string
	timeout   time.Duration
	now       func() time.Time
	logger    zerolog.Logger
	metrics   *metrics

	mu    sync.RWMutex
	state *Session

	logins singleflight.Group
}

func (m *sessionManager) current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// ensure returns a live session, logging in over hc when there is none or it expired.
// Concurrent callers share a single login.
func (m *sessionManager) ensure(ctx context.Context, hc *http.Client) (*Session, error) {
	if s := m.current(); s.valid(m.now()) {
		m.logger.Debug().Time("expires_at", s.ExpiresAt).Msg("Reusing session")
		return s, nil
	}

	ch := m.logins.DoChan("login", func() (interface{}, error) {
		// The session may have been refreshed while this caller was queued.
		if s := m.current(); s.valid(m.now()) {
			return s, nil
		}

		// Callers sharing the login must not inherit the first caller's cancellation.
		lctx := context.WithoutCancel(ctx)
		if m.timeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, m.timeout)
			defer cancel()
		}

		s, err := m.login(lctx, hc)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.state = s
		m.mu.Unlock()
		return s, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("login aborted by context: %w", ctx.Err())
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		m.logger.Debug().Msg("Joined in-flight login")
	}

	return res.Val.(*Session), nil
}

func (m *sessionManager) login(ctx context.Context, hc *http.Client) (*Session, error) {
	payload, err := json.Marshal(loginRequest{
		UsernameOrEmail: m.cred.identifier,
		Password:        m.cred.secret,
	})
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.loginURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", m.userAgent)

	m.logger.Debug().Str("user", m.cred.identifier).Msg("Logging in")

	resp, err := hc.Do(req)
	if err != nil {
		m.metrics.login(loginOutcomeError)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("login aborted by context: %w", ctx.Err())
		}
		return nil, &AuthError{Message: "login request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		m.metrics.login(loginOutcomeError)
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: "failed to read login response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.metrics.login(loginOutcomeRejected)
		m.logger.Warn().Int("status", resp.StatusCode).Msg("Login rejected")
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: truncate(string(body))}
	}

	s, err := m.parseLogin(resp, body)
	if err != nil {
		m.metrics.login(loginOutcomeInvalid)
		return nil, err
	}

	m.metrics.login(loginOutcomeSuccess)
	m.logger.Debug().
		Str("user_id", s.UserID).
		Time("expires_at", s.ExpiresAt).
		Msg("Logged in")

	return s, nil
}

// parseLogin builds a Session from a successful login response.
func (m *sessionManager) parseLogin(resp *http.Response, body []byte) (*Session, error) {
	cookies := resp.Cookies()

	var sessionCookie *http.Cookie
	for _, ck := range cookies {
		if ck.Name == sessionCookieName {
			sessionCookie = ck
			break
		}
	}
	if sessionCookie == nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: "login response has no " + sessionCookieName + " cookie"}
	}
	if sessionCookie.MaxAge <= 0 {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: "session cookie has no positive max-age"}
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: "failed to decode login response", Err: err}
	}
	if lr.UserID == nil || lr.UserData == nil ||
		lr.UserData.Username == nil || lr.UserData.Email == nil || lr.UserData.Name == nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: "login response is missing identity fields"}
	}

	lifetime := time.Duration(sessionCookie.MaxAge)*time.Second - sessionExpiryMargin

	return &Session{
		UserID:    *lr.UserID,
		Username:  *lr.UserData.Username,
		Email:     *lr.UserData.Email,
		Name:      *lr.UserData.Name,
		ExpiresAt: m.now().Add(lifetime),
		Cookies:   cookies,
	}, nil
}

// attach makes the session cookies visible to req on hc.
func (s *Session) attach(hc *http.Client, req *http.Request) {
	if hc.Jar != nil {
		hc.Jar.SetCookies(req.URL, s.Cookies)
		return
	}
	for _, ck := range s.Cookies {
		req.AddCookie(ck)
	}
}
