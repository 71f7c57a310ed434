package peloton

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"
)

const (
	testUsername   = "rider@example.com"
	testPassword   = "s3cret"
	testUserID     = "user-1"
	testSessionID  = "session-token"
	testMaxAge     = 3600
	testLoginReply = `{
		"user_id": "user-1",
		"user_data": {
			"username": "rider",
			"email": "rider@example.com",
			"name": "Rider One"
		}
	}`
)

// mockServer is an httptest.Server answering a subset of the Peloton API with literal
// mock JSON payloads. API routes require the session cookie set by /auth/login.
type mockServer struct {
	*httptest.Server
	t *testing.T

	mu         sync.Mutex
	hits       map[string]int
	queries    map[string]url.Values
	loginReply string
	maxAge     int
	omitCookie bool
	loginDelay time.Duration
}

// newMockServer creates a mockServer; callers close it with Close.
func newMockServer(t *testing.T) *mockServer {
	t.Helper()

	m := &mockServer{
		t:          t,
		hits:       make(map[string]int),
		queries:    make(map[string]url.Values),
		loginReply: testLoginReply,
		maxAge:     testMaxAge,
	}

	mux := http.NewServeMux()

	// 1. Login
	mux.HandleFunc("/auth/login", m.login)

	// 2. Profile
	mux.HandleFunc("/api/me", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"id": "user-1", "username": "rider"}`)
	}))

	// 3. User - detail and ID lookup
	mux.HandleFunc("/api/user/{id}", m.authed(func(w http.ResponseWriter, r *http.Request) {
		switch id := r.PathValue("id"); id {
		case "rider", testUserID:
			writeJSON(w, `{"id": "user-1", "username": "rider", "total_workouts": 6}`)
		case "ghost":
			writeJSON(w, `{"username": "ghost"}`)
		default:
			http.Error(w, `{"message": "user not found"}`, http.StatusNotFound)
		}
	}))

	// 4. User - paged sub-resources
	mux.HandleFunc("/api/user/{id}/workouts", m.authed(m.paged("data", [][]string{
		{`{"id": "w0"}`, `{"id": "w1"}`},
		{`{"id": "w2"}`, `{"id": "w3"}`},
		{`{"id": "w4"}`, `{"id": "w5"}`},
	})))
	mux.HandleFunc("/api/user/{id}/followers", m.authed(m.paged("data", [][]string{
		{`{"username": "a"}`},
		{`{"username": "b"}`},
	})))
	mux.HandleFunc("/api/user/{id}/following", m.authed(m.paged("data", [][]string{
		{`{"username": "c"}`},
	})))
	mux.HandleFunc("/api/user/{id}/achievements", m.authed(m.paged("achievements", [][]string{
		{`{"name": "Century"}`, `{"name": "Streak"}`},
	})))

	// 5. Instructors - a single page
	mux.HandleFunc("/api/instructor", m.authed(m.paged("data", [][]string{
		{`{"name": "Robin"}`, `{"name": "Cody"}`},
	})))

	// 6. Workout detail and sub-resources
	mux.HandleFunc("/api/workout/{id}", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, fmt.Sprintf(`{"id": %q, "joins": %q}`, r.PathValue("id"), r.URL.Query().Get("joins")))
	}))
	mux.HandleFunc("/api/workout/{id}/performance_graph", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, fmt.Sprintf(`{"every_n": %s, "metrics": []}`, r.URL.Query().Get("every_n")))
	}))
	mux.HandleFunc("/api/workout/{id}/summary", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, fmt.Sprintf(`{"workout_id": %q, "total_work": 123456.7}`, r.PathValue("id")))
	}))
	mux.HandleFunc("/api/workout/{id}/achievements", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"achievements": []}`)
	}))

	// 7. Rides
	mux.HandleFunc("/api/ride/metadata_mappings", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"class_types": [], "difficulty_levels": []}`)
	}))
	mux.HandleFunc("/api/ride/{id}", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, fmt.Sprintf(`{"ride": {"id": %q}}`, r.PathValue("id")))
	}))
	mux.HandleFunc("/api/v2/ride/archived", m.authed(m.paged("data", [][]string{
		{`{"id": "r0"}`},
		{`{"id": "r1"}`},
	})))

	// 8. Broken endpoints
	mux.HandleFunc("/api/page-count-only", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"page_count": 2}`)
	}))
	mux.HandleFunc("/api/items-only", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data": [{"id": 1}]}`)
	}))
	mux.HandleFunc("/api/broken-second-page", m.authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "0" {
			writeJSON(w, `{"page_count": 3, "data": [{"id": "b0"}, {"id": "b1"}]}`)
			return
		}
		writeJSON(w, `{"page_count": 3, "page": 1}`)
	}))
	mux.HandleFunc("/api/empty", m.authed(m.paged("data", [][]string{{}})))
	mux.HandleFunc("/api/zero-pages", m.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"page_count": 0, "data": []}`)
	}))
	mux.HandleFunc("/api/error", m.authed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "internal failure"}`, http.StatusInternalServerError)
	}))
	mux.HandleFunc("/api/not-json", m.authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	mux.HandleFunc("/api/echo-body", m.authed(func(w http.ResponseWriter, r *http.Request) {
		var v json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, string(v))
	}))

	// 9. Context Cancellation Delay Mock
	mux.HandleFunc("/api/delay", m.authed(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	m.Server = httptest.NewServer(mux)
	return m
}

func (m *mockServer) login(w http.ResponseWriter, r *http.Request) {
	m.record(r)

	if r.Method != http.MethodPost {
		m.t.Errorf("expected POST for login, got %s", r.Method)
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message": "bad request"}`, http.StatusBadRequest)
		return
	}
	if req.UsernameOrEmail != testUsername || req.Password != testPassword {
		http.Error(w, `{"message": "Login failed"}`, http.StatusUnauthorized)
		return
	}

	m.mu.Lock()
	reply, maxAge, omitCookie, delay := m.loginReply, m.maxAge, m.omitCookie, m.loginDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if !omitCookie {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    testSessionID,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
		})
	}
	writeJSON(w, reply)
}

// authed wraps h so that it rejects requests without the session cookie.
func (m *mockServer) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.record(r)

		if r.Method != http.MethodGet {
			m.t.Errorf("expected GET, got %s", r.Method)
		}

		ck, err := r.Cookie(sessionCookieName)
		if err != nil || ck.Value != testSessionID {
			http.Error(w, `{"message": "Not logged in"}`, http.StatusUnauthorized)
			return
		}
		h(w, r)
	}
}

// paged serves pages[page] under key, reporting len(pages) as the page count.
func (m *mockServer) paged(key string, pages [][]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 0 || page >= len(pages) {
			m.t.Errorf("unexpected page requested: %q", r.URL.Query().Get("page"))
			http.Error(w, `{"message": "bad page"}`, http.StatusBadRequest)
			return
		}

		items, _ := json.Marshal(rawItems(pages[page]))
		writeJSON(w, fmt.Sprintf(`{"page_count": %d, "page": %d, %q: %s}`, len(pages), page, key, items))
	}
}

func (m *mockServer) record(r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[r.URL.Path]++
	m.queries[r.URL.Path] = r.URL.Query()
}

// hitCount returns how many requests reached path.
func (m *mockServer) hitCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[path]
}

// lastQuery returns the query of the last request to path.
func (m *mockServer) lastQuery(path string) url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[path]
}

func (m *mockServer) logins() int {
	return m.hitCount("/auth/login")
}

func (m *mockServer) setLoginReply(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginReply = reply
}

func (m *mockServer) setMaxAge(maxAge int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxAge = maxAge
}

func (m *mockServer) setOmitCookie(omit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.omitCookie = omit
}

func (m *mockServer) setLoginDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginDelay = d
}

func rawItems(items []string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, it := range items {
		out[i] = json.RawMessage(it)
	}
	return out
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// newMockClient builds a client with the test credentials connected to the mock server.
func newMockClient(ts *mockServer, opts ...Option) *Client {
	defaultOpts := []Option{
		WithBaseURL(ts.URL),
	}
	defaultOpts = append(defaultOpts, opts...)
	return NewClient(testUsername, testPassword, defaultOpts...)
}
