package web

// session.go keeps one dashboard session per browser.
//
// A session owns an API client (so backend cookies and the CSRF token are
// per user), the table state of every entity page the user has visited, and
// one import orchestrator per entity. Sessions expire after an idle TTL.

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/logging"
	"github.com/JonMunkholm/coverdesk/internal/metrics"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

// ClientFactory builds the API client for a new session.
type ClientFactory func(sess apiclient.Session, nav apiclient.Navigator) (*apiclient.Client, error)

// Session is one signed-in (or signing-in) browser.
type Session struct {
	ID     string
	client *apiclient.Client

	mu       sync.Mutex
	user     string
	lastSeen time.Time
	tables   map[string]table.State
	imports  map[string]*importer.Orchestrator
}

// Client returns the session's backend client.
func (s *Session) Client() *apiclient.Client {
	return s.client
}

// User returns the signed-in username, or "".
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// SignedIn reports whether the backend accepted a login for this session.
func (s *Session) SignedIn() bool {
	return s.User() != ""
}

func (s *Session) setUser(name string) {
	s.mu.Lock()
	s.user = name
	s.mu.Unlock()
}

// Clear forgets the user. The API client calls it when the backend
// rejects the session.
func (s *Session) Clear() {
	s.setUser("")
}

// TableState returns a copy of the entity's table state, creating it with
// init on first use.
func (s *Session) TableState(key string, init func() table.State) table.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tables[key]
	if !ok {
		st = init()
		s.tables[key] = st
	}
	return st
}

// SaveTableState stores st as the entity's table state.
func (s *Session) SaveTableState(key string, st table.State) {
	s.mu.Lock()
	s.tables[key] = st
	s.mu.Unlock()
}

// Import returns the entity's orchestrator, creating it with create on
// first use.
func (s *Session) Import(key string, create func() (*importer.Orchestrator, error)) (*importer.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.imports[key]; ok {
		return o, nil
	}
	o, err := create()
	if err != nil {
		return nil, err
	}
	s.imports[key] = o
	return o, nil
}

// close releases everything the session holds.
func (s *Session) close() {
	s.mu.Lock()
	imports := s.imports
	s.imports = map[string]*importer.Orchestrator{}
	s.tables = map[string]table.State{}
	s.user = ""
	s.mu.Unlock()

	for _, o := range imports {
		o.Reset()
	}
	s.client.Reset()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionStore holds sessions in memory.
type SessionStore struct {
	ttl       time.Duration
	newClient ClientFactory
	nav       apiclient.Navigator
	metrics   *metrics.Metrics
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates a store whose sessions expire after ttl idle.
func NewSessionStore(ttl time.Duration, newClient ClientFactory, m *metrics.Metrics) *SessionStore {
	return &SessionStore{
		ttl:       ttl,
		newClient: newClient,
		nav:       requestNavigator{},
		metrics:   m,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the live session with id. An expired session is removed.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return nil, false
	}

	now := st.now()
	if st.ttl > 0 && sess.idleSince(now) > st.ttl {
		st.Delete(id)
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

// Create starts a new session with its own API client.
func (st *SessionStore) Create() (*Session, error) {
	sess := &Session{
		ID:       uuid.NewString(),
		lastSeen: st.now(),
		tables:   make(map[string]table.State),
		imports:  make(map[string]*importer.Orchestrator),
	}
	client, err := st.newClient(sess, st.nav)
	if err != nil {
		return nil, err
	}
	sess.client = client

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	n := len(st.sessions)
	st.mu.Unlock()

	st.metrics.SetSessions(n)
	return sess, nil
}

// Delete ends a session.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	if ok {
		sess.close()
		st.metrics.SetSessions(n)
	}
}

// Len returns the number of sessions held.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the TTL.
func (st *SessionStore) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	now := st.now()

	st.mu.Lock()
	var expired []string
	for id, sess := range st.sessions {
		if sess.idleSince(now) > st.ttl {
			expired = append(expired, id)
		}
	}
	st.mu.Unlock()

	for _, id := range expired {
		st.Delete(id)
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (st *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				slog.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

type sessionKey struct{}

// sessionFrom returns the request's session, if the session middleware
// attached one.
func sessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// navigation is the per-request slot the API client writes a redirect into.
type navigation struct {
	path   string
	target string
}

type navKey struct{}

func navigationFrom(ctx context.Context) *navigation {
	n, _ := ctx.Value(navKey{}).(*navigation)
	return n
}

// redirectPending reports whether the API client asked to leave the page.
func redirectPending(ctx context.Context) bool {
	n := navigationFrom(ctx)
	return n != nil && n.target != ""
}

// requestNavigator implements apiclient.Navigator against the request that
// is making the backend call. Navigate only records the target; the error
// responder turns it into a redirect.
type requestNavigator struct{}

func (requestNavigator) CurrentPath(ctx context.Context) string {
	if n := navigationFrom(ctx); n != nil {
		return n.path
	}
	return ""
}

func (requestNavigator) Navigate(ctx context.Context, path string) {
	if n := navigationFrom(ctx); n != nil {
		n.target = path
	}
}

// sessions attaches the cookie's session to the request, creating one when
// the cookie is missing or stale.
func (s *Server) sessions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *Session
		if c, err := r.Cookie(s.cfg.Security.SessionCookie); err == nil {
			sess, _ = s.store.Get(c.Value)
		}
		if sess == nil {
			created, err := s.store.Create()
			if err != nil {
				s.respondError(w, r, err, http.StatusInternalServerError)
				return
			}
			sess = created
			s.setSessionCookie(w, sess.ID, int(s.cfg.Security.SessionTTL.Seconds()))
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		ctx = context.WithValue(ctx, navKey{}, &navigation{path: r.URL.Path})
		ctx = logging.WithSession(ctx, sess.ID)
		if user := sess.User(); user != "" {
			ctx = core.ContextWithActor(ctx, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Security.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cfg.Security.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func signedIn(r *http.Request) bool {
	sess := sessionFrom(r.Context())
	return sess != nil && sess.SignedIn()
}
