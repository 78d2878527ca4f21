package clipboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an untouched session clipboard is kept.
const DefaultSessionTTL = 30 * time.Minute

// SessionStore keeps one clipboard per browser session on the server, so
// copy in one request and paste in a later one work without the browser
// clipboard API.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

type sessionEntry struct {
	text    string
	touched time.Time
}

// NewSessionStore creates a store. A ttl <= 0 uses DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// NewSession registers an empty clipboard and returns its ID.
func (s *SessionStore) NewSession() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &sessionEntry{touched: s.now()}
	s.mu.Unlock()
	return id
}

// Exists reports whether id names a live session.
func (s *SessionStore) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live(id)
	return ok
}

// Clipboard returns the clipboard of session id. Reads fail with
// ErrPermissionDenied when the session is unknown or expired; writes
// recreate it.
func (s *SessionStore) Clipboard(id string) *Session {
	return &Session{store: s, id: id}
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.sessions {
		if e.touched.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("expired clipboard sessions removed", "count", n)
			}
		}
	}
}

// live must be called with mu held.
func (s *SessionStore) live(id string) (*sessionEntry, bool) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.touched) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	return e, true
}

// Session is the clipboard of one session.
type Session struct {
	store *SessionStore
	id    string
}

// ID returns the session ID.
func (c *Session) ID() string {
	return c.id
}

func (c *Session) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(c.id)
	if !ok {
		return "", ErrPermissionDenied
	}
	e.touched = s.now()
	return e.text, nil
}

func (c *Session) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.id == "" {
		return ErrPermissionDenied
	}
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[c.id] = &sessionEntry{text: text, touched: s.now()}
	return nil
}
