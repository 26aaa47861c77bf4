package telegram

import (
	"context"
	"sync"
	"time"
)

// SessionKind tells which numbered listing a session refers to.
type SessionKind string

const (
	SessionRecipes SessionKind = "recipes"
	SessionItems   SessionKind = "items"
)

// Session remembers the ids behind the numbers of the last listing sent to a
// chat, so "/done 2" refers to what the user saw.
type Session struct {
	ChatID    int64
	Kind      SessionKind
	IDs       []string
	ExpiresAt time.Time
}

// Resolve maps a 1-based position to an id.
func (s *Session) Resolve(n int) (string, bool) {
	if s == nil || n < 1 || n > len(s.IDs) {
		return "", false
	}
	return s.IDs[n-1], true
}

// Sessions keeps one session per chat and listing kind.
type Sessions interface {
	Save(ctx context.Context, chatID int64, kind SessionKind, ids []string) error
	GetActive(ctx context.Context, chatID int64, kind SessionKind) (*Session, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

var (
	_ Sessions = (*SessionStore)(nil)
	_ Sessions = (*SessionRepository)(nil)
)

// SessionStore keeps sessions in memory. It is used when no database is
// available; sessions do not survive a restart.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[sessionKey]Session
}

type sessionKey struct {
	chatID int64
	kind   SessionKind
}

// NewSessionStore creates a store whose sessions expire after ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[sessionKey]Session),
	}
}

// Save replaces the session of chatID for kind and drops expired ones.
func (s *SessionStore) Save(_ context.Context, chatID int64, kind SessionKind, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeExpired()
	s.sessions[sessionKey{chatID, kind}] = Session{
		ChatID:    chatID,
		Kind:      kind,
		IDs:       append([]string(nil), ids...),
		ExpiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// GetActive returns the unexpired session of chatID for kind, or nil.
func (s *SessionStore) GetActive(_ context.Context, chatID int64, kind SessionKind) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionKey{chatID, kind}]
	if !ok || !s.now().Before(sess.ExpiresAt) {
		return nil, nil
	}
	return &sess, nil
}

// CleanupExpired removes all expired sessions.
func (s *SessionStore) CleanupExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeExpired(), nil
}

func (s *SessionStore) removeExpired() int64 {
	now := s.now()
	var removed int64
	for k, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, k)
			removed++
		}
	}
	return removed
}
