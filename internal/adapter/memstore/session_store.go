// Package memstore is the in-process fallback for the session store.
// It mirrors the redis backing exactly: same sliding TTL, same bounded
// read window. Expiry is checked lazily on access and enforced by a
// background sweep, so it never degrades to "map that never expires".
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/nanaosei-dev/chatvendor/internal/domain"
)

type session struct {
	turns     []domain.Turn
	expiresAt time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	window   int
	now      func() time.Time
}

func New() *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      domain.SessionTTL,
		window:   domain.HistoryWindow,
		now:      time.Now,
	}
}

func (s *Store) Append(ctx context.Context, key string, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(key, turn)
	return nil
}

func (s *Store) AppendAndFetch(ctx context.Context, key string, turn domain.Turn) ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.appendLocked(key, turn)
	return s.windowOf(sess), nil
}

func (s *Store) Fetch(ctx context.Context, key string) ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.liveLocked(key)
	if sess == nil {
		return nil, nil
	}
	sess.expiresAt = s.now().Add(s.ttl)
	return s.windowOf(sess), nil
}

func (s *Store) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// Sweep drops expired sessions every interval until ctx is cancelled.
func (s *Store) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for key, sess := range s.sessions {
				if now.After(sess.expiresAt) {
					delete(s.sessions, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Store) appendLocked(key string, turn domain.Turn) *session {
	sess := s.liveLocked(key)
	if sess == nil {
		sess = &session{}
		s.sessions[key] = sess
	}
	sess.turns = append(sess.turns, turn)
	sess.expiresAt = s.now().Add(s.ttl)
	return sess
}

// liveLocked returns the session for key, dropping it first if its TTL
// has already lapsed.
func (s *Store) liveLocked(key string) *session {
	sess, ok := s.sessions[key]
	if !ok {
		return nil
	}
	if s.now().After(sess.expiresAt) {
		delete(s.sessions, key)
		return nil
	}
	return sess
}

func (s *Store) windowOf(sess *session) []domain.Turn {
	turns := sess.turns
	if len(turns) > s.window {
		turns = turns[len(turns)-s.window:]
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}
