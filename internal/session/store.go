package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"oneclickgrocery/internal/recipe"
)

// Store keeps sessions in memory, keyed by id. Safe for concurrent access.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catalog *recipe.Catalog
	ttl     time.Duration
	opts    options
	log     logrus.FieldLogger
}

// NewStore creates an empty store. Sessions idle for longer than ttl are removed
// by Sweep; a zero ttl keeps them forever.
func NewStore(catalog *recipe.Catalog, ttl time.Duration, opts ...Option) *Store {
	o := buildOptions(opts)
	return &Store{
		sessions: make(map[string]*Session),
		catalog:  catalog,
		ttl:      ttl,
		opts:     o,
		log:      o.log,
	}
}

// Get returns the session with id.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// GetOrCreate returns the session with id, creating it when missing. A
// returned session counts as used, so a following Sweep keeps it.
func (s *Store) GetOrCreate(id string) *Session {
	if sess, ok := s.Get(id); ok {
		sess.touch()
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.touch()
		return sess
	}
	sess := newSession(id, s.catalog, s.opts)
	s.sessions[id] = sess
	s.log.WithField("session", id).Debug("session created")
	return sess
}

// Delete removes a session. It reports whether one existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle since before now-ttl and returns how many.
// Lookups are only blocked while the stale ids are deleted.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)

	s.mu.RLock()
	stale := make(map[string]*Session)
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			stale[id] = sess
		}
	}
	s.mu.RUnlock()
	if len(stale) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range stale {
		// skip sessions replaced or used since the scan
		if s.sessions[id] != sess || !sess.LastSeen().Before(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	if removed > 0 {
		s.log.WithFields(logrus.Fields{"removed": removed, "live": len(s.sessions)}).Info("swept idle sessions")
	}
	return removed
}
