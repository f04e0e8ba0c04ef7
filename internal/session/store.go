package session

import (
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session is the photo a client stored under its timestamp token.
type Session struct {
	Token     string
	Photo     []byte
	CreatedAt time.Time
}

// Config controls retention. A zero TTL keeps sessions until deleted.
type Config struct {
	TTL           time.Duration
	SweepInterval time.Duration
	// Now is overridable for tests.
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		TTL:           30 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Store is an in-memory map of token to photo. Put copies the bytes in and
// Get copies them out, so a reader never observes a half-removed session.
type Store struct {
	config   Config
	sessions map[string]*Session
	mu       sync.RWMutex
	done     chan struct{}
	stopOnce sync.Once
}

// NewStore starts the expiry sweeper when TTL and SweepInterval are both set.
func NewStore(config Config) *Store {
	if config.Now == nil {
		config.Now = time.Now
	}

	s := &Store{
		config:   config,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}

	if config.TTL > 0 && config.SweepInterval > 0 {
		go s.sweep()
	}

	return s
}

// Put stores photo under token, replacing any previous photo.
func (s *Store) Put(token string, photo []byte) {
	sess := &Session{
		Token:     token,
		Photo:     append([]byte(nil), photo...),
		CreatedAt: s.config.Now(),
	}

	s.mu.Lock()
	s.sessions[token] = sess
	s.mu.Unlock()
}

// Get returns a copy of the photo stored under token.
func (s *Store) Get(token string) ([]byte, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	if !ok || s.expired(sess) {
		s.mu.RUnlock()
		return nil, ErrNotFound
	}
	photo := append([]byte(nil), sess.Photo...)
	s.mu.RUnlock()

	return photo, nil
}

// Delete removes the session, returning ErrNotFound if there was none.
func (s *Store) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return ErrNotFound
	}
	delete(s.sessions, token)

	if s.expired(sess) {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Clear drops every session and returns how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.sessions)
	s.sessions = make(map[string]*Session)
	return n
}

// Stop ends the sweeper. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Expire removes every session older than the TTL and returns the count.
func (s *Store) Expire() int {
	if s.config.TTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

func (s *Store) expired(sess *Session) bool {
	if s.config.TTL <= 0 {
		return false
	}
	return s.config.Now().Sub(sess.CreatedAt) > s.config.TTL
}

func (s *Store) sweep() {
	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Expire()
		}
	}
}
