// Package session keeps the latest scored upload per client session in memory.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KaramelBytes/caproi-cli/internal/pipeline"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or deleted session ids.
var ErrNotFound = errors.New("session not found")

// Session is one client's latest upload.
type Session struct {
	ID        string           `json:"id"`
	Result    *pipeline.Result `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session), now: time.Now}
}

// Create registers a new session holding res and returns a copy of it.
func (s *Store) Create(res *pipeline.Result) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := &Session{ID: uuid.NewString(), Result: res, CreatedAt: now, UpdatedAt: now}
	s.sessions[sess.ID] = sess
	return *sess
}

// Put replaces the cached result of an existing session.
func (s *Store) Put(id string, res *pipeline.Result) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("put %s: %w", id, ErrNotFound)
	}
	sess.Result = res
	sess.UpdatedAt = s.now()
	return *sess, nil
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return *sess, nil
}

// Delete removes a session; unknown ids yield ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// List returns all sessions, oldest first.
func (s *Store) List() []Session {
	s.mu.RLock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
