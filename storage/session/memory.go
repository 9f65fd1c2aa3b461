// Package session implements quiz.SessionStore: values kept per browser session that expire after a while.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/quiz"
)

// Store is a quiz.SessionStore whose expired sessions can be purged.
type Store interface {
	quiz.SessionStore
	Purge(ctx context.Context) (int, error)
}

type memEntry struct {
	values    map[string]int
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Every write pushes the session expiry back by maxAge.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memEntry
	maxAge   time.Duration
	nowFunc  func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memEntry),
		maxAge:   maxAge,
		nowFunc:  time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID, key string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok || !s.nowFunc().Before(e.expiresAt) {
		return 0, false, nil
	}
	v, ok := e.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	e, ok := s.sessions[sessionID]
	if !ok || !now.Before(e.expiresAt) {
		e = &memEntry{values: make(map[string]int)}
		s.sessions[sessionID] = e
	}
	e.values[key] = value
	e.expiresAt = now.Add(s.maxAge)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(e.values, key)
	}
	if len(e.values) == 0 {
		delete(s.sessions, sessionID)
	}
	return nil
}

// Purge drops expired sessions and returns how many were dropped.
func (s *MemoryStore) Purge(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	var n int
	for id, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// RunJanitor purges expired sessions every interval until ctx is done.
func RunJanitor(ctx context.Context, store Store, interval time.Duration, logger core.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Purge(ctx)
			if err != nil {
				logger.Error(fmt.Sprintf("purging sessions: %v", err), err)
			} else if n > 0 {
				logger.Debug(fmt.Sprintf("purged %d expired session(s)", n))
			}
		}
	}
}
