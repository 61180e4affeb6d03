package proxy

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	// ErrSessionExists is returned when adding a session whose ID is taken.
	ErrSessionExists = errors.New("session already exists")
	// ErrSessionNotFound is returned when a session ID is not found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAmbiguous is returned when a prefix lookup matches several sessions.
	ErrSessionAmbiguous = errors.New("session ID is ambiguous - multiple matches")
	// ErrShuttingDown is returned once Shutdown has begun.
	ErrShuttingDown = errors.New("session manager is shutting down")
)

// SessionManager tracks the live page sessions with lock-free access.
type SessionManager struct {
	sessions     sync.Map // map[string]*Session
	activeCount  atomic.Int64
	totalStarted atomic.Int64

	shutdownOnce sync.Once
	shuttingDown atomic.Bool
}

// NewSessionManager creates an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// Add registers s.
func (sm *SessionManager) Add(s *Session) error {
	if sm.shuttingDown.Load() {
		return ErrShuttingDown
	}
	if _, loaded := sm.sessions.LoadOrStore(s.ID, s); loaded {
		return ErrSessionExists
	}
	sm.activeCount.Add(1)
	sm.totalStarted.Add(1)
	return nil
}

// Get returns the session with the given ID. An unambiguous ID prefix also
// matches.
func (sm *SessionManager) Get(id string) (*Session, error) {
	if v, ok := sm.sessions.Load(id); ok {
		return v.(*Session), nil
	}
	if id == "" {
		return nil, ErrSessionNotFound
	}

	var matches []*Session
	sm.sessions.Range(func(key, value any) bool {
		if strings.HasPrefix(key.(string), id) {
			matches = append(matches, value.(*Session))
		}
		return true
	})

	switch len(matches) {
	case 0:
		return nil, ErrSessionNotFound
	case 1:
		return matches[0], nil
	}
	return nil, ErrSessionAmbiguous
}

// Remove forgets the session without closing it. It reports whether the
// session was registered.
func (sm *SessionManager) Remove(id string) bool {
	if _, ok := sm.sessions.LoadAndDelete(id); ok {
		sm.activeCount.Add(-1)
		return true
	}
	return false
}

// Stop closes a session and removes it.
func (sm *SessionManager) Stop(id string) error {
	s, err := sm.Get(id)
	if err != nil {
		return err
	}
	err = s.Close()
	sm.Remove(s.ID)
	return err
}

// List returns the live sessions, oldest first.
func (sm *SessionManager) List() []*Session {
	var result []*Session
	sm.sessions.Range(func(_, value any) bool {
		result = append(result, value.(*Session))
		return true
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].Started.Before(result[j].Started)
	})
	return result
}

// ActiveCount returns the number of live sessions.
func (sm *SessionManager) ActiveCount() int64 {
	return sm.activeCount.Load()
}

// TotalStarted returns the number of sessions ever added.
func (sm *SessionManager) TotalStarted() int64 {
	return sm.totalStarted.Load()
}

// Shutdown closes every session and refuses new ones.
func (sm *SessionManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	sm.shutdownOnce.Do(func() {
		sm.shuttingDown.Store(true)

		var wg sync.WaitGroup
		var errMu sync.Mutex
		var errs []error

		sm.sessions.Range(func(key, _ any) bool {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if err := sm.Stop(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
					errMu.Lock()
					errs = append(errs, err)
					errMu.Unlock()
				}
			}(key.(string))
			return true
		})

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			errMu.Lock()
			errs = append(errs, ctx.Err())
			errMu.Unlock()
		}

		errMu.Lock()
		shutdownErr = errors.Join(errs...)
		errMu.Unlock()
	})

	return shutdownErr
}
