package telegram

import (
	"sync"

	"github.com/vadimtrunov/Marquee/internal/catalog"
)

// sessionManager manages per-user catalog sessions and access control.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[int64]*catalog.State
	allowed  map[int64]bool // nil or empty = allow all
}

// newSessionManager creates a session manager.
// If allowedUserIDs is empty, all users are allowed.
func newSessionManager(allowedUserIDs []int64) *sessionManager {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &sessionManager{
		sessions: make(map[int64]*catalog.State),
		allowed:  allowed,
	}
}

// isAllowed checks if a user is authorized to use the bot.
func (sm *sessionManager) isAllowed(userID int64) bool {
	if len(sm.allowed) == 0 {
		return true
	}
	return sm.allowed[userID]
}

// getOrCreate returns an existing session or creates a new one using the factory.
// If the factory returns nil, the result is not cached so the next call can retry.
func (sm *sessionManager) getOrCreate(userID int64, factory StateFactory) *catalog.State {
	sm.mu.Lock()
	if s, ok := sm.sessions[userID]; ok {
		sm.mu.Unlock()
		return s
	}
	sm.mu.Unlock()

	s := factory()
	if s == nil {
		return nil
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	// Another goroutine may have created the session.
	if existing, ok := sm.sessions[userID]; ok {
		return existing
	}
	sm.sessions[userID] = s
	return s
}

// reset drops a user's session; the next message starts with an empty catalog.
func (sm *sessionManager) reset(userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, userID)
}

// count returns the number of live sessions.
func (sm *sessionManager) count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}
