package dayout

import "sync"

// SessionManager holds in-flight wizard sessions and the final dashboards of
// completed closes, keyed by cart id. Get and Put exchange detached copies,
// maps included, so callers mutate freely and commit with Put.
type SessionManager struct {
	mu         sync.RWMutex
	sessions   map[string]Session
	dashboards map[string]FinalDashboard
}

// NewSessionManager creates an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions:   make(map[string]Session),
		dashboards: make(map[string]FinalDashboard),
	}
}

// Get returns the session for a cart, if one is in progress.
func (m *SessionManager) Get(cartID string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[cartID]
	return s.clone(), ok
}

// Put stores or replaces the session for a cart.
func (m *SessionManager) Put(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.CartID] = s.clone()
}

// Delete discards the session for a cart.
func (m *SessionManager) Delete(cartID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, cartID)
}

// Complete discards the session and retains the close's final dashboard.
func (m *SessionManager) Complete(cartID string, d FinalDashboard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, cartID)
	m.dashboards[cartID] = d
}

// Dashboard returns the retained dashboard of the cart's last close.
func (m *SessionManager) Dashboard(cartID string) (FinalDashboard, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.dashboards[cartID]
	return d, ok
}
