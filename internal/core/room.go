package core

import (
	"sync"
	"time"
)

// Room identifies a named chat room. Live membership is tracked separately
// so the persisted representation stays a plain (id, name) pair.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Membership is the live set of sessions joined to one room. Join and Leave
// are idempotent; Sessions returns a copy so a broadcast can iterate while
// other connections join or leave concurrently.
type Membership struct {
	roomID string

	mu       sync.RWMutex
	sessions map[string]Session
}

func newMembership(roomID string) *Membership {
	return &Membership{
		roomID:   roomID,
		sessions: make(map[string]Session),
	}
}

// RoomID returns the id of the room this membership belongs to.
func (m *Membership) RoomID() string {
	return m.roomID
}

// Join adds a session to the member set. Returns true if newly added.
func (m *Membership) Join(sess Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sess.ID()]; exists {
		return false
	}
	m.sessions[sess.ID()] = sess
	return true
}

// Leave removes a session from the member set. Removing an absent session
// is a no-op. Returns true if removed.
func (m *Membership) Leave(sess Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sess.ID()]; !exists {
		return false
	}
	delete(m.sessions, sess.ID())
	return true
}

// Sessions returns a snapshot of the current members.
func (m *Membership) Sessions() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make([]Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		snapshot = append(snapshot, sess)
	}
	return snapshot
}

// Len returns the current member count.
func (m *Membership) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
