package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type roomState struct {
	room       Room
	membership *Membership
}

// Registry is the process-wide map of live rooms. It is created once at
// startup and shared by every connection; all access goes through the mutex
// so a room visible to one reader never disappears under a concurrent create.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomState
	order []string
}

// NewRegistry constructs an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*roomState),
	}
}

// CreateRoom generates a fresh room id, inserts an empty membership and
// returns the new room.
func (r *Registry) CreateRoom(name string) Room {
	room := Room{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	r.insert(room)
	return room
}

// Restore inserts an already-identified room, typically replayed from
// storage at startup. Membership starts empty; a duplicate id is a no-op.
func (r *Registry) Restore(room Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[room.ID]; exists {
		return
	}
	r.rooms[room.ID] = &roomState{
		room:       room,
		membership: newMembership(room.ID),
	}
	r.order = append(r.order, room.ID)
}

func (r *Registry) insert(room Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[room.ID] = &roomState{
		room:       room,
		membership: newMembership(room.ID),
	}
	r.order = append(r.order, room.ID)
}

// FindRoom looks up a room by id.
func (r *Registry) FindRoom(id string) (Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[id]
	if !ok {
		return Room{}, roomNotFound(id)
	}
	return state.room, nil
}

// ListRooms returns a snapshot of all rooms in insertion order.
func (r *Registry) ListRooms() []Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]Room, 0, len(r.order))
	for _, id := range r.order {
		rooms = append(rooms, r.rooms[id].room)
	}
	return rooms
}

// MembershipOf returns the live membership of a room.
func (r *Registry) MembershipOf(id string) (*Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[id]
	if !ok {
		return nil, roomNotFound(id)
	}
	return state.membership, nil
}
