package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Room is the persisted representation of a chat room. Live membership is
// never stored; it belongs to the in-memory registry.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Message is a persisted chat event, including the ENTER/QUIT announcements.
type Message struct {
	ID        int64
	Type      string
	RoomID    string
	Sender    string
	Body      string
	CreatedAt time.Time
}

// User represents a registered or guest user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsGuest      bool
	SessionID    string // guest session tracking
	CreatedAt    time.Time
}

// RoomStore handles room persistence.
type RoomStore interface {
	// SaveRoom persists a room created by the registry.
	SaveRoom(ctx context.Context, room *Room) error

	// GetRoomByID retrieves a room by id.
	GetRoomByID(ctx context.Context, id string) (*Room, error)

	// ListRooms lists all rooms ordered by creation time ascending.
	ListRooms(ctx context.Context) ([]*Room, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and fills in its id.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListMessages retrieves all messages of a room ordered by timestamp
	// ascending.
	ListMessages(ctx context.Context, roomID string) ([]*Message, error)
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with a hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// CreateGuestUser creates a temporary guest user with a session id.
	CreateGuestUser(ctx context.Context, sessionID string) (*User, error)

	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a registered user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserBySessionID retrieves a guest user by session id.
	GetUserBySessionID(ctx context.Context, sessionID string) (*User, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	RoomStore
	MessageStore
	UserStore

	// Close closes the underlying database connection.
	Close() error
}
