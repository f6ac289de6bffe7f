package core

import "time"

// MessageType labels a chat event and decides the membership side effect
// applied when the event is dispatched.
type MessageType string

const (
	// MessageEnter announces a session joining a room.
	MessageEnter MessageType = "ENTER"
	// MessageTalk is a regular chat message.
	MessageTalk MessageType = "TALK"
	// MessageQuit announces a session leaving a room.
	MessageQuit MessageType = "QUIT"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageEnter, MessageTalk, MessageQuit:
		return true
	}
	return false
}

// Message is the domain model for a single chat event. Timestamp is assigned
// server-side when the event is accepted, never by the client.
type Message struct {
	Type      MessageType
	RoomID    string
	Sender    string
	Body      string
	Timestamp time.Time
}
