package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/store"
)

// Coordinator applies one inbound chat event end to end: membership side
// effect, persistence, then broadcast. It is invoked once per inbound
// message by the transport layer.
type Coordinator struct {
	registry    *Registry
	messages    store.MessageStore
	broadcaster *Broadcaster
	log         *zerolog.Logger
}

// NewCoordinator wires the registry, the storage collaborator and the
// broadcaster together.
func NewCoordinator(registry *Registry, messages store.MessageStore, broadcaster *Broadcaster, logger *zerolog.Logger) *Coordinator {
	return &Coordinator{
		registry:    registry,
		messages:    messages,
		broadcaster: broadcaster,
		log:         logger,
	}
}

// Dispatch processes one inbound event originating from sess. It returns an
// error only when the event is rejected outright (unknown room, bad type)
// and nothing was persisted or broadcast. A failed persistence write is
// logged and the broadcast still happens: a live message must reach
// connected peers even when durable logging is temporarily unavailable.
func (c *Coordinator) Dispatch(ctx context.Context, sess Session, msg *Message) error {
	if !msg.Type.Valid() {
		return badMessageType(msg.Type)
	}

	membership, err := c.registry.MembershipOf(msg.RoomID)
	if err != nil {
		return err
	}

	switch msg.Type {
	case MessageEnter:
		membership.Join(sess)
		msg.Body = msg.Sender + " has joined."
	case MessageQuit:
		membership.Leave(sess)
		msg.Body = msg.Sender + " has left."
	}

	msg.Timestamp = time.Now()

	record := &store.Message{
		Type:      string(msg.Type),
		RoomID:    msg.RoomID,
		Sender:    msg.Sender,
		Body:      msg.Body,
		CreatedAt: msg.Timestamp,
	}
	if err := c.messages.SaveMessage(ctx, record); err != nil {
		c.log.Error().
			Err(err).
			Str("room_id", msg.RoomID).
			Str("type", string(msg.Type)).
			Msg("failed to persist message")
	}

	c.broadcaster.Broadcast(ctx, membership, msg)
	return nil
}
