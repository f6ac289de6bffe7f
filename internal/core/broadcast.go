package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Broadcaster fans a message out to every session in a membership set.
type Broadcaster struct {
	deliver DeliverFunc
	log     *zerolog.Logger
}

// NewBroadcaster builds a broadcaster around a transport delivery function.
func NewBroadcaster(deliver DeliverFunc, logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		deliver: deliver,
		log:     logger,
	}
}

// Broadcast delivers msg to every session present in the membership at call
// time. Deliveries run in parallel and independently; a failed write is
// logged and never aborts the rest of the fan-out. One unreachable peer is
// the transport's problem, not the room's.
func (b *Broadcaster) Broadcast(ctx context.Context, membership *Membership, msg *Message) {
	sessions := membership.Sessions()

	var wg sync.WaitGroup
	for _, sess := range sessions {
		wg.Add(1)
		go func(sess Session) {
			defer wg.Done()
			if err := b.deliver(ctx, sess, msg); err != nil {
				b.log.Warn().
					Err(err).
					Str("session_id", sess.ID()).
					Str("room_id", membership.RoomID()).
					Msg("message delivery failed")
			}
		}(sess)
	}
	wg.Wait()
}
