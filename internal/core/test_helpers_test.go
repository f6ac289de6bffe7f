package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/store"
)

type testSession string

func (s testSession) ID() string { return string(s) }

// deliveryRecorder collects every delivery attempt and can simulate a
// failing peer.
type deliveryRecorder struct {
	mu         sync.Mutex
	deliveries map[string][]*Message
	failFor    map[string]error
}

func newDeliveryRecorder() *deliveryRecorder {
	return &deliveryRecorder{
		deliveries: make(map[string][]*Message),
		failFor:    make(map[string]error),
	}
}

func (r *deliveryRecorder) deliver(_ context.Context, sess Session, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deliveries[sess.ID()] = append(r.deliveries[sess.ID()], msg)
	if err, ok := r.failFor[sess.ID()]; ok {
		return err
	}
	return nil
}

func (r *deliveryRecorder) count(sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deliveries[sessionID])
}

func (r *deliveryRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, msgs := range r.deliveries {
		n += len(msgs)
	}
	return n
}

func (r *deliveryRecorder) last(sessionID string) *Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := r.deliveries[sessionID]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// fakeMessageStore records saves in memory and can simulate storage outages.
type fakeMessageStore struct {
	mu      sync.Mutex
	saved   []*store.Message
	saveErr error
}

func (f *fakeMessageStore) SaveMessage(_ context.Context, msg *store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}
	msg.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeMessageStore) ListMessages(_ context.Context, roomID string) ([]*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var msgs []*store.Message
	for _, m := range f.saved {
		if m.RoomID == roomID {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

func (f *fakeMessageStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func newTestCoordinator(recorder *deliveryRecorder, messages *fakeMessageStore) (*Coordinator, *Registry) {
	logger := zerolog.New(nil)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(recorder.deliver, &logger)
	return NewCoordinator(registry, messages, broadcaster, &logger), registry
}
