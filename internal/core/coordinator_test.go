package core

import (
	"context"
	"errors"
	"testing"
)

func TestDispatchEnterJoinsAndRewritesBody(t *testing.T) {
	recorder := newDeliveryRecorder()
	messages := &fakeMessageStore{}
	coordinator, registry := newTestCoordinator(recorder, messages)

	room := registry.CreateRoom("general")
	alice := testSession("conn-a")

	msg := &Message{Type: MessageEnter, RoomID: room.ID, Sender: "alice", Body: "ignored client body"}
	if err := coordinator.Dispatch(context.Background(), alice, msg); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if msg.Body != "alice has joined." {
		t.Fatalf("unexpected body: %q", msg.Body)
	}
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp must be assigned server-side")
	}

	membership, err := registry.MembershipOf(room.ID)
	if err != nil {
		t.Fatalf("membership: %v", err)
	}
	if membership.Len() != 1 {
		t.Fatalf("expected alice in membership, got %d members", membership.Len())
	}

	if messages.savedCount() != 1 {
		t.Fatalf("expected 1 persisted record, got %d", messages.savedCount())
	}
	saved := messages.saved[0]
	if saved.Type != string(MessageEnter) || saved.Sender != "alice" || saved.Body != "alice has joined." {
		t.Fatalf("unexpected persisted record: %+v", saved)
	}

	// The joining session is a member at broadcast time and receives its own
	// announcement.
	if recorder.count("conn-a") != 1 {
		t.Fatalf("expected announcement delivered to joiner, got %d", recorder.count("conn-a"))
	}
}

func TestDispatchTalkKeepsBodyUnchanged(t *testing.T) {
	recorder := newDeliveryRecorder()
	messages := &fakeMessageStore{}
	coordinator, registry := newTestCoordinator(recorder, messages)

	room := registry.CreateRoom("general")
	alice := testSession("conn-a")
	bob := testSession("conn-b")

	mustDispatch(t, coordinator, alice, &Message{Type: MessageEnter, RoomID: room.ID, Sender: "alice"})
	mustDispatch(t, coordinator, bob, &Message{Type: MessageEnter, RoomID: room.ID, Sender: "bob"})

	talk := &Message{Type: MessageTalk, RoomID: room.ID, Sender: "alice", Body: "hi"}
	mustDispatch(t, coordinator, alice, talk)

	if talk.Body != "hi" {
		t.Fatalf("talk body must not be rewritten, got %q", talk.Body)
	}

	got := recorder.last("conn-b")
	if got == nil || got.Body != "hi" || got.Sender != "alice" {
		t.Fatalf("unexpected delivery to bob: %+v", got)
	}
}

func TestDispatchQuitLeavesAndRewritesBody(t *testing.T) {
	recorder := newDeliveryRecorder()
	messages := &fakeMessageStore{}
	coordinator, registry := newTestCoordinator(recorder, messages)

	room := registry.CreateRoom("general")
	alice := testSession("conn-a")
	bob := testSession("conn-b")

	mustDispatch(t, coordinator, alice, &Message{Type: MessageEnter, RoomID: room.ID, Sender: "alice"})
	mustDispatch(t, coordinator, bob, &Message{Type: MessageEnter, RoomID: room.ID, Sender: "bob"})

	quit := &Message{Type: MessageQuit, RoomID: room.ID, Sender: "bob"}
	mustDispatch(t, coordinator, bob, quit)

	if quit.Body != "bob has left." {
		t.Fatalf("unexpected quit body: %q", quit.Body)
	}

	membership, _ := registry.MembershipOf(room.ID)
	if membership.Len() != 1 {
		t.Fatalf("expected only alice left, got %d members", membership.Len())
	}

	// The quit announcement still reaches alice.
	got := recorder.last("conn-a")
	if got == nil || got.Type != MessageQuit || got.Body != "bob has left." {
		t.Fatalf("unexpected delivery to alice: %+v", got)
	}
}

func TestDispatchUnknownRoomPersistsAndBroadcastsNothing(t *testing.T) {
	recorder := newDeliveryRecorder()
	messages := &fakeMessageStore{}
	coordinator, _ := newTestCoordinator(recorder, messages)

	msg := &Message{Type: MessageTalk, RoomID: "ghost", Sender: "alice", Body: "hi"}
	err := coordinator.Dispatch(context.Background(), testSession("conn-a"), msg)
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	if messages.savedCount() != 0 {
		t.Fatalf("expected zero persistence calls, got %d", messages.savedCount())
	}
	if recorder.total() != 0 {
		t.Fatalf("expected zero deliveries, got %d", recorder.total())
	}
}

func TestDispatchBadTypeRejected(t *testing.T) {
	recorder := newDeliveryRecorder()
	messages := &fakeMessageStore{}
	coordinator, registry := newTestCoordinator(recorder, messages)

	room := registry.CreateRoom("general")

	err := coordinator.Dispatch(context.Background(), testSession("conn-a"), &Message{Type: "SHOUT", RoomID: room.ID})
	if !errors.Is(err, ErrBadMessageType) {
		t.Fatalf("expected ErrBadMessageType, got %v", err)
	}
	if messages.savedCount() != 0 || recorder.total() != 0 {
		t.Fatalf("rejected event must have no side effects")
	}
}

func TestDispatchPersistenceFailureStillBroadcasts(t *testing.T) {
	recorder := newDeliveryRecorder()
	messages := &fakeMessageStore{saveErr: errors.New("disk on fire")}
	coordinator, registry := newTestCoordinator(recorder, messages)

	room := registry.CreateRoom("general")
	alice := testSession("conn-a")

	msg := &Message{Type: MessageEnter, RoomID: room.ID, Sender: "alice"}
	if err := coordinator.Dispatch(context.Background(), alice, msg); err != nil {
		t.Fatalf("persistence failure must not fail dispatch: %v", err)
	}

	if recorder.count("conn-a") != 1 {
		t.Fatalf("expected broadcast despite storage outage, got %d deliveries", recorder.count("conn-a"))
	}
}

func TestDispatchMembershipMatchesEnterQuitHistory(t *testing.T) {
	recorder := newDeliveryRecorder()
	messages := &fakeMessageStore{}
	coordinator, registry := newTestCoordinator(recorder, messages)

	general := registry.CreateRoom("general")
	random := registry.CreateRoom("random")

	sessions := []testSession{"s-0", "s-1", "s-2", "s-3"}
	for _, sess := range sessions {
		mustDispatch(t, coordinator, sess, &Message{Type: MessageEnter, RoomID: general.ID, Sender: sess.ID()})
	}
	// Interleave activity in a second room.
	mustDispatch(t, coordinator, sessions[0], &Message{Type: MessageEnter, RoomID: random.ID, Sender: "s-0"})
	mustDispatch(t, coordinator, sessions[1], &Message{Type: MessageQuit, RoomID: general.ID, Sender: "s-1"})
	mustDispatch(t, coordinator, sessions[3], &Message{Type: MessageQuit, RoomID: general.ID, Sender: "s-3"})
	mustDispatch(t, coordinator, sessions[3], &Message{Type: MessageQuit, RoomID: general.ID, Sender: "s-3"})

	membership, _ := registry.MembershipOf(general.ID)
	if membership.Len() != 2 {
		t.Fatalf("expected members with ENTER and no later QUIT, got %d", membership.Len())
	}
	ids := make(map[string]bool)
	for _, sess := range membership.Sessions() {
		ids[sess.ID()] = true
	}
	if !ids["s-0"] || !ids["s-2"] {
		t.Fatalf("unexpected membership: %v", ids)
	}

	other, _ := registry.MembershipOf(random.ID)
	if other.Len() != 1 {
		t.Fatalf("expected s-0 alone in random, got %d", other.Len())
	}
}

// Full end-to-end scenario: two users join, talk and one quits.
func TestDispatchScenarioJoinTalkQuit(t *testing.T) {
	recorder := newDeliveryRecorder()
	messages := &fakeMessageStore{}
	coordinator, registry := newTestCoordinator(recorder, messages)

	room := registry.CreateRoom("general")
	connA := testSession("conn-a")
	connB := testSession("conn-b")

	mustDispatch(t, coordinator, connA, &Message{Type: MessageEnter, RoomID: room.ID, Sender: "alice"})
	if messages.saved[0].Body != "alice has joined." {
		t.Fatalf("unexpected persisted enter body: %q", messages.saved[0].Body)
	}

	mustDispatch(t, coordinator, connB, &Message{Type: MessageEnter, RoomID: room.ID, Sender: "bob"})
	membership, _ := registry.MembershipOf(room.ID)
	if membership.Len() != 2 {
		t.Fatalf("expected {A,B}, got %d members", membership.Len())
	}
	if recorder.count("conn-a") != 2 { // alice's own enter + bob's enter
		t.Fatalf("expected bob's announcement to reach alice, got %d", recorder.count("conn-a"))
	}

	mustDispatch(t, coordinator, connA, &Message{Type: MessageTalk, RoomID: room.ID, Sender: "alice", Body: "hi"})
	if got := recorder.last("conn-b"); got == nil || got.Body != "hi" {
		t.Fatalf("talk did not reach bob unchanged: %+v", got)
	}

	mustDispatch(t, coordinator, connB, &Message{Type: MessageQuit, RoomID: room.ID, Sender: "bob"})
	if membership.Len() != 1 {
		t.Fatalf("expected {A} after quit, got %d members", membership.Len())
	}
	last := messages.saved[len(messages.saved)-1]
	if last.Type != string(MessageQuit) || last.Body != "bob has left." {
		t.Fatalf("unexpected persisted quit record: %+v", last)
	}
}

func mustDispatch(t *testing.T, c *Coordinator, sess Session, msg *Message) {
	t.Helper()
	if err := c.Dispatch(context.Background(), sess, msg); err != nil {
		t.Fatalf("dispatch %s: %v", msg.Type, err)
	}
}
