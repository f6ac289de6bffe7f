package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vovakirdan/chatrelay/internal/store"
)

func TestHealthEndpoint(t *testing.T) {
	stack := startTestServer(t, nil)

	resp, err := stack.ts.Client().Get(stack.ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestCreateRoom(t *testing.T) {
	stack := startTestServer(t, nil)

	token, err := stack.auth.Register(context.Background(), "testuser", "password123")
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	// Create room with valid token.
	reqBody := bytes.NewBufferString(`{"name":"my-test-room"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	stack.serve(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var roomResp RoomResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &roomResp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if roomResp.Name != "my-test-room" {
		t.Errorf("expected room name 'my-test-room', got '%s'", roomResp.Name)
	}
	if roomResp.ID == "" {
		t.Errorf("expected generated room id")
	}

	// The room is live in the registry and persisted in the store.
	if _, err := stack.registry.FindRoom(roomResp.ID); err != nil {
		t.Errorf("room not in registry: %v", err)
	}
	if _, err := stack.store.GetRoomByID(context.Background(), roomResp.ID); err != nil {
		t.Errorf("room not persisted: %v", err)
	}

	// Create room without token.
	reqBody = bytes.NewBufferString(`{"name":"should-fail"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/rooms", reqBody)
	req.Header.Set("Content-Type", "application/json")

	resp = httptest.NewRecorder()
	stack.serve(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", resp.Code)
	}
}

func TestListRoomsInsertionOrder(t *testing.T) {
	stack := startTestServer(t, nil)

	token, err := stack.auth.Register(context.Background(), "testuser", "password123")
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	names := []string{"general", "random", "dev"}
	for _, name := range names {
		stack.registry.CreateRoom(name)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	stack.serve(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var rooms []RoomResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &rooms); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(rooms) != len(names) {
		t.Fatalf("expected %d rooms, got %d", len(names), len(rooms))
	}
	for i, name := range names {
		if rooms[i].Name != name {
			t.Errorf("expected room '%s' at index %d, got '%s'", name, i, rooms[i].Name)
		}
	}
}

func TestGetRoomNotFound(t *testing.T) {
	stack := startTestServer(t, nil)

	token, err := stack.auth.Register(context.Background(), "testuser", "password123")
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/ghost", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	stack.serve(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestListMessagesHistory(t *testing.T) {
	stack := startTestServer(t, nil)

	token, err := stack.auth.Register(context.Background(), "testuser", "password123")
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	room := stack.registry.CreateRoom("general")

	base := time.Now().UTC().Truncate(time.Second)
	records := []*store.Message{
		{Type: "ENTER", RoomID: room.ID, Sender: "alice", Body: "alice has joined.", CreatedAt: base},
		{Type: "TALK", RoomID: room.ID, Sender: "alice", Body: "hi", CreatedAt: base.Add(time.Second)},
	}
	for _, record := range records {
		if err := stack.store.SaveMessage(context.Background(), record); err != nil {
			t.Fatalf("save message: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/"+room.ID+"/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	stack.serve(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var messages []MessageResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &messages); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Type != "ENTER" || messages[1].Message != "hi" {
		t.Fatalf("unexpected history: %+v", messages)
	}
}

func (s *testStack) serve(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
