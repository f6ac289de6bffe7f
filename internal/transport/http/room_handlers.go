package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/store"
)

// RoomHandlers provides HTTP handlers for the room admin surface. Creation
// and listing go through the live registry; history is a plain persisted
// read from the store.
type RoomHandlers struct {
	registry *core.Registry
	store    store.Store
	log      *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(registry *core.Registry, st store.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		registry: registry,
		store:    st,
		log:      logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// MessageResponse represents a persisted chat event in API responses.
type MessageResponse struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// CreateRoom handles room creation.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	room := h.registry.CreateRoom(req.Name)

	record := &store.Room{ID: room.ID, Name: room.Name, CreatedAt: room.CreatedAt}
	if err := h.store.SaveRoom(c.Request.Context(), record); err != nil {
		// The room is already live; it just won't survive a restart.
		h.log.Error().Err(err).Str("room_id", room.ID).Msg("failed to persist room")
	}

	h.log.Info().Str("room_id", room.ID).Str("room_name", room.Name).Msg("room created")
	c.JSON(http.StatusCreated, roomResponse(room))
}

// ListRooms handles listing all live rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms := h.registry.ListRooms()
	c.JSON(http.StatusOK, lo.Map(rooms, func(room core.Room, _ int) RoomResponse {
		return roomResponse(room)
	}))
}

// GetRoom handles fetching a single room.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	room, err := h.registry.FindRoom(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, roomResponse(room))
}

// ListMessages handles the message history read for a room.
// GET /api/rooms/:id/messages
func (h *RoomHandlers) ListMessages(c *gin.Context) {
	roomID := c.Param("id")
	if _, err := h.registry.FindRoom(roomID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	messages, err := h.store.ListMessages(c.Request.Context(), roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, lo.Map(messages, func(msg *store.Message, _ int) MessageResponse {
		return MessageResponse{
			ID:        msg.ID,
			Type:      msg.Type,
			RoomID:    msg.RoomID,
			Sender:    msg.Sender,
			Message:   msg.Body,
			Timestamp: msg.CreatedAt.Unix(),
		}
	}))
}

func roomResponse(room core.Room) RoomResponse {
	return RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		CreatedAt: room.CreatedAt.Format(time.RFC3339),
	}
}
