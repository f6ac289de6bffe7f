package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/auth"
	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/proto"
)

// deliverTimeout bounds a single frame write to one peer.
const deliverTimeout = 10 * time.Second

// wsSession wraps a websocket connection as an opaque core.Session.
type wsSession struct {
	id   string
	conn *websocket.Conn
}

func (s *wsSession) ID() string { return s.id }

// Deliver writes one message to one session as a single text frame. It is
// the DeliverFunc handed to the broadcaster; a write failure is that
// session's problem alone.
func Deliver(ctx context.Context, sess core.Session, msg *core.Message) error {
	ws, ok := sess.(*wsSession)
	if !ok {
		return errors.New("session is not a websocket session")
	}

	writeCtx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, ws.conn, frameFromMessage(msg))
}

// WSHandler upgrades HTTP connections and feeds decoded frames into the
// chat coordinator.
type WSHandler struct {
	coordinator *core.Coordinator
	registry    *core.Registry
	auth        *auth.Service
	msgPerMin   int
	log         *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(coordinator *core.Coordinator, registry *core.Registry, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		coordinator: coordinator,
		registry:    registry,
		auth:        authService,
		msgPerMin:   cfg.WSMessagesPerMinute,
		log:         logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	// Optional token binds the sender identity; without one the client
	// supplies a display name per frame.
	identity := ""
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := h.auth.ValidateToken(token)
		if err != nil {
			h.log.Debug().Err(err).Msg("ws token rejected")
			stdhttp.Error(w, "invalid token", stdhttp.StatusUnauthorized)
			return
		}
		identity = claims.Username
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sess := &wsSession{id: uuid.NewString(), conn: conn}

	// The transport, not the core, remembers which rooms this connection
	// entered so it can leave them all on disconnect.
	joined := make(map[string]struct{})
	defer h.leaveAll(sess, joined)

	h.log.Debug().Str("session_id", sess.id).Str("user", identity).Msg("ws session opened")

	err = h.readLoop(ctx, conn, sess, identity, joined)

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			status = websocket.StatusInternalError
			reason = err.Error()
			h.log.Warn().Err(err).Str("session_id", sess.id).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *wsSession, identity string, joined map[string]struct{}) error {
	limiter := newRateLimiter(h.msgPerMin)
	stop := make(chan struct{})
	defer close(stop)
	limiter.startReset(stop)

	for {
		var frame proto.Frame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return err
		}

		if !limiter.allow() {
			if err := h.writeError(ctx, conn, &proto.ErrorFrame{
				Type:    proto.FrameTypeError,
				Code:    core.ErrCodeRateLimited,
				Message: "too many messages, slow down",
			}); err != nil {
				return err
			}
			continue
		}

		msg, frameErr := messageFromFrame(frame, identity)
		if frameErr != nil {
			if err := h.writeError(ctx, conn, frameErr); err != nil {
				return err
			}
			continue
		}

		if err := h.coordinator.Dispatch(ctx, sess, msg); err != nil {
			// Rejected events are reported to the originating connection
			// only; the room never hears about them.
			h.log.Debug().
				Err(err).
				Str("session_id", sess.id).
				Str("room_id", msg.RoomID).
				Msg("event rejected")
			if writeErr := h.writeError(ctx, conn, errorFrameFrom(err)); writeErr != nil {
				return writeErr
			}
			continue
		}

		switch msg.Type {
		case core.MessageEnter:
			joined[msg.RoomID] = struct{}{}
		case core.MessageQuit:
			delete(joined, msg.RoomID)
		}
	}
}

func (h *WSHandler) writeError(ctx context.Context, conn *websocket.Conn, frame *proto.ErrorFrame) error {
	writeCtx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, frame)
}

// leaveAll removes the session from every room it entered and never quit.
func (h *WSHandler) leaveAll(sess *wsSession, joined map[string]struct{}) {
	for roomID := range joined {
		membership, err := h.registry.MembershipOf(roomID)
		if err != nil {
			continue
		}
		membership.Leave(sess)
		h.log.Debug().Str("session_id", sess.id).Str("room_id", roomID).Msg("session removed on disconnect")
	}
}
