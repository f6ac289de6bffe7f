package http

import (
	"errors"

	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/proto"
)

// messageFromFrame validates an inbound frame and maps it to the domain
// message. If identity is non-empty it is authoritative over the
// client-supplied sender field.
func messageFromFrame(frame proto.Frame, identity string) (*core.Message, *proto.ErrorFrame) {
	if frame.RoomID == "" {
		return nil, &proto.ErrorFrame{
			Type:    proto.FrameTypeError,
			Code:    core.ErrCodeBadRequest,
			Message: "roomId is required",
		}
	}

	sender := frame.Sender
	if identity != "" {
		sender = identity
	}
	if sender == "" {
		return nil, &proto.ErrorFrame{
			Type:    proto.FrameTypeError,
			Code:    core.ErrCodeBadRequest,
			Message: "sender is required",
		}
	}

	return &core.Message{
		Type:   core.MessageType(frame.Type),
		RoomID: frame.RoomID,
		Sender: sender,
		Body:   frame.Message,
	}, nil
}

func frameFromMessage(msg *core.Message) proto.Frame {
	return proto.Frame{
		Type:      string(msg.Type),
		RoomID:    msg.RoomID,
		Sender:    msg.Sender,
		Message:   msg.Body,
		Timestamp: msg.Timestamp.Unix(),
	}
}

func errorFrameFrom(err error) *proto.ErrorFrame {
	var coreErr *core.CoreError
	if errors.As(err, &coreErr) {
		return &proto.ErrorFrame{
			Type:    proto.FrameTypeError,
			Code:    coreErr.Code,
			Message: coreErr.Message,
		}
	}
	return &proto.ErrorFrame{
		Type:    proto.FrameTypeError,
		Code:    core.ErrCodeBadRequest,
		Message: err.Error(),
	}
}
