package core

import (
	"errors"
	"fmt"
)

// Error codes surfaced to clients over the wire.
const (
	ErrCodeRoomNotFound = "room_not_found"
	ErrCodeBadRequest   = "bad_request"
	ErrCodeRateLimited  = "rate_limited"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrBadMessageType = errors.New("unknown message type")
)

// CoreError carries a wire-visible code alongside a human-readable message.
type CoreError struct {
	Code    string
	Message string
	err     error
}

func (e *CoreError) Error() string {
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.err
}

func roomNotFound(id string) *CoreError {
	return &CoreError{
		Code:    ErrCodeRoomNotFound,
		Message: fmt.Sprintf("room %s not found", id),
		err:     ErrRoomNotFound,
	}
}

func badMessageType(t MessageType) *CoreError {
	return &CoreError{
		Code:    ErrCodeBadRequest,
		Message: fmt.Sprintf("unknown message type %q", string(t)),
		err:     ErrBadMessageType,
	}
}
