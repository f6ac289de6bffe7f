package proto

// Frame is the wire representation of one chat event, sent as a single
// complete text frame. Clients omit the timestamp; the server assigns it
// before fan-out.
type Frame struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp,omitempty"` // unix seconds, server-to-client only
}

// FrameTypeError marks an error frame.
const FrameTypeError = "ERROR"

// ErrorFrame is written only to the connection whose event was rejected;
// the rest of the room never sees it.
type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
