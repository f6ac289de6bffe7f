package core

import "context"

// Session is an opaque handle to one connected client. The transport layer
// owns the real connection; the core only needs a stable identity so that
// membership stays idempotent per connection.
type Session interface {
	// ID uniquely identifies the connection for the lifetime of the process.
	ID() string
}

// DeliverFunc writes one message to one session. It is supplied by the
// transport layer; a non-nil error marks that single delivery as failed
// without affecting the rest of a broadcast.
type DeliverFunc func(ctx context.Context, sess Session, msg *Message) error
