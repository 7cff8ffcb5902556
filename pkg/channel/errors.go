package channel

import (
	"errors"
	"os"

	"github.com/kbirk/msgstream/pkg/handshake"
)

var (
	// ErrHandshakeMismatch is matched by construction errors caused by the
	// peer declaring a send/receive type pair that is not the complement
	// of this endpoint's.
	ErrHandshakeMismatch = handshake.ErrMismatch
)

// TransportError reports a failure of the underlying transport, during
// the handshake or while exchanging messages. Err is the I/O error.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "channel: " + e.Op + ": transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the transport failed because a read timeout
// expired.
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, os.ErrDeadlineExceeded)
}

// SerializationError reports a message that could not be encoded or
// decoded. After a failed decode the transport may be positioned inside a
// message, so the channel should not be used again.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return "channel: " + e.Op + ": serialization error: " + e.Err.Error()
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
