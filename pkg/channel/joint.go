package channel

import (
	"io"
)

// Joint is a channel over a single transport that is both read and
// written, such as a pipe or a serial port.
type Joint[S, R any] struct {
	stream[S, R]
	rw io.ReadWriter
}

// NewJoint takes ownership of rw and performs the type handshake over it.
// If the handshake fails, rw is closed when it implements io.Closer.
//
// Both endpoints write their 8 byte fingerprint before reading, so rw must
// accept that write before the peer reads. Synchronous pipes such as
// net.Pipe deadlock here; use NewConn for those.
func NewJoint[S, R any](rw io.ReadWriter, opts ...Option) (*Joint[S, R], error) {
	o := buildOptions[S, R](opts)

	if err := performHandshake(rw, rw, o, nil); err != nil {
		closeIfCloser(rw)
		return nil, err
	}
	return newJoint[S, R](rw, o), nil
}

// NewJointUnchecked wraps rw without a handshake. Nothing is read or
// written until the first Send or Read. The caller is responsible for
// both endpoints agreeing on the message types: a disagreement shows up
// as a serialization error at best and as silently misread messages at
// worst.
func NewJointUnchecked[S, R any](rw io.ReadWriter, opts ...Option) *Joint[S, R] {
	return newJoint[S, R](rw, buildOptions[S, R](opts))
}

func newJoint[S, R any](rw io.ReadWriter, o *options) *Joint[S, R] {
	return &Joint[S, R]{
		stream: newStream[S, R](rw, rw, o),
		rw:     rw,
	}
}

// Close releases the transport if it implements io.Closer.
func (c *Joint[S, R]) Close() error {
	return closeIfCloser(c.rw)
}
