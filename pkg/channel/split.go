package channel

import (
	"errors"
	"io"
)

// Split is a channel over separate read and write transports, such as a
// child process's stdout and stdin. Send only touches the writer and Read
// only touches the reader, so the two may be called from different
// goroutines.
type Split[S, R any] struct {
	stream[S, R]
	r io.Reader
	w io.Writer
}

// NewSplit takes ownership of r and w and performs the type handshake
// over them. If the handshake fails, both are closed when they implement
// io.Closer.
//
// Both endpoints write their 8 byte fingerprint before reading, so w must
// accept that write before the peer reads from its side. A synchronous
// pipe such as io.Pipe deadlocks here.
func NewSplit[S, R any](r io.Reader, w io.Writer, opts ...Option) (*Split[S, R], error) {
	o := buildOptions[S, R](opts)

	if err := performHandshake(r, w, o, nil); err != nil {
		closeIfCloser(r)
		closeIfCloser(w)
		return nil, err
	}
	return newSplit[S, R](r, w, o), nil
}

// NewSplitUnchecked wraps r and w without a handshake. Nothing is read or
// written until the first Send or Read. The caller is responsible for
// both endpoints agreeing on the message types.
func NewSplitUnchecked[S, R any](r io.Reader, w io.Writer, opts ...Option) *Split[S, R] {
	return newSplit[S, R](r, w, buildOptions[S, R](opts))
}

func newSplit[S, R any](r io.Reader, w io.Writer, o *options) *Split[S, R] {
	return &Split[S, R]{
		stream: newStream[S, R](r, w, o),
		r:      r,
		w:      w,
	}
}

// Close releases the writer and the reader, each if it implements
// io.Closer.
func (c *Split[S, R]) Close() error {
	return errors.Join(closeIfCloser(c.w), closeIfCloser(c.r))
}
