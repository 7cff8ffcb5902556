package channel

import (
	"net"
	"time"

	"github.com/kbirk/msgstream/pkg/handshake"
)

// Conn is a channel over a connected network socket. Its handshake also
// covers the connection's local and remote addresses, so an accepted
// fingerprint only holds for this connection's endpoint pair.
type Conn[S, R any] struct {
	stream[S, R]
	conn net.Conn
}

// NewConn takes ownership of conn and performs the address bound type
// handshake over it. The fingerprint write runs concurrently with the
// read, so synchronous connections such as net.Pipe work.
//
// A positive timeout bounds the handshake's fingerprint write, and every
// read from the connection during and after the handshake. The read
// deadline is pushed forward before each underlying read, so a large
// message arriving slowly but steadily does not time out. An expired
// timeout fails with a TransportError whose Timeout method reports true.
// Sends are not bounded. If the handshake fails, conn is closed.
func NewConn[S, R any](conn net.Conn, timeout time.Duration, opts ...Option) (*Conn[S, R], error) {
	o := buildOptions[S, R](opts)

	reader := &deadlineReader{conn: conn, timeout: timeout}

	if timeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			conn.Close()
			return nil, &TransportError{Op: "handshake", Err: err}
		}
	}

	if err := performHandshakeDuplex(reader, conn, o, handshake.BindingOf(conn)); err != nil {
		conn.Close()
		return nil, err
	}

	if timeout > 0 {
		if err := conn.SetWriteDeadline(time.Time{}); err != nil {
			conn.Close()
			return nil, &TransportError{Op: "handshake", Err: err}
		}
	}

	return &Conn[S, R]{
		stream: newStream[S, R](reader, conn, o),
		conn:   conn,
	}, nil
}

// NewConnUnchecked wraps conn without a handshake and without a read
// timeout. Nothing is read or written until the first Send or Read. The
// caller is responsible for both endpoints agreeing on the message types.
func NewConnUnchecked[S, R any](conn net.Conn, opts ...Option) *Conn[S, R] {
	return &Conn[S, R]{
		stream: newStream[S, R](conn, conn, buildOptions[S, R](opts)),
		conn:   conn,
	}
}

// deadlineReader pushes the read deadline forward before every read of
// the connection.
type deadlineReader struct {
	conn    net.Conn
	timeout time.Duration
}

func (r *deadlineReader) Read(p []byte) (int, error) {
	if r.timeout > 0 {
		if err := r.conn.SetReadDeadline(time.Now().Add(r.timeout)); err != nil {
			return 0, err
		}
	}
	return r.conn.Read(p)
}

func (c *Conn[S, R]) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Conn[S, R]) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *Conn[S, R]) Close() error {
	return c.conn.Close()
}
