package websocket

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrMessageTooLarge   = errors.New("websocket: message too large")
	ErrUnexpectedMessage = errors.New("websocket: unexpected text message")
)

// Conn adapts a websocket connection to a net.Conn byte stream. Each
// Write is sent as one binary message; Read drains incoming binary
// messages in order without preserving their boundaries.
type Conn struct {
	conn               *websocket.Conn
	reader             io.Reader
	mu                 sync.Mutex
	maxSendMessageSize uint32
}

var _ net.Conn = (*Conn)(nil)

// NewConn wraps conn. Limits of 0 disable the corresponding check.
func NewConn(conn *websocket.Conn, maxSendMessageSize, maxRecvMessageSize uint32) *Conn {
	if maxRecvMessageSize > 0 {
		conn.SetReadLimit(int64(maxRecvMessageSize))
	}
	return &Conn{
		conn:               conn,
		maxSendMessageSize: maxSendMessageSize,
	}
}

func (c *Conn) Read(p []byte) (int, error) {
	for {
		if c.reader == nil {
			kind, r, err := c.conn.NextReader()
			if err != nil {
				return 0, readError(err)
			}
			if kind != websocket.BinaryMessage {
				return 0, ErrUnexpectedMessage
			}
			c.reader = r
		}

		n, err := c.reader.Read(p)
		if err == io.EOF {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err != nil {
			return n, readError(err)
		}
		return n, nil
	}
}

func readError(err error) error {
	// Check if this is a normal close error
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return io.EOF
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", os.ErrDeadlineExceeded, err)
	}
	return err
}

func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSendMessageSize > 0 && uint32(len(p)) > c.maxSendMessageSize {
		return 0, fmt.Errorf("%w: %d bytes exceeds send limit %d", ErrMessageTooLarge, len(p), c.maxSendMessageSize)
	}

	if err := c.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Send a proper close frame before closing the connection
	// Use a short deadline to avoid blocking indefinitely
	deadline := time.Now().Add(time.Second)
	err := c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		deadline,
	)

	// Close the underlying connection regardless of whether the close frame was sent
	closeErr := c.conn.Close()

	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return err
	}
	return closeErr
}

func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Conn) SetDeadline(t time.Time) error {
	return errors.Join(c.conn.SetReadDeadline(t), c.conn.SetWriteDeadline(t))
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}
