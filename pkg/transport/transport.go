// Package transport establishes the byte connections that Conn channels
// run over. Every transport yields a net.Conn, so a channel built on any
// of them binds its handshake to the connection's address pair and
// honours read deadlines.
package transport

import (
	"errors"
	"net"
	"sync"

	"github.com/kbirk/msgstream/pkg/log"
)

var (
	ErrTransportClosed  = errors.New("transport: closed")
	ErrAlreadyListening = errors.New("transport: already listening")
	ErrNotListening     = errors.New("transport: not listening")
)

// ServerTransport accepts incoming connections
type ServerTransport interface {
	// Listen starts listening for incoming connections
	Listen() error

	// Accept blocks until a new connection is available
	Accept() (net.Conn, error)

	// Addr returns the listening address, or nil before Listen
	Addr() net.Addr

	// Close stops listening. Connections already accepted stay open.
	Close() error
}

// ClientTransport establishes outgoing connections
type ClientTransport interface {
	// Connect establishes a connection to the server
	Connect() (net.Conn, error)
}

const (
	DefaultQueueSize = 16
)

// Queue hands connections from a background accept loop to Accept.
type Queue struct {
	ch     chan net.Conn
	logger log.Logger
	mu     sync.Mutex
	closed bool
}

func NewQueue(size int, logger log.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		ch:     make(chan net.Conn, size),
		logger: logger,
	}
}

// Push enqueues conn. If the queue is full or closed, conn is closed and
// Push returns false.
func (q *Queue) Push(conn net.Conn) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		conn.Close()
		return false
	}

	select {
	case q.ch <- conn:
		q.logDebug("Accepted connection from " + conn.RemoteAddr().String())
		return true
	default:
		q.logWarn("Dropping connection from " + conn.RemoteAddr().String() + ": accept queue full")
		conn.Close()
		return false
	}
}

func (q *Queue) Accept() (net.Conn, error) {
	conn, ok := <-q.ch
	if !ok {
		return nil, ErrTransportClosed
	}
	return conn, nil
}

func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close wakes pending Accept calls and closes queued connections that
// were never accepted.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
	for conn := range q.ch {
		conn.Close()
	}
}

// AcceptLoop accepts from listener into queue until the listener is
// closed. prepare, if set, runs on each connection before it is queued;
// connections it fails are closed.
func AcceptLoop(listener net.Listener, queue *Queue, prepare func(net.Conn) error) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if queue.Closed() || errors.Is(err, net.ErrClosed) {
				return
			}
			queue.logWarn("Accept failed: " + err.Error())
			continue
		}

		if prepare != nil {
			if err := prepare(conn); err != nil {
				queue.logWarn("Rejecting connection from " + conn.RemoteAddr().String() + ": " + err.Error())
				conn.Close()
				continue
			}
		}

		queue.Push(conn)
	}
}

func (q *Queue) logDebug(msg string) {
	if q.logger != nil {
		q.logger.Debug(msg)
	}
}

func (q *Queue) logWarn(msg string) {
	if q.logger != nil {
		q.logger.Warn(msg)
	}
}
