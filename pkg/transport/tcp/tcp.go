package tcp

import (
	"net"
	"sync"

	"github.com/kbirk/msgstream/pkg/log"
	"github.com/kbirk/msgstream/pkg/transport"
)

// setNoDelay sets the TCP_NODELAY option on a TCP connection
func setNoDelay(conn net.Conn, noDelay bool) error {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		return tcpConn.SetNoDelay(noDelay)
	}
	return nil
}

// ServerTransport implements transport.ServerTransport for TCP
type ServerTransport struct {
	Address  string
	NoDelay  bool
	listener net.Listener
	queue    *transport.Queue
	mu       sync.Mutex
}

type ServerTransportConfig struct {
	Address string // host:port, port 0 picks a free port
	NoDelay bool   // Disable Nagle's algorithm for better latency
	Logger  log.Logger
}

func NewServerTransport(config ServerTransportConfig) *ServerTransport {
	return &ServerTransport{
		Address: config.Address,
		NoDelay: config.NoDelay,
		queue:   transport.NewQueue(transport.DefaultQueueSize, config.Logger),
	}
}

func (t *ServerTransport) Listen() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener != nil {
		return transport.ErrAlreadyListening
	}

	l, err := net.Listen("tcp", t.Address)
	if err != nil {
		return err
	}
	t.listener = l

	go transport.AcceptLoop(l, t.queue, func(conn net.Conn) error {
		return setNoDelay(conn, t.NoDelay)
	})

	return nil
}

func (t *ServerTransport) Accept() (net.Conn, error) {
	return t.queue.Accept()
}

func (t *ServerTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *ServerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.queue.Close()

	if t.listener != nil {
		return t.listener.Close()
	}
	return nil
}

// ClientTransport implements transport.ClientTransport for TCP
type ClientTransport struct {
	Address string
	NoDelay bool
}

type ClientTransportConfig struct {
	Address string
	NoDelay bool // Disable Nagle's algorithm for better latency
}

func NewClientTransport(config ClientTransportConfig) *ClientTransport {
	return &ClientTransport{
		Address: config.Address,
		NoDelay: config.NoDelay,
	}
}

func (t *ClientTransport) Connect() (net.Conn, error) {
	conn, err := net.Dial("tcp", t.Address)
	if err != nil {
		return nil, err
	}

	// Set TCP_NODELAY option
	if err := setNoDelay(conn, t.NoDelay); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
