package unix

import (
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/kbirk/msgstream/pkg/log"
	"github.com/kbirk/msgstream/pkg/transport"
)

// ServerTransport implements transport.ServerTransport for Unix sockets
type ServerTransport struct {
	SocketPath string
	listener   net.Listener
	queue      *transport.Queue
	mu         sync.Mutex
}

type ServerTransportConfig struct {
	SocketPath string // Path to the Unix socket file
	Logger     log.Logger
}

func NewServerTransport(config ServerTransportConfig) *ServerTransport {
	return &ServerTransport{
		SocketPath: config.SocketPath,
		queue:      transport.NewQueue(transport.DefaultQueueSize, config.Logger),
	}
}

func (t *ServerTransport) Listen() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener != nil {
		return transport.ErrAlreadyListening
	}

	// Remove existing socket file if it exists
	if err := os.RemoveAll(t.SocketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket file: %w", err)
	}

	l, err := net.Listen("unix", t.SocketPath)
	if err != nil {
		return err
	}
	t.listener = l

	go transport.AcceptLoop(l, t.queue, nil)

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

	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}

	// Clean up socket file
	os.RemoveAll(t.SocketPath)

	return err
}

// ClientTransport implements transport.ClientTransport for Unix sockets
type ClientTransport struct {
	SocketPath string
}

type ClientTransportConfig struct {
	SocketPath string // Path to the Unix socket file
}

func NewClientTransport(config ClientTransportConfig) *ClientTransport {
	return &ClientTransport{
		SocketPath: config.SocketPath,
	}
}

func (t *ClientTransport) Connect() (net.Conn, error) {
	return net.Dial("unix", t.SocketPath)
}
