package websocket

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kbirk/msgstream/pkg/log"
	"github.com/kbirk/msgstream/pkg/transport"
)

const (
	DefaultPath = "/msgstream"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServerTransport implements transport.ServerTransport for WebSocket
type ServerTransport struct {
	Address            string
	Path               string
	CertFile           string
	KeyFile            string
	MaxSendMessageSize uint32
	MaxRecvMessageSize uint32
	logger             log.Logger
	listener           net.Listener
	server             *http.Server
	queue              *transport.Queue
	mu                 sync.Mutex
}

type ServerTransportConfig struct {
	Address            string
	Path               string // Defaults to DefaultPath
	CertFile           string // Optional: for TLS
	KeyFile            string // Optional: for TLS
	MaxSendMessageSize uint32 // Maximum send message size in bytes (0 for no limit)
	MaxRecvMessageSize uint32 // Maximum receive message size in bytes (0 for no limit)
	Logger             log.Logger
}

func NewServerTransport(config ServerTransportConfig) *ServerTransport {
	path := config.Path
	if path == "" {
		path = DefaultPath
	}
	return &ServerTransport{
		Address:            config.Address,
		Path:               path,
		CertFile:           config.CertFile,
		KeyFile:            config.KeyFile,
		MaxSendMessageSize: config.MaxSendMessageSize,
		MaxRecvMessageSize: config.MaxRecvMessageSize,
		logger:             config.Logger,
		queue:              transport.NewQueue(transport.DefaultQueueSize, config.Logger),
	}
}

func (t *ServerTransport) Listen() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.server != nil {
		return transport.ErrAlreadyListening
	}

	l, err := net.Listen("tcp", t.Address)
	if err != nil {
		return err
	}
	t.listener = l

	mux := http.NewServeMux()
	mux.HandleFunc(t.Path, t.handleWebSocket)

	server := &http.Server{
		Handler: mux,
	}
	t.server = server

	go func() {
		var err error
		if t.CertFile != "" && t.KeyFile != "" {
			err = server.ServeTLS(l, t.CertFile, t.KeyFile)
		} else {
			err = server.Serve(l)
		}
		if err != nil && err != http.ErrServerClosed {
			t.logError("WebSocket server stopped: " + err.Error())
		}
	}()

	return nil
}

func (t *ServerTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logWarn("WebSocket upgrade failed: " + err.Error())
		return
	}

	t.queue.Push(NewConn(conn, t.MaxSendMessageSize, t.MaxRecvMessageSize))
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

	if t.server != nil {
		return t.server.Close()
	}
	return nil
}

func (t *ServerTransport) logWarn(msg string) {
	if t.logger != nil {
		t.logger.Warn(msg)
	}
}

func (t *ServerTransport) logError(msg string) {
	if t.logger != nil {
		t.logger.Error(msg)
	}
}

// ClientTransport implements transport.ClientTransport for WebSocket
type ClientTransport struct {
	Address            string
	Path               string
	TLSConfig          *tls.Config
	MaxSendMessageSize uint32
	MaxRecvMessageSize uint32
}

type ClientTransportConfig struct {
	Address            string
	Path               string // Defaults to DefaultPath
	TLSConfig          *tls.Config
	MaxSendMessageSize uint32 // Maximum send message size in bytes (0 for no limit)
	MaxRecvMessageSize uint32 // Maximum receive message size in bytes (0 for no limit)
}

func NewClientTransport(config ClientTransportConfig) *ClientTransport {
	path := config.Path
	if path == "" {
		path = DefaultPath
	}
	return &ClientTransport{
		Address:            config.Address,
		Path:               path,
		TLSConfig:          config.TLSConfig,
		MaxSendMessageSize: config.MaxSendMessageSize,
		MaxRecvMessageSize: config.MaxRecvMessageSize,
	}
}

func (t *ClientTransport) Connect() (net.Conn, error) {
	scheme := "ws"

	// create dialer
	dialer := websocket.Dialer{}
	if t.TLSConfig != nil {
		// Configure the Dialer to use SSL/TLS
		dialer.TLSClientConfig = t.TLSConfig
		scheme = "wss"
	}

	u := url.URL{Scheme: scheme, Host: t.Address, Path: t.Path}

	// connect to the WebSocket server
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	return NewConn(conn, t.MaxSendMessageSize, t.MaxRecvMessageSize), nil
}
