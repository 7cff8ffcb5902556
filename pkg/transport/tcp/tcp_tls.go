package tcp

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/kbirk/msgstream/pkg/log"
	"github.com/kbirk/msgstream/pkg/transport"
)

// DefaultTLSHandshakeTimeout bounds the server side TLS handshake.
const DefaultTLSHandshakeTimeout = 10 * time.Second

// ServerTransportTLS implements transport.ServerTransport for TCP with TLS.
// Accepted connections have completed their TLS handshake.
type ServerTransportTLS struct {
	Address          string
	NoDelay          bool
	CertFile         string
	KeyFile          string
	HandshakeTimeout time.Duration
	listener         net.Listener
	queue            *transport.Queue
	mu               sync.Mutex
}

type ServerTransportTLSConfig struct {
	Address          string
	NoDelay          bool          // Disable Nagle's algorithm
	CertFile         string        // Server certificate file (PEM)
	KeyFile          string        // Server private key file (PEM)
	HandshakeTimeout time.Duration // Zero means DefaultTLSHandshakeTimeout
	Logger           log.Logger
}

func NewServerTransportTLS(config ServerTransportTLSConfig) *ServerTransportTLS {
	handshakeTimeout := config.HandshakeTimeout
	if handshakeTimeout <= 0 {
		handshakeTimeout = DefaultTLSHandshakeTimeout
	}
	return &ServerTransportTLS{
		Address:          config.Address,
		NoDelay:          config.NoDelay,
		CertFile:         config.CertFile,
		KeyFile:          config.KeyFile,
		HandshakeTimeout: handshakeTimeout,
		queue:            transport.NewQueue(transport.DefaultQueueSize, config.Logger),
	}
}

func (t *ServerTransportTLS) Listen() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener != nil {
		return transport.ErrAlreadyListening
	}

	cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	l, err := tls.Listen("tcp", t.Address, tlsConfig)
	if err != nil {
		return err
	}
	t.listener = l

	go transport.AcceptLoop(l, t.queue, t.prepare)

	return nil
}

// prepare completes the server side of the TLS handshake, which would
// otherwise wait for the first Read or Write while the dialing peer waits
// for it.
func (t *ServerTransportTLS) prepare(conn net.Conn) error {
	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return nil
	}

	// Set TCP_NODELAY option on the underlying TCP connection
	if err := setNoDelay(tlsConn.NetConn(), t.NoDelay); err != nil {
		return err
	}

	if err := tlsConn.SetDeadline(time.Now().Add(t.HandshakeTimeout)); err != nil {
		return err
	}
	if err := tlsConn.Handshake(); err != nil {
		return fmt.Errorf("tls handshake: %w", err)
	}
	return tlsConn.SetDeadline(time.Time{})
}

func (t *ServerTransportTLS) Accept() (net.Conn, error) {
	return t.queue.Accept()
}

func (t *ServerTransportTLS) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *ServerTransportTLS) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.queue.Close()

	if t.listener != nil {
		return t.listener.Close()
	}
	return nil
}

// ClientTransportTLS implements transport.ClientTransport for TCP with TLS
type ClientTransportTLS struct {
	Address            string
	NoDelay            bool
	InsecureSkipVerify bool
	CAFile             string
	ServerName         string
}

type ClientTransportTLSConfig struct {
	Address            string
	NoDelay            bool   // Disable Nagle's algorithm
	InsecureSkipVerify bool   // Skip certificate verification (for testing)
	CAFile             string // Optional CA certificate file for verification
	ServerName         string // Optional, defaults to the host of Address
}

func NewClientTransportTLS(config ClientTransportTLSConfig) *ClientTransportTLS {
	return &ClientTransportTLS{
		Address:            config.Address,
		NoDelay:            config.NoDelay,
		InsecureSkipVerify: config.InsecureSkipVerify,
		CAFile:             config.CAFile,
		ServerName:         config.ServerName,
	}
}

// LoadCertPool reads a PEM encoded CA bundle.
func LoadCertPool(caFile string) (*x509.CertPool, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return pool, nil
}

func (t *ClientTransportTLS) Connect() (net.Conn, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: t.InsecureSkipVerify,
		ServerName:         t.ServerName,
		MinVersion:         tls.VersionTLS12,
	}

	// Load CA certificate if provided
	if t.CAFile != "" {
		pool, err := LoadCertPool(t.CAFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}

	conn, err := tls.Dial("tcp", t.Address, tlsConfig)
	if err != nil {
		return nil, err
	}

	// Set TCP_NODELAY option on the underlying TCP connection
	if err := setNoDelay(conn.NetConn(), t.NoDelay); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
