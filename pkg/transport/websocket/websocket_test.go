package websocket

import (
	"crypto/tls"
	"io"
	"testing"
	"time"

	"github.com/kbirk/msgstream/internal/testutil"
	"github.com/kbirk/msgstream/pkg/channel"
	"github.com/kbirk/msgstream/pkg/transport/tcp"
	"github.com/kbirk/msgstream/pkg/transport/transporttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, config ServerTransportConfig) *ServerTransport {
	t.Helper()

	if config.Address == "" {
		config.Address = "127.0.0.1:0"
	}
	server := NewServerTransport(config)
	require.NoError(t, server.Listen())
	t.Cleanup(func() {
		server.Close()
	})
	return server
}

func TestWebSocketChannel(t *testing.T) {

	server := newServer(t, ServerTransportConfig{})
	client := NewClientTransport(ClientTransportConfig{Address: server.Addr().String()})

	clientConn, serverConn := transporttest.Connect(t, server, client)

	// the adapter exposes the underlying tcp addresses
	assert.Equal(t, clientConn.LocalAddr().String(), serverConn.RemoteAddr().String())

	transporttest.RunChannel(t, clientConn, serverConn)
}

func TestWebSocketMismatch(t *testing.T) {

	server := newServer(t, ServerTransportConfig{})
	client := NewClientTransport(ClientTransportConfig{Address: server.Addr().String()})

	clientConn, serverConn := transporttest.Connect(t, server, client)
	transporttest.RunMismatch(t, clientConn, serverConn)
}

func TestWebSocketTLSChannel(t *testing.T) {

	certFile, keyFile := testutil.WriteSelfSignedCert(t)
	pool, err := tcp.LoadCertPool(certFile)
	require.NoError(t, err)

	server := newServer(t, ServerTransportConfig{
		CertFile: certFile,
		KeyFile:  keyFile,
	})
	client := NewClientTransport(ClientTransportConfig{
		Address:   server.Addr().String(),
		TLSConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
	})

	clientConn, serverConn := transporttest.Connect(t, server, client)
	transporttest.RunChannel(t, clientConn, serverConn)
}

func TestWebSocketStreamSemantics(t *testing.T) {

	server := newServer(t, ServerTransportConfig{Path: "/stream"})
	client := NewClientTransport(ClientTransportConfig{
		Address: server.Addr().String(),
		Path:    "/stream",
	})

	clientConn, serverConn := transporttest.Connect(t, server, client)

	_, err := clientConn.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = clientConn.Write([]byte("world"))
	require.NoError(t, err)

	// message boundaries are not preserved
	buf := make([]byte, 11)
	_, err = io.ReadFull(serverConn, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(buf))

	require.NoError(t, clientConn.Close())

	_, err = serverConn.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestWebSocketSendLimit(t *testing.T) {

	server := newServer(t, ServerTransportConfig{})
	client := NewClientTransport(ClientTransportConfig{
		Address:            server.Addr().String(),
		MaxSendMessageSize: 4,
	})

	clientConn, _ := transporttest.Connect(t, server, client)

	_, err := clientConn.Write([]byte("too long"))
	assert.ErrorIs(t, err, ErrMessageTooLarge)

	n, err := clientConn.Write([]byte("ok"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWebSocketReadTimeout(t *testing.T) {

	server := newServer(t, ServerTransportConfig{})
	client := NewClientTransport(ClientTransportConfig{Address: server.Addr().String()})

	clientConn, _ := transporttest.Connect(t, server, client)

	_, err := channel.NewSymmetricConn[string](clientConn, 50*time.Millisecond)

	var transportErr *channel.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Timeout())
}
