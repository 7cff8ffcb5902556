package tcp

import (
	"crypto/tls"
	"io"
	"net"
	"testing"
	"time"

	"github.com/kbirk/msgstream/internal/testutil"
	"github.com/kbirk/msgstream/pkg/transport"
	"github.com/kbirk/msgstream/pkg/transport/transporttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T, server transport.ServerTransport) string {
	t.Helper()

	require.NoError(t, server.Listen())
	t.Cleanup(func() {
		server.Close()
	})
	return server.Addr().String()
}

func TestTCPChannel(t *testing.T) {

	server := NewServerTransport(ServerTransportConfig{
		Address: "127.0.0.1:0",
		NoDelay: true,
	})
	address := listen(t, server)

	client := NewClientTransport(ClientTransportConfig{
		Address: address,
		NoDelay: true,
	})

	clientConn, serverConn := transporttest.Connect(t, server, client)
	transporttest.RunChannel(t, clientConn, serverConn)
}

func TestTCPMismatch(t *testing.T) {

	server := NewServerTransport(ServerTransportConfig{Address: "127.0.0.1:0"})
	address := listen(t, server)

	client := NewClientTransport(ClientTransportConfig{Address: address})

	clientConn, serverConn := transporttest.Connect(t, server, client)
	transporttest.RunMismatch(t, clientConn, serverConn)
}

func TestTCPListenTwice(t *testing.T) {

	server := NewServerTransport(ServerTransportConfig{Address: "127.0.0.1:0"})
	assert.Nil(t, server.Addr())
	listen(t, server)

	assert.ErrorIs(t, server.Listen(), transport.ErrAlreadyListening)
}

func TestTCPAcceptAfterClose(t *testing.T) {

	server := NewServerTransport(ServerTransportConfig{Address: "127.0.0.1:0"})
	require.NoError(t, server.Listen())
	require.NoError(t, server.Close())

	_, err := server.Accept()
	assert.ErrorIs(t, err, transport.ErrTransportClosed)
}

func TestTCPConnectRefused(t *testing.T) {

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := l.Addr().String()
	l.Close()

	_, err = NewClientTransport(ClientTransportConfig{Address: address}).Connect()
	assert.Error(t, err)
}

func TestTLSChannel(t *testing.T) {

	certFile, keyFile := testutil.WriteSelfSignedCert(t)

	server := NewServerTransportTLS(ServerTransportTLSConfig{
		Address:  "127.0.0.1:0",
		NoDelay:  true,
		CertFile: certFile,
		KeyFile:  keyFile,
	})
	address := listen(t, server)

	client := NewClientTransportTLS(ClientTransportTLSConfig{
		Address: address,
		NoDelay: true,
		CAFile:  certFile,
	})

	clientConn, serverConn := transporttest.Connect(t, server, client)
	transporttest.RunChannel(t, clientConn, serverConn)
}

func TestTLSAcceptCompletesHandshake(t *testing.T) {

	certFile, keyFile := testutil.WriteSelfSignedCert(t)

	server := NewServerTransportTLS(ServerTransportTLSConfig{
		Address:  "127.0.0.1:0",
		CertFile: certFile,
		KeyFile:  keyFile,
	})
	address := listen(t, server)

	client := NewClientTransportTLS(ClientTransportTLSConfig{
		Address: address,
		CAFile:  certFile,
	})

	_, serverConn := transporttest.Connect(t, server, client)

	tlsConn, ok := serverConn.(*tls.Conn)
	require.True(t, ok)
	assert.True(t, tlsConn.ConnectionState().HandshakeComplete)
}

func TestTLSHandshakeTimeout(t *testing.T) {

	certFile, keyFile := testutil.WriteSelfSignedCert(t)

	server := NewServerTransportTLS(ServerTransportTLSConfig{
		Address:          "127.0.0.1:0",
		CertFile:         certFile,
		KeyFile:          keyFile,
		HandshakeTimeout: 100 * time.Millisecond,
	})
	address := listen(t, server)

	// a plain TCP client never sends a ClientHello
	silent, err := net.Dial("tcp", address)
	require.NoError(t, err)
	defer silent.Close()

	require.NoError(t, silent.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = silent.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)

	// the accept loop keeps serving after rejecting it
	client := NewClientTransportTLS(ClientTransportTLSConfig{
		Address: address,
		CAFile:  certFile,
	})
	clientConn, serverConn := transporttest.Connect(t, server, client)
	transporttest.RunChannel(t, clientConn, serverConn)
}

func TestTLSMissingCertificate(t *testing.T) {

	server := NewServerTransportTLS(ServerTransportTLSConfig{
		Address:  "127.0.0.1:0",
		CertFile: "does-not-exist.pem",
		KeyFile:  "does-not-exist.key",
	})
	assert.Error(t, server.Listen())
}

func TestTLSBadCAFile(t *testing.T) {

	_, err := LoadCertPool("does-not-exist.pem")
	assert.Error(t, err)
}
