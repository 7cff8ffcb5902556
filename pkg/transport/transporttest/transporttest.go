// Package transporttest checks that a transport carries checked
// channels.
package transporttest

import (
	"net"
	"testing"
	"time"

	"github.com/kbirk/msgstream/pkg/channel"
	"github.com/kbirk/msgstream/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Request struct {
	Seq  int    `cbor:"seq"`
	Body string `cbor:"body"`
}

type Reply struct {
	Seq int  `cbor:"seq"`
	OK  bool `cbor:"ok"`
}

// Connect dials client into the listening server and returns both ends.
func Connect(t *testing.T, server transport.ServerTransport, client transport.ClientTransport) (net.Conn, net.Conn) {
	t.Helper()

	type result struct {
		conn net.Conn
		err  error
	}
	dialed := make(chan result, 1)
	go func() {
		conn, err := client.Connect()
		dialed <- result{conn, err}
	}()

	serverConn, err := server.Accept()
	require.NoError(t, err)

	res := <-dialed
	require.NoError(t, res.err)

	t.Cleanup(func() {
		res.conn.Close()
		serverConn.Close()
	})
	return res.conn, serverConn
}

// RunChannel opens a checked Conn channel in each direction over the
// connection pair and exchanges a few messages.
func RunChannel(t *testing.T, clientConn, serverConn net.Conn) {
	t.Helper()

	type result struct {
		ch  *channel.Conn[Reply, Request]
		err error
	}
	accepted := make(chan result, 1)
	go func() {
		ch, err := channel.NewConn[Reply, Request](serverConn, 5*time.Second)
		accepted <- result{ch, err}
	}()

	client, err := channel.NewConn[Request, Reply](clientConn, 5*time.Second)
	require.NoError(t, err)

	res := <-accepted
	require.NoError(t, res.err)
	server := res.ch

	for i := 0; i < 10; i++ {
		require.NoError(t, client.Send(Request{Seq: i, Body: "request"}))

		req, err := server.Read()
		require.NoError(t, err)
		assert.Equal(t, Request{Seq: i, Body: "request"}, req)

		require.NoError(t, server.Send(Reply{Seq: req.Seq, OK: true}))

		reply, err := client.Read()
		require.NoError(t, err)
		assert.Equal(t, Reply{Seq: i, OK: true}, reply)
	}
}

// RunMismatch opens channels with disagreeing types over the connection
// pair and checks both ends reject the handshake.
func RunMismatch(t *testing.T, clientConn, serverConn net.Conn) {
	t.Helper()

	accepted := make(chan error, 1)
	go func() {
		_, err := channel.NewSymmetricConn[Reply](serverConn, 5*time.Second)
		accepted <- err
	}()

	_, err := channel.NewSymmetricConn[Request](clientConn, 5*time.Second)
	assert.ErrorIs(t, err, channel.ErrHandshakeMismatch)
	assert.ErrorIs(t, <-accepted, channel.ErrHandshakeMismatch)
}
