package transport

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {

	queue := NewQueue(1, nil)

	a, b := net.Pipe()
	defer b.Close()

	assert.True(t, queue.Push(a))

	c, d := net.Pipe()
	defer d.Close()

	// full: the extra connection is closed
	assert.False(t, queue.Push(c))
	_, err := c.Write([]byte{1})
	assert.Error(t, err)

	conn, err := queue.Accept()
	require.NoError(t, err)
	assert.Equal(t, a, conn)

	queue.Close()
	queue.Close()

	_, err = queue.Accept()
	assert.ErrorIs(t, err, ErrTransportClosed)

	e, f := net.Pipe()
	defer f.Close()
	assert.False(t, queue.Push(e))
}

func TestQueueCloseDrains(t *testing.T) {

	queue := NewQueue(2, nil)

	a, b := net.Pipe()
	defer b.Close()
	require.True(t, queue.Push(a))

	queue.Close()

	_, err := a.Write([]byte{1})
	assert.Error(t, err)
}

func TestAcceptLoop(t *testing.T) {

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	queue := NewQueue(0, nil)
	done := make(chan struct{})
	go func() {
		AcceptLoop(listener, queue, func(conn net.Conn) error {
			return nil
		})
		close(done)
	}()

	client, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	server, err := queue.Accept()
	require.NoError(t, err)
	defer server.Close()

	assert.Equal(t, client.LocalAddr().String(), server.RemoteAddr().String())

	queue.Close()
	listener.Close()
	<-done
}
