package testutil

import (
	"bytes"
	"io"
	"sync"
	"sync/atomic"
)

// buffer is an unbounded in-memory byte queue. Writes never block, reads
// block until data arrives or the buffer is closed.
type buffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	data   bytes.Buffer
	closed bool
}

func newBuffer() *buffer {
	b := &buffer{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, io.ErrClosedPipe
	}
	n, _ := b.data.Write(p)
	b.cond.Broadcast()
	return n, nil
}

func (b *buffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.data.Len() == 0 && !b.closed {
		b.cond.Wait()
	}
	if b.data.Len() == 0 {
		return 0, io.EOF
	}
	return b.data.Read(p)
}

func (b *buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
	return nil
}

// End is one side of a buffered duplex pipe. It counts the bytes that
// pass through it.
type End struct {
	in      *buffer
	out     *buffer
	read    atomic.Int64
	written atomic.Int64
}

// Pipe returns two connected ends. Unlike net.Pipe, writes are buffered,
// so both ends may write before either reads.
func Pipe() (*End, *End) {
	ab := newBuffer()
	ba := newBuffer()
	return &End{in: ba, out: ab}, &End{in: ab, out: ba}
}

func (e *End) Read(p []byte) (int, error) {
	n, err := e.in.Read(p)
	e.read.Add(int64(n))
	return n, err
}

func (e *End) Write(p []byte) (int, error) {
	n, err := e.out.Write(p)
	e.written.Add(int64(n))
	return n, err
}

// Close closes both directions. The peer reads io.EOF once it has
// drained what was written.
func (e *End) Close() error {
	e.out.Close()
	e.in.Close()
	return nil
}

func (e *End) BytesRead() int64 {
	return e.read.Load()
}

func (e *End) BytesWritten() int64 {
	return e.written.Load()
}

// Reader returns the read half of the end, for split transports.
func (e *End) Reader() io.ReadCloser {
	return &half{r: e.in, end: e}
}

// Writer returns the write half of the end, for split transports.
func (e *End) Writer() io.WriteCloser {
	return &half{w: e.out, end: e}
}

type half struct {
	r   *buffer
	w   *buffer
	end *End
}

func (h *half) Read(p []byte) (int, error) {
	n, err := h.r.Read(p)
	h.end.read.Add(int64(n))
	return n, err
}

func (h *half) Write(p []byte) (int, error) {
	n, err := h.w.Write(p)
	h.end.written.Add(int64(n))
	return n, err
}

func (h *half) Close() error {
	if h.r != nil {
		return h.r.Close()
	}
	return h.w.Close()
}

// ErrWriter fails every write with Err.
type ErrWriter struct {
	Err error
}

func (w ErrWriter) Write([]byte) (int, error) {
	return 0, w.Err
}

// ChunkWriter accepts at most Size bytes per Write call.
type ChunkWriter struct {
	W     io.Writer
	Size  int
	Calls int
}

func (w *ChunkWriter) Write(p []byte) (int, error) {
	w.Calls++
	if len(p) > w.Size {
		p = p[:w.Size]
	}
	return w.W.Write(p)
}
