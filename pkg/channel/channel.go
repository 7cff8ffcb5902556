// Package channel provides typed point-to-point message channels over
// byte transports. A checked constructor exchanges fingerprints of the
// endpoint's send and receive types with the peer before returning, so
// two processes built from incompatible message definitions fail at
// construction instead of misreading each other's bytes.
//
// Channels come in three transport shapes: Joint (one io.ReadWriter),
// Split (an io.Reader and an io.Writer) and Conn (a net.Conn, with the
// handshake bound to the connection's address pair and an optional read
// timeout). Send and Read touch disjoint state, so one goroutine may send
// while another reads whenever the transport allows concurrent reads and
// writes, which a Split channel's separate reader and writer always do.
// Concurrent calls to Send, or to Read, are not safe.
package channel

import (
	"errors"
	"fmt"
	"io"

	"github.com/kbirk/msgstream/pkg/codec"
	"github.com/kbirk/msgstream/pkg/handshake"
	"github.com/kbirk/msgstream/pkg/typeid"
)

// trackingReader remembers the last error returned by r, which tells a
// failed decode caused by the transport apart from one caused by bad data.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil {
		t.err = err
	}
	return n, err
}

type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}

// stream holds the send and receive state shared by every channel shape.
type stream[S, R any] struct {
	types     typeid.Pair
	codecName string
	reader    *trackingReader
	writer    *trackingWriter
	encoder   codec.Encoder
	decoder   codec.Decoder
}

func newStream[S, R any](r io.Reader, w io.Writer, o *options) stream[S, R] {
	reader := &trackingReader{r: r}
	writer := &trackingWriter{w: w}
	return stream[S, R]{
		types:     *o.types,
		codecName: o.codec.Name(),
		reader:    reader,
		writer:    writer,
		encoder:   o.codec.NewEncoder(writer),
		decoder:   o.codec.NewDecoder(reader),
	}
}

// Send encodes msg and writes it to the transport. There is no buffering
// beyond what the transport does.
func (s *stream[S, R]) Send(msg S) error {
	s.writer.err = nil
	if err := s.encoder.Encode(msg); err != nil {
		if s.writer.err != nil {
			return &TransportError{Op: "send", Err: s.writer.err}
		}
		return &SerializationError{Op: "send", Err: err}
	}
	return nil
}

// Read blocks until one full message has arrived and returns it decoded.
func (s *stream[S, R]) Read() (R, error) {
	var msg R
	s.reader.err = nil
	if err := s.decoder.Decode(&msg); err != nil {
		if s.reader.err != nil {
			return msg, &TransportError{Op: "read", Err: s.reader.err}
		}
		return msg, &SerializationError{Op: "read", Err: err}
	}
	return msg, nil
}

// Types returns the type descriptor the channel was constructed with.
func (s *stream[S, R]) Types() typeid.Pair {
	return s.types
}

// Codec returns the name of the channel's wire codec.
func (s *stream[S, R]) Codec() string {
	return s.codecName
}

func performHandshake(r io.Reader, w io.Writer, o *options, binding *handshake.Binding) error {
	return exchange(handshake.Perform, r, w, o, binding)
}

func performHandshakeDuplex(r io.Reader, w io.Writer, o *options, binding *handshake.Binding) error {
	return exchange(handshake.PerformDuplex, r, w, o, binding)
}

type performFunc func(io.Reader, io.Writer, typeid.Pair, *handshake.Binding) error

func exchange(perform performFunc, r io.Reader, w io.Writer, o *options, binding *handshake.Binding) error {
	o.logDebug("Performing handshake: " + o.types.String())

	err := perform(r, w, *o.types, binding)
	if err == nil {
		o.logDebug("Handshake complete")
		return nil
	}

	if errors.Is(err, handshake.ErrMismatch) {
		o.logWarn("Handshake rejected: " + err.Error())
		return fmt.Errorf("channel: %w", err)
	}

	o.logError("Handshake failed: " + err.Error())
	return &TransportError{Op: "handshake", Err: err}
}

func closeIfCloser(v any) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
