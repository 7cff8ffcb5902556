package channel

import (
	"io"
	"net"
	"time"
)

// Symmetric channels send and receive the same message type. The
// handshake then reduces to both endpoints using the same type.
type (
	SymmetricJoint[T any] = Joint[T, T]
	SymmetricSplit[T any] = Split[T, T]
	SymmetricConn[T any]  = Conn[T, T]
)

func NewSymmetricJoint[T any](rw io.ReadWriter, opts ...Option) (*SymmetricJoint[T], error) {
	return NewJoint[T, T](rw, opts...)
}

func NewSymmetricJointUnchecked[T any](rw io.ReadWriter, opts ...Option) *SymmetricJoint[T] {
	return NewJointUnchecked[T, T](rw, opts...)
}

func NewSymmetricSplit[T any](r io.Reader, w io.Writer, opts ...Option) (*SymmetricSplit[T], error) {
	return NewSplit[T, T](r, w, opts...)
}

func NewSymmetricSplitUnchecked[T any](r io.Reader, w io.Writer, opts ...Option) *SymmetricSplit[T] {
	return NewSplitUnchecked[T, T](r, w, opts...)
}

func NewSymmetricConn[T any](conn net.Conn, timeout time.Duration, opts ...Option) (*SymmetricConn[T], error) {
	return NewConn[T, T](conn, timeout, opts...)
}

func NewSymmetricConnUnchecked[T any](conn net.Conn, opts ...Option) *SymmetricConn[T] {
	return NewConnUnchecked[T, T](conn, opts...)
}
