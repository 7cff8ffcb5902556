package handshake

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/kbirk/msgstream/internal/util"
	"github.com/kbirk/msgstream/pkg/typeid"
)

const (
	FingerprintSize = 8
)

var (
	// ErrMismatch is matched by every *MismatchError.
	ErrMismatch = errors.New("handshake: peer using a different message type")
)

// MismatchError is returned when the peer's fingerprint is not the one
// this endpoint expects. The exchange itself succeeded.
type MismatchError struct {
	Expected uint64
	Received uint64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("handshake: peer using a different message type (expected fingerprint %016x, received %016x); "+
		"if the types differ by name only, construct the channel unchecked", e.Expected, e.Received)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// Binding ties a handshake to one connection's endpoint pair.
type Binding struct {
	Local  net.Addr
	Remote net.Addr
}

// BindingOf returns the binding of conn.
func BindingOf(conn net.Conn) *Binding {
	return &Binding{
		Local:  conn.LocalAddr(),
		Remote: conn.RemoteAddr(),
	}
}

// Reverse returns the binding as seen from the peer. A nil binding
// reverses to nil.
func (b *Binding) Reverse() *Binding {
	if b == nil {
		return nil
	}
	return &Binding{
		Local:  b.Remote,
		Remote: b.Local,
	}
}

// addrBytes treats a missing address and an unnamed one alike, since an
// unnamed Unix socket may be reported either way.
func addrBytes(addr net.Addr) []byte {
	if addr == nil {
		return nil
	}
	s := addr.String()
	if s == "<nil>" {
		return nil
	}
	return []byte(s)
}

// Fingerprint hashes the ordered type pair, followed by the ordered
// address pair when binding is non-nil.
func Fingerprint(types typeid.Pair, binding *Binding) uint64 {
	if binding == nil {
		return util.HashPartsToUInt64(types.Send[:], types.Recv[:])
	}
	return util.HashPartsToUInt64(
		types.Send[:],
		types.Recv[:],
		addrBytes(binding.Local),
		addrBytes(binding.Remote))
}

// Expected returns the fingerprint a complementary peer sends.
func Expected(types typeid.Pair, binding *Binding) uint64 {
	return Fingerprint(types.Reverse(), binding.Reverse())
}

// Perform writes this endpoint's fingerprint to w, then reads the peer's
// from r and compares it with the expected one. It returns a
// *MismatchError when the peer's types are not the complement of types,
// and a wrapped I/O error when the exchange itself fails.
//
// Both ends write before they read, so w must accept the 8 bytes before
// the peer starts reading. Unbuffered transports need PerformDuplex.
func Perform(r io.Reader, w io.Writer, types typeid.Pair, binding *Binding) error {
	if err := writeFingerprint(w, types, binding); err != nil {
		return err
	}
	received, err := readFingerprint(r)
	if err != nil {
		return err
	}
	return check(received, types, binding)
}

// PerformDuplex is Perform with the write running concurrently with the
// read, for transports such as net.Pipe where a write blocks until the
// peer reads. The bytes exchanged are the same. r and w must be safe for
// concurrent use. On error it returns without waiting for the other
// direction, which stays blocked until the transport is closed or its
// deadline expires.
func PerformDuplex(r io.Reader, w io.Writer, types typeid.Pair, binding *Binding) error {
	written := make(chan error, 1)
	go func() {
		written <- writeFingerprint(w, types, binding)
	}()

	type result struct {
		received uint64
		err      error
	}
	read := make(chan result, 1)
	go func() {
		received, err := readFingerprint(r)
		read <- result{received, err}
	}()

	var res result
	writeDone := false
	select {
	case err := <-written:
		if err != nil {
			return err
		}
		writeDone = true
		res = <-read
	case res = <-read:
	}
	if res.err != nil {
		return res.err
	}
	if !writeDone {
		if err := <-written; err != nil {
			return err
		}
	}
	return check(res.received, types, binding)
}

func writeFingerprint(w io.Writer, types typeid.Pair, binding *Binding) error {
	var sent [FingerprintSize]byte
	binary.BigEndian.PutUint64(sent[:], Fingerprint(types, binding))
	if err := WriteAll(w, sent[:]); err != nil {
		return fmt.Errorf("handshake: writing fingerprint: %w", err)
	}
	return nil
}

func readFingerprint(r io.Reader) (uint64, error) {
	var received [FingerprintSize]byte
	if _, err := io.ReadFull(r, received[:]); err != nil {
		return 0, fmt.Errorf("handshake: reading fingerprint: %w", err)
	}
	return binary.BigEndian.Uint64(received[:]), nil
}

func check(received uint64, types typeid.Pair, binding *Binding) error {
	expected := Expected(types, binding)
	if received != expected {
		return &MismatchError{
			Expected: expected,
			Received: received,
		}
	}
	return nil
}

// WriteAll writes data to w, retrying short writes until everything has
// been written or w fails.
func WriteAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		data = data[n:]
	}
	return nil
}
