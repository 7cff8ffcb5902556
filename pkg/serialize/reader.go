package serialize

import (
	"errors"
	"fmt"
)

var (
	ErrShortBuffer = errors.New("serialize: not enough data")
)

type Reader struct {
	bytes []byte
	pos   int
}

func NewReader(data []byte) *Reader {
	return &Reader{
		bytes: data,
	}
}

// Read consumes the next n bytes. The returned slice aliases the
// reader's data.
func (r *Reader) Read(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.bytes) {
		return nil, fmt.Errorf("%w: num bytes available: %d, num bytes needed: %d", ErrShortBuffer, len(r.bytes)-r.pos, n)
	}
	bs := r.bytes[r.pos : r.pos+n]
	r.pos += n
	return bs, nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.bytes) - r.pos
}
