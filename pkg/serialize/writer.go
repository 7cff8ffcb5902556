package serialize

// Writer is a growable byte buffer that serializers append to.
type Writer struct {
	bytes []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{
		bytes: make([]byte, 0, capacity),
	}
}

// Next returns the next n bytes of the buffer for the caller to fill,
// growing the buffer when needed.
func (w *Writer) Next(n int) []byte {
	w.Grow(n)
	start := len(w.bytes)
	w.bytes = w.bytes[:start+n]
	return w.bytes[start : start+n]
}

// Grow makes room for at least n more bytes without another allocation.
func (w *Writer) Grow(n int) {
	if cap(w.bytes)-len(w.bytes) >= n {
		return
	}
	grown := make([]byte, len(w.bytes), 2*cap(w.bytes)+n)
	copy(grown, w.bytes)
	w.bytes = grown
}

func (w *Writer) Bytes() []byte {
	return w.bytes
}

func (w *Writer) Len() int {
	return len(w.bytes)
}

func (w *Writer) Capacity() int {
	return cap(w.bytes)
}

func (w *Writer) Reset() {
	w.bytes = w.bytes[:0]
}
