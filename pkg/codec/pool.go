package codec

import (
	"sync"

	"github.com/kbirk/msgstream/pkg/serialize"
)

var (
	// Single pool for writers with a reasonable starting capacity
	writerPool = &sync.Pool{
		New: func() interface{} {
			return serialize.NewWriter(256)
		},
	}
)

// getWriter returns a writer from the pool with the requested capacity
func getWriter(size int) *serialize.Writer {
	w := writerPool.Get().(*serialize.Writer)
	w.Grow(size)
	return w
}

// putWriter returns a writer to the pool after resetting it
func putWriter(w *serialize.Writer) {
	w.Reset()
	// Very large messages would otherwise pin their buffers in the pool
	if w.Capacity() < 262144 {
		writerPool.Put(w)
	}
}
