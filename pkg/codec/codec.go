package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrMessageTooLarge  = errors.New("codec: message too large")
	ErrUnsupportedType  = errors.New("codec: unsupported type")
	ErrTrailingBytes    = errors.New("codec: trailing bytes after message")
	ErrUnknownCodec     = errors.New("codec: unknown codec")
	ErrCorruptFrame     = errors.New("codec: corrupt frame")
	ErrInvalidArguments = errors.New("codec: decode target must be a non-nil pointer")
)

// Codec produces stream encoders and decoders for one wire format. Every
// encoded message is self-delimiting, so a decoder reading a stream of
// messages knows where each one ends without help from the caller.
type Codec interface {
	Name() string
	NewEncoder(w io.Writer) Encoder
	NewDecoder(r io.Reader) Decoder
}

type Encoder interface {
	// Encode writes exactly one message to the underlying writer.
	Encode(v any) error
}

type Decoder interface {
	// Decode reads exactly one message into v, which must be a pointer.
	Decode(v any) error
}

// Limits bounds the memory a single framed message may use.
type Limits struct {
	// MaxMessageSize is the largest frame payload in bytes that will be
	// written or accepted. Zero means DefaultMaxMessageSize.
	MaxMessageSize uint32
}

const (
	DefaultMaxMessageSize = 16 * 1024 * 1024
)

func (l Limits) maxMessageSize() uint32 {
	if l.MaxMessageSize == 0 {
		return DefaultMaxMessageSize
	}
	return l.MaxMessageSize
}

// ByName returns the codec registered under name: "cbor" or "binary",
// optionally followed by "+lz4" or "+zstd" for compression.
func ByName(name string) (Codec, error) {
	base, compression, compressed := strings.Cut(name, "+")

	var inner Codec
	switch base {
	case "cbor":
		inner = CBOR()
	case "binary":
		inner = Binary()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	if !compressed {
		return inner, nil
	}

	tag, err := ParseCompression(compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownCodec, name, err)
	}
	return Compressed(inner, tag), nil
}

// Names lists the codec names ByName accepts.
func Names() []string {
	return []string{"cbor", "binary", "cbor+lz4", "cbor+zstd", "binary+lz4", "binary+zstd"}
}
