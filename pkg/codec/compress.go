package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the algorithm applied to a frame. Values are
// written on the wire; changing them breaks compatibility.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

// compressed frame layout after the 4 byte length prefix:
// 1 byte compression tag, 4 byte big-endian raw length, payload.
const compressedHeaderSize = 5

var errIncompressible = errors.New("codec: data is incompressible")

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use with
// EncodeAll and DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

// CompressedConfig configures a compressing codec.
type CompressedConfig struct {
	Compression Compression
	Limits      Limits
}

type compressedCodec struct {
	inner       Codec
	compression Compression
	limits      Limits
}

// Compressed wraps inner so that every message is encoded by inner,
// compressed, and written as one length prefixed frame. Messages that do
// not shrink are sent uncompressed.
func Compressed(inner Codec, compression Compression) Codec {
	return NewCompressed(inner, CompressedConfig{Compression: compression})
}

func NewCompressed(inner Codec, config CompressedConfig) Codec {
	return &compressedCodec{
		inner:       inner,
		compression: config.Compression,
		limits:      config.Limits,
	}
}

func (c *compressedCodec) Name() string {
	return c.inner.Name() + "+" + c.compression.String()
}

func (c *compressedCodec) NewEncoder(w io.Writer) Encoder {
	e := &compressedEncoder{
		w:           w,
		compression: c.compression,
		limits:      c.limits,
	}
	e.inner = c.inner.NewEncoder(&e.buf)
	return e
}

func (c *compressedCodec) NewDecoder(r io.Reader) Decoder {
	return &compressedDecoder{
		r:      r,
		inner:  c.inner,
		limits: c.limits,
	}
}

type compressedEncoder struct {
	w           io.Writer
	inner       Encoder
	buf         bytes.Buffer
	compression Compression
	limits      Limits
}

func (e *compressedEncoder) Encode(v any) error {
	e.buf.Reset()
	if err := e.inner.Encode(v); err != nil {
		return err
	}
	raw := e.buf.Bytes()

	tag := e.compression
	payload, err := compress(raw, tag)
	if errors.Is(err, errIncompressible) {
		tag = CompressionNone
		payload = raw
	} else if err != nil {
		return err
	}

	frame := make([]byte, compressedHeaderSize+len(payload))
	frame[0] = byte(tag)
	binary.BigEndian.PutUint32(frame[1:], uint32(len(raw)))
	copy(frame[compressedHeaderSize:], payload)

	return writeFrame(e.w, frame, e.limits)
}

type compressedDecoder struct {
	r      io.Reader
	inner  Codec
	limits Limits
}

func (d *compressedDecoder) Decode(v any) error {
	frame, err := readFrame(d.r, d.limits)
	if err != nil {
		return err
	}
	if len(frame) < compressedHeaderSize {
		return fmt.Errorf("%w: %d byte frame is shorter than its header", ErrCorruptFrame, len(frame))
	}

	tag := Compression(frame[0])
	rawSize := binary.BigEndian.Uint32(frame[1:])
	if rawSize > d.limits.maxMessageSize() {
		return fmt.Errorf("%w: %d bytes uncompressed exceeds limit %d", ErrMessageTooLarge, rawSize, d.limits.maxMessageSize())
	}

	raw, err := decompress(frame[compressedHeaderSize:], tag, int(rawSize))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptFrame, err)
	}
	return d.inner.NewDecoder(bytes.NewReader(raw)).Decode(v)
}

func compress(data []byte, tag Compression) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil

	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// zero means lz4 found the data incompressible
		if written == 0 || written >= len(data) {
			return nil, errIncompressible
		}
		return destination[:written], nil

	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return nil, errIncompressible
		}
		return compressed, nil

	default:
		return nil, fmt.Errorf("unsupported compression: %s", tag)
	}
}

func decompress(data []byte, tag Compression, rawSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(data) != rawSize {
			return nil, fmt.Errorf("uncompressed payload: size %d does not match expected %d", len(data), rawSize)
		}
		return data, nil

	case CompressionLZ4:
		destination := make([]byte, rawSize)
		read, err := lz4.UncompressBlock(data, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != rawSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, rawSize)
		}
		return destination, nil

	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(data, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != rawSize {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), rawSize)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unsupported compression: %s", tag)
	}
}
