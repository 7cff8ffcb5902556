package codec

import (
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/kbirk/msgstream/pkg/serialize"
)

// BinaryConfig configures the binary codec.
type BinaryConfig struct {
	Limits Limits
}

type binaryCodec struct {
	limits Limits
}

// Binary returns the length prefixed big-endian codec built on the
// serialize package. It encodes values implementing serialize.Message
// and the scalar types bool, intN, uintN, floatN, string, []byte,
// time.Time and uuid.UUID.
func Binary() Codec {
	return NewBinary(BinaryConfig{})
}

func NewBinary(config BinaryConfig) Codec {
	return &binaryCodec{
		limits: config.Limits,
	}
}

func (c *binaryCodec) Name() string {
	return "binary"
}

func (c *binaryCodec) NewEncoder(w io.Writer) Encoder {
	return &binaryEncoder{
		w:      w,
		limits: c.limits,
	}
}

func (c *binaryCodec) NewDecoder(r io.Reader) Decoder {
	return &binaryDecoder{
		r:      r,
		limits: c.limits,
	}
}

type binaryEncoder struct {
	w      io.Writer
	limits Limits
}

func (e *binaryEncoder) Encode(v any) error {
	writer := getWriter(0)
	defer putWriter(writer)

	if err := serializeValue(writer, v); err != nil {
		return err
	}
	return writeFrame(e.w, writer.Bytes(), e.limits)
}

type binaryDecoder struct {
	r      io.Reader
	limits Limits
}

func (d *binaryDecoder) Decode(v any) error {
	if v == nil || reflect.ValueOf(v).Kind() != reflect.Pointer || reflect.ValueOf(v).IsNil() {
		return ErrInvalidArguments
	}

	payload, err := readFrame(d.r, d.limits)
	if err != nil {
		return err
	}

	reader := serialize.NewReader(payload)
	if err := deserializeValue(v, reader); err != nil {
		return err
	}
	if reader.Remaining() != 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, reader.Remaining())
	}
	return nil
}

func serializeValue(writer *serialize.Writer, v any) error {
	switch val := v.(type) {
	case serialize.Message:
		writer.Grow(val.ByteSize())
		val.Serialize(writer)
	case bool:
		serialize.SerializeBool(writer, val)
	case int8:
		serialize.SerializeInt8(writer, val)
	case int16:
		serialize.SerializeInt16(writer, val)
	case int32:
		serialize.SerializeInt32(writer, val)
	case int64:
		serialize.SerializeInt64(writer, val)
	case int:
		serialize.SerializeInt64(writer, int64(val))
	case uint8:
		serialize.SerializeUInt8(writer, val)
	case uint16:
		serialize.SerializeUInt16(writer, val)
	case uint32:
		serialize.SerializeUInt32(writer, val)
	case uint64:
		serialize.SerializeUInt64(writer, val)
	case uint:
		serialize.SerializeUInt64(writer, uint64(val))
	case float32:
		serialize.SerializeFloat32(writer, val)
	case float64:
		serialize.SerializeFloat64(writer, val)
	case string:
		serialize.SerializeString(writer, val)
	case []byte:
		serialize.SerializeBytes(writer, val)
	case time.Time:
		serialize.SerializeTime(writer, val)
	case uuid.UUID:
		serialize.SerializeUUID(writer, val)
	default:
		// value types whose Message methods have pointer receivers
		if v != nil {
			ptr := reflect.New(reflect.TypeOf(v))
			ptr.Elem().Set(reflect.ValueOf(v))
			if msg, ok := ptr.Interface().(serialize.Message); ok {
				writer.Grow(msg.ByteSize())
				msg.Serialize(writer)
				return nil
			}
		}
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return nil
}

func deserializeValue(v any, reader *serialize.Reader) error {
	switch ptr := v.(type) {
	case serialize.Message:
		return ptr.Deserialize(reader)
	case *bool:
		return serialize.DeserializeBool(ptr, reader)
	case *int8:
		return serialize.DeserializeInt8(ptr, reader)
	case *int16:
		return serialize.DeserializeInt16(ptr, reader)
	case *int32:
		return serialize.DeserializeInt32(ptr, reader)
	case *int64:
		return serialize.DeserializeInt64(ptr, reader)
	case *int:
		var val int64
		if err := serialize.DeserializeInt64(&val, reader); err != nil {
			return err
		}
		*ptr = int(val)
		return nil
	case *uint8:
		return serialize.DeserializeUInt8(ptr, reader)
	case *uint16:
		return serialize.DeserializeUInt16(ptr, reader)
	case *uint32:
		return serialize.DeserializeUInt32(ptr, reader)
	case *uint64:
		return serialize.DeserializeUInt64(ptr, reader)
	case *uint:
		var val uint64
		if err := serialize.DeserializeUInt64(&val, reader); err != nil {
			return err
		}
		*ptr = uint(val)
		return nil
	case *float32:
		return serialize.DeserializeFloat32(ptr, reader)
	case *float64:
		return serialize.DeserializeFloat64(ptr, reader)
	case *string:
		return serialize.DeserializeString(ptr, reader)
	case *[]byte:
		return serialize.DeserializeBytes(ptr, reader)
	case *time.Time:
		return serialize.DeserializeTime(ptr, reader)
	case *uuid.UUID:
		return serialize.DeserializeUUID(ptr, reader)
	}

	// pointer to a pointer message type: allocate the message
	target := reflect.ValueOf(v).Elem()
	if target.Kind() == reflect.Pointer {
		msg := reflect.New(target.Type().Elem())
		if m, ok := msg.Interface().(serialize.Message); ok {
			if err := m.Deserialize(reader); err != nil {
				return err
			}
			target.Set(msg)
			return nil
		}
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}
