package serialize

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/google/uuid"
)

func ByteSizeBool(bool) int {
	return 1
}

func SerializeBool(writer *Writer, data bool) {
	val := uint8(0)
	if data {
		val = 1
	}
	SerializeUInt8(writer, val)
}

func DeserializeBool(data *bool, reader *Reader) error {
	bs, err := reader.Read(1)
	if err != nil {
		return err
	}
	*data = bs[0] == 1
	return nil
}

func ByteSizeUInt8(uint8) int {
	return 1
}

func SerializeUInt8(writer *Writer, data uint8) {
	writer.Next(1)[0] = data
}

func DeserializeUInt8(data *uint8, reader *Reader) error {
	bs, err := reader.Read(1)
	if err != nil {
		return err
	}
	*data = bs[0]
	return nil
}

func ByteSizeUInt16(uint16) int {
	return 2
}

func SerializeUInt16(writer *Writer, data uint16) {
	binary.BigEndian.PutUint16(writer.Next(2), data)
}

func DeserializeUInt16(data *uint16, reader *Reader) error {
	bs, err := reader.Read(2)
	if err != nil {
		return err
	}
	*data = binary.BigEndian.Uint16(bs)
	return nil
}

func ByteSizeUInt32(uint32) int {
	return 4
}

func SerializeUInt32(writer *Writer, data uint32) {
	binary.BigEndian.PutUint32(writer.Next(4), data)
}

func DeserializeUInt32(data *uint32, reader *Reader) error {
	bs, err := reader.Read(4)
	if err != nil {
		return err
	}
	*data = binary.BigEndian.Uint32(bs)
	return nil
}

func ByteSizeUInt64(uint64) int {
	return 8
}

func SerializeUInt64(writer *Writer, data uint64) {
	binary.BigEndian.PutUint64(writer.Next(8), data)
}

func DeserializeUInt64(data *uint64, reader *Reader) error {
	bs, err := reader.Read(8)
	if err != nil {
		return err
	}
	*data = binary.BigEndian.Uint64(bs)
	return nil
}

func ByteSizeInt8(int8) int {
	return 1
}

func SerializeInt8(writer *Writer, data int8) {
	SerializeUInt8(writer, uint8(data))
}

func DeserializeInt8(data *int8, reader *Reader) error {
	var val uint8
	if err := DeserializeUInt8(&val, reader); err != nil {
		return err
	}
	*data = int8(val)
	return nil
}

func ByteSizeInt16(int16) int {
	return 2
}

func SerializeInt16(writer *Writer, data int16) {
	SerializeUInt16(writer, uint16(data))
}

func DeserializeInt16(data *int16, reader *Reader) error {
	var val uint16
	if err := DeserializeUInt16(&val, reader); err != nil {
		return err
	}
	*data = int16(val)
	return nil
}

func ByteSizeInt32(int32) int {
	return 4
}

func SerializeInt32(writer *Writer, data int32) {
	SerializeUInt32(writer, uint32(data))
}

func DeserializeInt32(data *int32, reader *Reader) error {
	var val uint32
	if err := DeserializeUInt32(&val, reader); err != nil {
		return err
	}
	*data = int32(val)
	return nil
}

func ByteSizeInt64(int64) int {
	return 8
}

func SerializeInt64(writer *Writer, data int64) {
	SerializeUInt64(writer, uint64(data))
}

func DeserializeInt64(data *int64, reader *Reader) error {
	var val uint64
	if err := DeserializeUInt64(&val, reader); err != nil {
		return err
	}
	*data = int64(val)
	return nil
}

func ByteSizeFloat32(float32) int {
	return 4
}

func SerializeFloat32(writer *Writer, data float32) {
	SerializeUInt32(writer, math.Float32bits(data))
}

func DeserializeFloat32(data *float32, reader *Reader) error {
	var bits uint32
	if err := DeserializeUInt32(&bits, reader); err != nil {
		return err
	}
	*data = math.Float32frombits(bits)
	return nil
}

func ByteSizeFloat64(float64) int {
	return 8
}

func SerializeFloat64(writer *Writer, data float64) {
	SerializeUInt64(writer, math.Float64bits(data))
}

func DeserializeFloat64(data *float64, reader *Reader) error {
	var bits uint64
	if err := DeserializeUInt64(&bits, reader); err != nil {
		return err
	}
	*data = math.Float64frombits(bits)
	return nil
}

func ByteSizeString(data string) int {
	return 4 + len(data)
}

func SerializeString(writer *Writer, data string) {
	SerializeUInt32(writer, uint32(len(data)))
	copy(writer.Next(len(data)), data)
}

func DeserializeString(data *string, reader *Reader) error {
	var length uint32
	if err := DeserializeUInt32(&length, reader); err != nil {
		return err
	}
	bs, err := reader.Read(int(length))
	if err != nil {
		return err
	}
	*data = string(bs)
	return nil
}

func ByteSizeBytes(data []byte) int {
	return 4 + len(data)
}

func SerializeBytes(writer *Writer, data []byte) {
	SerializeUInt32(writer, uint32(len(data)))
	copy(writer.Next(len(data)), data)
}

func DeserializeBytes(data *[]byte, reader *Reader) error {
	var length uint32
	if err := DeserializeUInt32(&length, reader); err != nil {
		return err
	}
	bs, err := reader.Read(int(length))
	if err != nil {
		return err
	}
	*data = append([]byte(nil), bs...)
	return nil
}

func ByteSizeTime(time.Time) int {
	return 12
}

// SerializeTime writes the time as UTC seconds and nanoseconds since the
// Unix epoch. Location and monotonic readings are not preserved.
func SerializeTime(writer *Writer, data time.Time) {
	utc := data.UTC()
	SerializeInt64(writer, utc.Unix())
	SerializeUInt32(writer, uint32(utc.Nanosecond()))
}

func DeserializeTime(data *time.Time, reader *Reader) error {
	var seconds int64
	var nanoseconds uint32
	if err := DeserializeInt64(&seconds, reader); err != nil {
		return err
	}
	if err := DeserializeUInt32(&nanoseconds, reader); err != nil {
		return err
	}
	*data = time.Unix(seconds, int64(nanoseconds)).UTC()
	return nil
}

func ByteSizeUUID(uuid.UUID) int {
	return 16
}

func SerializeUUID(writer *Writer, data uuid.UUID) {
	copy(writer.Next(16), data[:])
}

func DeserializeUUID(data *uuid.UUID, reader *Reader) error {
	bs, err := reader.Read(16)
	if err != nil {
		return err
	}
	copy(data[:], bs)
	return nil
}
