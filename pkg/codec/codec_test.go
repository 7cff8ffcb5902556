package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kbirk/msgstream/pkg/serialize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    uuid.UUID `cbor:"id"`
	Name  string    `cbor:"name"`
	Count int32     `cbor:"count"`
	When  time.Time `cbor:"when"`
	Tags  []string  `cbor:"tags"`
}

func (s *sample) ByteSize() int {
	size := serialize.ByteSizeUUID(s.ID) +
		serialize.ByteSizeString(s.Name) +
		serialize.ByteSizeInt32(s.Count) +
		serialize.ByteSizeTime(s.When) +
		serialize.ByteSizeUInt32(uint32(len(s.Tags)))
	for _, tag := range s.Tags {
		size += serialize.ByteSizeString(tag)
	}
	return size
}

func (s *sample) Serialize(writer *serialize.Writer) {
	serialize.SerializeUUID(writer, s.ID)
	serialize.SerializeString(writer, s.Name)
	serialize.SerializeInt32(writer, s.Count)
	serialize.SerializeTime(writer, s.When)
	serialize.SerializeUInt32(writer, uint32(len(s.Tags)))
	for _, tag := range s.Tags {
		serialize.SerializeString(writer, tag)
	}
}

func (s *sample) Deserialize(reader *serialize.Reader) error {
	if err := serialize.DeserializeUUID(&s.ID, reader); err != nil {
		return err
	}
	if err := serialize.DeserializeString(&s.Name, reader); err != nil {
		return err
	}
	if err := serialize.DeserializeInt32(&s.Count, reader); err != nil {
		return err
	}
	if err := serialize.DeserializeTime(&s.When, reader); err != nil {
		return err
	}
	var count uint32
	if err := serialize.DeserializeUInt32(&count, reader); err != nil {
		return err
	}
	s.Tags = make([]string, count)
	for i := range s.Tags {
		if err := serialize.DeserializeString(&s.Tags[i], reader); err != nil {
			return err
		}
	}
	return nil
}

func newSamples() []sample {
	return []sample{
		{
			ID:    uuid.New(),
			Name:  "ping",
			Count: 1,
			When:  time.Date(2026, 10, 19, 8, 30, 0, 123456789, time.UTC),
			Tags:  []string{"a", "b"},
		},
		{
			ID:    uuid.New(),
			Name:  strings.Repeat("pong ", 200),
			Count: -7,
			When:  time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
			Tags:  []string{"only"},
		},
	}
}

func assertSampleEqual(t *testing.T, expected, actual sample) {
	t.Helper()
	assert.True(t, expected.When.Equal(actual.When), "expected %v, got %v", expected.When, actual.When)
	expected.When = time.Time{}
	actual.When = time.Time{}
	assert.Equal(t, expected, actual)
}

func TestCodecsRoundTripStream(t *testing.T) {

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := ByName(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())

			var buf bytes.Buffer
			encoder := c.NewEncoder(&buf)

			inputs := newSamples()
			for i := range inputs {
				require.NoError(t, encoder.Encode(&inputs[i]))
			}

			decoder := c.NewDecoder(&buf)
			for _, expected := range inputs {
				var output sample
				require.NoError(t, decoder.Decode(&output))
				assertSampleEqual(t, expected, output)
			}

			var output sample
			err = decoder.Decode(&output)
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestCodecsRoundTripScalars(t *testing.T) {

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := ByName(name)
			require.NoError(t, err)

			var buf bytes.Buffer
			encoder := c.NewEncoder(&buf)
			require.NoError(t, encoder.Encode(int32(42)))
			require.NoError(t, encoder.Encode("hello"))
			require.NoError(t, encoder.Encode(true))
			require.NoError(t, encoder.Encode(3.5))
			require.NoError(t, encoder.Encode([]byte{1, 2, 3}))

			decoder := c.NewDecoder(&buf)

			var i int32
			require.NoError(t, decoder.Decode(&i))
			assert.Equal(t, int32(42), i)

			var s string
			require.NoError(t, decoder.Decode(&s))
			assert.Equal(t, "hello", s)

			var b bool
			require.NoError(t, decoder.Decode(&b))
			assert.True(t, b)

			var f float64
			require.NoError(t, decoder.Decode(&f))
			assert.Equal(t, 3.5, f)

			var bs []byte
			require.NoError(t, decoder.Decode(&bs))
			assert.Equal(t, []byte{1, 2, 3}, bs)
		})
	}
}

func TestBinaryFraming(t *testing.T) {

	var buf bytes.Buffer
	require.NoError(t, Binary().NewEncoder(&buf).Encode(uint16(0xabcd)))

	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02, 0xab, 0xcd}, buf.Bytes())
}

func TestBinaryValueAndPointerMessages(t *testing.T) {

	input := newSamples()[0]

	var buf bytes.Buffer
	encoder := Binary().NewEncoder(&buf)
	// value whose Message methods have pointer receivers
	require.NoError(t, encoder.Encode(input))
	require.NoError(t, encoder.Encode(&input))

	decoder := Binary().NewDecoder(&buf)

	var value sample
	require.NoError(t, decoder.Decode(&value))
	assertSampleEqual(t, input, value)

	var ptr *sample
	require.NoError(t, decoder.Decode(&ptr))
	require.NotNil(t, ptr)
	assertSampleEqual(t, input, *ptr)
}

func TestBinaryUnsupportedType(t *testing.T) {

	var buf bytes.Buffer
	err := Binary().NewEncoder(&buf).Encode(map[string]int{"a": 1})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, 0, buf.Len())

	buf.Write([]byte{0x00, 0x00, 0x00, 0x01, 0x01})
	var out map[string]int
	err = Binary().NewDecoder(&buf).Decode(&out)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	var notPointer int32
	err = Binary().NewDecoder(&buf).Decode(notPointer)
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestBinaryTrailingBytes(t *testing.T) {

	var buf bytes.Buffer
	require.NoError(t, Binary().NewEncoder(&buf).Encode(int64(1)))

	var out int32
	err := Binary().NewDecoder(&buf).Decode(&out)
	assert.ErrorIs(t, err, ErrTrailingBytes)
}

func TestBinaryTruncatedFrame(t *testing.T) {

	var buf bytes.Buffer
	require.NoError(t, Binary().NewEncoder(&buf).Encode("truncated"))
	truncated := buf.Bytes()[:buf.Len()-2]

	var out string
	err := Binary().NewDecoder(bytes.NewReader(truncated)).Decode(&out)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestMessageTooLarge(t *testing.T) {

	c := NewBinary(BinaryConfig{Limits: Limits{MaxMessageSize: 8}})

	var buf bytes.Buffer
	err := c.NewEncoder(&buf).Encode(strings.Repeat("x", 16))
	assert.ErrorIs(t, err, ErrMessageTooLarge)
	assert.Equal(t, 0, buf.Len())

	// a peer announcing an oversized frame is rejected before allocation
	header := make([]byte, FrameHeaderSize)
	binary.BigEndian.PutUint32(header, 1<<30)
	var out string
	err = c.NewDecoder(bytes.NewReader(header)).Decode(&out)
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestCompressionShrinksCompressiblePayloads(t *testing.T) {

	payload := strings.Repeat("all work and no play makes jack a dull boy. ", 100)

	var plain bytes.Buffer
	require.NoError(t, CBOR().NewEncoder(&plain).Encode(payload))

	for _, compression := range []Compression{CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			c := Compressed(CBOR(), compression)

			var buf bytes.Buffer
			require.NoError(t, c.NewEncoder(&buf).Encode(payload))
			assert.Less(t, buf.Len(), plain.Len())
			assert.Equal(t, byte(compression), buf.Bytes()[FrameHeaderSize])

			var out string
			require.NoError(t, c.NewDecoder(&buf).Decode(&out))
			assert.Equal(t, payload, out)
		})
	}
}

func TestCompressionFallsBackForIncompressiblePayloads(t *testing.T) {

	c := Compressed(Binary(), CompressionLZ4)

	var buf bytes.Buffer
	require.NoError(t, c.NewEncoder(&buf).Encode(uint8(7)))
	assert.Equal(t, byte(CompressionNone), buf.Bytes()[FrameHeaderSize])

	var out uint8
	require.NoError(t, c.NewDecoder(&buf).Decode(&out))
	assert.Equal(t, uint8(7), out)
}

func TestCompressionCorruptFrame(t *testing.T) {

	frame := []byte{
		0x00, 0x00, 0x00, 0x08, // frame length
		byte(CompressionLZ4),
		0x00, 0x00, 0x01, 0x00, // raw length
		0xff, 0xff, 0xff, // garbage
	}

	var out string
	err := Compressed(CBOR(), CompressionLZ4).NewDecoder(bytes.NewReader(frame)).Decode(&out)
	assert.ErrorIs(t, err, ErrCorruptFrame)

	short := []byte{0x00, 0x00, 0x00, 0x01, byte(CompressionLZ4)}
	err = Compressed(CBOR(), CompressionLZ4).NewDecoder(bytes.NewReader(short)).Decode(&out)
	assert.ErrorIs(t, err, ErrCorruptFrame)
}

func TestCBORDecodeGarbage(t *testing.T) {

	var out sample
	// a text string header announcing more bytes than follow
	err := CBOR().NewDecoder(bytes.NewReader([]byte{0x78, 0x10, 'a'})).Decode(&out)
	require.Error(t, err)
}

func TestByName(t *testing.T) {

	_, err := ByName("gob")
	assert.ErrorIs(t, err, ErrUnknownCodec)

	_, err = ByName("cbor+snappy")
	assert.ErrorIs(t, err, ErrUnknownCodec)

	c, err := ByName("binary+zstd")
	require.NoError(t, err)
	assert.Equal(t, "binary+zstd", c.Name())
}

func TestParseCompression(t *testing.T) {

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompression(compression.String())
		require.NoError(t, err)
		assert.Equal(t, compression, parsed)
	}
	assert.Equal(t, "unknown(9)", Compression(9).String())
}
