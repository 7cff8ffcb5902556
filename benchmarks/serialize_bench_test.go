package benchmarks

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kbirk/msgstream/pkg/serialize"
)

// BenchmarkSerializeUInt8 benchmarks uint8 serialization
func BenchmarkSerializeUInt8(b *testing.B) {
	var val uint8 = 123

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		writer := serialize.NewWriter(1)
		serialize.SerializeUInt8(writer, val)
	}
}

// BenchmarkDeserializeUInt8 benchmarks uint8 deserialization
func BenchmarkDeserializeUInt8(b *testing.B) {
	writer := serialize.NewWriter(1)
	serialize.SerializeUInt8(writer, 123)
	bs := writer.Bytes()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		reader := serialize.NewReader(bs)
		var val uint8
		serialize.DeserializeUInt8(&val, reader)
	}
}

// BenchmarkSerializeUInt64 benchmarks fixed width uint64 serialization
func BenchmarkSerializeUInt64(b *testing.B) {
	writer := serialize.NewWriter(8)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		writer.Reset()
		serialize.SerializeUInt64(writer, uint64(i))
	}
}

// BenchmarkSerializeString benchmarks string serialization
func BenchmarkSerializeString(b *testing.B) {
	testCases := []struct {
		name string
		val  string
	}{
		{"Short", "hello"},
		{"Medium", strings.Repeat("x", 256)},
		{"Long", strings.Repeat("x", 64*1024)},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			writer := serialize.NewWriter(serialize.ByteSizeString(tc.val))

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				writer.Reset()
				serialize.SerializeString(writer, tc.val)
			}
		})
	}
}

// BenchmarkDeserializeString benchmarks string deserialization
func BenchmarkDeserializeString(b *testing.B) {
	val := strings.Repeat("x", 256)
	writer := serialize.NewWriter(serialize.ByteSizeString(val))
	serialize.SerializeString(writer, val)
	bs := writer.Bytes()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		reader := serialize.NewReader(bs)
		var out string
		serialize.DeserializeString(&out, reader)
	}
}

// BenchmarkSerializeUUID benchmarks UUID serialization
func BenchmarkSerializeUUID(b *testing.B) {
	val := uuid.New()
	writer := serialize.NewWriter(serialize.ByteSizeUUID(val))

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		writer.Reset()
		serialize.SerializeUUID(writer, val)
	}
}

// BenchmarkSerializeTime benchmarks time serialization
func BenchmarkSerializeTime(b *testing.B) {
	val := time.Now()
	writer := serialize.NewWriter(serialize.ByteSizeTime(val))

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		writer.Reset()
		serialize.SerializeTime(writer, val)
	}
}

// BenchmarkDeserializeTime benchmarks time deserialization
func BenchmarkDeserializeTime(b *testing.B) {
	val := time.Now()
	writer := serialize.NewWriter(serialize.ByteSizeTime(val))
	serialize.SerializeTime(writer, val)
	bs := writer.Bytes()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		reader := serialize.NewReader(bs)
		var out time.Time
		serialize.DeserializeTime(&out, reader)
	}
}
