package benchmarks

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kbirk/msgstream/internal/chat"
	"github.com/kbirk/msgstream/pkg/codec"
)

func benchmarkLine() chat.Line {
	return chat.NewLine("benchmark", strings.Repeat("the quick brown fox ", 20))
}

// BenchmarkEncode benchmarks encoding one message with every codec
func BenchmarkEncode(b *testing.B) {
	line := benchmarkLine()

	for _, name := range codec.Names() {
		b.Run(name, func(b *testing.B) {
			c, err := codec.ByName(name)
			if err != nil {
				b.Fatal(err)
			}
			var buf bytes.Buffer
			encoder := c.NewEncoder(&buf)

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				buf.Reset()
				if err := encoder.Encode(&line); err != nil {
					b.Fatal(err)
				}
			}
			b.SetBytes(int64(buf.Len()))
		})
	}
}

// BenchmarkDecode benchmarks decoding one message with every codec
func BenchmarkDecode(b *testing.B) {
	line := benchmarkLine()

	for _, name := range codec.Names() {
		b.Run(name, func(b *testing.B) {
			c, err := codec.ByName(name)
			if err != nil {
				b.Fatal(err)
			}
			var buf bytes.Buffer
			if err := c.NewEncoder(&buf).Encode(&line); err != nil {
				b.Fatal(err)
			}
			encoded := buf.Bytes()
			b.SetBytes(int64(len(encoded)))

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				var out chat.Line
				if err := c.NewDecoder(bytes.NewReader(encoded)).Decode(&out); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
