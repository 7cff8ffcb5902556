package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items. Times
// keep nanosecond precision.
var encMode cbor.EncMode

// decMode accepts standard CBOR and ignores unknown fields.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

type cborCodec struct{}

// CBOR returns the default codec. CBOR data items are self-delimiting,
// so messages are written back to back without a length prefix.
func CBOR() Codec {
	return cborCodec{}
}

func (cborCodec) Name() string {
	return "cbor"
}

func (cborCodec) NewEncoder(w io.Writer) Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a decoder that buffers reads from r. Bytes it has
// buffered but not yet decoded belong to the decoder, so r must not be
// read by anything else afterwards.
func (cborCodec) NewDecoder(r io.Reader) Decoder {
	return decMode.NewDecoder(r)
}
