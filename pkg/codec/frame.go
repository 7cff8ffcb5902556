package codec

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	FrameHeaderSize = 4
)

// writeFrame writes the 4 byte big-endian length prefix and the payload
// in a single Write call.
func writeFrame(w io.Writer, payload []byte, limits Limits) error {
	if uint64(len(payload)) > uint64(limits.maxMessageSize()) {
		return fmt.Errorf("%w: %d bytes exceeds limit %d", ErrMessageTooLarge, len(payload), limits.maxMessageSize())
	}

	frame := make([]byte, FrameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[FrameHeaderSize:], payload)

	_, err := w.Write(frame)
	return err
}

// readFrame reads one length prefixed payload. A clean io.EOF before the
// first header byte is returned as is.
func readFrame(r io.Reader, limits Limits) ([]byte, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header)
	if length > limits.maxMessageSize() {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrMessageTooLarge, length, limits.maxMessageSize())
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return data, nil
}
