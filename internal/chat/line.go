// Package chat is a line based chat over a symmetric channel, used by
// the msgstream command.
package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/kbirk/msgstream/pkg/serialize"
)

// Line is one chat message.
type Line struct {
	ID   uuid.UUID `cbor:"id"`
	Sent time.Time `cbor:"sent"`
	From string    `cbor:"from"`
	Text string    `cbor:"text"`
}

func NewLine(from, text string) Line {
	return Line{
		ID:   uuid.New(),
		Sent: time.Now().UTC(),
		From: from,
		Text: text,
	}
}

func (l *Line) ByteSize() int {
	return serialize.ByteSizeUUID(l.ID) +
		serialize.ByteSizeTime(l.Sent) +
		serialize.ByteSizeString(l.From) +
		serialize.ByteSizeString(l.Text)
}

func (l *Line) Serialize(writer *serialize.Writer) {
	serialize.SerializeUUID(writer, l.ID)
	serialize.SerializeTime(writer, l.Sent)
	serialize.SerializeString(writer, l.From)
	serialize.SerializeString(writer, l.Text)
}

func (l *Line) Deserialize(reader *serialize.Reader) error {
	if err := serialize.DeserializeUUID(&l.ID, reader); err != nil {
		return err
	}
	if err := serialize.DeserializeTime(&l.Sent, reader); err != nil {
		return err
	}
	if err := serialize.DeserializeString(&l.From, reader); err != nil {
		return err
	}
	return serialize.DeserializeString(&l.Text, reader)
}

// Format renders l as "[15:04:05] from: text" in local time.
func Format(l Line) string {
	return "[" + l.Sent.Local().Format(time.TimeOnly) + "] " + l.From + ": " + l.Text
}
