package chat

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/kbirk/msgstream/pkg/log"
)

// Channel is the subset of a symmetric Line channel a session uses. Send
// and Read are called from different goroutines.
type Channel interface {
	Send(Line) error
	Read() (Line, error)
	Close() error
}

type Session struct {
	Channel Channel
	Name    string

	// Format renders received lines. Defaults to Format.
	Format func(Line) string

	Logger log.Logger
}

// Run sends every non-empty line of in to the peer and writes every line
// received to out, until in is exhausted, the peer goes away or ctx is
// cancelled. The channel is closed on return. Running out of input and
// the peer closing are clean exits.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	format := s.Format
	if format == nil {
		format = Format
	}

	received := make(chan error, 1)
	go func() {
		received <- s.receive(out, format)
	}()

	sent := make(chan error, 1)
	go func() {
		sent <- s.send(in)
	}()

	var err error
	receiverDone := false
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-sent:
		s.logDebug("Input exhausted")
	case err = <-received:
		receiverDone = true
		s.logDebug("Peer stopped sending")
	}

	closeErr := s.Channel.Close()
	if !receiverDone {
		<-received
	}

	if err != nil && !closed(err) {
		return err
	}
	return closeErr
}

func (s *Session) send(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := s.Channel.Send(NewLine(s.Name, text)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *Session) receive(out io.Writer, format func(Line) string) error {
	for {
		line, err := s.Channel.Read()
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, format(line)+"\n"); err != nil {
			return err
		}
	}
}

// closed reports whether err only says the connection has ended.
func closed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}

func (s *Session) logDebug(msg string) {
	if s.Logger != nil {
		s.Logger.Debug(msg)
	}
}
