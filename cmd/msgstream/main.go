package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/kbirk/msgstream/internal/chat"
	"github.com/kbirk/msgstream/internal/config"
	"github.com/kbirk/msgstream/pkg/channel"
	"github.com/kbirk/msgstream/pkg/codec"
	"github.com/kbirk/msgstream/pkg/handshake"
	"github.com/kbirk/msgstream/pkg/log"
	"github.com/kbirk/msgstream/pkg/typeid"
	"github.com/spf13/pflag"
)

const (
	version = "0.1.0"
)

var (
	red     = color.New(color.FgRed, color.Bold).SprintFunc()
	green   = color.New(color.FgGreen, color.Bold).SprintFunc()
	blue    = color.New(color.FgBlue, color.Bold).SprintFunc()
	yellow  = color.New(color.FgYellow, color.Bold).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
	magenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
	white   = color.New(color.FgWhite, color.Bold).SprintFunc()
)

func main() {

	opts, err := config.Parse("msgstream", os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fail("Invalid arguments", err)
	}

	if opts.PrintTypes {
		printTypes()
		return
	}

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		fail("Invalid configuration", err)
	}

	logger := log.NewConsole(os.Stderr, "msgstream", cfg.Verbose)
	logger.Debug("msgstream " + version)

	c, err := codec.ByName(cfg.Codec)
	if err != nil {
		fail("Invalid codec", err)
	}

	conn, err := connect(cfg, logger)
	if err != nil {
		fail("Failed to connect", err)
	}

	ch, err := open(cfg, conn, c, logger)
	if err != nil {
		if errors.Is(err, channel.ErrHandshakeMismatch) {
			fail("Peer speaks a different message type", err)
		}
		fail("Failed to open channel", err)
	}

	os.Stderr.WriteString(green("CONNECTED: ") + fmt.Sprintf("%s <-> %s (%s)\n", ch.LocalAddr(), ch.RemoteAddr(), ch.Codec()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := &chat.Session{
		Channel: ch,
		Name:    cfg.Name,
		Format:  formatLine,
		Logger:  logger,
	}
	err = session.Run(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		fail("Session ended", err)
	}

	os.Stderr.WriteString(yellow("DISCONNECTED\n"))
}

// connect accepts a single peer when listening, or dials one.
func connect(cfg *config.Config, logger log.Logger) (net.Conn, error) {
	if cfg.Mode == config.ModeDial {
		client, err := cfg.ClientTransport()
		if err != nil {
			return nil, err
		}
		return client.Connect()
	}

	server := cfg.ServerTransport(logger)
	if err := server.Listen(); err != nil {
		return nil, err
	}
	defer server.Close()

	os.Stderr.WriteString(blue("LISTENING: ") + fmt.Sprintf("%s %s\n", cfg.Transport, server.Addr()))
	return server.Accept()
}

func open(cfg *config.Config, conn net.Conn, c codec.Codec, logger log.Logger) (*channel.SymmetricConn[chat.Line], error) {
	options := []channel.Option{
		channel.WithCodec(c),
		channel.WithLogger(logger),
	}
	if cfg.Unchecked {
		logger.Warn("Skipping type handshake, the peer must use the same message type")
		return channel.NewSymmetricConnUnchecked[chat.Line](conn, options...), nil
	}
	return channel.NewSymmetricConn[chat.Line](conn, cfg.ReadTimeout, options...)
}

func formatLine(l chat.Line) string {
	return cyan(l.Sent.Local().Format(time.TimeOnly)) + " " + magenta(l.From) + ": " + l.Text
}

func printTypes() {
	types := typeid.PairOf[chat.Line, chat.Line]()

	os.Stdout.WriteString(fmt.Sprintf("%s %s\n", magenta("[message]"), white("chat.Line")))
	os.Stdout.WriteString(fmt.Sprintf("    %s %s\n", green("[id]"), cyan(types.Send.String())))
	os.Stdout.WriteString(fmt.Sprintf("    %s %s\n", green("[shape]"), cyan(typeid.Describe(reflect.TypeFor[chat.Line]()))))
	os.Stdout.WriteString(fmt.Sprintf("    %s %016x\n", blue("[fingerprint]"), handshake.Fingerprint(types, nil)))

	for _, name := range codec.Names() {
		os.Stdout.WriteString(fmt.Sprintf("%s %s\n", yellow("[codec]"), white(name)))
	}
}

func fail(msg string, err error) {
	os.Stderr.WriteString(red("ERROR: ") + fmt.Sprintf("%s: %v\n", msg, err))
	os.Exit(1)
}
