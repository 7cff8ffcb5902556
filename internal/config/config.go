// Package config loads msgstream's command line configuration.
//
// Settings come from an optional TOML or YAML file, picked by extension,
// and are then overridden by any command line flags that were set.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kbirk/msgstream/pkg/codec"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalid           = errors.New("config: invalid")
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
)

type Mode string

const (
	ModeListen Mode = "listen"
	ModeDial   Mode = "dial"
)

type Transport string

const (
	TransportTCP       Transport = "tcp"
	TransportUnix      Transport = "unix"
	TransportWebSocket Transport = "websocket"
)

type Config struct {
	// Mode is listen (accept one peer) or dial (connect to a peer).
	Mode Mode `toml:"mode" yaml:"mode"`

	Transport Transport `toml:"transport" yaml:"transport"`

	// Address is host:port for tcp and websocket, a socket path for unix.
	Address string `toml:"address" yaml:"address"`

	// Codec is a codec.ByName name.
	Codec string `toml:"codec" yaml:"codec"`

	// ReadTimeout bounds the handshake and every read. Zero waits forever.
	ReadTimeout time.Duration `toml:"read_timeout" yaml:"read_timeout"`

	// Unchecked skips the type handshake.
	Unchecked bool `toml:"unchecked" yaml:"unchecked"`

	NoDelay bool `toml:"no_delay" yaml:"no_delay"`

	// Name is attached to every line sent.
	Name string `toml:"name" yaml:"name"`

	Verbose bool `toml:"verbose" yaml:"verbose"`

	TLS TLSConfig `toml:"tls" yaml:"tls"`
}

type TLSConfig struct {
	Enabled            bool   `toml:"enabled" yaml:"enabled"`
	CertFile           string `toml:"cert_file" yaml:"cert_file"`
	KeyFile            string `toml:"key_file" yaml:"key_file"`
	CAFile             string `toml:"ca_file" yaml:"ca_file"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

func Default() *Config {
	return &Config{
		Mode:        ModeDial,
		Transport:   TransportTCP,
		Address:     "127.0.0.1:7420",
		Codec:       "cbor",
		ReadTimeout: 0,
		NoDelay:     true,
		Name:        defaultName(),
	}
}

func defaultName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "anonymous"
}

// LoadFile merges the file at path into c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.Decode(string(data), c)
		if err != nil {
			return fmt.Errorf("load config %q: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("load config %q: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(c); err != nil {
			return fmt.Errorf("load config %q: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	return nil
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeListen, ModeDial:
	default:
		return fmt.Errorf("%w: mode %q (expected listen or dial)", ErrInvalid, c.Mode)
	}

	switch c.Transport {
	case TransportTCP, TransportUnix, TransportWebSocket:
	default:
		return fmt.Errorf("%w: transport %q (expected tcp, unix or websocket)", ErrInvalid, c.Transport)
	}

	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrInvalid)
	}

	if _, err := codec.ByName(c.Codec); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: read timeout %s is negative", ErrInvalid, c.ReadTimeout)
	}

	if c.TLS.Enabled {
		if c.Transport == TransportUnix {
			return fmt.Errorf("%w: tls is not supported over unix sockets", ErrInvalid)
		}
		if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
			return fmt.Errorf("%w: tls cert_file and key_file must be set together", ErrInvalid)
		}
		if c.Mode == ModeListen && c.TLS.CertFile == "" {
			return fmt.Errorf("%w: listening with tls requires cert_file and key_file", ErrInvalid)
		}
	}
	return nil
}
