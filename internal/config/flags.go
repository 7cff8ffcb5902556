package config

import (
	"github.com/spf13/pflag"
)

// Options is the parsed command line.
type Options struct {
	Config *Config

	// ConfigPath is the file the configuration was loaded from, if any.
	ConfigPath string

	// PrintTypes asks for the message type identities instead of a session.
	PrintTypes bool
}

// Parse reads the command line. The file named by --config is loaded
// first; flags given explicitly override its values.
func Parse(name string, args []string) (*Options, error) {
	defaults := Default()
	flags := *defaults

	var mode, transport string
	opts := &Options{}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a .toml or .yaml config file")
	fs.BoolVar(&opts.PrintTypes, "types", false, "Print message type identities and exit")
	fs.StringVarP(&mode, "mode", "m", string(defaults.Mode), "listen or dial")
	fs.StringVarP(&transport, "transport", "t", string(defaults.Transport), "tcp, unix or websocket")
	fs.StringVarP(&flags.Address, "address", "a", defaults.Address, "host:port, or a socket path for unix")
	fs.StringVar(&flags.Codec, "codec", defaults.Codec, "Wire codec: cbor, binary, optionally +lz4 or +zstd")
	fs.DurationVar(&flags.ReadTimeout, "read-timeout", defaults.ReadTimeout, "Handshake and read timeout, 0 to wait forever")
	fs.BoolVar(&flags.Unchecked, "unchecked", defaults.Unchecked, "Skip the type handshake")
	fs.BoolVar(&flags.NoDelay, "no-delay", defaults.NoDelay, "Disable Nagle's algorithm on tcp")
	fs.StringVarP(&flags.Name, "name", "n", defaults.Name, "Name attached to sent lines")
	fs.BoolVarP(&flags.Verbose, "verbose", "v", defaults.Verbose, "Log debug messages")
	fs.BoolVar(&flags.TLS.Enabled, "tls", defaults.TLS.Enabled, "Use TLS")
	fs.StringVar(&flags.TLS.CertFile, "tls-cert", "", "TLS certificate file (PEM)")
	fs.StringVar(&flags.TLS.KeyFile, "tls-key", "", "TLS private key file (PEM)")
	fs.StringVar(&flags.TLS.CAFile, "tls-ca", "", "TLS CA file (PEM) for verifying the peer")
	fs.BoolVar(&flags.TLS.InsecureSkipVerify, "tls-insecure", false, "Skip TLS certificate verification")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if opts.ConfigPath != "" {
		if err := cfg.LoadFile(opts.ConfigPath); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = Mode(mode)
		case "transport":
			cfg.Transport = Transport(transport)
		case "address":
			cfg.Address = flags.Address
		case "codec":
			cfg.Codec = flags.Codec
		case "read-timeout":
			cfg.ReadTimeout = flags.ReadTimeout
		case "unchecked":
			cfg.Unchecked = flags.Unchecked
		case "no-delay":
			cfg.NoDelay = flags.NoDelay
		case "name":
			cfg.Name = flags.Name
		case "verbose":
			cfg.Verbose = flags.Verbose
		case "tls":
			cfg.TLS.Enabled = flags.TLS.Enabled
		case "tls-cert":
			cfg.TLS.CertFile = flags.TLS.CertFile
		case "tls-key":
			cfg.TLS.KeyFile = flags.TLS.KeyFile
		case "tls-ca":
			cfg.TLS.CAFile = flags.TLS.CAFile
		case "tls-insecure":
			cfg.TLS.InsecureSkipVerify = flags.TLS.InsecureSkipVerify
		}
	})

	opts.Config = cfg
	return opts, nil
}
