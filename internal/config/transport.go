package config

import (
	"crypto/tls"

	"github.com/kbirk/msgstream/pkg/log"
	"github.com/kbirk/msgstream/pkg/transport"
	"github.com/kbirk/msgstream/pkg/transport/tcp"
	"github.com/kbirk/msgstream/pkg/transport/unix"
	"github.com/kbirk/msgstream/pkg/transport/websocket"
)

// ServerTransport builds the listening transport c describes.
func (c *Config) ServerTransport(logger log.Logger) transport.ServerTransport {
	switch c.Transport {
	case TransportUnix:
		return unix.NewServerTransport(unix.ServerTransportConfig{
			SocketPath: c.Address,
			Logger:     logger,
		})
	case TransportWebSocket:
		config := websocket.ServerTransportConfig{
			Address: c.Address,
			Logger:  logger,
		}
		if c.TLS.Enabled {
			config.CertFile = c.TLS.CertFile
			config.KeyFile = c.TLS.KeyFile
		}
		return websocket.NewServerTransport(config)
	default:
		if c.TLS.Enabled {
			return tcp.NewServerTransportTLS(tcp.ServerTransportTLSConfig{
				Address:  c.Address,
				NoDelay:  c.NoDelay,
				CertFile: c.TLS.CertFile,
				KeyFile:  c.TLS.KeyFile,
				Logger:   logger,
			})
		}
		return tcp.NewServerTransport(tcp.ServerTransportConfig{
			Address: c.Address,
			NoDelay: c.NoDelay,
			Logger:  logger,
		})
	}
}

// ClientTransport builds the dialing transport c describes.
func (c *Config) ClientTransport() (transport.ClientTransport, error) {
	switch c.Transport {
	case TransportUnix:
		return unix.NewClientTransport(unix.ClientTransportConfig{
			SocketPath: c.Address,
		}), nil
	case TransportWebSocket:
		config := websocket.ClientTransportConfig{
			Address: c.Address,
		}
		if c.TLS.Enabled {
			tlsConfig := &tls.Config{
				InsecureSkipVerify: c.TLS.InsecureSkipVerify,
				MinVersion:         tls.VersionTLS12,
			}
			if c.TLS.CAFile != "" {
				pool, err := tcp.LoadCertPool(c.TLS.CAFile)
				if err != nil {
					return nil, err
				}
				tlsConfig.RootCAs = pool
			}
			config.TLSConfig = tlsConfig
		}
		return websocket.NewClientTransport(config), nil
	default:
		if c.TLS.Enabled {
			return tcp.NewClientTransportTLS(tcp.ClientTransportTLSConfig{
				Address:            c.Address,
				NoDelay:            c.NoDelay,
				InsecureSkipVerify: c.TLS.InsecureSkipVerify,
				CAFile:             c.TLS.CAFile,
			}), nil
		}
		return tcp.NewClientTransport(tcp.ClientTransportConfig{
			Address: c.Address,
			NoDelay: c.NoDelay,
		}), nil
	}
}
