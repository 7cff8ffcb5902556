package channel

import (
	"github.com/kbirk/msgstream/pkg/codec"
	"github.com/kbirk/msgstream/pkg/log"
	"github.com/kbirk/msgstream/pkg/typeid"
)

type options struct {
	codec  codec.Codec
	logger log.Logger
	types  *typeid.Pair
}

// Option configures a channel at construction.
type Option func(*options)

// WithCodec sets the wire codec. Both endpoints must use the same codec.
// The default is codec.CBOR().
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithLogger sets the logger for handshake events.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTypes replaces the type descriptor derived from the channel's type
// parameters. Use it when two differently declared types are known to be
// wire compatible and should pass the handshake under a shared identity.
func WithTypes(types typeid.Pair) Option {
	return func(o *options) {
		o.types = &types
	}
}

func buildOptions[S, R any](opts []Option) *options {
	o := &options{
		codec: codec.CBOR(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.types == nil {
		types := typeid.PairOf[S, R]()
		o.types = &types
	}
	return o
}

func (o *options) logDebug(msg string) {
	if o.logger != nil {
		o.logger.Debug(msg)
	}
}

func (o *options) logWarn(msg string) {
	if o.logger != nil {
		o.logger.Warn(msg)
	}
}

func (o *options) logError(msg string) {
	if o.logger != nil {
		o.logger.Error(msg)
	}
}
