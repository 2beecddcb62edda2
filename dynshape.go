package dynshape

import (
	"bytes"
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/wippyai/dynshape/bincode"
	"github.com/wippyai/dynshape/dynamic"
	"github.com/wippyai/dynshape/internal/logging"
	"github.com/wippyai/dynshape/schema"
)

// Option adjusts the fixed-width framing used by Decode and Encode.
type Option func(*bincode.Options)

// WithByteOrder sets the integer byte order. The default is little-endian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *bincode.Options) { o.ByteOrder = order }
}

// WithStrictLength makes Decode reject input left over after the value.
func WithStrictLength() Option {
	return func(o *bincode.Options) { o.AllowTrailingBytes = false }
}

// WithLimit caps the number of bytes a single call may read or write.
func WithLimit(n uint64) Option {
	return func(o *bincode.Options) { o.Limit = n }
}

// WithOptions replaces the framing options wholesale.
func WithOptions(opts bincode.Options) Option {
	return func(o *bincode.Options) { *o = opts }
}

func options(opts []Option) bincode.Options {
	o := bincode.DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Infer records the schema of T.
func Infer[T any](opts ...schema.RecordOption) (*schema.Schema, error) {
	return schema.Infer[T](opts...)
}

// Decode reads one value shaped by s from data. Trailing bytes are ignored
// unless WithStrictLength is given.
func Decode(s *schema.Schema, data []byte, opts ...Option) (*dynamic.Value, error) {
	dec := bincode.NewDecoder(bytes.NewReader(data), options(opts))
	v, err := dynamic.Decode(s, dec)
	if err != nil {
		return nil, err
	}
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	return v, nil
}

// Encode returns the framing of v.
func Encode(v *dynamic.Value, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := dynamic.Encode(v, bincode.NewEncoder(&buf, options(opts))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SetLogger installs the logger used by every package in the module.
// A nil logger silences them.
func SetLogger(l *zap.Logger) {
	logging.Set(l)
}
