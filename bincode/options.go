package bincode

import (
	"bytes"
	"encoding/binary"

	"github.com/wippyai/dynshape/wire"
)

// Options configures the framing.
type Options struct {
	// ByteOrder of fixed-width integers and length prefixes. Nil means little-endian.
	ByteOrder binary.ByteOrder
	// AllowTrailingBytes makes Decoder.Finish accept unread input.
	AllowTrailingBytes bool
	// Limit caps the total bytes read or written. Zero means unlimited.
	Limit uint64
}

// DefaultOptions matches bincode 1 with fixed-width integers: little-endian,
// trailing bytes allowed, no limit.
func DefaultOptions() Options {
	return Options{
		ByteOrder:          binary.LittleEndian,
		AllowTrailingBytes: true,
	}
}

func (o Options) order() binary.ByteOrder {
	if o.ByteOrder == nil {
		return binary.LittleEndian
	}
	return o.ByteOrder
}

func isBigEndian(order binary.ByteOrder) bool {
	return order.Uint16([]byte{0, 1}) == 1
}

// Marshal encodes v with the reflection driver.
func (o Options) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.Encode(NewEncoder(&buf, o), v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into the value ptr points to and applies the
// trailing-byte policy.
func (o Options) Unmarshal(data []byte, ptr any) error {
	d := NewDecoder(bytes.NewReader(data), o)
	if err := wire.Decode(d, ptr); err != nil {
		return err
	}
	return d.Finish()
}

// Marshal encodes v with DefaultOptions.
func Marshal(v any) ([]byte, error) {
	return DefaultOptions().Marshal(v)
}

// Unmarshal decodes data with DefaultOptions.
func Unmarshal(data []byte, ptr any) error {
	return DefaultOptions().Unmarshal(data, ptr)
}
