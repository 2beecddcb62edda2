package bincode

import (
	"bytes"
	stderrors "errors"
	"io"
	"math"
	"unicode/utf8"

	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/wire"
)

// Decoder reads the fixed-width framing from an io.Reader. It is not safe
// for concurrent use.
type Decoder struct {
	r    io.Reader
	opts Options
	n    uint64
	buf  [16]byte
}

var _ wire.Decoder = (*Decoder)(nil)

func NewDecoder(r io.Reader, opts Options) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Consumed is the number of bytes read so far.
func (d *Decoder) Consumed() uint64 { return d.n }

// Finish applies the trailing-byte policy once a value has been decoded.
func (d *Decoder) Finish() error {
	if d.opts.AllowTrailingBytes {
		return nil
	}
	var one [1]byte
	n, err := d.r.Read(one[:])
	if n > 0 {
		return errors.TrailingBytes(d.n)
	}
	if err != nil && err != io.EOF {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "checking for trailing bytes")
	}
	return nil
}

func (d *Decoder) reserve(n uint64) error {
	if d.opts.Limit > 0 && d.n+n > d.opts.Limit {
		return errors.Overflow(errors.PhaseDecode, nil, d.n+n, d.opts.Limit)
	}
	return nil
}

func (d *Decoder) read(n int) ([]byte, error) {
	if err := d.reserve(uint64(n)); err != nil {
		return nil, err
	}
	b := d.buf[:n]
	got, err := io.ReadFull(d.r, b)
	d.n += uint64(got)
	if err != nil {
		return nil, d.eof(n, err)
	}
	return b, nil
}

func (d *Decoder) eof(n int, err error) error {
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Value(d.n).
			Detail("unexpected end of input reading %d bytes at offset %d", n, d.n).
			Build()
	}
	return errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "read failed")
}

func (d *Decoder) length() (int, error) {
	n, err := d.DecodeU64()
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, errors.Overflow(errors.PhaseDecode, nil, n, math.MaxInt32)
	}
	return int(n), nil
}

// readN reads a length-prefixed payload without trusting the prefix for
// the allocation size.
func (d *Decoder) readN(n int) ([]byte, error) {
	var b bytes.Buffer
	got, err := io.CopyN(&b, d.r, int64(n))
	d.n += uint64(got)
	if err != nil {
		return nil, d.eof(n, err)
	}
	return b.Bytes(), nil
}

func (d *Decoder) DecodeBool() (bool, error) {
	b, err := d.read(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Value(b[0]).
		Detail("invalid bool byte 0x%02x", b[0]).
		Build()
}

func (d *Decoder) DecodeI8() (int8, error) {
	n, err := d.DecodeU8()
	return int8(n), err
}

func (d *Decoder) DecodeI16() (int16, error) {
	n, err := d.DecodeU16()
	return int16(n), err
}

func (d *Decoder) DecodeI32() (int32, error) {
	n, err := d.DecodeU32()
	return int32(n), err
}

func (d *Decoder) DecodeI64() (int64, error) {
	n, err := d.DecodeU64()
	return int64(n), err
}

func (d *Decoder) DecodeI128() (wire.Int128, error) {
	u, err := d.DecodeU128()
	return wire.Int128{Hi: int64(u.Hi), Lo: u.Lo}, err
}

func (d *Decoder) DecodeU8() (uint8, error) {
	b, err := d.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) DecodeU16() (uint16, error) {
	b, err := d.read(2)
	if err != nil {
		return 0, err
	}
	return d.opts.order().Uint16(b), nil
}

func (d *Decoder) DecodeU32() (uint32, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return d.opts.order().Uint32(b), nil
}

func (d *Decoder) DecodeU64() (uint64, error) {
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	return d.opts.order().Uint64(b), nil
}

func (d *Decoder) DecodeU128() (wire.Uint128, error) {
	b, err := d.read(16)
	if err != nil {
		return wire.Uint128{}, err
	}
	order := d.opts.order()
	if isBigEndian(order) {
		return wire.Uint128{Hi: order.Uint64(b[:8]), Lo: order.Uint64(b[8:])}, nil
	}
	return wire.Uint128{Lo: order.Uint64(b[:8]), Hi: order.Uint64(b[8:])}, nil
}

func (d *Decoder) DecodeF32() (float32, error) {
	n, err := d.DecodeU32()
	return math.Float32frombits(n), err
}

func (d *Decoder) DecodeF64() (float64, error) {
	n, err := d.DecodeU64()
	return math.Float64frombits(n), err
}

// DecodeChar reads one UTF-8 encoded scalar value, sized by its lead byte.
func (d *Decoder) DecodeChar() (rune, error) {
	lead, err := d.read(1)
	if err != nil {
		return 0, err
	}
	var enc [utf8.UTFMax]byte
	enc[0] = lead[0]
	width := utf8Width(lead[0])
	if width == 0 {
		return 0, errors.InvalidUTF8(errors.PhaseDecode, nil, enc[:1])
	}
	if width > 1 {
		rest, err := d.read(width - 1)
		if err != nil {
			return 0, err
		}
		copy(enc[1:], rest)
	}
	r, size := utf8.DecodeRune(enc[:width])
	if r == utf8.RuneError && size <= 1 {
		return 0, errors.InvalidUTF8(errors.PhaseDecode, nil, enc[:width])
	}
	return r, nil
}

func utf8Width(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	}
	return 0
}

func (d *Decoder) DecodeString() (string, error) {
	b, err := d.DecodeBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, nil, b)
	}
	return string(b), nil
}

func (d *Decoder) DecodeBytes() ([]byte, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	if err := d.reserve(uint64(n)); err != nil {
		return nil, err
	}
	return d.readN(n)
}

func (d *Decoder) DecodeUnit() error { return nil }

func (d *Decoder) DecodeUnitStruct(string) error { return nil }

func (d *Decoder) DecodeStruct(_ string, fields []string, visit func(wire.SeqReader) error) error {
	return d.fixed(len(fields), visit)
}

func (d *Decoder) DecodeTuple(n int, visit func(wire.SeqReader) error) error {
	return d.fixed(n, visit)
}

func (d *Decoder) DecodeTupleStruct(_ string, n int, visit func(wire.SeqReader) error) error {
	return d.fixed(n, visit)
}

func (d *Decoder) DecodeNewtypeStruct(_ string, visit func(wire.Decoder) error) error {
	return visit(d)
}

func (d *Decoder) DecodeEnum(string, []string) (uint32, error) {
	return d.DecodeU32()
}

func (d *Decoder) DecodeSeq(visit func(wire.SeqReader) error) error {
	n, err := d.length()
	if err != nil {
		return err
	}
	return d.fixed(n, visit)
}

func (d *Decoder) DecodeMap(visit func(wire.SeqReader) error) error {
	n, err := d.length()
	if err != nil {
		return err
	}
	return d.fixed(2*n, visit)
}

func (d *Decoder) DecodeOption(visit func(wire.Decoder) error) (bool, error) {
	tag, err := d.DecodeU8()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, visit(d)
	}
	return false, errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Value(tag).
		Detail("invalid option tag %d", tag).
		Build()
}

// fixed runs visit over n concatenated elements. The framing carries no
// arity for structs and tuples, so the declared count is the element count.
func (d *Decoder) fixed(n int, visit func(wire.SeqReader) error) error {
	return visit(&seqReader{d: d, n: n})
}

type seqReader struct {
	d *Decoder
	n int
	i int
}

func (s *seqReader) Len() int { return s.n }

func (s *seqReader) Next(decode func(wire.Decoder) error) error {
	if s.i >= s.n {
		return errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("read past %d elements", s.n).
			Build()
	}
	s.i++
	return decode(s.d)
}
