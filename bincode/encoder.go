package bincode

import (
	"io"
	"math"
	"unicode/utf8"

	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/wire"
)

// Encoder writes the fixed-width framing to an io.Writer. It is not safe
// for concurrent use.
type Encoder struct {
	w    io.Writer
	opts Options
	n    uint64
	buf  [16]byte
}

var _ wire.Encoder = (*Encoder)(nil)

func NewEncoder(w io.Writer, opts Options) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Written is the number of bytes written so far.
func (e *Encoder) Written() uint64 { return e.n }

func (e *Encoder) write(b []byte) error {
	if e.opts.Limit > 0 && e.n+uint64(len(b)) > e.opts.Limit {
		return errors.Overflow(errors.PhaseEncode, nil, e.n+uint64(len(b)), e.opts.Limit)
	}
	got, err := e.w.Write(b)
	e.n += uint64(got)
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "write failed")
	}
	return nil
}

func (e *Encoder) EncodeBool(v bool) error {
	if v {
		return e.EncodeU8(1)
	}
	return e.EncodeU8(0)
}

func (e *Encoder) EncodeI8(v int8) error   { return e.EncodeU8(uint8(v)) }
func (e *Encoder) EncodeI16(v int16) error { return e.EncodeU16(uint16(v)) }
func (e *Encoder) EncodeI32(v int32) error { return e.EncodeU32(uint32(v)) }
func (e *Encoder) EncodeI64(v int64) error { return e.EncodeU64(uint64(v)) }

func (e *Encoder) EncodeI128(v wire.Int128) error {
	return e.EncodeU128(wire.Uint128{Hi: uint64(v.Hi), Lo: v.Lo})
}

func (e *Encoder) EncodeU8(v uint8) error {
	e.buf[0] = v
	return e.write(e.buf[:1])
}

func (e *Encoder) EncodeU16(v uint16) error {
	e.opts.order().PutUint16(e.buf[:2], v)
	return e.write(e.buf[:2])
}

func (e *Encoder) EncodeU32(v uint32) error {
	e.opts.order().PutUint32(e.buf[:4], v)
	return e.write(e.buf[:4])
}

func (e *Encoder) EncodeU64(v uint64) error {
	e.opts.order().PutUint64(e.buf[:8], v)
	return e.write(e.buf[:8])
}

func (e *Encoder) EncodeU128(v wire.Uint128) error {
	order := e.opts.order()
	if isBigEndian(order) {
		order.PutUint64(e.buf[:8], v.Hi)
		order.PutUint64(e.buf[8:], v.Lo)
	} else {
		order.PutUint64(e.buf[:8], v.Lo)
		order.PutUint64(e.buf[8:], v.Hi)
	}
	return e.write(e.buf[:16])
}

func (e *Encoder) EncodeF32(v float32) error { return e.EncodeU32(math.Float32bits(v)) }
func (e *Encoder) EncodeF64(v float64) error { return e.EncodeU64(math.Float64bits(v)) }

func (e *Encoder) EncodeChar(v rune) error {
	if !utf8.ValidRune(v) {
		return errors.New(errors.PhaseEncode, errors.KindInvalidUTF8).
			Value(v).
			Detail("%U is not a Unicode scalar value", v).
			Build()
	}
	n := utf8.EncodeRune(e.buf[:], v)
	return e.write(e.buf[:n])
}

func (e *Encoder) EncodeString(v string) error {
	if err := e.EncodeU64(uint64(len(v))); err != nil {
		return err
	}
	return e.write([]byte(v))
}

func (e *Encoder) EncodeBytes(v []byte) error {
	if err := e.EncodeU64(uint64(len(v))); err != nil {
		return err
	}
	return e.write(v)
}

func (e *Encoder) EncodeUnit() error { return nil }

func (e *Encoder) EncodeUnitStruct(string) error { return nil }

func (e *Encoder) EncodeStruct(_ string, fields []string, emit func(wire.SeqWriter) error) error {
	return e.fixed(len(fields), emit)
}

func (e *Encoder) EncodeTuple(n int, emit func(wire.SeqWriter) error) error {
	return e.fixed(n, emit)
}

func (e *Encoder) EncodeTupleStruct(_ string, n int, emit func(wire.SeqWriter) error) error {
	return e.fixed(n, emit)
}

func (e *Encoder) EncodeNewtypeStruct(_ string, emit func(wire.Encoder) error) error {
	return emit(e)
}

func (e *Encoder) EncodeEnum(_ string, index uint32, _ string) error {
	return e.EncodeU32(index)
}

func (e *Encoder) EncodeSeq(n int, emit func(wire.SeqWriter) error) error {
	if err := e.EncodeU64(uint64(n)); err != nil {
		return err
	}
	return e.fixed(n, emit)
}

func (e *Encoder) EncodeMap(n int, emit func(wire.SeqWriter) error) error {
	if err := e.EncodeU64(uint64(n)); err != nil {
		return err
	}
	return e.fixed(2*n, emit)
}

func (e *Encoder) EncodeOption(present bool, emit func(wire.Encoder) error) error {
	if !present {
		return e.EncodeU8(0)
	}
	if err := e.EncodeU8(1); err != nil {
		return err
	}
	return emit(e)
}

// fixed runs emit and checks that it wrote exactly n elements.
func (e *Encoder) fixed(n int, emit func(wire.SeqWriter) error) error {
	w := &seqWriter{e: e, n: n}
	if err := emit(w); err != nil {
		return err
	}
	if w.i != n {
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Detail("wrote %d of %d declared elements", w.i, n).
			Build()
	}
	return nil
}

type seqWriter struct {
	e *Encoder
	n int
	i int
}

func (s *seqWriter) Len() int { return s.n }

func (s *seqWriter) Next(encode func(wire.Encoder) error) error {
	if s.i >= s.n {
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Detail("wrote past %d declared elements", s.n).
			Build()
	}
	s.i++
	return encode(s.e)
}
