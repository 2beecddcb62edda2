package wire

import (
	"fmt"
	"math/big"
)

// Int128 is a two's-complement 128-bit signed integer.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Uint128 is a 128-bit unsigned integer.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

var (
	two64  = new(big.Int).Lsh(big.NewInt(1), 64)
	two128 = new(big.Int).Lsh(big.NewInt(1), 128)
	minI   = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxI   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	mask64 = new(big.Int).Sub(two64, big.NewInt(1))
)

// I128 sign-extends v.
func I128(v int64) Int128 {
	return Int128{Hi: v >> 63, Lo: uint64(v)}
}

// U128 zero-extends v.
func U128(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Big returns v as a big.Int.
func (v Int128) Big() *big.Int {
	b := big.NewInt(v.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(v.Lo))
}

func (v Int128) String() string { return v.Big().String() }

// Big returns v as a big.Int.
func (v Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(v.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(v.Lo))
}

func (v Uint128) String() string { return v.Big().String() }

// Int128FromBig converts b, failing when it does not fit in 128 signed bits.
func Int128FromBig(b *big.Int) (Int128, error) {
	if b.Cmp(minI) < 0 || b.Cmp(maxI) > 0 {
		return Int128{}, fmt.Errorf("%s overflows i128", b)
	}
	m := new(big.Int).Mod(b, two128)
	lo := new(big.Int).And(m, mask64).Uint64()
	hi := new(big.Int).Rsh(m, 64).Uint64()
	return Int128{Hi: int64(hi), Lo: lo}, nil
}

// Uint128FromBig converts b, failing when it does not fit in 128 unsigned bits.
func Uint128FromBig(b *big.Int) (Uint128, error) {
	if b.Sign() < 0 || b.Cmp(two128) >= 0 {
		return Uint128{}, fmt.Errorf("%s overflows u128", b)
	}
	lo := new(big.Int).And(b, mask64).Uint64()
	hi := new(big.Int).Rsh(b, 64).Uint64()
	return Uint128{Hi: hi, Lo: lo}, nil
}

// ParseInt128 parses a base-10 signed integer.
func ParseInt128(s string) (Int128, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int128{}, fmt.Errorf("invalid i128 %q", s)
	}
	return Int128FromBig(b)
}

// ParseUint128 parses a base-10 unsigned integer.
func ParseUint128(s string) (Uint128, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Uint128{}, fmt.Errorf("invalid u128 %q", s)
	}
	return Uint128FromBig(b)
}

func (v *Int128) DecodeWire(d Decoder) (err error) {
	*v, err = d.DecodeI128()
	return err
}

func (v Int128) EncodeWire(e Encoder) error { return e.EncodeI128(v) }

func (v *Uint128) DecodeWire(d Decoder) (err error) {
	*v, err = d.DecodeU128()
	return err
}

func (v Uint128) EncodeWire(e Encoder) error { return e.EncodeU128(v) }

// Char is a Unicode scalar value. Plain rune fields are int32 on the wire;
// use Char to select the char kind.
type Char rune

func (c *Char) DecodeWire(d Decoder) error {
	r, err := d.DecodeChar()
	*c = Char(r)
	return err
}

func (c Char) EncodeWire(e Encoder) error { return e.EncodeChar(rune(c)) }

// Unit is the empty value.
type Unit struct{}

func (*Unit) DecodeWire(d Decoder) error { return d.DecodeUnit() }

func (Unit) EncodeWire(e Encoder) error { return e.EncodeUnit() }
