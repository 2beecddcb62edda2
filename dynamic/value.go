package dynamic

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/dynshape/internal/names"
	"github.com/wippyai/dynshape/schema"
	"github.com/wippyai/dynshape/wire"
)

// Value is a decoded value whose variants mirror schema kinds one-to-one.
// Scalars keep their exact bit pattern; floats are stored as raw bits so
// every NaN payload survives a round trip.
type Value struct {
	kind   schema.Kind
	name   string
	lo     uint64
	hi     uint64
	text   string
	fields []Field
	names  []string
	elems  []*Value
	enum   *schema.Schema
}

// Field is a named struct member.
type Field struct {
	Name  string
	Value *Value
}

// F builds a Field.
func F(name string, v *Value) Field {
	return Field{Name: name, Value: v}
}

func scalar(k schema.Kind, bits uint64) *Value {
	return &Value{kind: k, lo: bits}
}

func Bool(b bool) *Value {
	if b {
		return scalar(schema.KindBool, 1)
	}
	return scalar(schema.KindBool, 0)
}

func I8(v int8) *Value   { return scalar(schema.KindI8, uint64(int64(v))) }
func I16(v int16) *Value { return scalar(schema.KindI16, uint64(int64(v))) }
func I32(v int32) *Value { return scalar(schema.KindI32, uint64(int64(v))) }
func I64(v int64) *Value { return scalar(schema.KindI64, uint64(v)) }

func I128(v wire.Int128) *Value {
	return &Value{kind: schema.KindI128, lo: v.Lo, hi: uint64(v.Hi)}
}

func U8(v uint8) *Value   { return scalar(schema.KindU8, uint64(v)) }
func U16(v uint16) *Value { return scalar(schema.KindU16, uint64(v)) }
func U32(v uint32) *Value { return scalar(schema.KindU32, uint64(v)) }
func U64(v uint64) *Value { return scalar(schema.KindU64, v) }

func U128(v wire.Uint128) *Value {
	return &Value{kind: schema.KindU128, lo: v.Lo, hi: v.Hi}
}

func F32(v float32) *Value { return F32Bits(math.Float32bits(v)) }
func F64(v float64) *Value { return F64Bits(math.Float64bits(v)) }

// F32Bits builds an f32 from its IEEE 754 bit pattern.
func F32Bits(bits uint32) *Value { return scalar(schema.KindF32, uint64(bits)) }

// F64Bits builds an f64 from its IEEE 754 bit pattern.
func F64Bits(bits uint64) *Value { return scalar(schema.KindF64, bits) }

func Char(r rune) *Value { return scalar(schema.KindChar, uint64(uint32(r))) }

func String(s string) *Value { return &Value{kind: schema.KindString, text: s} }

func Unit() *Value { return &Value{kind: schema.KindUnit} }

// Struct builds a struct value with ordered fields.
func Struct(name string, fields ...Field) *Value {
	v := &Value{
		kind:   schema.KindStruct,
		name:   names.String(name),
		fields: make([]Field, len(fields)),
		names:  make([]string, len(fields)),
	}
	for i, f := range fields {
		n := names.String(f.Name)
		v.fields[i] = Field{Name: n, Value: f.Value}
		v.names[i] = n
	}
	return v
}

func Tuple(elems ...*Value) *Value {
	return &Value{kind: schema.KindTuple, elems: append([]*Value(nil), elems...)}
}

func TupleStruct(name string, elems ...*Value) *Value {
	return &Value{
		kind:  schema.KindTupleStruct,
		name:  names.String(name),
		elems: append([]*Value(nil), elems...),
	}
}

func Newtype(name string, inner *Value) *Value {
	return &Value{kind: schema.KindNewtypeStruct, name: names.String(name), elems: []*Value{inner}}
}

func UnitStruct(name string) *Value {
	return &Value{kind: schema.KindUnitStruct, name: names.String(name)}
}

// Enum selects variant index of the enum schema s.
func Enum(s *schema.Schema, index uint32) *Value {
	v := &Value{kind: schema.KindEnum, enum: s, lo: uint64(index)}
	if s != nil {
		v.name = s.Name()
	}
	return v
}

func (v *Value) Kind() schema.Kind { return v.kind }

// Name is the type name of named kinds and "" otherwise.
func (v *Value) Name() string { return v.name }

func (v *Value) Bool() bool { return v.lo != 0 }

// Int returns a signed integer of up to 64 bits.
func (v *Value) Int() int64 { return int64(v.lo) }

// Uint returns an unsigned integer of up to 64 bits.
func (v *Value) Uint() uint64 { return v.lo }

func (v *Value) Int128() wire.Int128 { return wire.Int128{Hi: int64(v.hi), Lo: v.lo} }

func (v *Value) Uint128() wire.Uint128 { return wire.Uint128{Hi: v.hi, Lo: v.lo} }

func (v *Value) Float32() float32 { return math.Float32frombits(uint32(v.lo)) }

func (v *Value) Float64() float64 { return math.Float64frombits(v.lo) }

// Bits returns the raw storage of a scalar: the IEEE 754 pattern for floats,
// the sign-extended two's complement for signed integers.
func (v *Value) Bits() uint64 { return v.lo }

func (v *Value) Char() rune { return rune(uint32(v.lo)) }

// Text returns the content of a string value.
func (v *Value) Text() string { return v.text }

// Fields returns the struct fields. The slice must not be modified.
func (v *Value) Fields() []Field { return v.fields }

// Field looks up a struct field by name.
func (v *Value) Field(name string) (*Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Elems returns tuple and tuple struct elements. The slice must not be modified.
func (v *Value) Elems() []*Value {
	if v.kind == schema.KindNewtypeStruct {
		return nil
	}
	return v.elems
}

// Inner returns the wrapped value of a newtype struct.
func (v *Value) Inner() *Value {
	if v.kind != schema.KindNewtypeStruct || len(v.elems) == 0 {
		return nil
	}
	return v.elems[0]
}

// EnumSchema returns the schema an enum value was built from.
func (v *Value) EnumSchema() *schema.Schema { return v.enum }

// Index returns the selected variant index of an enum.
func (v *Value) Index() uint32 { return uint32(v.lo) }

// Variant returns the selected variant name, or "" when the index is out of range.
func (v *Value) Variant() string {
	if v.enum == nil {
		return ""
	}
	vs := v.enum.Variants()
	if int(v.lo) >= len(vs) {
		return ""
	}
	return vs[v.lo]
}

// Len is the number of positional children.
func (v *Value) Len() int {
	switch v.kind {
	case schema.KindStruct:
		return len(v.fields)
	case schema.KindTuple, schema.KindTupleStruct, schema.KindNewtypeStruct:
		return len(v.elems)
	}
	return 0
}

// Child returns the i-th positional child and its path label.
func (v *Value) Child(i int) (*Value, string) {
	switch v.kind {
	case schema.KindStruct:
		return v.fields[i].Value, v.fields[i].Name
	case schema.KindTuple, schema.KindTupleStruct:
		return v.elems[i], schema.Index(i)
	case schema.KindNewtypeStruct:
		return v.elems[0], "0"
	}
	return nil, ""
}

// With returns a copy of v with the i-th positional child replaced.
func (v *Value) With(i int, child *Value) *Value {
	cp := *v
	switch v.kind {
	case schema.KindStruct:
		cp.fields = append([]Field(nil), v.fields...)
		cp.fields[i].Value = child
	case schema.KindTuple, schema.KindTupleStruct, schema.KindNewtypeStruct:
		cp.elems = append([]*Value(nil), v.elems...)
		cp.elems[i] = child
	}
	return &cp
}

// Equal reports whether a and b hold the same kinds, names and bits.
func Equal(a, b *Value) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.kind != b.kind || a.name != b.name || a.lo != b.lo || a.hi != b.hi || a.text != b.text {
		return false
	}
	switch a.kind {
	case schema.KindStruct:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Name != b.fields[i].Name || !Equal(a.fields[i].Value, b.fields[i].Value) {
				return false
			}
		}
	case schema.KindTuple, schema.KindTupleStruct, schema.KindNewtypeStruct:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
	case schema.KindEnum:
		return schema.Equal(a.enum, b.enum)
	}
	return true
}

// Equal reports whether v and o hold the same data.
func (v *Value) Equal(o *Value) bool { return Equal(v, o) }

func (v *Value) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

func (v *Value) write(b *strings.Builder) {
	if v == nil {
		b.WriteString("<nil>")
		return
	}
	switch v.kind {
	case schema.KindBool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case schema.KindI8, schema.KindI16, schema.KindI32, schema.KindI64:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case schema.KindU8, schema.KindU16, schema.KindU32, schema.KindU64:
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
	case schema.KindI128:
		b.WriteString(v.Int128().String())
	case schema.KindU128:
		b.WriteString(v.Uint128().String())
	case schema.KindF32:
		b.WriteString(formatFloat(float64(v.Float32()), 32))
	case schema.KindF64:
		b.WriteString(formatFloat(v.Float64(), 64))
	case schema.KindChar:
		b.WriteString(strconv.QuoteRune(v.Char()))
	case schema.KindString:
		b.WriteString(strconv.Quote(v.text))
	case schema.KindUnit:
		b.WriteString("()")
	case schema.KindStruct:
		b.WriteString(v.name)
		if len(v.fields) == 0 {
			b.WriteString(" {}")
			return
		}
		b.WriteString(" { ")
		for i, f := range v.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			f.Value.write(b)
		}
		b.WriteString(" }")
	case schema.KindTuple:
		b.WriteByte('(')
		writeList(b, v.elems)
		if len(v.elems) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case schema.KindTupleStruct, schema.KindNewtypeStruct:
		b.WriteString(v.name)
		b.WriteByte('(')
		writeList(b, v.elems)
		b.WriteByte(')')
	case schema.KindUnitStruct:
		b.WriteString(v.name)
	case schema.KindEnum:
		b.WriteString(v.name)
		b.WriteString("::")
		if name := v.Variant(); name != "" {
			b.WriteString(name)
		} else {
			b.WriteString(strconv.FormatUint(v.lo, 10))
		}
	}
}

func writeList(b *strings.Builder, elems []*Value) {
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		e.write(b)
	}
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
