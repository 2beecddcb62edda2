package dynamic

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/schema"
	"github.com/wippyai/dynshape/wire"
)

// MarshalJSON projects v onto JSON. Structs become objects in field order,
// tuples arrays, newtypes their inner value, unit and unit structs null,
// enums their variant name. 128-bit integers are decimal strings. Infinities
// are the strings "+Inf" and "-Inf"; a NaN is "NaN:0x" followed by its bits
// in hex so the payload survives FromJSON.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) appendJSON(buf *bytes.Buffer, path []string) error {
	if v == nil {
		return errors.SchemaNotProvided(errors.PhaseEncode, path)
	}
	switch v.kind {
	case schema.KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case schema.KindI8, schema.KindI16, schema.KindI32, schema.KindI64:
		buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case schema.KindU8, schema.KindU16, schema.KindU32, schema.KindU64:
		buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case schema.KindI128:
		writeJSONString(buf, v.Int128().String())
	case schema.KindU128:
		writeJSONString(buf, v.Uint128().String())
	case schema.KindF32:
		writeJSONFloat(buf, v.lo, 32)
	case schema.KindF64:
		writeJSONFloat(buf, v.lo, 64)
	case schema.KindChar:
		writeJSONString(buf, string(v.Char()))
	case schema.KindString:
		writeJSONString(buf, v.text)
	case schema.KindUnit, schema.KindUnitStruct:
		buf.WriteString("null")
	case schema.KindStruct:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, f.Name)
			buf.WriteByte(':')
			if err := f.Value.appendJSON(buf, appendPath(path, f.Name)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case schema.KindTuple, schema.KindTupleStruct:
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.appendJSON(buf, appendPath(path, schema.Index(i))); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case schema.KindNewtypeStruct:
		return v.Inner().appendJSON(buf, appendPath(path, "0"))
	case schema.KindEnum:
		name := v.Variant()
		if name == "" {
			return errors.SchemaMismatch(errors.PhaseEncode, path, v.enum.String(),
				"variant index %d out of range", v.lo)
		}
		writeJSONString(buf, name)
	default:
		return errors.UnsupportedShape(errors.PhaseEncode, path, v.kind.String())
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

const nanPrefix = "NaN:0x"

func writeJSONFloat(buf *bytes.Buffer, bits uint64, bitSize int) {
	f := floatFromBits(bits, bitSize)
	switch {
	case math.IsNaN(f):
		writeJSONString(buf, nanPrefix+strconv.FormatUint(bits, 16))
	case math.IsInf(f, 0):
		writeJSONString(buf, formatFloat(f, bitSize))
	default:
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, bitSize))
	}
}

func floatFromBits(bits uint64, bitSize int) float64 {
	if bitSize == 32 {
		return float64(math.Float32frombits(uint32(bits)))
	}
	return math.Float64frombits(bits)
}

// parseNaN reads the "NaN:0x<bits>" form written by MarshalJSON.
func parseNaN(s *schema.Schema, text string, size int, path []string) (*Value, error) {
	bits, err := strconv.ParseUint(strings.TrimPrefix(text, nanPrefix), 16, size)
	if err != nil {
		return nil, mismatch(s, path, "want %s NaN bits: %v", s.Kind(), err)
	}
	if !math.IsNaN(floatFromBits(bits, size)) {
		return nil, mismatch(s, path, "bits %#x are not a NaN", bits)
	}
	if size == 32 {
		return F32Bits(uint32(bits)), nil
	}
	return F64Bits(bits), nil
}

// FromJSON builds a value of shape s from its JSON projection. Enums accept
// the variant name or its index; objects must name exactly the schema fields.
func FromJSON(s *schema.Schema, data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.PhaseSchema, errors.KindInvalidData, err, "malformed JSON value")
	}
	return fromJSON(s, raw, nil)
}

func mismatch(s *schema.Schema, path []string, format string, args ...any) error {
	return errors.SchemaMismatch(errors.PhaseSchema, path, s.String(), format, args...)
}

func fromJSON(s *schema.Schema, raw any, path []string) (*Value, error) {
	if s == nil {
		return nil, errors.SchemaNotProvided(errors.PhaseSchema, path)
	}
	switch s.Kind() {
	case schema.KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, mismatch(s, path, "want boolean, got %T", raw)
		}
		return Bool(b), nil

	case schema.KindI8, schema.KindI16, schema.KindI32, schema.KindI64:
		n, err := strconv.ParseInt(numberText(raw), 10, bitSize(s.Kind()))
		if err != nil {
			return nil, mismatch(s, path, "want %s: %v", s.Kind(), err)
		}
		return &Value{kind: s.Kind(), lo: uint64(n)}, nil

	case schema.KindU8, schema.KindU16, schema.KindU32, schema.KindU64:
		n, err := strconv.ParseUint(numberText(raw), 10, bitSize(s.Kind()))
		if err != nil {
			return nil, mismatch(s, path, "want %s: %v", s.Kind(), err)
		}
		return &Value{kind: s.Kind(), lo: n}, nil

	case schema.KindI128:
		n, err := wire.ParseInt128(numberText(raw))
		if err != nil {
			return nil, mismatch(s, path, "%v", err)
		}
		return I128(n), nil

	case schema.KindU128:
		n, err := wire.ParseUint128(numberText(raw))
		if err != nil {
			return nil, mismatch(s, path, "%v", err)
		}
		return U128(n), nil

	case schema.KindF32, schema.KindF64:
		size := bitSize(s.Kind())
		text := numberText(raw)
		if strings.HasPrefix(text, nanPrefix) {
			return parseNaN(s, text, size, path)
		}
		f, err := strconv.ParseFloat(text, size)
		if err != nil {
			return nil, mismatch(s, path, "want %s: %v", s.Kind(), err)
		}
		if size == 32 {
			return F32(float32(f)), nil
		}
		return F64(f), nil

	case schema.KindChar:
		str, ok := raw.(string)
		if !ok || utf8.RuneCountInString(str) != 1 {
			return nil, mismatch(s, path, "want a single-character string")
		}
		r, _ := utf8.DecodeRuneInString(str)
		return Char(r), nil

	case schema.KindString:
		str, ok := raw.(string)
		if !ok {
			return nil, mismatch(s, path, "want string, got %T", raw)
		}
		return String(str), nil

	case schema.KindUnit, schema.KindUnitStruct:
		if raw != nil {
			return nil, mismatch(s, path, "want null, got %T", raw)
		}
		if s.Kind() == schema.KindUnit {
			return Unit(), nil
		}
		return &Value{kind: schema.KindUnitStruct, name: s.Name()}, nil

	case schema.KindStruct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, mismatch(s, path, "want object, got %T", raw)
		}
		if len(obj) != s.Len() {
			return nil, mismatch(s, path, "object has %d keys, schema %d fields", len(obj), s.Len())
		}
		v := &Value{kind: schema.KindStruct, name: s.Name(), names: s.FieldNames(), fields: make([]Field, s.Len())}
		for i, f := range s.Fields() {
			fr, ok := obj[f.Name]
			if !ok {
				return nil, mismatch(s, path, "missing field %q", f.Name)
			}
			fv, err := fromJSON(f.Schema, fr, appendPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			v.fields[i] = Field{Name: f.Name, Value: fv}
		}
		return v, nil

	case schema.KindTuple, schema.KindTupleStruct:
		arr, ok := raw.([]any)
		if !ok {
			return nil, mismatch(s, path, "want array, got %T", raw)
		}
		if len(arr) != s.Len() {
			return nil, mismatch(s, path, "array has %d elements, schema %d", len(arr), s.Len())
		}
		v := &Value{kind: s.Kind(), name: s.Name(), elems: make([]*Value, len(arr))}
		for i, er := range arr {
			ev, err := fromJSON(s.Elems()[i], er, appendPath(path, schema.Index(i)))
			if err != nil {
				return nil, err
			}
			v.elems[i] = ev
		}
		return v, nil

	case schema.KindNewtypeStruct:
		inner, err := fromJSON(s.Inner(), raw, appendPath(path, "0"))
		if err != nil {
			return nil, err
		}
		return Newtype(s.Name(), inner), nil

	case schema.KindEnum:
		switch r := raw.(type) {
		case string:
			for i, name := range s.Variants() {
				if name == r {
					return Enum(s, uint32(i)), nil
				}
			}
			return nil, mismatch(s, path, "unknown variant %q", r)
		case json.Number:
			idx, err := strconv.ParseUint(r.String(), 10, 32)
			if err != nil || idx >= uint64(len(s.Variants())) {
				return nil, mismatch(s, path, "variant index %s out of range", r)
			}
			return Enum(s, uint32(idx)), nil
		default:
			return nil, mismatch(s, path, "want variant name, got %T", raw)
		}
	}
	return nil, errors.UnsupportedShape(errors.PhaseSchema, path, s.Kind().String())
}

// numberText returns the literal of a JSON number, or of a string holding
// one. Other values yield "" which fails to parse.
func numberText(raw any) string {
	switch r := raw.(type) {
	case json.Number:
		return r.String()
	case string:
		return r
	}
	return ""
}

func bitSize(k schema.Kind) int {
	switch k {
	case schema.KindI8, schema.KindU8:
		return 8
	case schema.KindI16, schema.KindU16:
		return 16
	case schema.KindI32, schema.KindU32, schema.KindF32:
		return 32
	}
	return 64
}
