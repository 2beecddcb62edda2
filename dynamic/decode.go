package dynamic

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/internal/logging"
	"github.com/wippyai/dynshape/schema"
	"github.com/wippyai/dynshape/wire"
)

// Decode reads one value shaped by s from d. The expected schema of each
// nested element is handed to the element callback directly, so concurrent
// decodes share no state. No partial value is returned on error.
func Decode(s *schema.Schema, d wire.Decoder) (*Value, error) {
	v, err := decode(s, d, nil)
	if err != nil {
		logging.Named("dynamic").Debug("decode failed",
			zap.Stringer("schema", s),
			zap.Error(err))
		return nil, err
	}
	return v, nil
}

// fail maps a failure onto the engine taxonomy. Engine errors keep their own
// path, or take path when they carry none; anything else a collaborator raised
// becomes a protocol error at path.
func fail(phase errors.Phase, path []string, err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Kind.IsCore() {
		return errors.WithPath(err, path)
	}
	return errors.Protocol(phase, path, err)
}

func arity(phase errors.Phase, path []string, s *schema.Schema, got int) error {
	return errors.SchemaMismatch(phase, path, s.String(),
		"%s expects %d elements, source declares %d", s.Kind(), s.Len(), got)
}

func decode(s *schema.Schema, d wire.Decoder, path []string) (*Value, error) {
	if s == nil {
		return nil, errors.SchemaNotProvided(errors.PhaseDecode, path)
	}

	var (
		v   *Value
		err error
	)
	switch s.Kind() {
	case schema.KindBool:
		var b bool
		b, err = d.DecodeBool()
		v = Bool(b)
	case schema.KindI8:
		var n int8
		n, err = d.DecodeI8()
		v = I8(n)
	case schema.KindI16:
		var n int16
		n, err = d.DecodeI16()
		v = I16(n)
	case schema.KindI32:
		var n int32
		n, err = d.DecodeI32()
		v = I32(n)
	case schema.KindI64:
		var n int64
		n, err = d.DecodeI64()
		v = I64(n)
	case schema.KindI128:
		var n wire.Int128
		n, err = d.DecodeI128()
		v = I128(n)
	case schema.KindU8:
		var n uint8
		n, err = d.DecodeU8()
		v = U8(n)
	case schema.KindU16:
		var n uint16
		n, err = d.DecodeU16()
		v = U16(n)
	case schema.KindU32:
		var n uint32
		n, err = d.DecodeU32()
		v = U32(n)
	case schema.KindU64:
		var n uint64
		n, err = d.DecodeU64()
		v = U64(n)
	case schema.KindU128:
		var n wire.Uint128
		n, err = d.DecodeU128()
		v = U128(n)
	case schema.KindF32:
		var f float32
		f, err = d.DecodeF32()
		v = F32(f)
	case schema.KindF64:
		var f float64
		f, err = d.DecodeF64()
		v = F64(f)
	case schema.KindChar:
		var r rune
		r, err = d.DecodeChar()
		v = Char(r)
	case schema.KindString:
		var str string
		str, err = d.DecodeString()
		v = String(str)
	case schema.KindUnit:
		err = d.DecodeUnit()
		v = Unit()
	case schema.KindUnitStruct:
		err = d.DecodeUnitStruct(s.Name())
		v = &Value{kind: schema.KindUnitStruct, name: s.Name()}

	case schema.KindStruct:
		v = &Value{kind: schema.KindStruct, name: s.Name(), names: s.FieldNames()}
		err = d.DecodeStruct(s.Name(), s.FieldNames(), func(r wire.SeqReader) error {
			elems, err := decodeElems(s, r, path)
			if err != nil {
				return err
			}
			v.fields = make([]Field, len(elems))
			for i, e := range elems {
				v.fields[i] = Field{Name: s.Fields()[i].Name, Value: e}
			}
			return nil
		})

	case schema.KindTuple:
		v = &Value{kind: schema.KindTuple}
		err = d.DecodeTuple(s.Len(), func(r wire.SeqReader) (err error) {
			v.elems, err = decodeElems(s, r, path)
			return err
		})

	case schema.KindTupleStruct:
		v = &Value{kind: schema.KindTupleStruct, name: s.Name()}
		err = d.DecodeTupleStruct(s.Name(), s.Len(), func(r wire.SeqReader) (err error) {
			v.elems, err = decodeElems(s, r, path)
			return err
		})

	case schema.KindNewtypeStruct:
		v = &Value{kind: schema.KindNewtypeStruct, name: s.Name()}
		err = d.DecodeNewtypeStruct(s.Name(), func(inner wire.Decoder) error {
			iv, err := decode(s.Inner(), inner, appendPath(path, "0"))
			if err != nil {
				return err
			}
			v.elems = []*Value{iv}
			return nil
		})

	case schema.KindEnum:
		var idx uint32
		idx, err = d.DecodeEnum(s.Name(), s.Variants())
		if err == nil && int(idx) >= len(s.Variants()) {
			return nil, errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
				Path(path...).
				Schema(s.String()).
				Value(idx).
				Detail("variant index %d out of range (%d variants)", idx, len(s.Variants())).
				Build()
		}
		v = Enum(s, idx)

	default:
		return nil, errors.UnsupportedShape(errors.PhaseDecode, path, s.Kind().String())
	}

	if err != nil {
		return nil, fail(errors.PhaseDecode, path, err)
	}
	if v.Len() != s.Len() {
		return nil, errors.New(errors.PhaseDecode, errors.KindProtocol).
			Path(path...).
			Schema(s.String()).
			Detail("decoder never visited the %s content", s.Kind()).
			Build()
	}
	return v, nil
}

// decodeElems reads every positional child of s from r, passing each child
// schema into its element callback.
func decodeElems(s *schema.Schema, r wire.SeqReader, path []string) ([]*Value, error) {
	n := s.Len()
	if r.Len() != n {
		return nil, arity(errors.PhaseDecode, path, s, r.Len())
	}
	out := make([]*Value, n)
	for i := 0; i < n; i++ {
		child, label := s.Child(i)
		childPath := appendPath(path, label)
		if err := r.Next(func(cd wire.Decoder) error {
			v, err := decode(child, cd, childPath)
			out[i] = v
			return err
		}); err != nil {
			return nil, fail(errors.PhaseDecode, childPath, err)
		}
		if out[i] == nil {
			return nil, errors.New(errors.PhaseDecode, errors.KindProtocol).
				Path(childPath...).
				Detail("element callback was never run").
				Build()
		}
	}
	return out, nil
}

func appendPath(path []string, elem string) []string {
	return append(append([]string(nil), path...), elem)
}
