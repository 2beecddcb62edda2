package dynamic

import (
	"go.uber.org/zap"

	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/internal/logging"
	"github.com/wippyai/dynshape/schema"
	"github.com/wippyai/dynshape/wire"
)

// Encode writes v to e, the forward mirror of Decode.
func Encode(v *Value, e wire.Encoder) error {
	if err := encode(v, e, nil); err != nil {
		logging.Named("dynamic").Debug("encode failed",
			zap.Stringer("value", v),
			zap.Error(err))
		return err
	}
	return nil
}

func encode(v *Value, e wire.Encoder, path []string) error {
	if v == nil {
		return errors.SchemaNotProvided(errors.PhaseEncode, path)
	}

	var err error
	switch v.kind {
	case schema.KindBool:
		err = e.EncodeBool(v.Bool())
	case schema.KindI8:
		err = e.EncodeI8(int8(v.Int()))
	case schema.KindI16:
		err = e.EncodeI16(int16(v.Int()))
	case schema.KindI32:
		err = e.EncodeI32(int32(v.Int()))
	case schema.KindI64:
		err = e.EncodeI64(v.Int())
	case schema.KindI128:
		err = e.EncodeI128(v.Int128())
	case schema.KindU8:
		err = e.EncodeU8(uint8(v.lo))
	case schema.KindU16:
		err = e.EncodeU16(uint16(v.lo))
	case schema.KindU32:
		err = e.EncodeU32(uint32(v.lo))
	case schema.KindU64:
		err = e.EncodeU64(v.lo)
	case schema.KindU128:
		err = e.EncodeU128(v.Uint128())
	case schema.KindF32:
		err = e.EncodeF32(v.Float32())
	case schema.KindF64:
		err = e.EncodeF64(v.Float64())
	case schema.KindChar:
		err = e.EncodeChar(v.Char())
	case schema.KindString:
		err = e.EncodeString(v.text)
	case schema.KindUnit:
		err = e.EncodeUnit()
	case schema.KindUnitStruct:
		err = e.EncodeUnitStruct(v.name)

	case schema.KindStruct:
		names := v.names
		if len(names) != len(v.fields) {
			names = make([]string, len(v.fields))
			for i, f := range v.fields {
				names[i] = f.Name
			}
		}
		err = e.EncodeStruct(v.name, names, func(w wire.SeqWriter) error {
			return encodeElems(v, w, path)
		})

	case schema.KindTuple:
		err = e.EncodeTuple(len(v.elems), func(w wire.SeqWriter) error {
			return encodeElems(v, w, path)
		})

	case schema.KindTupleStruct:
		err = e.EncodeTupleStruct(v.name, len(v.elems), func(w wire.SeqWriter) error {
			return encodeElems(v, w, path)
		})

	case schema.KindNewtypeStruct:
		err = e.EncodeNewtypeStruct(v.name, func(inner wire.Encoder) error {
			return encode(v.Inner(), inner, appendPath(path, "0"))
		})

	case schema.KindEnum:
		if v.enum == nil {
			return errors.SchemaNotProvided(errors.PhaseEncode, path)
		}
		variants := v.enum.Variants()
		if v.lo >= uint64(len(variants)) {
			return errors.New(errors.PhaseEncode, errors.KindSchemaMismatch).
				Path(path...).
				Schema(v.enum.String()).
				Value(v.lo).
				Detail("variant index %d out of range (%d variants)", v.lo, len(variants)).
				Build()
		}
		err = e.EncodeEnum(v.enum.Name(), uint32(v.lo), variants[v.lo])

	default:
		return errors.UnsupportedShape(errors.PhaseEncode, path, v.kind.String())
	}

	if err != nil {
		return fail(errors.PhaseEncode, path, err)
	}
	return nil
}

func encodeElems(v *Value, w wire.SeqWriter, path []string) error {
	n := v.Len()
	if w.Len() != n {
		return errors.New(errors.PhaseEncode, errors.KindProtocol).
			Path(path...).
			Detail("writer expects %d elements, value has %d", w.Len(), n).
			Build()
	}
	for i := 0; i < n; i++ {
		child, label := v.Child(i)
		childPath := appendPath(path, label)
		if err := w.Next(func(ce wire.Encoder) error {
			return encode(child, ce, childPath)
		}); err != nil {
			return fail(errors.PhaseEncode, childPath, err)
		}
	}
	return nil
}
