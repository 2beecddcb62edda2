package wire

import (
	"reflect"

	"github.com/wippyai/dynshape/errors"
)

// Decode drives d to fill the value ptr points to. ptr must be a non-nil pointer.
func Decode(d Decoder, ptr any) error {
	if ptr == nil {
		return errors.NilPointer(errors.PhaseDecode, nil, "nil")
	}
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.NilPointer(errors.PhaseDecode, nil, rv.Type().String())
	}
	return DecodeValue(d, rv.Elem())
}

// DecodeValue drives d to fill v, which must be settable.
func DecodeValue(d Decoder, v reflect.Value) error {
	if !v.CanSet() {
		return errors.New(errors.PhaseDecode, errors.KindInvalidData).
			GoType(v.Type().String()).
			Detail("value is not settable").
			Build()
	}
	return decodeValue(d, planFor(v.Type()), v, nil)
}

// Encode drives e with the contents of v. A top-level pointer is followed.
func Encode(e Encoder, v any) error {
	if v == nil {
		return errors.NilPointer(errors.PhaseEncode, nil, "nil")
	}
	return EncodeValue(e, reflect.ValueOf(v))
}

// EncodeValue drives e with the contents of v. A top-level pointer is followed.
func EncodeValue(e Encoder, v reflect.Value) error {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return errors.NilPointer(errors.PhaseEncode, nil, v.Type().String())
		}
		if !implementsEncode(v.Type()) {
			v = v.Elem()
		}
	}
	return encodeValue(e, planFor(v.Type()), v, nil)
}

func implementsEncode(t reflect.Type) bool {
	return t.Implements(encodableType)
}

func appendPath(path []string, elem string) []string {
	return append(append([]string(nil), path...), elem)
}

func invalidPlan(phase errors.Phase, p *plan, path []string) error {
	return errors.Unsupported(phase, path, p.typ.String(), p.invalid)
}

func arityError(phase errors.Phase, p *plan, path []string, want, got int) error {
	return errors.New(phase, errors.KindInvalidData).
		Path(path...).
		GoType(p.typ.String()).
		Detail("%s expects %d elements, source declares %d", p.shape, want, got).
		Build()
}

func decodeValue(d Decoder, p *plan, v reflect.Value, path []string) error {
	if p.customDec {
		return v.Addr().Interface().(Decodable).DecodeWire(d)
	}

	switch p.shape {
	case shapeBool:
		b, err := d.DecodeBool()
		if err != nil {
			return err
		}
		v.SetBool(b)
	case shapeI8:
		n, err := d.DecodeI8()
		if err != nil {
			return err
		}
		v.SetInt(int64(n))
	case shapeI16:
		n, err := d.DecodeI16()
		if err != nil {
			return err
		}
		v.SetInt(int64(n))
	case shapeI32:
		n, err := d.DecodeI32()
		if err != nil {
			return err
		}
		v.SetInt(int64(n))
	case shapeI64:
		n, err := d.DecodeI64()
		if err != nil {
			return err
		}
		v.SetInt(n)
	case shapeU8:
		n, err := d.DecodeU8()
		if err != nil {
			return err
		}
		v.SetUint(uint64(n))
	case shapeU16:
		n, err := d.DecodeU16()
		if err != nil {
			return err
		}
		v.SetUint(uint64(n))
	case shapeU32:
		n, err := d.DecodeU32()
		if err != nil {
			return err
		}
		v.SetUint(uint64(n))
	case shapeU64:
		n, err := d.DecodeU64()
		if err != nil {
			return err
		}
		v.SetUint(n)
	case shapeF32:
		f, err := d.DecodeF32()
		if err != nil {
			return err
		}
		v.SetFloat(float64(f))
	case shapeF64:
		f, err := d.DecodeF64()
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case shapeString:
		s, err := d.DecodeString()
		if err != nil {
			return err
		}
		v.SetString(s)

	case shapeEnum:
		idx, err := d.DecodeEnum(p.name, p.variants)
		if err != nil {
			return err
		}
		if int(idx) >= len(p.variants) {
			return errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(path...).
				GoType(p.typ.String()).
				Value(idx).
				Detail("variant index %d out of range (%d variants)", idx, len(p.variants)).
				Build()
		}
		if v.CanInt() {
			v.SetInt(int64(idx))
		} else {
			v.SetUint(uint64(idx))
		}

	case shapeNewtype:
		return d.DecodeNewtypeStruct(p.name, func(inner Decoder) error {
			return decodeValue(inner, p.elem, v, path)
		})

	case shapeTupleStruct:
		return d.DecodeTupleStruct(p.name, p.n, func(r SeqReader) error {
			return decodeArray(r, p, v, path)
		})

	case shapeTuple:
		if v.Kind() == reflect.Array {
			return d.DecodeTuple(p.n, func(r SeqReader) error {
				return decodeArray(r, p, v, path)
			})
		}
		return d.DecodeTuple(p.n, func(r SeqReader) error {
			return decodeFields(r, p, v, path, false)
		})

	case shapeUnit:
		return d.DecodeUnit()

	case shapeUnitStruct:
		return d.DecodeUnitStruct(p.name)

	case shapeStruct:
		return d.DecodeStruct(p.name, p.names, func(r SeqReader) error {
			return decodeFields(r, p, v, path, true)
		})

	case shapeBytes:
		b, err := d.DecodeBytes()
		if err != nil {
			return err
		}
		v.SetBytes(b)

	case shapeSeq:
		return d.DecodeSeq(func(r SeqReader) error {
			n := r.Len()
			s := reflect.MakeSlice(p.typ, n, n)
			for i := 0; i < n; i++ {
				elem := s.Index(i)
				if err := r.Next(func(ed Decoder) error {
					return decodeValue(ed, p.elem, elem, appendPath(path, elemName(i)))
				}); err != nil {
					return err
				}
			}
			v.Set(s)
			return nil
		})

	case shapeMap:
		return d.DecodeMap(func(r SeqReader) error {
			if r.Len()%2 != 0 {
				return arityError(errors.PhaseDecode, p, path, r.Len()+1, r.Len())
			}
			n := r.Len() / 2
			m := reflect.MakeMapWithSize(p.typ, n)
			for i := 0; i < n; i++ {
				key := reflect.New(p.typ.Key()).Elem()
				if err := r.Next(func(kd Decoder) error {
					return decodeValue(kd, p.key, key, appendPath(path, elemName(i)))
				}); err != nil {
					return err
				}
				val := reflect.New(p.typ.Elem()).Elem()
				if err := r.Next(func(vd Decoder) error {
					return decodeValue(vd, p.elem, val, appendPath(path, elemName(i)))
				}); err != nil {
					return err
				}
				m.SetMapIndex(key, val)
			}
			v.Set(m)
			return nil
		})

	case shapeOption:
		present, err := d.DecodeOption(func(od Decoder) error {
			target := reflect.New(p.typ.Elem())
			if err := decodeValue(od, p.elem, target.Elem(), path); err != nil {
				return err
			}
			v.Set(target)
			return nil
		})
		if err != nil {
			return err
		}
		if !present {
			v.SetZero()
		}

	default:
		return invalidPlan(errors.PhaseDecode, p, path)
	}
	return nil
}

func decodeArray(r SeqReader, p *plan, v reflect.Value, path []string) error {
	if r.Len() != p.n {
		return arityError(errors.PhaseDecode, p, path, p.n, r.Len())
	}
	for i := 0; i < p.n; i++ {
		elem := v.Index(i)
		if err := r.Next(func(ed Decoder) error {
			return decodeValue(ed, p.elem, elem, appendPath(path, elemName(i)))
		}); err != nil {
			return err
		}
	}
	return nil
}

func decodeFields(r SeqReader, p *plan, v reflect.Value, path []string, named bool) error {
	if r.Len() != len(p.fields) {
		return arityError(errors.PhaseDecode, p, path, len(p.fields), r.Len())
	}
	for i, f := range p.fields {
		field := v.Field(f.index)
		label := elemName(i)
		if named {
			label = f.name
		}
		if err := r.Next(func(fd Decoder) error {
			return decodeValue(fd, f.plan, field, appendPath(path, label))
		}); err != nil {
			return err
		}
	}
	return nil
}

func encodeValue(e Encoder, p *plan, v reflect.Value, path []string) error {
	if p.customEnc {
		if !p.encPtrRecv {
			return v.Interface().(Encodable).EncodeWire(e)
		}
		if !v.CanAddr() {
			cp := reflect.New(p.typ)
			cp.Elem().Set(v)
			v = cp.Elem()
		}
		return v.Addr().Interface().(Encodable).EncodeWire(e)
	}

	switch p.shape {
	case shapeBool:
		return e.EncodeBool(v.Bool())
	case shapeI8:
		return e.EncodeI8(int8(v.Int()))
	case shapeI16:
		return e.EncodeI16(int16(v.Int()))
	case shapeI32:
		return e.EncodeI32(int32(v.Int()))
	case shapeI64:
		return e.EncodeI64(v.Int())
	case shapeU8:
		return e.EncodeU8(uint8(v.Uint()))
	case shapeU16:
		return e.EncodeU16(uint16(v.Uint()))
	case shapeU32:
		return e.EncodeU32(uint32(v.Uint()))
	case shapeU64:
		return e.EncodeU64(v.Uint())
	case shapeF32:
		return e.EncodeF32(float32(v.Float()))
	case shapeF64:
		return e.EncodeF64(v.Float())
	case shapeString:
		return e.EncodeString(v.String())

	case shapeEnum:
		var idx uint64
		if v.CanInt() {
			n := v.Int()
			if n < 0 {
				idx = uint64(len(p.variants))
			} else {
				idx = uint64(n)
			}
		} else {
			idx = v.Uint()
		}
		if idx >= uint64(len(p.variants)) {
			return errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Path(path...).
				GoType(p.typ.String()).
				Value(v.Interface()).
				Detail("value is not a variant index (%d variants)", len(p.variants)).
				Build()
		}
		return e.EncodeEnum(p.name, uint32(idx), p.variants[idx])

	case shapeNewtype:
		return e.EncodeNewtypeStruct(p.name, func(inner Encoder) error {
			return encodeValue(inner, p.elem, v, path)
		})

	case shapeTupleStruct:
		return e.EncodeTupleStruct(p.name, p.n, func(w SeqWriter) error {
			return encodeArray(w, p, v, path)
		})

	case shapeTuple:
		if v.Kind() == reflect.Array {
			return e.EncodeTuple(p.n, func(w SeqWriter) error {
				return encodeArray(w, p, v, path)
			})
		}
		return e.EncodeTuple(p.n, func(w SeqWriter) error {
			return encodeFields(w, p, v, path, false)
		})

	case shapeUnit:
		return e.EncodeUnit()

	case shapeUnitStruct:
		return e.EncodeUnitStruct(p.name)

	case shapeStruct:
		return e.EncodeStruct(p.name, p.names, func(w SeqWriter) error {
			return encodeFields(w, p, v, path, true)
		})

	case shapeBytes:
		return e.EncodeBytes(v.Bytes())

	case shapeSeq:
		n := v.Len()
		return e.EncodeSeq(n, func(w SeqWriter) error {
			for i := 0; i < n; i++ {
				elem := v.Index(i)
				if err := w.Next(func(ee Encoder) error {
					return encodeValue(ee, p.elem, elem, appendPath(path, elemName(i)))
				}); err != nil {
					return err
				}
			}
			return nil
		})

	case shapeMap:
		return e.EncodeMap(v.Len(), func(w SeqWriter) error {
			iter := v.MapRange()
			for i := 0; iter.Next(); i++ {
				key, val := iter.Key(), iter.Value()
				if err := w.Next(func(ke Encoder) error {
					return encodeValue(ke, p.key, key, appendPath(path, elemName(i)))
				}); err != nil {
					return err
				}
				if err := w.Next(func(ve Encoder) error {
					return encodeValue(ve, p.elem, val, appendPath(path, elemName(i)))
				}); err != nil {
					return err
				}
			}
			return nil
		})

	case shapeOption:
		if v.IsNil() {
			return e.EncodeOption(false, nil)
		}
		return e.EncodeOption(true, func(oe Encoder) error {
			return encodeValue(oe, p.elem, v.Elem(), path)
		})

	default:
		return invalidPlan(errors.PhaseEncode, p, path)
	}
}

func encodeArray(w SeqWriter, p *plan, v reflect.Value, path []string) error {
	for i := 0; i < p.n; i++ {
		elem := v.Index(i)
		if err := w.Next(func(ee Encoder) error {
			return encodeValue(ee, p.elem, elem, appendPath(path, elemName(i)))
		}); err != nil {
			return err
		}
	}
	return nil
}

func encodeFields(w SeqWriter, p *plan, v reflect.Value, path []string, named bool) error {
	for i, f := range p.fields {
		field := v.Field(f.index)
		label := elemName(i)
		if named {
			label = f.name
		}
		if err := w.Next(func(fe Encoder) error {
			return encodeValue(fe, f.plan, field, appendPath(path, label))
		}); err != nil {
			return err
		}
	}
	return nil
}
