package schema

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/dynshape/errors"
)

// FromWIT converts a WIT type. Records map to structs, tuples to tuples and
// enums to tag-only enums. Named tuples become tuple structs. Lists,
// options, results, variants, flags and handles have no schema form.
func FromWIT(t wit.Type) (*Schema, error) {
	return fromWIT(t, nil)
}

func fromWIT(t wit.Type, path []string) (*Schema, error) {
	switch t := t.(type) {
	case nil:
		return nil, errors.SchemaNotProvided(errors.PhaseSchema, path)
	case wit.Bool:
		return Bool(), nil
	case wit.U8:
		return U8(), nil
	case wit.S8:
		return I8(), nil
	case wit.U16:
		return U16(), nil
	case wit.S16:
		return I16(), nil
	case wit.U32:
		return U32(), nil
	case wit.S32:
		return I32(), nil
	case wit.U64:
		return U64(), nil
	case wit.S64:
		return I64(), nil
	case wit.F32:
		return F32(), nil
	case wit.F64:
		return F64(), nil
	case wit.Char:
		return Char(), nil
	case wit.String:
		return String(), nil
	case *wit.TypeDef:
		return fromTypeDef(t, path)
	default:
		return nil, errors.UnsupportedShape(errors.PhaseSchema, path, fmt.Sprintf("WIT %T", t))
	}
}

func fromTypeDef(td *wit.TypeDef, path []string) (*Schema, error) {
	var name string
	if td.Name != nil {
		name = *td.Name
	}

	switch kind := td.Kind.(type) {
	case *wit.Record:
		fields := make([]Field, len(kind.Fields))
		for i, f := range kind.Fields {
			fs, err := fromWIT(f.Type, appendPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			fields[i] = F(f.Name, fs)
		}
		if name == "" {
			return nil, errors.InvalidData(errors.PhaseSchema, path, "anonymous WIT record")
		}
		return Struct(name, fields...), nil

	case *wit.Tuple:
		elems := make([]*Schema, len(kind.Types))
		for i, et := range kind.Types {
			es, err := fromWIT(et, appendPath(path, Index(i)))
			if err != nil {
				return nil, err
			}
			elems[i] = es
		}
		if name != "" {
			return TupleStruct(name, elems...), nil
		}
		return Tuple(elems...), nil

	case *wit.Enum:
		variants := make([]string, len(kind.Cases))
		for i, c := range kind.Cases {
			variants[i] = c.Name
		}
		s := Enum(name, variants...)
		if err := validate(s, path); err != nil {
			return nil, err
		}
		return s, nil

	case wit.Type:
		// type alias
		inner, err := fromWIT(kind, path)
		if err != nil {
			return nil, err
		}
		if name != "" {
			return Newtype(name, inner), nil
		}
		return inner, nil

	default:
		return nil, errors.UnsupportedShape(errors.PhaseSchema, path, fmt.Sprintf("WIT %T", td.Kind))
	}
}

// ToWIT converts s into a WIT type. Named nodes become named type
// definitions. 128-bit integers and unit have no WIT counterpart.
func ToWIT(s *Schema) (wit.Type, error) {
	return toWIT(s, nil)
}

func toWIT(s *Schema, path []string) (wit.Type, error) {
	if s == nil {
		return nil, errors.SchemaNotProvided(errors.PhaseSchema, path)
	}
	switch s.kind {
	case KindBool:
		return wit.Bool{}, nil
	case KindI8:
		return wit.S8{}, nil
	case KindI16:
		return wit.S16{}, nil
	case KindI32:
		return wit.S32{}, nil
	case KindI64:
		return wit.S64{}, nil
	case KindU8:
		return wit.U8{}, nil
	case KindU16:
		return wit.U16{}, nil
	case KindU32:
		return wit.U32{}, nil
	case KindU64:
		return wit.U64{}, nil
	case KindF32:
		return wit.F32{}, nil
	case KindF64:
		return wit.F64{}, nil
	case KindChar:
		return wit.Char{}, nil
	case KindString:
		return wit.String{}, nil

	case KindStruct:
		fields := make([]wit.Field, len(s.fields))
		for i, f := range s.fields {
			ft, err := toWIT(f.Schema, appendPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			fields[i] = wit.Field{Name: f.Name, Type: ft}
		}
		return named(s.name, &wit.Record{Fields: fields}), nil

	case KindTuple, KindTupleStruct:
		types := make([]wit.Type, len(s.elems))
		for i, e := range s.elems {
			et, err := toWIT(e, appendPath(path, Index(i)))
			if err != nil {
				return nil, err
			}
			types[i] = et
		}
		if s.kind == KindTuple {
			return &wit.TypeDef{Kind: &wit.Tuple{Types: types}}, nil
		}
		return named(s.name, &wit.Tuple{Types: types}), nil

	case KindNewtypeStruct:
		inner, err := toWIT(s.inner, appendPath(path, "0"))
		if err != nil {
			return nil, err
		}
		return named(s.name, inner), nil

	case KindEnum:
		cases := make([]wit.EnumCase, len(s.variants))
		for i, v := range s.variants {
			cases[i] = wit.EnumCase{Name: v}
		}
		return named(s.name, &wit.Enum{Cases: cases}), nil

	default:
		return nil, errors.UnsupportedShape(errors.PhaseSchema, path, s.kind.String()+" in WIT")
	}
}

func named(name string, kind wit.TypeDefKind) *wit.TypeDef {
	n := name
	return &wit.TypeDef{Name: &n, Kind: kind}
}
