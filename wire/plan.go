package wire

import (
	"reflect"
	"strconv"
	"sync"

	"github.com/wippyai/dynshape/internal/names"
)

type shape uint8

const (
	shapeInvalid shape = iota
	shapeBool
	shapeI8
	shapeI16
	shapeI32
	shapeI64
	shapeU8
	shapeU16
	shapeU32
	shapeU64
	shapeF32
	shapeF64
	shapeString
	shapeEnum
	shapeNewtype
	shapeTupleStruct
	shapeTuple
	shapeUnit
	shapeUnitStruct
	shapeStruct
	shapeBytes
	shapeSeq
	shapeMap
	shapeOption
)

var shapeNames = [...]string{
	shapeInvalid:     "invalid",
	shapeBool:        "bool",
	shapeI8:          "i8",
	shapeI16:         "i16",
	shapeI32:         "i32",
	shapeI64:         "i64",
	shapeU8:          "u8",
	shapeU16:         "u16",
	shapeU32:         "u32",
	shapeU64:         "u64",
	shapeF32:         "f32",
	shapeF64:         "f64",
	shapeString:      "string",
	shapeEnum:        "enum",
	shapeNewtype:     "newtype struct",
	shapeTupleStruct: "tuple struct",
	shapeTuple:       "tuple",
	shapeUnit:        "unit",
	shapeUnitStruct:  "unit struct",
	shapeStruct:      "struct",
	shapeBytes:       "bytes",
	shapeSeq:         "sequence",
	shapeMap:         "map",
	shapeOption:      "option",
}

func (s shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// plan is the compiled protocol mapping of one Go type.
type plan struct {
	typ        reflect.Type
	elem       *plan
	key        *plan
	name       string
	invalid    string
	fields     []fieldPlan
	names      []string
	variants   []string
	n          int
	shape      shape
	customDec  bool
	customEnc  bool
	encPtrRecv bool
}

type fieldPlan struct {
	plan  *plan
	name  string
	index int
}

var (
	decodableType = reflect.TypeFor[Decodable]()
	encodableType = reflect.TypeFor[Encodable]()
	enumType      = reflect.TypeFor[Enum]()
)

var planCache sync.Map // reflect.Type -> *plan

func planFor(t reflect.Type) *plan {
	if cached, ok := planCache.Load(t); ok {
		return cached.(*plan)
	}
	seen := make(map[reflect.Type]*plan)
	p := compile(t, seen)
	for typ, compiled := range seen {
		planCache.LoadOrStore(typ, compiled)
	}
	if cached, ok := planCache.Load(t); ok {
		return cached.(*plan)
	}
	return p
}

// compile builds the plan for t. seen breaks cycles through pointers,
// slices and maps in self-referential types.
func compile(t reflect.Type, seen map[reflect.Type]*plan) *plan {
	if p, ok := seen[t]; ok {
		return p
	}
	if cached, ok := planCache.Load(t); ok {
		return cached.(*plan)
	}

	p := &plan{typ: t, name: names.String(t.Name())}
	seen[t] = p

	ptr := reflect.PointerTo(t)
	p.customDec = ptr.Implements(decodableType)
	p.customEnc = t.Implements(encodableType)
	if !p.customEnc && ptr.Implements(encodableType) {
		p.customEnc = true
		p.encPtrRecv = true
	}

	defined := t.PkgPath() != ""

	if prim := primitiveShape(t.Kind()); prim != shapeInvalid {
		switch {
		case defined && isInteger(t.Kind()) && t.Implements(enumType):
			p.shape = shapeEnum
			p.variants = names.Strings(reflect.Zero(t).Interface().(Enum).EnumVariants())
		case defined:
			p.shape = shapeNewtype
			p.elem = &plan{typ: t, shape: prim}
		default:
			p.shape = prim
		}
		return p
	}

	switch t.Kind() {
	case reflect.Array:
		p.n = t.Len()
		p.elem = compile(t.Elem(), seen)
		if defined {
			p.shape = shapeTupleStruct
		} else {
			p.shape = shapeTuple
		}

	case reflect.Struct:
		compileStruct(p, t, seen)
		switch {
		case t.Name() == "" && len(p.fields) == 0:
			p.shape = shapeUnit
		case t.Name() == "":
			p.shape = shapeTuple
			p.n = len(p.fields)
		case len(p.fields) == 0:
			p.shape = shapeUnitStruct
		default:
			p.shape = shapeStruct
		}

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			p.shape = shapeBytes
			break
		}
		p.shape = shapeSeq
		p.elem = compile(t.Elem(), seen)

	case reflect.Map:
		p.shape = shapeMap
		p.key = compile(t.Key(), seen)
		p.elem = compile(t.Elem(), seen)

	case reflect.Pointer:
		p.shape = shapeOption
		p.elem = compile(t.Elem(), seen)

	default:
		p.shape = shapeInvalid
		p.invalid = "Go kind " + t.Kind().String() + " has no wire representation"
	}
	return p
}

func compileStruct(p *plan, t reflect.Type, seen map[reflect.Type]*plan) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("wire"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		p.fields = append(p.fields, fieldPlan{
			index: i,
			name:  names.String(name),
			plan:  compile(f.Type, seen),
		})
	}
	if len(p.fields) > 0 {
		p.names = make([]string, len(p.fields))
		for i, f := range p.fields {
			p.names[i] = f.name
		}
	}
}

func primitiveShape(k reflect.Kind) shape {
	switch k {
	case reflect.Bool:
		return shapeBool
	case reflect.Int8:
		return shapeI8
	case reflect.Int16:
		return shapeI16
	case reflect.Int32:
		return shapeI32
	case reflect.Int64, reflect.Int:
		return shapeI64
	case reflect.Uint8:
		return shapeU8
	case reflect.Uint16:
		return shapeU16
	case reflect.Uint32:
		return shapeU32
	case reflect.Uint64, reflect.Uint:
		return shapeU64
	case reflect.Float32:
		return shapeF32
	case reflect.Float64:
		return shapeF64
	case reflect.String:
		return shapeString
	default:
		return shapeInvalid
	}
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func elemName(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
