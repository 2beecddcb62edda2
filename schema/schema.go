package schema

import (
	"strconv"
	"strings"

	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/internal/names"
)

// Schema is one node of a structural type description. Nodes are immutable
// once built and may be shared between goroutines and traversals.
type Schema struct {
	kind       Kind
	name       string
	fields     []Field
	fieldNames []string
	elems      []*Schema
	inner      *Schema
	variants   []string
}

// Field is a named struct member.
type Field struct {
	Name   string
	Schema *Schema
}

// F builds a Field.
func F(name string, s *Schema) Field {
	return Field{Name: name, Schema: s}
}

var primitives [KindUnit + 1]*Schema

func init() {
	for k := KindBool; k <= KindUnit; k++ {
		primitives[k] = &Schema{kind: k}
	}
}

// Primitive returns the shared node for a primitive kind. It panics if k is
// not primitive.
func Primitive(k Kind) *Schema {
	if !k.IsPrimitive() {
		panic("schema: " + k.String() + " is not a primitive kind")
	}
	return primitives[k]
}

func Bool() *Schema   { return primitives[KindBool] }
func I8() *Schema     { return primitives[KindI8] }
func I16() *Schema    { return primitives[KindI16] }
func I32() *Schema    { return primitives[KindI32] }
func I64() *Schema    { return primitives[KindI64] }
func I128() *Schema   { return primitives[KindI128] }
func U8() *Schema     { return primitives[KindU8] }
func U16() *Schema    { return primitives[KindU16] }
func U32() *Schema    { return primitives[KindU32] }
func U64() *Schema    { return primitives[KindU64] }
func U128() *Schema   { return primitives[KindU128] }
func F32() *Schema    { return primitives[KindF32] }
func F64() *Schema    { return primitives[KindF64] }
func Char() *Schema   { return primitives[KindChar] }
func String() *Schema { return primitives[KindString] }
func Unit() *Schema   { return primitives[KindUnit] }

// Struct builds a named struct with ordered fields.
func Struct(name string, fields ...Field) *Schema {
	s := &Schema{
		kind:   KindStruct,
		name:   names.String(name),
		fields: make([]Field, len(fields)),
	}
	s.fieldNames = make([]string, len(fields))
	for i, f := range fields {
		n := names.String(f.Name)
		s.fields[i] = Field{Name: n, Schema: f.Schema}
		s.fieldNames[i] = n
	}
	return s
}

// Tuple builds an anonymous fixed-arity tuple.
func Tuple(elems ...*Schema) *Schema {
	return &Schema{kind: KindTuple, elems: append([]*Schema(nil), elems...)}
}

// TupleStruct builds a named fixed-arity tuple.
func TupleStruct(name string, elems ...*Schema) *Schema {
	return &Schema{
		kind:  KindTupleStruct,
		name:  names.String(name),
		elems: append([]*Schema(nil), elems...),
	}
}

// Newtype builds a named single-element wrapper.
func Newtype(name string, inner *Schema) *Schema {
	return &Schema{kind: KindNewtypeStruct, name: names.String(name), inner: inner}
}

// UnitStruct builds a named value with no content.
func UnitStruct(name string) *Schema {
	return &Schema{kind: KindUnitStruct, name: names.String(name)}
}

// Enum builds a tag-only enum. The position of a variant is its wire index.
func Enum(name string, variants ...string) *Schema {
	return &Schema{
		kind:     KindEnum,
		name:     names.String(name),
		variants: names.Strings(variants),
	}
}

func (s *Schema) Kind() Kind { return s.kind }

// Name is the type name of named kinds and "" otherwise.
func (s *Schema) Name() string { return s.name }

// Fields returns the struct fields. The slice must not be modified.
func (s *Schema) Fields() []Field { return s.fields }

// FieldNames returns the ordered field names of a struct. The slice is built
// once per node and must not be modified.
func (s *Schema) FieldNames() []string { return s.fieldNames }

// Elems returns the element schemas of a tuple or tuple struct. The slice
// must not be modified.
func (s *Schema) Elems() []*Schema { return s.elems }

// Inner returns the wrapped schema of a newtype struct.
func (s *Schema) Inner() *Schema { return s.inner }

// Variants returns the variant names of an enum. The slice must not be modified.
func (s *Schema) Variants() []string { return s.variants }

// Len is the number of positional children: fields, elements, 1 for a
// newtype and 0 otherwise.
func (s *Schema) Len() int {
	switch s.kind {
	case KindStruct:
		return len(s.fields)
	case KindTuple, KindTupleStruct:
		return len(s.elems)
	case KindNewtypeStruct:
		return 1
	}
	return 0
}

// Child returns the i-th positional child and its path label.
func (s *Schema) Child(i int) (*Schema, string) {
	switch s.kind {
	case KindStruct:
		return s.fields[i].Schema, s.fields[i].Name
	case KindTuple, KindTupleStruct:
		return s.elems[i], Index(i)
	case KindNewtypeStruct:
		return s.inner, "0"
	}
	return nil, ""
}

// Index is the path label of a positional element.
func Index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// Equal reports whether a and b describe the same shape: same kinds, names,
// and children in the same order.
func Equal(a, b *Schema) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.kind != b.kind || a.name != b.name {
		return false
	}
	switch a.kind {
	case KindStruct:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Name != b.fields[i].Name || !Equal(a.fields[i].Schema, b.fields[i].Schema) {
				return false
			}
		}
	case KindTuple, KindTupleStruct:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
	case KindNewtypeStruct:
		return Equal(a.inner, b.inner)
	case KindEnum:
		if len(a.variants) != len(b.variants) {
			return false
		}
		for i := range a.variants {
			if a.variants[i] != b.variants[i] {
				return false
			}
		}
	}
	return true
}

// Equal reports whether s and o describe the same shape.
func (s *Schema) Equal(o *Schema) bool { return Equal(s, o) }

func (s *Schema) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s *Schema) write(b *strings.Builder) {
	if s == nil {
		b.WriteString("<nil>")
		return
	}
	switch s.kind {
	case KindStruct:
		b.WriteString(s.name)
		if len(s.fields) == 0 {
			b.WriteString(" {}")
			return
		}
		b.WriteString(" { ")
		for i, f := range s.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			f.Schema.write(b)
		}
		b.WriteString(" }")
	case KindTuple:
		b.WriteByte('(')
		writeList(b, s.elems)
		if len(s.elems) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case KindTupleStruct:
		b.WriteString(s.name)
		b.WriteByte('(')
		writeList(b, s.elems)
		b.WriteByte(')')
	case KindNewtypeStruct:
		b.WriteString(s.name)
		b.WriteByte('(')
		s.inner.write(b)
		b.WriteByte(')')
	case KindUnitStruct:
		b.WriteString(s.name)
	case KindEnum:
		b.WriteString("enum ")
		b.WriteString(s.name)
		b.WriteString(" { ")
		b.WriteString(strings.Join(s.variants, ", "))
		b.WriteString(" }")
	case KindUnit:
		b.WriteString("()")
	default:
		b.WriteString(s.kind.String())
	}
}

func writeList(b *strings.Builder, elems []*Schema) {
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		e.write(b)
	}
}

// Validate checks a hand-built schema: no nil children, unique field and
// variant names, and at least one enum variant.
func (s *Schema) Validate() error {
	return validate(s, nil)
}

func validate(s *Schema, path []string) error {
	if s == nil {
		return errors.SchemaNotProvided(errors.PhaseSchema, path)
	}
	if int(s.kind) >= len(kindNames) {
		return errors.InvalidData(errors.PhaseSchema, path, "unknown schema kind")
	}
	if s.kind.IsNamed() && s.name == "" {
		return errors.InvalidData(errors.PhaseSchema, path, s.kind.String()+" has no name")
	}

	switch s.kind {
	case KindStruct:
		seen := make(map[string]struct{}, len(s.fields))
		for _, f := range s.fields {
			if _, dup := seen[f.Name]; dup {
				return errors.InvalidData(errors.PhaseSchema, path, "duplicate field "+f.Name)
			}
			seen[f.Name] = struct{}{}
			if err := validate(f.Schema, appendPath(path, f.Name)); err != nil {
				return err
			}
		}
	case KindTuple, KindTupleStruct:
		for i, e := range s.elems {
			if err := validate(e, appendPath(path, Index(i))); err != nil {
				return err
			}
		}
	case KindNewtypeStruct:
		return validate(s.inner, appendPath(path, "0"))
	case KindEnum:
		if len(s.variants) == 0 {
			return errors.InvalidData(errors.PhaseSchema, path, "enum "+s.name+" has no variants")
		}
		seen := make(map[string]struct{}, len(s.variants))
		for _, v := range s.variants {
			if _, dup := seen[v]; dup {
				return errors.InvalidData(errors.PhaseSchema, path, "duplicate variant "+v)
			}
			seen[v] = struct{}{}
		}
	}
	return nil
}

func appendPath(path []string, elem string) []string {
	return append(append([]string(nil), path...), elem)
}
