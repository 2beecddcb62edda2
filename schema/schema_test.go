package schema

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/dynshape/errors"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		want string
		kind Kind
	}{
		{"bool", KindBool},
		{"i8", KindI8},
		{"i128", KindI128},
		{"u128", KindU128},
		{"f64", KindF64},
		{"char", KindChar},
		{"string", KindString},
		{"unit", KindUnit},
		{"struct", KindStruct},
		{"tuple", KindTuple},
		{"tuple_struct", KindTupleStruct},
		{"newtype_struct", KindNewtypeStruct},
		{"unit_struct", KindUnitStruct},
		{"enum", KindEnum},
		{"unknown", Kind(255)},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
			if tc.want == "unknown" {
				return
			}
			k, ok := ParseKind(tc.want)
			if !ok || k != tc.kind {
				t.Errorf("ParseKind(%q) = %v, %v", tc.want, k, ok)
			}
		})
	}
}

func TestKindClasses(t *testing.T) {
	for k := KindBool; k <= KindEnum; k++ {
		if k.IsPrimitive() && k.IsNamed() {
			t.Errorf("%s is both primitive and named", k)
		}
	}
	if !KindUnit.IsPrimitive() {
		t.Error("unit should be primitive")
	}
	if KindTuple.IsPrimitive() || KindTuple.IsNamed() {
		t.Error("tuple is neither primitive nor named")
	}
	if _, ok := ParseKind("list"); ok {
		t.Error("list is not a schema kind")
	}
}

func TestPrimitiveSingletons(t *testing.T) {
	if I32() != I32() {
		t.Error("primitive constructors should return shared nodes")
	}
	if Primitive(KindChar) != Char() {
		t.Error("Primitive(KindChar) != Char()")
	}
	defer func() {
		if recover() == nil {
			t.Error("Primitive(KindStruct) should panic")
		}
	}()
	Primitive(KindStruct)
}

func TestSchemaString(t *testing.T) {
	tests := []struct {
		want   string
		schema *Schema
	}{
		{"i32", I32()},
		{"()", Unit()},
		{"Pair { a: i32, b: i32 }", Struct("Pair", F("a", I32()), F("b", I32()))},
		{"Empty {}", Struct("Empty")},
		{"(i32, string)", Tuple(I32(), String())},
		{"(u8,)", Tuple(U8())},
		{"Point(i16, i16)", TupleStruct("Point", I16(), I16())},
		{"Meters(f64)", Newtype("Meters", F64())},
		{"Marker", UnitStruct("Marker")},
		{"enum Color { Red, Green }", Enum("Color", "Red", "Green")},
		{
			"Outer { p: Pair { a: i32, b: i32 }, t: (bool, char) }",
			Struct("Outer",
				F("p", Struct("Pair", F("a", I32()), F("b", I32()))),
				F("t", Tuple(Bool(), Char()))),
		},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.schema.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	pair := func() *Schema { return Struct("Pair", F("a", I32()), F("b", I32())) }

	tests := []struct {
		name string
		a, b *Schema
		want bool
	}{
		{"same primitive", I64(), I64(), true},
		{"different primitive", I64(), U64(), false},
		{"rebuilt struct", pair(), pair(), true},
		{"renamed struct", pair(), Struct("Other", F("a", I32()), F("b", I32())), false},
		{"renamed field", pair(), Struct("Pair", F("a", I32()), F("c", I32())), false},
		{"reordered fields", pair(), Struct("Pair", F("b", I32()), F("a", I32())), false},
		{"field type", pair(), Struct("Pair", F("a", I32()), F("b", I64())), false},
		{"tuple vs tuple struct", Tuple(I8()), TupleStruct("T", I8()), false},
		{"tuple arity", Tuple(I8()), Tuple(I8(), I8()), false},
		{"newtype inner", Newtype("M", F32()), Newtype("M", F64()), false},
		{"enum variants", Enum("E", "A", "B"), Enum("E", "A", "B"), true},
		{"enum order", Enum("E", "A", "B"), Enum("E", "B", "A"), false},
		{"nil vs nil", nil, nil, true},
		{"nil vs node", nil, Unit(), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Errorf("Equal = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAccessors(t *testing.T) {
	s := Struct("Pair", F("a", I32()), F("b", String()))
	if s.Kind() != KindStruct || s.Name() != "Pair" || s.Len() != 2 {
		t.Fatalf("unexpected node %v", s)
	}
	names := s.FieldNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("FieldNames = %v", names)
	}
	child, label := s.Child(1)
	if child != String() || label != "b" {
		t.Errorf("Child(1) = %v, %q", child, label)
	}

	tup := Tuple(Bool(), U8())
	if child, label := tup.Child(1); child != U8() || label != "[1]" {
		t.Errorf("Child(1) = %v, %q", child, label)
	}
	nt := Newtype("M", F32())
	if nt.Len() != 1 || nt.Inner() != F32() {
		t.Errorf("newtype accessors wrong: %v", nt)
	}
	if Enum("E", "A").Len() != 0 {
		t.Error("enum has no positional children")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		kind   errors.Kind
		path   string
	}{
		{"ok", Struct("Pair", F("a", I32())), "", ""},
		{"nil root", nil, errors.KindSchemaNotProvided, ""},
		{"nil field", Struct("S", F("a", nil)), errors.KindSchemaNotProvided, "a"},
		{"nil elem", Tuple(I8(), nil), errors.KindSchemaNotProvided, "[1]"},
		{"nil inner", Newtype("N", nil), errors.KindSchemaNotProvided, "0"},
		{"duplicate field", Struct("S", F("a", I8()), F("a", I8())), errors.KindInvalidData, ""},
		{"empty enum", Enum("E"), errors.KindInvalidData, ""},
		{"duplicate variant", Enum("E", "A", "A"), errors.KindInvalidData, ""},
		{"unnamed struct", Struct("", F("a", I8())), errors.KindInvalidData, ""},
		{"nested", Struct("S", F("t", Tuple(Enum("E")))), errors.KindInvalidData, "t.[0]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.schema.Validate()
			if tc.kind == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("Validate = %v, want *errors.Error", err)
			}
			if e.Kind != tc.kind {
				t.Errorf("Kind = %s, want %s", e.Kind, tc.kind)
			}
			if got := strings.Join(e.Path, "."); got != tc.path {
				t.Errorf("Path = %q, want %q", got, tc.path)
			}
		})
	}
}
