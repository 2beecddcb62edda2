package schema

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/wire"
)

type pair struct {
	A int32 `wire:"a"`
	B int32 `wire:"b"`
}

type inner struct {
	C int32 `wire:"c"`
}

type outer struct {
	A int32 `wire:"a"`
	B inner `wire:"b"`
}

type utensil uint8

func (utensil) EnumVariants() []string { return []string{"Spoon", "Fork"} }

type meters float64

type point [2]int16

type marker struct{}

type kitchen struct {
	Tool  utensil
	Mark  marker
	Len   meters
	At    point
	Tuple struct {
		X bool
		Y wire.Char
	}
	Big   wire.Int128
	Huge  wire.Uint128
	Empty wire.Unit
	Title string
}

type withList struct {
	ID    int32
	Items []int32
}

// twoInts decodes itself as two separate values, which is not one node.
type twoInts struct{ a, b int32 }

func (t *twoInts) DecodeWire(d wire.Decoder) (err error) {
	if t.a, err = d.DecodeI32(); err != nil {
		return err
	}
	t.b, err = d.DecodeI32()
	return err
}

// shortTuple reads only one of the two elements it declares.
type shortTuple struct{}

func (*shortTuple) DecodeWire(d wire.Decoder) error {
	return d.DecodeTuple(2, func(r wire.SeqReader) error {
		return r.Next(func(d wire.Decoder) error {
			_, err := d.DecodeU8()
			return err
		})
	})
}

func pairSchema() *Schema {
	return Struct("pair", F("a", I32()), F("b", I32()))
}

func TestInferStruct(t *testing.T) {
	s, err := Infer[pair]()
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if !Equal(s, pairSchema()) {
		t.Errorf("Infer = %v, want %v", s, pairSchema())
	}
	if s.String() != "pair { a: i32, b: i32 }" {
		t.Errorf("String = %q", s)
	}
}

func TestInferNested(t *testing.T) {
	s, err := Infer[outer]()
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	want := Struct("outer",
		F("a", I32()),
		F("b", Struct("inner", F("c", I32()))))
	if !Equal(s, want) {
		t.Errorf("Infer = %v, want %v", s, want)
	}
}

func TestInferTuple(t *testing.T) {
	type tuple = struct {
		A int32
		B float32
		C wire.Uint128
		D float64
	}
	s, err := Infer[tuple]()
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	want := Tuple(I32(), F32(), U128(), F64())
	if !Equal(s, want) {
		t.Errorf("Infer = %v, want %v", s, want)
	}
}

func TestInferAllShapes(t *testing.T) {
	s, err := Infer[kitchen](WithUnitEnums())
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	want := Struct("kitchen",
		F("Tool", Enum("utensil", "Spoon", "Fork")),
		F("Mark", UnitStruct("marker")),
		F("Len", Newtype("meters", F64())),
		F("At", TupleStruct("point", I16(), I16())),
		F("Tuple", Tuple(Bool(), Char())),
		F("Big", I128()),
		F("Huge", U128()),
		F("Empty", Unit()),
		F("Title", String()),
	)
	if !Equal(s, want) {
		t.Errorf("Infer =\n%v\nwant\n%v", s, want)
	}
}

func TestInferPrimitives(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want *Schema
	}{
		{reflect.TypeFor[bool](), Bool()},
		{reflect.TypeFor[int8](), I8()},
		{reflect.TypeFor[int16](), I16()},
		{reflect.TypeFor[int32](), I32()},
		{reflect.TypeFor[int64](), I64()},
		{reflect.TypeFor[int](), I64()},
		{reflect.TypeFor[uint8](), U8()},
		{reflect.TypeFor[uint16](), U16()},
		{reflect.TypeFor[uint32](), U32()},
		{reflect.TypeFor[uint64](), U64()},
		{reflect.TypeFor[float32](), F32()},
		{reflect.TypeFor[float64](), F64()},
		{reflect.TypeFor[string](), String()},
		{reflect.TypeFor[wire.Char](), Char()},
		{reflect.TypeFor[wire.Int128](), I128()},
		{reflect.TypeFor[wire.Unit](), Unit()},
		{reflect.TypeFor[struct{}](), Unit()},
		{reflect.TypeFor[[3]uint8](), Tuple(U8(), U8(), U8())},
	}
	for _, tc := range tests {
		t.Run(tc.typ.String(), func(t *testing.T) {
			got, err := InferType(tc.typ)
			if err != nil {
				t.Fatalf("InferType: %v", err)
			}
			if got != tc.want && !Equal(got, tc.want) {
				t.Errorf("InferType = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInferDeterministic(t *testing.T) {
	a, err := Infer[outer]()
	if err != nil {
		t.Fatal(err)
	}
	b, err := Infer[outer]()
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(a, b) {
		t.Errorf("two inferences differ: %v vs %v", a, b)
	}
	if diff := cmp.Diff(a.String(), b.String()); diff != "" {
		t.Errorf("rendering differs:\n%s", diff)
	}
}

func TestInferTopLevelPointer(t *testing.T) {
	s, err := InferType(reflect.TypeFor[*pair]())
	if err != nil {
		t.Fatalf("InferType: %v", err)
	}
	if !Equal(s, pairSchema()) {
		t.Errorf("InferType = %v", s)
	}
}

func TestInferUnsupported(t *testing.T) {
	type withMap struct{ M map[string]int32 }
	type withOpt struct{ P *int32 }
	type withBytes struct{ B []byte }
	type withChan struct{ C chan int }

	tests := []struct {
		name string
		typ  reflect.Type
		path string
		opts []RecordOption
	}{
		{"list field", reflect.TypeFor[withList](), "Items", nil},
		{"map field", reflect.TypeFor[withMap](), "M", nil},
		{"nested pointer", reflect.TypeFor[withOpt](), "P", nil},
		{"bytes", reflect.TypeFor[withBytes](), "B", nil},
		{"chan", reflect.TypeFor[withChan](), "C", nil},
		{"enum by default", reflect.TypeFor[utensil](), "", nil},
		{"top-level slice", reflect.TypeFor[[]int32](), "", []RecordOption{WithUnitEnums()}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := InferType(tc.typ, tc.opts...)
			if !stderrors.Is(err, errors.ErrUnsupportedShape) {
				t.Fatalf("err = %v, want unsupported shape", err)
			}
			var e *errors.Error
			stderrors.As(err, &e)
			if got := strings.Join(e.Path, "."); got != tc.path {
				t.Errorf("Path = %q, want %q", got, tc.path)
			}
		})
	}
}

func TestRecordProtocolViolations(t *testing.T) {
	tests := []struct {
		name   string
		decode func(wire.Decoder) error
	}{
		{"no node", func(wire.Decoder) error { return nil }},
		{"two nodes", func(d wire.Decoder) error {
			var v twoInts
			return v.DecodeWire(d)
		}},
		{"short visitor", func(d wire.Decoder) error {
			var v shortTuple
			return v.DecodeWire(d)
		}},
		{"overlong visitor", func(d wire.Decoder) error {
			return d.DecodeTuple(1, func(r wire.SeqReader) error {
				for i := 0; i < 2; i++ {
					if err := r.Next(func(d wire.Decoder) error { return d.DecodeUnit() }); err != nil {
						return err
					}
				}
				return nil
			})
		}},
		{"empty element", func(d wire.Decoder) error {
			return d.DecodeTuple(1, func(r wire.SeqReader) error {
				return r.Next(func(wire.Decoder) error { return nil })
			})
		}},
		{"foreign error", func(wire.Decoder) error { return stderrors.New("boom") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Record(tc.decode)
			if !stderrors.Is(err, errors.ErrProtocol) {
				t.Fatalf("err = %v, want protocol error", err)
			}
		})
	}
}

func TestRecordCustom(t *testing.T) {
	s, err := Record(func(d wire.Decoder) error {
		return d.DecodeStruct("Header", []string{"magic", "version"}, func(r wire.SeqReader) error {
			if err := r.Next(func(d wire.Decoder) error {
				_, err := d.DecodeU32()
				return err
			}); err != nil {
				return err
			}
			return r.Next(func(d wire.Decoder) error {
				_, err := d.DecodeU16()
				return err
			})
		})
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	want := Struct("Header", F("magic", U32()), F("version", U16()))
	if !Equal(s, want) {
		t.Errorf("Record = %v, want %v", s, want)
	}
}

func TestInferredNamesMatchConstructed(t *testing.T) {
	a, err := Infer[pair]()
	if err != nil {
		t.Fatal(err)
	}
	b := pairSchema()
	if diff := cmp.Diff(b.FieldNames(), a.FieldNames()); diff != "" {
		t.Errorf("field names (-want +got):\n%s", diff)
	}
	if a.Name() != b.Name() {
		t.Errorf("Name = %q, want %q", a.Name(), b.Name())
	}
}
