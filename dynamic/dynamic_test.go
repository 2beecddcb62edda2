package dynamic

import (
	"bytes"
	stderrors "errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/wippyai/dynshape/bincode"
	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/schema"
	"github.com/wippyai/dynshape/wire"
)

type Pair struct {
	A int32 `wire:"a"`
	B int32 `wire:"b"`
}

type B struct {
	C int32 `wire:"c"`
}

type A struct {
	A int32 `wire:"a"`
	B B     `wire:"b"`
}

type Utensil uint32

func (Utensil) EnumVariants() []string { return []string{"Spoon", "Fork"} }

func decodeBytes(t *testing.T, s *schema.Schema, data []byte) *Value {
	t.Helper()
	v, err := Decode(s, bincode.NewDecoder(bytes.NewReader(data), bincode.DefaultOptions()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return v
}

func encodeBytes(t *testing.T, v *Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(v, bincode.NewEncoder(&buf, bincode.DefaultOptions())); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf.Bytes()
}

func mustInfer[T any](t *testing.T, opts ...schema.RecordOption) *schema.Schema {
	t.Helper()
	s, err := schema.Infer[T](opts...)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	return s
}

func TestRoundTripScenarios(t *testing.T) {
	type mixed = struct {
		A int32
		B float32
		C wire.Uint128
		D float64
	}
	tests := []struct {
		name   string
		schema *schema.Schema
		value  any
		want   *Value
	}{
		{
			name:   "pair",
			schema: mustInfer[Pair](t),
			value:  Pair{A: 99, B: 23480},
			want:   Struct("Pair", F("a", I32(99)), F("b", I32(23480))),
		},
		{
			name:   "tuple",
			schema: mustInfer[mixed](t),
			value:  mixed{A: 0, B: 10, C: wire.U128(8), D: 90},
			want:   Tuple(I32(0), F32(10), U128(wire.U128(8)), F64(90)),
		},
		{
			name:   "nested",
			schema: mustInfer[A](t),
			value:  A{A: 99, B: B{C: 23480}},
			want:   Struct("A", F("a", I32(99)), F("b", Struct("B", F("c", I32(23480))))),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := bincode.Marshal(tc.value)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			v := decodeBytes(t, tc.schema, data)
			if !Equal(v, tc.want) {
				t.Errorf("Decode = %v, want %v", v, tc.want)
			}
			if err := Check(v, tc.schema); err != nil {
				t.Errorf("Check: %v", err)
			}
			if got := encodeBytes(t, v); !bytes.Equal(got, data) {
				t.Errorf("Encode = % x, want % x", got, data)
			}
		})
	}
}

func TestUnitEnumRoundTrip(t *testing.T) {
	s := mustInfer[Utensil](t, schema.WithUnitEnums())
	for idx, name := range []string{"Spoon", "Fork"} {
		t.Run(name, func(t *testing.T) {
			data, err := bincode.Marshal(Utensil(idx))
			if err != nil {
				t.Fatal(err)
			}
			v := decodeBytes(t, s, data)
			if v.Index() != uint32(idx) || v.Variant() != name {
				t.Errorf("Decode = %v (index %d)", v, v.Index())
			}
			if got := encodeBytes(t, v); !bytes.Equal(got, data) {
				t.Errorf("Encode = % x, want % x", got, data)
			}
			var back Utensil
			if err := bincode.Unmarshal(encodeBytes(t, v), &back); err != nil || int(back) != idx {
				t.Errorf("typed decode = %d, %v", back, err)
			}
		})
	}
}

func TestAllKindsRoundTrip(t *testing.T) {
	s := schema.Struct("All",
		schema.F("b", schema.Bool()),
		schema.F("i8", schema.I8()),
		schema.F("i16", schema.I16()),
		schema.F("i32", schema.I32()),
		schema.F("i64", schema.I64()),
		schema.F("i128", schema.I128()),
		schema.F("u8", schema.U8()),
		schema.F("u16", schema.U16()),
		schema.F("u32", schema.U32()),
		schema.F("u64", schema.U64()),
		schema.F("u128", schema.U128()),
		schema.F("f32", schema.F32()),
		schema.F("f64", schema.F64()),
		schema.F("c", schema.Char()),
		schema.F("s", schema.String()),
		schema.F("u", schema.Unit()),
		schema.F("ts", schema.TupleStruct("Point", schema.I16(), schema.I16())),
		schema.F("nt", schema.Newtype("Meters", schema.F64())),
		schema.F("us", schema.UnitStruct("Marker")),
		schema.F("e", schema.Enum("Color", "Red", "Green", "Blue")),
	)
	v := Struct("All",
		F("b", Bool(true)),
		F("i8", I8(-128)),
		F("i16", I16(-300)),
		F("i32", I32(math.MinInt32)),
		F("i64", I64(math.MaxInt64)),
		F("i128", I128(wire.Int128{Hi: -5, Lo: 77})),
		F("u8", U8(255)),
		F("u16", U16(65535)),
		F("u32", U32(1<<31)),
		F("u64", U64(math.MaxUint64)),
		F("u128", U128(wire.Uint128{Hi: 1, Lo: 2})),
		F("f32", F32Bits(0x7fc00001)),
		F("f64", F64Bits(0x7ff8000000000abc)),
		F("c", Char('ß')),
		F("s", String("héllo")),
		F("u", Unit()),
		F("ts", TupleStruct("Point", I16(1), I16(-1))),
		F("nt", Newtype("Meters", F64(2.5))),
		F("us", UnitStruct("Marker")),
		F("e", Enum(s.Fields()[19].Schema, 2)),
	)
	if err := Check(v, s); err != nil {
		t.Fatalf("Check: %v", err)
	}

	data := encodeBytes(t, v)
	back := decodeBytes(t, s, data)
	if !Equal(back, v) {
		t.Errorf("round trip = %v, want %v", back, v)
	}
	if got := encodeBytes(t, back); !bytes.Equal(got, data) {
		t.Errorf("re-encode differs:\n% x\n% x", got, data)
	}
	f32, _ := back.Field("f32")
	if f32.Bits() != 0x7fc00001 {
		t.Errorf("NaN payload lost: %#x", f32.Bits())
	}
}

func TestTrailingBytesTolerated(t *testing.T) {
	s := mustInfer[Pair](t)
	data := []byte{0x63, 0, 0, 0, 0xb8, 0x5b, 0, 0, 0xde, 0xad}
	v := decodeBytes(t, s, data)
	if got := encodeBytes(t, v); !bytes.Equal(got, data[:8]) {
		t.Errorf("Encode = % x, want % x", got, data[:8])
	}
}

func TestDecodeErrors(t *testing.T) {
	pair := mustInfer[Pair](t)
	color := schema.Enum("Color", "Red", "Green")

	tests := []struct {
		name   string
		schema *schema.Schema
		data   []byte
		kind   errors.Kind
		path   string
	}{
		{"short input", pair, []byte{1, 0, 0, 0, 2}, errors.KindProtocol, "b"},
		{"enum tag out of range", color, []byte{2, 0, 0, 0}, errors.KindSchemaMismatch, ""},
		{"nil schema", nil, nil, errors.KindSchemaNotProvided, ""},
		{"nil field schema", schema.Struct("S", schema.F("x", nil)), []byte{0}, errors.KindSchemaNotProvided, "x"},
		{"bad bool", schema.Tuple(schema.U8(), schema.Bool()), []byte{0, 9}, errors.KindProtocol, "[1]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.schema, bincode.NewDecoder(bytes.NewReader(tc.data), bincode.DefaultOptions()))
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("err = %v, want *errors.Error", err)
			}
			if e.Kind != tc.kind {
				t.Errorf("Kind = %s, want %s (%v)", e.Kind, tc.kind, err)
			}
			if got := strings.Join(e.Path, "."); got != tc.path {
				t.Errorf("Path = %q, want %q", got, tc.path)
			}
		})
	}
}

// arityDecoder claims every aggregate holds n elements.
type arityDecoder struct {
	*bincode.Decoder
	n int
}

type aritySeq struct {
	d *arityDecoder
	n int
}

func (s *aritySeq) Len() int { return s.n }

func (s *aritySeq) Next(decode func(wire.Decoder) error) error { return decode(s.d) }

func (a *arityDecoder) DecodeStruct(_ string, _ []string, visit func(wire.SeqReader) error) error {
	return visit(&aritySeq{d: a, n: a.n})
}

func (a *arityDecoder) DecodeTuple(_ int, visit func(wire.SeqReader) error) error {
	return visit(&aritySeq{d: a, n: a.n})
}

func TestDecodeArityMismatch(t *testing.T) {
	for _, s := range []*schema.Schema{
		mustInfer[Pair](t),
		schema.Tuple(schema.U8(), schema.U8()),
	} {
		t.Run(s.Kind().String(), func(t *testing.T) {
			d := &arityDecoder{
				Decoder: bincode.NewDecoder(bytes.NewReader(make([]byte, 16)), bincode.DefaultOptions()),
				n:       3,
			}
			_, err := Decode(s, d)
			if !stderrors.Is(err, errors.ErrSchemaMismatch) {
				t.Fatalf("err = %v, want schema mismatch", err)
			}
		})
	}
}

// lazyDecoder never runs aggregate visitors.
type lazyDecoder struct {
	*bincode.Decoder
}

func (lazyDecoder) DecodeTuple(int, func(wire.SeqReader) error) error { return nil }

func TestDecodeVisitorSkipped(t *testing.T) {
	d := lazyDecoder{bincode.NewDecoder(bytes.NewReader(nil), bincode.DefaultOptions())}
	_, err := Decode(schema.Tuple(schema.U8()), d)
	if !stderrors.Is(err, errors.ErrProtocol) {
		t.Fatalf("err = %v, want protocol error", err)
	}
}

// sentinelDecoder fails every i32 read with a bare engine error.
type sentinelDecoder struct {
	*bincode.Decoder
}

func (sentinelDecoder) DecodeI32() (int32, error) { return 0, errors.ErrSchemaMismatch }

func (d sentinelDecoder) DecodeStruct(_ string, fields []string, visit func(wire.SeqReader) error) error {
	return visit(&sentinelSeq{d: d, n: len(fields)})
}

type sentinelSeq struct {
	d sentinelDecoder
	n int
}

func (s *sentinelSeq) Len() int { return s.n }

func (s *sentinelSeq) Next(decode func(wire.Decoder) error) error { return decode(s.d) }

func TestDecodeCollaboratorCoreError(t *testing.T) {
	d := sentinelDecoder{bincode.NewDecoder(bytes.NewReader(nil), bincode.DefaultOptions())}
	_, err := Decode(mustInfer[Pair](t), d)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindSchemaMismatch {
		t.Fatalf("err = %v, want schema mismatch", err)
	}
	if got := strings.Join(e.Path, "."); got != "a" {
		t.Errorf("Path = %q, want %q", got, "a")
	}
	if len(errors.ErrSchemaMismatch.Path) != 0 {
		t.Errorf("sentinel was modified: %v", errors.ErrSchemaMismatch)
	}
}

func TestEncodeErrors(t *testing.T) {
	color := schema.Enum("Color", "Red", "Green")
	tests := []struct {
		name  string
		value *Value
		kind  errors.Kind
		path  string
	}{
		{"nil value", nil, errors.KindSchemaNotProvided, ""},
		{"nil field", Struct("S", F("x", nil)), errors.KindSchemaNotProvided, "x"},
		{"nil newtype", Newtype("N", nil), errors.KindSchemaNotProvided, "0"},
		{"enum index", Enum(color, 5), errors.KindSchemaMismatch, ""},
		{"enum without schema", Enum(nil, 0), errors.KindSchemaNotProvided, ""},
		{"bad char", Tuple(Char(0xD800)), errors.KindProtocol, "[0]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Encode(tc.value, bincode.NewEncoder(&bytes.Buffer{}, bincode.DefaultOptions()))
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("err = %v, want *errors.Error", err)
			}
			if e.Kind != tc.kind {
				t.Errorf("Kind = %s, want %s (%v)", e.Kind, tc.kind, err)
			}
			if got := strings.Join(e.Path, "."); got != tc.path {
				t.Errorf("Path = %q, want %q", got, tc.path)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	pair := mustInfer[Pair](t)
	color := schema.Enum("Color", "Red", "Green")

	tests := []struct {
		name  string
		value *Value
		ok    bool
	}{
		{"match", Struct("Pair", F("a", I32(1)), F("b", I32(2))), true},
		{"wrong kind", Struct("Pair", F("a", I32(1)), F("b", I64(2))), false},
		{"wrong name", Struct("Other", F("a", I32(1)), F("b", I32(2))), false},
		{"wrong field", Struct("Pair", F("a", I32(1)), F("c", I32(2))), false},
		{"missing field", Struct("Pair", F("a", I32(1))), false},
		{"tuple", Tuple(I32(1), I32(2)), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.value, pair)
			if tc.ok != (err == nil) {
				t.Errorf("Check = %v, want ok=%v", err, tc.ok)
			}
			if err != nil && !stderrors.Is(err, errors.ErrSchemaMismatch) {
				t.Errorf("err = %v, want schema mismatch", err)
			}
		})
	}

	if err := Check(Enum(color, 1), color); err != nil {
		t.Errorf("enum: %v", err)
	}
	if err := Check(Enum(color, 2), color); err == nil {
		t.Error("out of range enum should fail")
	}
	if err := Check(Enum(schema.Enum("Color", "Red"), 0), color); err == nil {
		t.Error("enum from a different schema should fail")
	}
}

func TestValueString(t *testing.T) {
	color := schema.Enum("Color", "Red", "Green")
	tests := []struct {
		want  string
		value *Value
	}{
		{"Pair { a: 99, b: 23480 }", Struct("Pair", F("a", I32(99)), F("b", I32(23480)))},
		{"(0, 10.0, 8, 90.0)", Tuple(I32(0), F32(10), U128(wire.U128(8)), F64(90))},
		{"Meters(1.5)", Newtype("Meters", F64(1.5))},
		{"Point(1, -1)", TupleStruct("Point", I16(1), I16(-1))},
		{"Color::Green", Enum(color, 1)},
		{`('x', "y")`, Tuple(Char('x'), String("y"))},
		{"(NaN,)", Tuple(F64(math.NaN()))},
		{"Marker", UnitStruct("Marker")},
		{"()", Unit()},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.value.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWith(t *testing.T) {
	v := Struct("Pair", F("a", I32(1)), F("b", I32(2)))
	w := v.With(1, I32(7))
	if b, _ := v.Field("b"); b.Int() != 2 {
		t.Error("With modified the original")
	}
	if b, _ := w.Field("b"); b.Int() != 7 {
		t.Errorf("With = %v", w)
	}
}

func TestConcurrentDecode(t *testing.T) {
	s := mustInfer[A](t)
	data, err := bincode.Marshal(A{A: 1, B: B{C: 2}})
	if err != nil {
		t.Fatal(err)
	}
	want := Struct("A", F("a", I32(1)), F("b", Struct("B", F("c", I32(2)))))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Decode(s, bincode.NewDecoder(bytes.NewReader(data), bincode.DefaultOptions()))
			if err != nil {
				errs <- err
				return
			}
			if !Equal(v, want) {
				errs <- stderrors.New("unexpected value " + v.String())
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
