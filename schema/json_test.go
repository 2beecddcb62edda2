package schema

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/dynshape/errors"
)

func sampleSchema() *Schema {
	return Struct("Order",
		F("id", U64()),
		F("total", Newtype("Cents", I128())),
		F("origin", TupleStruct("Point", F32(), F32())),
		F("pair", Tuple(Char(), String())),
		F("status", Enum("Status", "Open", "Closed")),
		F("flag", UnitStruct("Flag")),
		F("nothing", Unit()),
	)
}

func TestJSONRoundTrip(t *testing.T) {
	s := sampleSchema()
	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	got, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v\n%s", err, data)
	}
	if !Equal(got, s) {
		t.Errorf("round trip = %v, want %v", got, s)
	}

	indented, err := MarshalIndentJSON(s)
	if err != nil {
		t.Fatalf("MarshalIndentJSON: %v", err)
	}
	if got, err := ParseFile("order.json", indented); err != nil || !Equal(got, s) {
		t.Errorf("ParseFile(json) = %v, %v", got, err)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	s := sampleSchema()
	data, err := MarshalYAMLBytes(s)
	if err != nil {
		t.Fatalf("MarshalYAMLBytes: %v", err)
	}
	got, err := ParseFile("order.yaml", data)
	if err != nil {
		t.Fatalf("ParseYAML: %v\n%s", err, data)
	}
	if !Equal(got, s) {
		t.Errorf("round trip = %v, want %v", got, s)
	}
}

func TestParseJSONDocument(t *testing.T) {
	doc := `{"kind":"struct","name":"Pair","fields":[
		{"name":"a","type":{"kind":"i32"}},
		{"name":"b","type":{"kind":"i32"}}]}`
	s, err := ParseJSON([]byte(doc))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if s.String() != "Pair { a: i32, b: i32 }" {
		t.Errorf("got %v", s)
	}
}

func TestParseYAMLDocument(t *testing.T) {
	doc := `
kind: enum
name: Utensil
variants: [Spoon, Fork]
`
	s, err := ParseYAML([]byte(doc))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if !Equal(s, Enum("Utensil", "Spoon", "Fork")) {
		t.Errorf("got %v", s)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind errors.Kind
	}{
		{"malformed", `{"kind":`, errors.KindInvalidData},
		{"unknown kind", `{"kind":"list"}`, errors.KindInvalidData},
		{"missing field type", `{"kind":"struct","name":"S","fields":[{"name":"a"}]}`, errors.KindSchemaNotProvided},
		{"missing inner", `{"kind":"newtype_struct","name":"N"}`, errors.KindSchemaNotProvided},
		{"empty enum", `{"kind":"enum","name":"E"}`, errors.KindInvalidData},
		{"unnamed unit struct", `{"kind":"unit_struct"}`, errors.KindInvalidData},
		{"duplicate field", `{"kind":"struct","name":"S","fields":[
			{"name":"a","type":{"kind":"u8"}},
			{"name":"a","type":{"kind":"u8"}}]}`, errors.KindInvalidData},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tc.doc))
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("err = %v, want *errors.Error", err)
			}
			if e.Kind != tc.kind {
				t.Errorf("Kind = %s, want %s", e.Kind, tc.kind)
			}
			if e.Phase != errors.PhaseSchema {
				t.Errorf("Phase = %s, want schema", e.Phase)
			}
		})
	}
}
