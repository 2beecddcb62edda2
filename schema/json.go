package schema

import (
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/dynshape/errors"
)

// document is the serialized form of a Schema shared by JSON and YAML:
//
//	{"kind":"struct","name":"Pair","fields":[{"name":"a","type":{"kind":"i32"}}]}
type document struct {
	Kind     string      `json:"kind" yaml:"kind"`
	Name     string      `json:"name,omitempty" yaml:"name,omitempty"`
	Fields   []fieldDoc  `json:"fields,omitempty" yaml:"fields,omitempty"`
	Elems    []*document `json:"elems,omitempty" yaml:"elems,omitempty"`
	Inner    *document   `json:"inner,omitempty" yaml:"inner,omitempty"`
	Variants []string    `json:"variants,omitempty" yaml:"variants,omitempty"`
}

type fieldDoc struct {
	Name string    `json:"name" yaml:"name"`
	Type *document `json:"type" yaml:"type"`
}

func toDocument(s *Schema) *document {
	if s == nil {
		return nil
	}
	d := &document{Kind: s.kind.String(), Name: s.name}
	switch s.kind {
	case KindStruct:
		d.Fields = make([]fieldDoc, len(s.fields))
		for i, f := range s.fields {
			d.Fields[i] = fieldDoc{Name: f.Name, Type: toDocument(f.Schema)}
		}
	case KindTuple, KindTupleStruct:
		d.Elems = make([]*document, len(s.elems))
		for i, e := range s.elems {
			d.Elems[i] = toDocument(e)
		}
	case KindNewtypeStruct:
		d.Inner = toDocument(s.inner)
	case KindEnum:
		d.Variants = s.variants
	}
	return d
}

func fromDocument(d *document, path []string) (*Schema, error) {
	if d == nil {
		return nil, errors.SchemaNotProvided(errors.PhaseSchema, path)
	}
	kind, ok := ParseKind(d.Kind)
	if !ok {
		return nil, errors.New(errors.PhaseSchema, errors.KindInvalidData).
			Path(path...).
			Value(d.Kind).
			Detail("unknown schema kind %q", d.Kind).
			Build()
	}
	if kind.IsPrimitive() {
		return Primitive(kind), nil
	}

	var s *Schema
	switch kind {
	case KindStruct:
		fields := make([]Field, len(d.Fields))
		for i, f := range d.Fields {
			fs, err := fromDocument(f.Type, appendPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			fields[i] = F(f.Name, fs)
		}
		s = Struct(d.Name, fields...)
	case KindTuple, KindTupleStruct:
		elems := make([]*Schema, len(d.Elems))
		for i, e := range d.Elems {
			es, err := fromDocument(e, appendPath(path, Index(i)))
			if err != nil {
				return nil, err
			}
			elems[i] = es
		}
		if kind == KindTuple {
			s = Tuple(elems...)
		} else {
			s = TupleStruct(d.Name, elems...)
		}
	case KindNewtypeStruct:
		inner, err := fromDocument(d.Inner, appendPath(path, "0"))
		if err != nil {
			return nil, err
		}
		s = Newtype(d.Name, inner)
	case KindUnitStruct:
		s = UnitStruct(d.Name)
	case KindEnum:
		s = Enum(d.Name, d.Variants...)
	}
	if err := validate(s, path); err != nil {
		return nil, err
	}
	return s, nil
}

// MarshalJSON encodes s in its document form.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(toDocument(s))
}

// MarshalYAML implements yaml.Marshaler.
func (s *Schema) MarshalYAML() (any, error) {
	return toDocument(s), nil
}

// ParseJSON decodes and validates a schema document.
func ParseJSON(data []byte) (*Schema, error) {
	var d document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.PhaseSchema, errors.KindInvalidData, err, "malformed JSON schema")
	}
	return fromDocument(&d, nil)
}

// ParseYAML decodes and validates a schema document.
func ParseYAML(data []byte) (*Schema, error) {
	var d document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.PhaseSchema, errors.KindInvalidData, err, "malformed YAML schema")
	}
	return fromDocument(&d, nil)
}

// ParseFile picks JSON or YAML from the file extension of name. Anything
// other than .yaml or .yml is read as JSON.
func ParseFile(name string, data []byte) (*Schema, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// MarshalIndentJSON encodes s as indented JSON.
func MarshalIndentJSON(s *Schema) ([]byte, error) {
	return json.MarshalIndent(toDocument(s), "", "  ")
}

// MarshalYAMLBytes encodes s as a YAML document.
func MarshalYAMLBytes(s *Schema) ([]byte, error) {
	return yaml.Marshal(toDocument(s))
}
