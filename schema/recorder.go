package schema

import (
	stderrors "errors"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/internal/logging"
	"github.com/wippyai/dynshape/wire"
)

// RecordOption configures a recording.
type RecordOption func(*recordConfig)

type recordConfig struct {
	unitEnums bool
}

// WithUnitEnums records tag-only enums instead of rejecting them. The wire
// protocol's enum operation never carries a payload, so the variant list it
// hands over fully describes the shape.
func WithUnitEnums() RecordOption {
	return func(c *recordConfig) { c.unitEnums = true }
}

// Infer records the schema of T by simulating its decode.
func Infer[T any](opts ...RecordOption) (*Schema, error) {
	return InferType(reflect.TypeFor[T](), opts...)
}

// InferType records the schema of t. A top-level pointer type is
// dereferenced; nested pointers are optionals and are rejected.
func InferType(t reflect.Type, opts ...RecordOption) (*Schema, error) {
	if t == nil {
		return nil, errors.NilPointer(errors.PhaseInfer, nil, "nil")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	v := reflect.New(t).Elem()
	s, err := Record(func(d wire.Decoder) error {
		return wire.DecodeValue(d, v)
	}, opts...)
	if err != nil {
		logging.Named("schema").Debug("infer failed",
			zap.Stringer("type", t),
			zap.Error(err))
		return nil, err
	}
	logging.Named("schema").Debug("inferred",
		zap.Stringer("type", t),
		zap.Stringer("schema", s))
	return s, nil
}

// Record runs decode against a recording decoder and returns the single
// schema node it produced. Use it for types with hand-written decode logic.
func Record(decode func(wire.Decoder) error, opts ...RecordOption) (*Schema, error) {
	var cfg recordConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	rec := &recorder{cfg: &cfg}
	if err := decode(rec); err != nil {
		return nil, normalize(err)
	}
	return rec.single()
}

// normalize maps failures raised outside the recorder onto the inference
// taxonomy: Go kinds without a wire form are unsupported shapes, anything
// else foreign is a protocol violation.
func normalize(err error) error {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return errors.Protocol(errors.PhaseInfer, nil, err)
	}
	switch {
	case e.Kind == errors.KindUnsupported:
		return errors.New(errors.PhaseInfer, errors.KindUnsupportedShape).
			Path(e.Path...).
			GoType(e.GoType).
			Detail("%s", e.Detail).
			Build()
	case e.Kind.IsCore():
		return err
	default:
		return errors.Protocol(errors.PhaseInfer, e.Path, err)
	}
}

// recorder is a wire.Decoder that appends one schema node per operation and
// returns zero placeholders. Each nested element gets a fresh recorder.
type recorder struct {
	cfg   *recordConfig
	path  []string
	nodes []*Schema
}

func (r *recorder) push(s *Schema) {
	r.nodes = append(r.nodes, s)
}

func (r *recorder) single() (*Schema, error) {
	switch len(r.nodes) {
	case 1:
		return r.nodes[0], nil
	case 0:
		return nil, errors.New(errors.PhaseInfer, errors.KindProtocol).
			Path(r.path...).
			Detail("decode recorded no schema node").
			Build()
	default:
		return nil, errors.New(errors.PhaseInfer, errors.KindProtocol).
			Path(r.path...).
			Detail("decode recorded %d schema nodes, expected 1", len(r.nodes)).
			Build()
	}
}

func (r *recorder) child(label string) *recorder {
	return &recorder{cfg: r.cfg, path: appendPath(r.path, label)}
}

func (r *recorder) unsupported(shape string) error {
	return errors.UnsupportedShape(errors.PhaseInfer, r.path, shape)
}

func (r *recorder) DecodeBool() (bool, error)         { r.push(Bool()); return false, nil }
func (r *recorder) DecodeI8() (int8, error)           { r.push(I8()); return 0, nil }
func (r *recorder) DecodeI16() (int16, error)         { r.push(I16()); return 0, nil }
func (r *recorder) DecodeI32() (int32, error)         { r.push(I32()); return 0, nil }
func (r *recorder) DecodeI64() (int64, error)         { r.push(I64()); return 0, nil }
func (r *recorder) DecodeI128() (wire.Int128, error)  { r.push(I128()); return wire.Int128{}, nil }
func (r *recorder) DecodeU8() (uint8, error)          { r.push(U8()); return 0, nil }
func (r *recorder) DecodeU16() (uint16, error)        { r.push(U16()); return 0, nil }
func (r *recorder) DecodeU32() (uint32, error)        { r.push(U32()); return 0, nil }
func (r *recorder) DecodeU64() (uint64, error)        { r.push(U64()); return 0, nil }
func (r *recorder) DecodeU128() (wire.Uint128, error) { r.push(U128()); return wire.Uint128{}, nil }
func (r *recorder) DecodeF32() (float32, error)       { r.push(F32()); return 0, nil }
func (r *recorder) DecodeF64() (float64, error)       { r.push(F64()); return 0, nil }
func (r *recorder) DecodeChar() (rune, error)         { r.push(Char()); return 0, nil }
func (r *recorder) DecodeString() (string, error)     { r.push(String()); return "", nil }
func (r *recorder) DecodeUnit() error                 { r.push(Unit()); return nil }

func (r *recorder) DecodeUnitStruct(name string) error {
	r.push(UnitStruct(name))
	return nil
}

func (r *recorder) DecodeStruct(name string, fields []string, visit func(wire.SeqReader) error) error {
	elems, err := r.collect(fields, len(fields), visit)
	if err != nil {
		return err
	}
	fs := make([]Field, len(fields))
	for i, e := range elems {
		fs[i] = Field{Name: fields[i], Schema: e}
	}
	r.push(Struct(name, fs...))
	return nil
}

func (r *recorder) DecodeTuple(n int, visit func(wire.SeqReader) error) error {
	elems, err := r.collect(nil, n, visit)
	if err != nil {
		return err
	}
	r.push(Tuple(elems...))
	return nil
}

func (r *recorder) DecodeTupleStruct(name string, n int, visit func(wire.SeqReader) error) error {
	elems, err := r.collect(nil, n, visit)
	if err != nil {
		return err
	}
	r.push(TupleStruct(name, elems...))
	return nil
}

func (r *recorder) DecodeNewtypeStruct(name string, visit func(wire.Decoder) error) error {
	c := r.child(name)
	if err := visit(c); err != nil {
		return err
	}
	inner, err := c.single()
	if err != nil {
		return err
	}
	r.push(Newtype(name, inner))
	return nil
}

func (r *recorder) DecodeEnum(name string, variants []string) (uint32, error) {
	if !r.cfg.unitEnums {
		return 0, r.unsupported("enum " + name)
	}
	if len(variants) == 0 {
		return 0, r.unsupported("enum " + name + " without variants")
	}
	r.push(Enum(name, variants...))
	return 0, nil
}

func (r *recorder) DecodeSeq(func(wire.SeqReader) error) error {
	return r.unsupported("sequence")
}

func (r *recorder) DecodeMap(func(wire.SeqReader) error) error {
	return r.unsupported("map")
}

func (r *recorder) DecodeOption(func(wire.Decoder) error) (bool, error) {
	return false, r.unsupported("option")
}

func (r *recorder) DecodeBytes() ([]byte, error) {
	return nil, r.unsupported("bytes")
}

// collect hands visit a reader of n elements, each recorded by a fresh
// recorder, and returns the element schemas in order. labels names the
// elements in error paths when non-nil.
func (r *recorder) collect(labels []string, n int, visit func(wire.SeqReader) error) ([]*Schema, error) {
	seq := &recordSeq{parent: r, labels: labels, elems: make([]*Schema, 0, n), n: n}
	if err := visit(seq); err != nil {
		return nil, err
	}
	if len(seq.elems) != n {
		return nil, errors.New(errors.PhaseInfer, errors.KindProtocol).
			Path(r.path...).
			Detail("visitor consumed %d of %d elements", len(seq.elems), n).
			Build()
	}
	return seq.elems, nil
}

type recordSeq struct {
	parent *recorder
	labels []string
	elems  []*Schema
	n      int
}

func (s *recordSeq) Len() int { return s.n }

func (s *recordSeq) Next(decode func(wire.Decoder) error) error {
	i := len(s.elems)
	if i >= s.n {
		return errors.New(errors.PhaseInfer, errors.KindProtocol).
			Path(s.parent.path...).
			Detail("visitor requested element %d of %d", i+1, s.n).
			Build()
	}
	label := Index(i)
	if s.labels != nil {
		label = s.labels[i]
	}
	c := s.parent.child(label)
	if err := decode(c); err != nil {
		return err
	}
	elem, err := c.single()
	if err != nil {
		return err
	}
	s.elems = append(s.elems, elem)
	return nil
}
