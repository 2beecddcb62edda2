package dynamic

import (
	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/schema"
)

// Check verifies that v matches s node for node: same kinds, names, arity
// and, for enums, an equal enum schema and an in-range index.
func Check(v *Value, s *schema.Schema) error {
	return check(v, s, nil)
}

func check(v *Value, s *schema.Schema, path []string) error {
	if s == nil || v == nil {
		return errors.SchemaNotProvided(errors.PhaseSchema, path)
	}
	if v.kind != s.Kind() {
		return errors.SchemaMismatch(errors.PhaseSchema, path, s.String(),
			"value is %s", v.kind)
	}
	if v.name != s.Name() {
		return errors.SchemaMismatch(errors.PhaseSchema, path, s.String(),
			"value is named %q", v.name)
	}

	switch s.Kind() {
	case schema.KindEnum:
		if !schema.Equal(v.enum, s) {
			return errors.SchemaMismatch(errors.PhaseSchema, path, s.String(),
				"value belongs to %v", v.enum)
		}
		if int(v.lo) >= len(s.Variants()) {
			return errors.SchemaMismatch(errors.PhaseSchema, path, s.String(),
				"variant index %d out of range", v.lo)
		}
		return nil
	case schema.KindStruct, schema.KindTuple, schema.KindTupleStruct, schema.KindNewtypeStruct:
	default:
		return nil
	}

	if v.Len() != s.Len() {
		return errors.SchemaMismatch(errors.PhaseSchema, path, s.String(),
			"value has %d elements, schema %d", v.Len(), s.Len())
	}
	for i := 0; i < s.Len(); i++ {
		vc, vl := v.Child(i)
		sc, sl := s.Child(i)
		if vl != sl {
			return errors.SchemaMismatch(errors.PhaseSchema, appendPath(path, sl), s.String(),
				"value has field %q here", vl)
		}
		if err := check(vc, sc, appendPath(path, sl)); err != nil {
			return err
		}
	}
	return nil
}
