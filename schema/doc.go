// Package schema describes the structural shape of statically typed data.
//
// A Schema is a closed tagged union:
//
//	Kind             Children              Example String()
//	──────────────────────────────────────────────────────────────
//	primitives       none                  i32, u128, char, ()
//	struct           named fields          Pair { a: i32, b: i32 }
//	tuple            elements              (i32, string)
//	tuple_struct     elements              Point(i16, i16)
//	newtype_struct   inner                 Meters(f64)
//	unit_struct      none                  Marker
//	enum             variant names         enum Color { Red, Green }
//
// Field and element order is the positional decode order. Nodes are
// immutable and safe to share.
//
// # Sources
//
// Schemas come from three places:
//
//   - Infer / InferType / Record: a recording wire.Decoder simulates a decode
//     and appends one node per protocol operation. Sequences, maps, options
//     and raw bytes are rejected with an unsupported_shape error. Enums are
//     rejected too unless WithUnitEnums is given.
//   - Constructors: Struct, Tuple, Enum and friends, for shapes that
//     inference cannot produce.
//   - Documents: ParseJSON / ParseYAML, and FromWIT for WIT type definitions.
package schema
