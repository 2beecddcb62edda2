// Package dynamic holds schema-shaped values that can be inspected without
// the Go type they came from.
//
// Decode walks a schema.Schema and pulls one value per node from a
// wire.Decoder; Encode replays a Value into a wire.Encoder. With the same
// framing on both sides the bytes round-trip exactly:
//
//	s, _ := schema.Infer[Pair]()
//	v, _ := dynamic.Decode(s, bincode.NewDecoder(r, bincode.DefaultOptions()))
//	_ = dynamic.Encode(v, bincode.NewEncoder(w, bincode.DefaultOptions()))
//
// Failures use the engine taxonomy in package errors: schema_mismatch when
// the source disagrees with the schema, schema_not_provided for a nil node,
// protocol for anything the collaborator reports, unsupported_shape for
// kinds outside the closed set. Every error carries the dotted path of the
// node that failed.
package dynamic
