// Package errors provides structured error types for dynshape.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: node path, Go type, rendered schema, and cause chain.
//
// The engine taxonomy has four kinds:
//
//	unsupported_shape    sequences, maps, optionals, raw bytes, payload variants
//	schema_not_provided  a nested call fired without an expected schema node
//	schema_mismatch      byte-declared shape disagrees with the supplied schema
//	protocol             failure surfaced by the wire collaborator (see Cause)
//
// Wire collaborators such as bincode report their own kinds (out_of_bounds,
// invalid_data, trailing_bytes, ...); the engine wraps those in a protocol error.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
//		Path("pair", "b").
//		Schema("i32").
//		Detail("source reports 3 elements").
//		Build()
//
// Match by kind regardless of phase with the sentinels:
//
//	if errors.Is(err, dserrors.ErrUnsupportedShape) { ... }
package errors
