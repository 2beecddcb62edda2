// Package dynshape moves Go values through a compact binary framing without
// the Go type on the receiving side.
//
// A schema is recorded once from a Go type, then drives decoding into a
// generic value tree that can be inspected, edited and re-encoded to the
// exact same bytes:
//
//	s, err := dynshape.Infer[Pair]()
//	data, err := bincode.Marshal(Pair{A: 99, B: 23480})
//	v, err := dynshape.Decode(s, data)   // Pair { a: 99, b: 23480 }
//	out, err := dynshape.Encode(v)       // bytes.Equal(out, data)
//
// # Packages
//
//	dynshape/
//	├── schema/     Schema model, inference recorder, JSON/YAML/WIT authoring
//	├── dynamic/    Dynamic values: schema-guided decode, encode, JSON view
//	├── wire/       Serialization protocol and the reflection driver for Go types
//	├── bincode/    Fixed-width framing implementing the wire protocol
//	├── guest/      Values in WebAssembly linear memory (wazero)
//	├── errors/     Structured errors with phase, kind and path
//	└── cmd/shapectl  Command line tool
//
// # Errors
//
// Every failure is an *errors.Error. Match on kind with the sentinels:
//
//	if errors.Is(err, dynerrors.ErrSchemaMismatch) { ... }
//
// # Logging
//
// The module is silent until SetLogger installs a zap logger.
package dynshape
