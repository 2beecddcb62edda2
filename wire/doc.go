// Package wire defines the generic decode/encode protocol that dynshape
// is built on, and a reflection driver that speaks it for ordinary Go values.
//
// The protocol separates shape from framing:
//
//	┌────────────┐   Decoder / Encoder   ┌──────────────────────┐
//	│ engine     │ ←───────────────────→ │ framing collaborator │
//	│ (schema,   │   one call per node   │ (bincode, ...)       │
//	│  dynamic)  │                       └──────────────────────┘
//	└────────────┘
//
// Scalars have one operation per kind. Aggregates take a visitor that
// receives a positional SeqReader (decode) or SeqWriter (encode) bounded to
// the declared arity. The visitor is a closure, so any context the caller
// needs for the next element (for example the expected schema node) is
// passed explicitly rather than through shared state.
//
// # Go type mapping
//
// Decode and Encode map Go types onto the protocol:
//
//	Decodable / Encodable         custom
//	bool, intN, uintN, floatN     primitive (int and uint are 64-bit)
//	string                        string
//	Int128, Uint128, Char, Unit   i128, u128, char, unit
//	integer type implementing Enum   unit-valued enum
//	type Meters float64           newtype struct "Meters"
//	type Point [2]int32           tuple struct "Point"
//	[N]T                          tuple
//	struct{ A int32; B string }   tuple (anonymous struct)
//	struct{}                      unit
//	type Marker struct{}          unit struct "Marker"
//	type Pair struct{ ... }       struct "Pair"
//	[]byte                        bytes
//	[]T, map[K]V, *T              sequence, map, option
//
// Struct fields use their Go name unless tagged `wire:"name"`; `wire:"-"`
// and unexported fields are skipped. A top-level pointer passed to Decode or
// Encode is followed; nested pointers are options.
//
// Compiled per-type plans are cached and safe for concurrent use.
package wire
