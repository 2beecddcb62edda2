// Package bincode implements the wire protocol with the bincode 1
// fixed-width framing.
//
// # Layout
//
//	Kind                Bytes
//	──────────────────────────────────────────────────────
//	bool                1 (0 or 1)
//	i8/u8 ... i64/u64   1, 2, 4, 8 in the configured byte order
//	i128/u128           16
//	f32/f64             4/8, IEEE 754 bits
//	char                UTF-8, 1 to 4
//	string/bytes        u64 length + payload
//	seq/map             u64 count + elements (map: key, value, ...)
//	option              u8 tag (0 none, 1 some) + value
//	unit/unit struct    0
//	enum                u32 variant index
//	struct/tuple        fields concatenated, no header
//	newtype             the inner value
//
// Structs and tuples carry no arity on the wire, so the decoder trusts
// the count it is handed. Trailing input is tolerated by default; set
// Options.AllowTrailingBytes to false and call Decoder.Finish to reject it.
package bincode
