package wire

// Decoder is the generic decode protocol. Each scalar kind has its own
// operation; aggregates hand a visitor a positional reader over their elements.
//
// Implementations define the byte framing. The engine only ever calls these
// methods and never looks at bytes itself.
type Decoder interface {
	DecodeBool() (bool, error)
	DecodeI8() (int8, error)
	DecodeI16() (int16, error)
	DecodeI32() (int32, error)
	DecodeI64() (int64, error)
	DecodeI128() (Int128, error)
	DecodeU8() (uint8, error)
	DecodeU16() (uint16, error)
	DecodeU32() (uint32, error)
	DecodeU64() (uint64, error)
	DecodeU128() (Uint128, error)
	DecodeF32() (float32, error)
	DecodeF64() (float64, error)
	DecodeChar() (rune, error)
	DecodeString() (string, error)
	DecodeUnit() error

	// DecodeStruct decodes a struct with the given ordered field names.
	DecodeStruct(name string, fields []string, visit func(SeqReader) error) error
	// DecodeTuple decodes a fixed-arity heterogeneous tuple.
	DecodeTuple(n int, visit func(SeqReader) error) error
	// DecodeTupleStruct decodes a named fixed-arity tuple.
	DecodeTupleStruct(name string, n int, visit func(SeqReader) error) error
	// DecodeNewtypeStruct decodes a named single-element wrapper.
	DecodeNewtypeStruct(name string, visit func(Decoder) error) error
	// DecodeUnitStruct decodes a named value with no content.
	DecodeUnitStruct(name string) error
	// DecodeEnum decodes the tag of a unit-valued enum and returns its index.
	// The index is not range-checked; callers validate it against variants.
	DecodeEnum(name string, variants []string) (uint32, error)

	// DecodeSeq decodes a variable-length sequence.
	DecodeSeq(visit func(SeqReader) error) error
	// DecodeMap decodes an associative container. The reader yields
	// key, value, key, value, ... so Len is twice the entry count.
	DecodeMap(visit func(SeqReader) error) error
	// DecodeOption reports whether a value is present and, if so, decodes it with visit.
	DecodeOption(visit func(Decoder) error) (bool, error)
	// DecodeBytes decodes a raw byte buffer.
	DecodeBytes() ([]byte, error)
}

// SeqReader is a positional, arity-bounded element provider.
type SeqReader interface {
	// Len is the number of elements the source declares.
	Len() int
	// Next decodes the next element by calling decode with a Decoder
	// positioned at it. It fails once Len elements have been consumed.
	Next(decode func(Decoder) error) error
}

// Encoder is the generic encode protocol, the forward mirror of Decoder.
type Encoder interface {
	EncodeBool(v bool) error
	EncodeI8(v int8) error
	EncodeI16(v int16) error
	EncodeI32(v int32) error
	EncodeI64(v int64) error
	EncodeI128(v Int128) error
	EncodeU8(v uint8) error
	EncodeU16(v uint16) error
	EncodeU32(v uint32) error
	EncodeU64(v uint64) error
	EncodeU128(v Uint128) error
	EncodeF32(v float32) error
	EncodeF64(v float64) error
	EncodeChar(v rune) error
	EncodeString(v string) error
	EncodeUnit() error

	EncodeStruct(name string, fields []string, emit func(SeqWriter) error) error
	EncodeTuple(n int, emit func(SeqWriter) error) error
	EncodeTupleStruct(name string, n int, emit func(SeqWriter) error) error
	EncodeNewtypeStruct(name string, emit func(Encoder) error) error
	EncodeUnitStruct(name string) error
	// EncodeEnum emits the tag of a unit-valued enum variant.
	EncodeEnum(name string, index uint32, variant string) error

	EncodeSeq(n int, emit func(SeqWriter) error) error
	// EncodeMap encodes n entries; emit writes 2n elements, keys and values interleaved.
	EncodeMap(n int, emit func(SeqWriter) error) error
	// EncodeOption encodes presence and, when present, the value through emit.
	EncodeOption(present bool, emit func(Encoder) error) error
	EncodeBytes(v []byte) error
}

// SeqWriter is the write side of an aggregate. Implementations fail when
// more than Len elements are written, and the enclosing Encode* call fails
// when fewer were.
type SeqWriter interface {
	Len() int
	Next(encode func(Encoder) error) error
}

// Decodable is implemented by types that drive the decode protocol themselves.
// It must be implemented on the pointer receiver.
type Decodable interface {
	DecodeWire(d Decoder) error
}

// Encodable is implemented by types that drive the encode protocol themselves.
type Encodable interface {
	EncodeWire(e Encoder) error
}

// Enum is implemented by integer types that represent unit-valued enums.
// The integer value is the variant index.
type Enum interface {
	EnumVariants() []string
}
