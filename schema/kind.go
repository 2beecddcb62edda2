package schema

// Kind identifies the variant of a Schema node.
type Kind uint8

const (
	KindBool Kind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindF32
	KindF64
	KindChar
	KindString
	KindUnit
	KindStruct
	KindTuple
	KindTupleStruct
	KindNewtypeStruct
	KindUnitStruct
	KindEnum
)

var kindNames = [...]string{
	KindBool:          "bool",
	KindI8:            "i8",
	KindI16:           "i16",
	KindI32:           "i32",
	KindI64:           "i64",
	KindI128:          "i128",
	KindU8:            "u8",
	KindU16:           "u16",
	KindU32:           "u32",
	KindU64:           "u64",
	KindU128:          "u128",
	KindF32:           "f32",
	KindF64:           "f64",
	KindChar:          "char",
	KindString:        "string",
	KindUnit:          "unit",
	KindStruct:        "struct",
	KindTuple:         "tuple",
	KindTupleStruct:   "tuple_struct",
	KindNewtypeStruct: "newtype_struct",
	KindUnitStruct:    "unit_struct",
	KindEnum:          "enum",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether k has no children and no name.
func (k Kind) IsPrimitive() bool {
	return k <= KindUnit
}

// IsNamed reports whether nodes of kind k carry a type name.
func (k Kind) IsNamed() bool {
	switch k {
	case KindStruct, KindTupleStruct, KindNewtypeStruct, KindUnitStruct, KindEnum:
		return true
	}
	return false
}

// ParseKind returns the kind whose String form is name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}
