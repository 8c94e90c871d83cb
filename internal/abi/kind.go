package abi

// Kind is the closed set of type classes an ABI description can contain.
type Kind uint8

const (
	KindVoid Kind = iota
	KindInt
	KindAlias
	KindOpaque
	KindEnum
	KindFlags
	KindArray
	KindPointer
	KindAtomic
	KindStruct
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindAlias:
		return "alias"
	case KindOpaque:
		return "opaque"
	case KindEnum:
		return "enum"
	case KindFlags:
		return "flags"
	case KindArray:
		return "array"
	case KindPointer:
		return "pointer"
	case KindAtomic:
		return "atomic"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// IntLike reports whether the kind wraps a primitive integer with named
// values.
func (k Kind) IntLike() bool {
	switch k {
	case KindAlias, KindOpaque, KindEnum, KindFlags:
		return true
	}
	return false
}

// intLikeKinds maps declaration keywords to int-like kinds.
var intLikeKinds = map[string]Kind{
	"alias":  KindAlias,
	"opaque": KindOpaque,
	"enum":   KindEnum,
	"flags":  KindFlags,
}

// IntLikeKeyword returns the kind introduced by an int-like declaration
// keyword (alias, opaque, enum, flags).
func IntLikeKeyword(word string) (Kind, bool) {
	k, ok := intLikeKinds[word]
	return k, ok
}
