package abi

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"abigen/internal/layout"
	"abigen/internal/source"
)

// Type is implemented by every type of the model. The set of implementations
// is closed: *VoidType, *IntType, *IntLikeType, *ArrayType, *PointerType,
// *AtomicType, *StructType and *FunctionType.
type Type interface {
	node
	Kind() Kind
	// Ident returns the declared name, or "" for anonymous types.
	Ident() string
	Layout() layout.Layout
	// Dependencies returns the named user-defined types reachable from the
	// type's immediate substructure, sorted by name.
	Dependencies() []Type
	isType()
}

// NamedType is a user-defined type registered in the ABI namespace.
type NamedType interface {
	Type
	Documentation() string
	Pos() source.Span
}

// Entity is anything a documentation link can point at.
type Entity interface {
	Ident() string
}

// VoidType has no size. It is valid as a pointer target and as a function
// return type.
type VoidType struct{}

// Void is the single void instance.
var Void = &VoidType{}

func (*VoidType) Kind() Kind                { return KindVoid }
func (*VoidType) Ident() string             { return "void" }
func (*VoidType) Layout() layout.Layout     { return layout.Unsized() }
func (*VoidType) Dependencies() []Type      { return nil }
func (*VoidType) immediateChildren() []node { return nil }
func (*VoidType) isType()                   {}

// IntType is one of the fixed primitive integers.
type IntType struct {
	Name   string
	Signed bool
	layout layout.Layout
}

func (t *IntType) Kind() Kind                { return KindInt }
func (t *IntType) Ident() string             { return t.Name }
func (t *IntType) Layout() layout.Layout     { return t.layout }
func (t *IntType) Dependencies() []Type      { return nil }
func (t *IntType) immediateChildren() []node { return nil }
func (t *IntType) isType()                   {}

// Bits returns the width used to range-check literals. size is checked
// against its narrowest (32-bit) width.
func (t *IntType) Bits() int {
	return 8 * t.layout.Size[layout.Regime32]
}

// Fits reports whether a literal can be stored in the type. Non-negative
// literals may use the full unsigned bit pattern; negative ones need a
// signed type.
func (t *IntType) Fits(v *Value) bool {
	bits := t.Bits()
	if v.Negative {
		if !t.Signed {
			return false
		}
		min := int64(math.MinInt64)
		if bits < 64 {
			min = -(int64(1) << (bits - 1))
		}
		return int64(v.Value) >= min
	}
	if bits >= 64 {
		return true
	}
	return v.Value < uint64(1)<<bits
}

func newIntType(name string, bytes int, signed bool) *IntType {
	return &IntType{Name: name, Signed: signed, layout: layout.Scalar(bytes)}
}

var primitives = func() map[string]*IntType {
	m := map[string]*IntType{
		"char":   newIntType("char", 1, true),
		"uint8":  newIntType("uint8", 1, false),
		"uint16": newIntType("uint16", 2, false),
		"uint32": newIntType("uint32", 4, false),
		"uint64": newIntType("uint64", 8, false),
		"int8":   newIntType("int8", 1, true),
		"int16":  newIntType("int16", 2, true),
		"int32":  newIntType("int32", 4, true),
		"int64":  newIntType("int64", 8, true),
	}
	ptr := layout.Pointer()
	m["size"] = &IntType{Name: "size", layout: layout.New(ptr.Size, ptr.Align)}
	return m
}()

// LookupPrimitive finds a primitive integer type by name.
func LookupPrimitive(name string) (*IntType, bool) {
	t, ok := primitives[name]
	return t, ok
}

// Primitive returns a primitive that is known to exist. It panics otherwise.
func Primitive(name string) *IntType {
	t, ok := primitives[name]
	if !ok {
		panic(fmt.Sprintf("abi: no primitive %q", name))
	}
	return t
}

// Primitives lists every primitive integer type sorted by name.
func Primitives() []*IntType {
	out := make([]*IntType, 0, len(primitives))
	for _, t := range primitives {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Value is a named integer constant of an int-like type.
type Value struct {
	Name     string
	Value    uint64 // two's complement bit pattern when Negative
	Negative bool
	Doc      string
	Span     source.Span
}

func (v *Value) Ident() string { return v.Name }

// Int64 returns the value as a signed integer.
func (v *Value) Int64() int64 {
	return int64(v.Value)
}

// Literal renders the value in decimal.
func (v *Value) Literal() string {
	if v.Negative {
		return strconv.FormatInt(v.Int64(), 10)
	}
	return strconv.FormatUint(v.Value, 10)
}

// IntLikeType is an alias, opaque, enum or flags type over a primitive
// integer.
type IntLikeType struct {
	Name    string
	Class   Kind
	Int     *IntType
	Values  []*Value
	CPrefix string
	Doc     string
	Span    source.Span
}

// NewIntLike builds an int-like type. cprefix nil selects the default
// prefix (upper-cased name followed by an underscore).
func NewIntLike(name string, class Kind, base *IntType, values []*Value, cprefix *string) *IntLikeType {
	if !class.IntLike() {
		panic(fmt.Sprintf("abi: %s is not an int-like kind", class))
	}
	prefix := strings.ToUpper(name) + "_"
	if cprefix != nil {
		prefix = *cprefix
	}
	return &IntLikeType{Name: name, Class: class, Int: base, Values: values, CPrefix: prefix}
}

func (t *IntLikeType) Kind() Kind                { return t.Class }
func (t *IntLikeType) Ident() string             { return t.Name }
func (t *IntLikeType) Layout() layout.Layout     { return t.Int.Layout() }
func (t *IntLikeType) Dependencies() []Type      { return nil }
func (t *IntLikeType) Documentation() string     { return t.Doc }
func (t *IntLikeType) Pos() source.Span          { return t.Span }
func (t *IntLikeType) immediateChildren() []node { return nil }
func (t *IntLikeType) isType()                   {}

// Value looks a constant up by name.
func (t *IntLikeType) Value(name string) (*Value, bool) {
	for _, v := range t.Values {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// ArrayType is an anonymous fixed-size array.
type ArrayType struct {
	Count  uint64
	Elem   Type
	layout layout.Layout
}

// NewArray builds an array type; it fails when the element has no size or
// the total size overflows.
func NewArray(count uint64, elem Type) (*ArrayType, error) {
	l, err := layout.Array(elem.Layout(), count)
	if err != nil {
		return nil, err
	}
	return &ArrayType{Count: count, Elem: elem, layout: l}, nil
}

func (t *ArrayType) Kind() Kind                { return KindArray }
func (t *ArrayType) Ident() string             { return "" }
func (t *ArrayType) Layout() layout.Layout     { return t.layout }
func (t *ArrayType) Dependencies() []Type      { return computeDependencies(t) }
func (t *ArrayType) immediateChildren() []node { return []node{t.Elem} }
func (t *ArrayType) isType()                   {}

// PointerType is an anonymous pointer, optionally to const data.
type PointerType struct {
	Target Type
	Const  bool
}

func (t *PointerType) Kind() Kind                { return KindPointer }
func (t *PointerType) Ident() string             { return "" }
func (t *PointerType) Layout() layout.Layout     { return layout.Pointer() }
func (t *PointerType) Dependencies() []Type      { return computeDependencies(t) }
func (t *PointerType) immediateChildren() []node { return []node{t.Target} }
func (t *PointerType) isType()                   {}

// AtomicType marks a value accessed atomically; the layout is unchanged.
type AtomicType struct {
	Target Type
}

func (t *AtomicType) Kind() Kind                { return KindAtomic }
func (t *AtomicType) Ident() string             { return "" }
func (t *AtomicType) Layout() layout.Layout     { return t.Target.Layout() }
func (t *AtomicType) Dependencies() []Type      { return computeDependencies(t) }
func (t *AtomicType) immediateChildren() []node { return []node{t.Target} }
func (t *AtomicType) isType()                   {}

// TypeString renders a type the way it is written in a specification.
func TypeString(t Type) string {
	switch tt := t.(type) {
	case *ArrayType:
		return fmt.Sprintf("array %d %s", tt.Count, TypeString(tt.Elem))
	case *PointerType:
		if tt.Const {
			return "cptr " + TypeString(tt.Target)
		}
		return "ptr " + TypeString(tt.Target)
	case *AtomicType:
		return "atomic " + TypeString(tt.Target)
	case *StructType:
		if tt.Name == "" {
			return "struct"
		}
		return tt.Name
	default:
		return t.Ident()
	}
}
