package abi

import (
	"fmt"

	"abigen/internal/layout"
	"abigen/internal/source"
)

// StructMember is one logical member of a struct: a simple field, a range
// or a variant.
type StructMember interface {
	node
	// Ident is "" for variants.
	Ident() string
	isMember()
}

// RawMember is a member that occupies storage directly. Ranges expand into
// two raw members; simple members and variants are raw themselves.
type RawMember interface {
	StructMember
	Layout() layout.Layout
}

// SimpleMember is a named field of a given type.
type SimpleMember struct {
	Name string
	Type Type
	// SpecialValues are named values of an int-like member type that carry
	// a meaning specific to this field.
	SpecialValues []*Value
	Doc           string
	Span          source.Span
}

func (m *SimpleMember) Ident() string             { return m.Name }
func (m *SimpleMember) Layout() layout.Layout     { return m.Type.Layout() }
func (m *SimpleMember) immediateChildren() []node { return []node{m.Type} }
func (m *SimpleMember) isMember()                 {}

// RangeMember is a pointer plus an element count, stored as two raw members.
type RangeMember struct {
	Name     string
	BaseName string
	LenName  string
	Const    bool
	Target   Type
	Doc      string
	Span     source.Span

	base *SimpleMember
	len  *SimpleMember
}

// NewRangeMember builds a range over target. Empty base and length names
// default to name and name+"_len".
func NewRangeMember(name, baseName, lenName string, constant bool, target Type) (*RangeMember, error) {
	if !target.Layout().Sized() {
		return nil, fmt.Errorf("%w: range %q", ErrRangeOfUnsized, name)
	}
	if baseName == "" {
		baseName = name
	}
	if lenName == "" {
		lenName = name + "_len"
	}
	if baseName == lenName {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateMember, baseName)
	}
	r := &RangeMember{
		Name:     name,
		BaseName: baseName,
		LenName:  lenName,
		Const:    constant,
		Target:   target,
	}
	r.base = &SimpleMember{Name: baseName, Type: &PointerType{Target: target, Const: constant}}
	r.len = &SimpleMember{Name: lenName, Type: Primitive("size")}
	return r, nil
}

// Raw returns the pointer and length members the range occupies.
func (m *RangeMember) Raw() (base, length *SimpleMember) {
	return m.base, m.len
}

func (m *RangeMember) Ident() string             { return m.Name }
func (m *RangeMember) immediateChildren() []node { return []node{m.Target} }
func (m *RangeMember) isMember()                 {}

// VariantArm is one alternative of a variant, selected by one or more tag
// values. Name is "" for anonymous arms.
type VariantArm struct {
	Name      string
	TagValues []*Value
	Type      *StructType
	Doc       string
	Span      source.Span
}

func (a *VariantArm) Ident() string             { return a.Name }
func (a *VariantArm) Layout() layout.Layout     { return a.Type.Layout() }
func (a *VariantArm) immediateChildren() []node { return []node{a.Type} }

// VariantMember is a tagged union. The tag is an earlier simple member of
// the enclosing struct; its storage belongs to that member.
type VariantMember struct {
	Tag    *SimpleMember
	Arms   []*VariantArm
	Span   source.Span
	layout layout.Layout
}

// NewVariant builds a variant and computes the union layout of its arms.
func NewVariant(tag *SimpleMember, arms []*VariantArm) (*VariantMember, error) {
	switch tag.Type.Kind() {
	case KindEnum, KindAlias:
	default:
		return nil, fmt.Errorf("%w: %q has kind %s", ErrBadVariantTag, tag.Name, tag.Type.Kind())
	}
	ls := make([]layout.Layout, len(arms))
	for i, arm := range arms {
		ls[i] = arm.Layout()
	}
	l, err := layout.Union(ls)
	if err != nil {
		return nil, err
	}
	return &VariantMember{Tag: tag, Arms: arms, layout: l}, nil
}

func (m *VariantMember) Ident() string         { return "" }
func (m *VariantMember) Layout() layout.Layout { return m.layout }
func (m *VariantMember) isMember()             {}

func (m *VariantMember) immediateChildren() []node {
	out := make([]node, len(m.Arms))
	for i, arm := range m.Arms {
		out[i] = arm
	}
	return out
}

// Arm finds a named arm.
func (m *VariantMember) Arm(name string) (*VariantArm, bool) {
	for _, arm := range m.Arms {
		if arm.Name != "" && arm.Name == name {
			return arm, true
		}
	}
	return nil, false
}

// StructType is a record of members. Anonymous structs (Name == "") appear
// as variant arms, function parameter lists and syscall inputs and outputs.
type StructType struct {
	Name       string
	Members    []StructMember
	RawMembers []RawMember
	// Offsets holds the (32-bit, 64-bit) offset of each raw member.
	Offsets []layout.Pair
	Doc     string
	Span    source.Span

	layout layout.Layout
	deps   []Type
}

// NewStruct expands ranges into raw members, checks that raw member names
// are unique and computes the layout and dependencies.
func NewStruct(name string, members []StructMember) (*StructType, error) {
	s := &StructType{Name: name, Members: members}
	seen := make(map[string]struct{}, len(members))
	addRaw := func(m RawMember, ident string) error {
		if ident != "" {
			if _, dup := seen[ident]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateMember, ident)
			}
			seen[ident] = struct{}{}
		}
		s.RawMembers = append(s.RawMembers, m)
		return nil
	}
	for _, m := range members {
		switch mm := m.(type) {
		case *RangeMember:
			base, length := mm.Raw()
			if err := addRaw(base, base.Name); err != nil {
				return nil, err
			}
			if err := addRaw(length, length.Name); err != nil {
				return nil, err
			}
		case RawMember:
			if err := addRaw(mm, mm.Ident()); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("abi: unsupported member %T", m)
		}
	}
	ls := make([]layout.Layout, len(s.RawMembers))
	for i, m := range s.RawMembers {
		ls[i] = m.Layout()
	}
	l, offsets, err := layout.Struct(ls)
	if err != nil {
		return nil, err
	}
	s.layout = l
	s.Offsets = offsets
	s.deps = computeDependencies(s)
	return s, nil
}

func (t *StructType) Kind() Kind            { return KindStruct }
func (t *StructType) Ident() string         { return t.Name }
func (t *StructType) Layout() layout.Layout { return t.layout }
func (t *StructType) Dependencies() []Type  { return t.deps }
func (t *StructType) Documentation() string { return t.Doc }
func (t *StructType) Pos() source.Span      { return t.Span }
func (t *StructType) isType()               {}

func (t *StructType) immediateChildren() []node {
	out := make([]node, len(t.Members))
	for i, m := range t.Members {
		out[i] = m
	}
	return out
}

// Member finds a logical member by name.
func (t *StructType) Member(name string) (StructMember, bool) {
	for _, m := range t.Members {
		if m.Ident() != "" && m.Ident() == name {
			return m, true
		}
	}
	return nil, false
}

// RawMember finds a raw member by name, including the halves of ranges.
func (t *StructType) RawMember(name string) (*SimpleMember, bool) {
	for _, m := range t.RawMembers {
		if sm, ok := m.(*SimpleMember); ok && sm.Name == name {
			return sm, true
		}
	}
	return nil, false
}
