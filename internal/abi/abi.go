// Package abi models an ABI description: named types, syscalls and the
// relations between them.
//
// A model is assembled with a Builder and is immutable once Build returns.
// Every query method is safe for concurrent use after that point.
package abi

import (
	"fmt"
	"sort"
)

// ABI is a complete, validated description.
type ABI struct {
	Doc string

	types    map[string]NamedType
	syscalls map[string]*Syscall
	// declaration order
	typeOrder    []string
	syscallOrder []string
	// sorted syscall names; index is the syscall number
	numbering []string
	usedBy    map[Type][]Entity
}

// Builder accumulates declarations in source order.
type Builder struct {
	abi   *ABI
	built bool
}

func NewBuilder() *Builder {
	return &Builder{abi: &ABI{
		types:    make(map[string]NamedType),
		syscalls: make(map[string]*Syscall),
	}}
}

// SetDoc sets the documentation of the whole ABI.
func (b *Builder) SetDoc(doc string) {
	b.abi.Doc = doc
}

// LookupType returns a previously added type.
func (b *Builder) LookupType(name string) (NamedType, bool) {
	t, ok := b.abi.types[name]
	return t, ok
}

// LookupSyscall returns a previously added syscall.
func (b *Builder) LookupSyscall(name string) (*Syscall, bool) {
	s, ok := b.abi.syscalls[name]
	return s, ok
}

// AddType registers a named type. Names are unique across types.
func (b *Builder) AddType(t NamedType) error {
	name := t.Ident()
	if name == "" {
		return fmt.Errorf("abi: cannot register anonymous %s", t.Kind())
	}
	if _, dup := b.abi.types[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	b.abi.types[name] = t
	b.abi.typeOrder = append(b.abi.typeOrder, name)
	return nil
}

// AddSyscall registers a syscall. Names are unique across syscalls.
func (b *Builder) AddSyscall(s *Syscall) error {
	if _, dup := b.abi.syscalls[s.Name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateSyscall, s.Name)
	}
	b.abi.syscalls[s.Name] = s
	b.abi.syscallOrder = append(b.abi.syscallOrder, s.Name)
	return nil
}

// Build computes the used-by index and syscall numbering and returns the
// finished model. The builder must not be used afterwards.
func (b *Builder) Build() *ABI {
	if b.built {
		panic("abi: Builder.Build called twice")
	}
	b.built = true
	a := b.abi

	a.usedBy = make(map[Type][]Entity, len(a.types))
	for _, name := range a.typeOrder {
		user := a.types[name]
		for _, dep := range user.Dependencies() {
			a.usedBy[dep] = append(a.usedBy[dep], user)
		}
	}
	for _, name := range a.syscallOrder {
		s := a.syscalls[name]
		for _, dep := range s.Dependencies() {
			a.usedBy[dep] = append(a.usedBy[dep], s)
		}
	}
	for t, users := range a.usedBy {
		sortEntities(users)
		a.usedBy[t] = users
	}

	a.numbering = append([]string(nil), a.syscallOrder...)
	sort.Strings(a.numbering)
	return a
}

// Type looks up a named type.
func (a *ABI) Type(name string) (NamedType, bool) {
	t, ok := a.types[name]
	return t, ok
}

// Types returns every named type sorted by name.
func (a *ABI) Types() []NamedType {
	out := make([]NamedType, 0, len(a.types))
	for _, t := range a.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ident() < out[j].Ident() })
	return out
}

// DeclaredTypes returns every named type in declaration order.
func (a *ABI) DeclaredTypes() []NamedType {
	out := make([]NamedType, len(a.typeOrder))
	for i, name := range a.typeOrder {
		out[i] = a.types[name]
	}
	return out
}

// Syscall looks up a syscall.
func (a *ABI) Syscall(name string) (*Syscall, bool) {
	s, ok := a.syscalls[name]
	return s, ok
}

// Syscalls returns every syscall sorted by name, which is also syscall
// number order.
func (a *ABI) Syscalls() []*Syscall {
	out := make([]*Syscall, len(a.numbering))
	for i, name := range a.numbering {
		out[i] = a.syscalls[name]
	}
	return out
}

// SyscallNumber returns the ordinal of a syscall: its index among all
// syscall names in lexicographic order.
func (a *ABI) SyscallNumber(name string) (int, bool) {
	i := sort.SearchStrings(a.numbering, name)
	if i < len(a.numbering) && a.numbering[i] == name {
		return i, true
	}
	return 0, false
}

// UsedBy returns the types and syscalls whose dependency set contains t.
// Types come first, each group sorted by name.
func (a *ABI) UsedBy(t Type) []Entity {
	users := a.usedBy[t]
	if len(users) == 0 {
		return nil
	}
	return append([]Entity(nil), users...)
}

// Order returns the named types in emission order.
func (a *ABI) Order() ([]Type, error) {
	ts := make([]Type, 0, len(a.types))
	for _, t := range a.types {
		ts = append(ts, t)
	}
	return EmissionOrder(ts)
}

func sortEntities(es []Entity) {
	rank := func(e Entity) int {
		if _, ok := e.(*Syscall); ok {
			return 1
		}
		return 0
	}
	sort.SliceStable(es, func(i, j int) bool {
		ri, rj := rank(es[i]), rank(es[j])
		if ri != rj {
			return ri < rj
		}
		return es[i].Ident() < es[j].Ident()
	})
}
