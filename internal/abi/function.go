package abi

import (
	"abigen/internal/layout"
	"abigen/internal/source"
)

// FunctionType is a named function signature. It has no size; its layout
// only records whether any parameter or the return type is
// machine-dependent.
type FunctionType struct {
	Name      string
	Params    *StructType
	Return    Type
	ReturnDoc string
	Doc       string
	Span      source.Span

	deps []Type
}

// NewFunction builds a function type. A nil params is an empty parameter
// list and a nil ret is void.
func NewFunction(name string, params *StructType, ret Type) *FunctionType {
	if params == nil {
		params = emptyStruct()
	}
	if ret == nil {
		ret = Void
	}
	f := &FunctionType{Name: name, Params: params, Return: ret}
	f.deps = computeDependencies(f)
	return f
}

func (t *FunctionType) Kind() Kind            { return KindFunction }
func (t *FunctionType) Ident() string         { return t.Name }
func (t *FunctionType) Dependencies() []Type  { return t.deps }
func (t *FunctionType) Documentation() string { return t.Doc }
func (t *FunctionType) Pos() source.Span      { return t.Span }
func (t *FunctionType) isType()               {}

func (t *FunctionType) Layout() layout.Layout {
	md := t.Params.Layout().MachineDep || t.Return.Layout().MachineDep
	return layout.UnsizedWith(md)
}

func (t *FunctionType) immediateChildren() []node {
	return []node{t.Params, t.Return}
}

// Syscall is a kernel entry point with anonymous input and output structs.
type Syscall struct {
	Name     string
	Input    *StructType
	Output   *StructType
	NoReturn bool
	Doc      string
	Span     source.Span

	machineDep bool
	deps       []Type
}

// NewSyscall builds a syscall. A nil input or output is an empty struct.
func NewSyscall(name string, input, output *StructType, noReturn bool) *Syscall {
	if input == nil {
		input = emptyStruct()
	}
	if output == nil {
		output = emptyStruct()
	}
	s := &Syscall{Name: name, Input: input, Output: output, NoReturn: noReturn}
	s.machineDep = pointsAtMachineDep(input) || pointsAtMachineDep(output)
	s.deps = computeDependencies(s)
	return s
}

func (s *Syscall) Ident() string         { return s.Name }
func (s *Syscall) Documentation() string { return s.Doc }
func (s *Syscall) Pos() source.Span      { return s.Span }
func (s *Syscall) Dependencies() []Type  { return s.deps }

// MachineDep reports whether a raw input or output member is a pointer to
// data whose layout differs between the 32-bit and 64-bit regimes.
// Such syscalls need a translation layer for 32-bit processes on a 64-bit
// kernel.
func (s *Syscall) MachineDep() bool { return s.machineDep }

func (s *Syscall) immediateChildren() []node {
	return []node{s.Input, s.Output}
}

func pointsAtMachineDep(st *StructType) bool {
	for _, m := range st.RawMembers {
		sm, ok := m.(*SimpleMember)
		if !ok {
			continue
		}
		if p, ok := sm.Type.(*PointerType); ok && p.Target.Layout().MachineDep {
			return true
		}
	}
	return false
}

func emptyStruct() *StructType {
	s, err := NewStruct("", nil)
	if err != nil {
		panic(err)
	}
	return s
}
