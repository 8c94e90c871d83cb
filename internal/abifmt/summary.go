// Package abifmt turns a checked ABI into a serializable summary and renders
// it for the terminal.
package abifmt

import (
	"encoding/json"
	"io"

	"abigen/internal/abi"
	"abigen/internal/layout"
)

// Summary is the layout-level view of an ABI. It is what the disk cache
// stores and what `abigen check --json` prints.
type Summary struct {
	Types    []TypeSummary    `json:"types" msgpack:"types"`
	Syscalls []SyscallSummary `json:"syscalls" msgpack:"syscalls"`
	// Order lists named types in emission order.
	Order []string `json:"order" msgpack:"order"`
}

type TypeSummary struct {
	Name       string          `json:"name" msgpack:"name"`
	Kind       string          `json:"kind" msgpack:"kind"`
	Sized      bool            `json:"sized" msgpack:"sized"`
	Size       layout.Pair     `json:"size" msgpack:"size"`
	Align      layout.Pair     `json:"align" msgpack:"align"`
	MachineDep bool            `json:"machine_dep" msgpack:"machine_dep"`
	Deps       []string        `json:"deps,omitempty" msgpack:"deps,omitempty"`
	UsedBy     []string        `json:"used_by,omitempty" msgpack:"used_by,omitempty"`
	Members    []MemberSummary `json:"members,omitempty" msgpack:"members,omitempty"`
	Values     []ValueSummary  `json:"values,omitempty" msgpack:"values,omitempty"`
}

// MemberSummary is one raw member of a struct with its offsets.
type MemberSummary struct {
	Name   string      `json:"name" msgpack:"name"`
	Type   string      `json:"type" msgpack:"type"`
	Offset layout.Pair `json:"offset" msgpack:"offset"`
	Size   layout.Pair `json:"size" msgpack:"size"`
}

type ValueSummary struct {
	Name    string `json:"name" msgpack:"name"`
	Literal string `json:"value" msgpack:"value"`
}

type SyscallSummary struct {
	Name       string   `json:"name" msgpack:"name"`
	Number     int      `json:"number" msgpack:"number"`
	MachineDep bool     `json:"machine_dep" msgpack:"machine_dep"`
	NoReturn   bool     `json:"noreturn" msgpack:"noreturn"`
	Deps       []string `json:"deps,omitempty" msgpack:"deps,omitempty"`
}

// Summarize builds the summary of a model. order is the emission order as
// returned by (*abi.ABI).Order.
func Summarize(a *abi.ABI, order []abi.Type) *Summary {
	s := &Summary{}
	for _, t := range a.Types() {
		s.Types = append(s.Types, summarizeType(a, t))
	}
	for _, sc := range a.Syscalls() {
		num, _ := a.SyscallNumber(sc.Name)
		s.Syscalls = append(s.Syscalls, SyscallSummary{
			Name:       sc.Name,
			Number:     num,
			MachineDep: sc.MachineDep(),
			NoReturn:   sc.NoReturn,
			Deps:       idents(sc.Dependencies()),
		})
	}
	for _, t := range order {
		s.Order = append(s.Order, t.Ident())
	}
	return s
}

func summarizeType(a *abi.ABI, t abi.NamedType) TypeSummary {
	l := t.Layout()
	ts := TypeSummary{
		Name:       t.Ident(),
		Kind:       t.Kind().String(),
		Sized:      l.Sized(),
		Size:       l.Size,
		Align:      l.Align,
		MachineDep: l.MachineDep,
		Deps:       idents(t.Dependencies()),
	}
	for _, e := range a.UsedBy(t) {
		ts.UsedBy = append(ts.UsedBy, e.Ident())
	}
	switch tt := t.(type) {
	case *abi.StructType:
		ts.Members = summarizeMembers(tt)
	case *abi.IntLikeType:
		for _, v := range tt.Values {
			ts.Values = append(ts.Values, ValueSummary{Name: v.Name, Literal: v.Literal()})
		}
	}
	return ts
}

func summarizeMembers(st *abi.StructType) []MemberSummary {
	if len(st.RawMembers) == 0 {
		return nil
	}
	out := make([]MemberSummary, 0, len(st.RawMembers))
	for i, m := range st.RawMembers {
		ms := MemberSummary{Offset: st.Offsets[i], Size: m.Layout().Size}
		switch mm := m.(type) {
		case *abi.SimpleMember:
			ms.Name = mm.Name
			ms.Type = abi.TypeString(mm.Type)
		case *abi.VariantMember:
			ms.Name = "(variant " + mm.Tag.Name + ")"
			ms.Type = "union"
		}
		out = append(out, ms)
	}
	return out
}

func idents(ts []abi.Type) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Ident()
	}
	return out
}

// Type finds a type summary by name.
func (s *Summary) Type(name string) (*TypeSummary, bool) {
	for i := range s.Types {
		if s.Types[i].Name == name {
			return &s.Types[i], true
		}
	}
	return nil, false
}

// WriteJSON writes the summary as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
