package abi

import (
	"fmt"
	"regexp"
	"strings"

	"abigen/internal/source"
)

// ResolveName finds name directly under root. A nil root searches the type
// namespace and then the syscall namespace.
func (a *ABI) ResolveName(name string, root Entity) Entity {
	switch r := root.(type) {
	case nil:
		if t, ok := a.types[name]; ok {
			return t
		}
		if s, ok := a.syscalls[name]; ok {
			return s
		}
	case *IntLikeType:
		if v, ok := r.Value(name); ok {
			return v
		}
	case *StructType:
		return resolveMember(name, r)
	case *VariantArm:
		return resolveMember(name, r.Type)
	case *FunctionType:
		return resolveMember(name, r.Params)
	case *Syscall:
		if e := resolveMember(name, r.Input); e != nil {
			return e
		}
		return resolveMember(name, r.Output)
	}
	return nil
}

func resolveMember(name string, st *StructType) Entity {
	for _, m := range st.Members {
		switch mm := m.(type) {
		case *VariantMember:
			for _, arm := range mm.Arms {
				if arm.Name == name {
					return arm
				}
				if arm.Name == "" {
					if e := resolveMember(name, arm.Type); e != nil {
						return e
					}
				}
			}
		case *RangeMember:
			if mm.Name == name {
				return mm
			}
			base, length := mm.Raw()
			if base.Name == name {
				return base
			}
			if length.Name == name {
				return length
			}
		default:
			if m.Ident() == name {
				return m
			}
		}
	}
	return nil
}

// ResolvePath resolves a dotted path such as "fd_stat.fs_rights_base".
// Each component is looked up under the previous one. The result holds one
// entity per component, or nil if any component is missing.
func (a *ABI) ResolvePath(path string) []Entity {
	var (
		out  []Entity
		root Entity
	)
	for _, name := range strings.Split(path, ".") {
		e := a.ResolveName(name, root)
		if e == nil {
			return nil
		}
		out = append(out, e)
		root = e
	}
	return out
}

// linkPattern matches [path] not followed by "(", so Markdown inline links
// are left alone.
var linkPattern = regexp.MustCompile(`\[([\w.]+)\]`)

// DocLinks extracts the link targets referenced in a documentation string.
func DocLinks(doc string) []string {
	var out []string
	for _, m := range linkPattern.FindAllStringSubmatchIndex(doc, -1) {
		if m[1] < len(doc) && doc[m[1]] == '(' {
			continue
		}
		out = append(out, doc[m[2]:m[3]])
	}
	return out
}

// LinkError is a documentation link that does not resolve.
type LinkError struct {
	Link  string
	Owner string
	Span  source.Span
}

func (e *LinkError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("unresolved link [%s]", e.Link)
	}
	return fmt.Sprintf("unresolved link [%s] in documentation of %s", e.Link, e.Owner)
}

// CheckDocLinks resolves every link in every documentation string of the
// ABI and returns the ones that do not resolve, in declaration order.
func (a *ABI) CheckDocLinks() []*LinkError {
	var errs []*LinkError
	check := func(owner string, span source.Span, doc string) {
		for _, link := range DocLinks(doc) {
			if a.ResolvePath(link) == nil {
				errs = append(errs, &LinkError{Link: link, Owner: owner, Span: span})
			}
		}
	}

	check("", source.Span{}, a.Doc)
	for _, t := range a.DeclaredTypes() {
		name := t.Ident()
		check(name, t.Pos(), t.Documentation())
		switch tt := t.(type) {
		case *IntLikeType:
			for _, v := range tt.Values {
				check(name+"."+v.Name, v.Span, v.Doc)
			}
		case *StructType:
			checkMembers(name, tt, check)
		case *FunctionType:
			checkMembers(name, tt.Params, check)
			check(name, tt.Span, tt.ReturnDoc)
		}
	}
	for _, name := range a.syscallOrder {
		s := a.syscalls[name]
		check(name, s.Span, s.Doc)
		checkMembers(name, s.Input, check)
		checkMembers(name, s.Output, check)
	}
	return errs
}

func checkMembers(prefix string, st *StructType, check func(string, source.Span, string)) {
	for _, m := range st.Members {
		switch mm := m.(type) {
		case *SimpleMember:
			owner := prefix + "." + mm.Name
			check(owner, mm.Span, mm.Doc)
			for _, v := range mm.SpecialValues {
				check(owner+"."+v.Name, v.Span, v.Doc)
			}
		case *RangeMember:
			check(prefix+"."+mm.Name, mm.Span, mm.Doc)
		case *VariantMember:
			for _, arm := range mm.Arms {
				armPrefix := prefix
				if arm.Name != "" {
					armPrefix = prefix + "." + arm.Name
					check(armPrefix, arm.Span, arm.Doc)
				}
				checkMembers(armPrefix, arm.Type, check)
			}
		}
	}
}
