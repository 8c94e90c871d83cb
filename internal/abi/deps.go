package abi

import "sort"

// node is anything in the model graph that has substructure.
type node interface {
	immediateChildren() []node
}

// isAtom reports whether n stops the dependency walk: named user-defined
// types are recorded but not descended into.
func isAtom(n node) (Type, bool) {
	switch t := n.(type) {
	case *IntLikeType:
		return t, true
	case *StructType:
		if t.Name != "" {
			return t, true
		}
	case *FunctionType:
		return t, true
	}
	return nil, false
}

// computeDependencies walks the immediate substructure of root and
// collects the named user-defined types it reaches.
func computeDependencies(root node) []Type {
	set := make(map[Type]struct{})
	var walk func(n node)
	walk = func(n node) {
		for _, child := range n.immediateChildren() {
			if t, ok := isAtom(child); ok {
				set[t] = struct{}{}
				continue
			}
			// anonymous structs already carry their own set
			if st, ok := child.(*StructType); ok && st.deps != nil {
				for _, d := range st.deps {
					set[d] = struct{}{}
				}
				continue
			}
			walk(child)
		}
	}
	walk(root)
	out := make([]Type, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sortTypes(out)
	return out
}

func sortTypes(ts []Type) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Ident() < ts[j].Ident() })
}
