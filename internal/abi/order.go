package abi

import (
	"fmt"
	"strings"
)

// CycleError reports the types that could not be placed in emission order.
type CycleError struct {
	Stuck []Type
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Stuck))
	for i, t := range e.Stuck {
		names[i] = t.Ident()
	}
	return fmt.Sprintf("%s among %s", ErrDependencyCycle, strings.Join(names, ", "))
}

func (e *CycleError) Unwrap() error { return ErrDependencyCycle }

// EmissionOrder orders types so that each one follows all of its
// dependencies. Int-like types are placed first; the rest follow in passes
// over the remaining types sorted by name, so the result is deterministic.
//
// A dependency outside ts can never be satisfied and is reported as a
// *CycleError together with genuine cycles.
func EmissionOrder(ts []Type) ([]Type, error) {
	remaining := append([]Type(nil), ts...)
	sortTypes(remaining)

	done := make(map[Type]struct{}, len(ts))
	out := make([]Type, 0, len(ts))
	first := true
	for len(remaining) > 0 {
		kept := remaining[:0]
		emitted := 0
		for _, t := range remaining {
			if first && !t.Kind().IntLike() {
				kept = append(kept, t)
				continue
			}
			if !ready(t, done) {
				kept = append(kept, t)
				continue
			}
			done[t] = struct{}{}
			out = append(out, t)
			emitted++
		}
		remaining = kept
		if !first && emitted == 0 {
			return out, &CycleError{Stuck: append([]Type(nil), remaining...)}
		}
		first = false
	}
	return out, nil
}

func ready(t Type, done map[Type]struct{}) bool {
	for _, d := range t.Dependencies() {
		if _, ok := done[d]; !ok {
			return false
		}
	}
	return true
}
