package layout

import (
	"fmt"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrUnsized indicates a member or element without a size (void).
	LayoutErrUnsized LayoutErrorKind = iota + 1
	LayoutErrLengthConversion
	LayoutErrOverflow
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Index int    // offending member index, -1 for array elements
	Count uint64 // for LayoutErrLengthConversion and LayoutErrOverflow
	Err   error
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrUnsized:
		if e.Index < 0 {
			return "array element has no size"
		}
		return fmt.Sprintf("member #%d has no size", e.Index)
	case LayoutErrLengthConversion:
		if e.Err != nil {
			return fmt.Sprintf("array length %d conversion error: %v", e.Count, e.Err)
		}
		return fmt.Sprintf("array length %d conversion error", e.Count)
	case LayoutErrOverflow:
		return fmt.Sprintf("array of %d elements overflows the address space", e.Count)
	default:
		return fmt.Sprintf("layout error kind=%d", e.Kind)
	}
}

func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
