package layout

import (
	"fmt"
	"math"

	"fortio.org/safecast"
)

// Pair holds one value per regime: [Regime32], [Regime64].
type Pair [2]int

// Same returns a pair with identical values in both regimes.
func Same(v int) Pair {
	return Pair{v, v}
}

// Uniform reports whether both regimes agree.
func (p Pair) Uniform() bool {
	return p[Regime32] == p[Regime64]
}

func (p Pair) String() string {
	if p.Uniform() {
		return fmt.Sprintf("%d", p[0])
	}
	return fmt.Sprintf("(%d,%d)", p[0], p[1])
}

// Layout is the size and alignment of a type under both regimes.
type Layout struct {
	Size       Pair
	Align      Pair
	MachineDep bool

	sized bool
}

// New derives machine dependence from whether the regimes disagree.
func New(size, align Pair) Layout {
	return Layout{
		Size:       size,
		Align:      align,
		MachineDep: !size.Uniform() || !align.Uniform(),
		sized:      true,
	}
}

// Forced builds a layout with an explicit machine-dependence flag.
func Forced(size, align Pair, machineDep bool) Layout {
	return Layout{Size: size, Align: align, MachineDep: machineDep, sized: true}
}

// Scalar is an n-byte value aligned to its own size in both regimes.
func Scalar(n int) Layout {
	return New(Same(n), Same(n))
}

// Pointer is 4 bytes under ILP32 and 8 under LP64, whatever it points to.
func Pointer() Layout {
	var size Pair
	for _, t := range Targets() {
		size[t.Regime] = t.PtrSize
	}
	return New(size, size)
}

// Unsized is the layout of void: no size, no alignment.
func Unsized() Layout {
	return Layout{}
}

// UnsizedWith is an unsized layout that still carries machine dependence
// (function types).
func UnsizedWith(machineDep bool) Layout {
	return Layout{MachineDep: machineDep}
}

// Sized reports whether the layout has a size (everything except void and
// function types).
func (l Layout) Sized() bool {
	return l.sized
}

// FitsIn reports whether l is no larger than other in both regimes.
func (l Layout) FitsIn(other Layout) bool {
	return l.Size[Regime32] <= other.Size[Regime32] && l.Size[Regime64] <= other.Size[Regime64]
}

func (l Layout) String() string {
	if !l.sized {
		return "unsized"
	}
	md := ""
	if l.MachineDep {
		md = " machine-dep"
	}
	return fmt.Sprintf("size=%s align=%s%s", l.Size, l.Align, md)
}

// AlignUp rounds value up to a multiple of alignment.
func AlignUp(value, alignment int) int {
	if alignment <= 1 {
		return value
	}
	return value + (alignment-value%alignment)%alignment
}

// Struct lays members out sequentially, each at the next offset aligned to
// its own alignment, and pads the total to the largest member alignment.
// It returns the struct layout and the offset of every member.
func Struct(members []Layout) (Layout, []Pair, error) {
	if len(members) == 0 {
		return Forced(Same(1), Same(1), false), nil, nil
	}
	var size, align Pair
	offsets := make([]Pair, len(members))
	machineDep := false
	for i, m := range members {
		if !m.sized {
			return Layout{}, nil, &LayoutError{Kind: LayoutErrUnsized, Index: i}
		}
		for _, r := range Regimes {
			off := AlignUp(size[r], m.Align[r])
			offsets[i][r] = off
			size[r] = off + m.Size[r]
			align[r] = max(align[r], m.Align[r])
		}
		machineDep = machineDep || m.MachineDep
	}
	for _, r := range Regimes {
		size[r] = AlignUp(size[r], align[r])
	}
	return Forced(size, align, machineDep), offsets, nil
}

// Array repeats elem count times. Alignment and machine dependence are
// inherited from the element.
func Array(elem Layout, count uint64) (Layout, error) {
	if count == 0 {
		return Forced(Same(0), Same(1), false), nil
	}
	if !elem.sized {
		return Layout{}, &LayoutError{Kind: LayoutErrUnsized, Index: -1}
	}
	n, err := safecast.Conv[int](count)
	if err != nil {
		return Layout{}, &LayoutError{Kind: LayoutErrLengthConversion, Count: count, Err: err}
	}
	var size Pair
	for _, r := range Regimes {
		if elem.Size[r] != 0 && n > math.MaxInt/elem.Size[r] {
			return Layout{}, &LayoutError{Kind: LayoutErrOverflow, Count: count}
		}
		size[r] = elem.Size[r] * n
	}
	return Forced(size, elem.Align, elem.MachineDep), nil
}

// Union overlays members: size and alignment are the per-regime maxima.
func Union(members []Layout) (Layout, error) {
	if len(members) == 0 {
		return Forced(Same(1), Same(1), false), nil
	}
	var size, align Pair
	machineDep := false
	for i, m := range members {
		if !m.sized {
			return Layout{}, &LayoutError{Kind: LayoutErrUnsized, Index: i}
		}
		for _, r := range Regimes {
			size[r] = max(size[r], m.Size[r])
			align[r] = max(align[r], m.Align[r])
		}
		machineDep = machineDep || m.MachineDep
	}
	return Forced(size, align, machineDep), nil
}
