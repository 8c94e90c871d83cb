package layout

import (
	"errors"
	"math"
	"testing"
)

var (
	u8   = Scalar(1)
	u16  = Scalar(2)
	u32  = Scalar(4)
	u64  = Scalar(8)
	size = New(Pair{4, 8}, Pair{4, 8})
)

func TestAlignUp(t *testing.T) {
	tests := []struct{ v, a, want int }{
		{0, 4, 0}, {1, 4, 4}, {4, 4, 4}, {5, 8, 8}, {9, 1, 9}, {7, 0, 7},
	}
	for _, tt := range tests {
		if got := AlignUp(tt.v, tt.a); got != tt.want {
			t.Errorf("AlignUp(%d,%d) = %d, want %d", tt.v, tt.a, got, tt.want)
		}
	}
}

func TestScalarAndPointer(t *testing.T) {
	if u8.MachineDep || u64.MachineDep {
		t.Fatal("fixed-width scalars are never machine dependent")
	}
	p := Pointer()
	if p.Size != (Pair{4, 8}) || p.Align != (Pair{4, 8}) || !p.MachineDep {
		t.Fatalf("pointer layout = %v", p)
	}
	if !size.MachineDep {
		t.Fatal("size is machine dependent")
	}
	if Unsized().Sized() || !u8.Sized() {
		t.Fatal("Sized mismatch")
	}
}

func TestStructLayout(t *testing.T) {
	tests := []struct {
		name    string
		members []Layout
		size    Pair
		align   Pair
		offsets []Pair
		md      bool
	}{
		{"empty", nil, Same(1), Same(1), nil, false},
		{"padding", []Layout{u8, u32, u16}, Same(12), Same(4), []Pair{{0, 0}, {4, 4}, {8, 8}}, false},
		{"pointer then u64", []Layout{Pointer(), u64}, Pair{16, 16}, Pair{8, 8}, []Pair{{0, 0}, {8, 8}}, true},
		{"u32 then pointer", []Layout{u32, Pointer()}, Pair{8, 16}, Pair{4, 8}, []Pair{{0, 0}, {4, 8}}, true},
		{"range pair", []Layout{Pointer(), size}, Pair{8, 16}, Pair{4, 8}, []Pair{{0, 0}, {4, 8}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, offs, err := Struct(tt.members)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.Size != tt.size || l.Align != tt.align || l.MachineDep != tt.md {
				t.Fatalf("got %v, want size=%v align=%v md=%v", l, tt.size, tt.align, tt.md)
			}
			if len(offs) != len(tt.offsets) {
				t.Fatalf("offsets = %v", offs)
			}
			for i := range offs {
				if offs[i] != tt.offsets[i] {
					t.Fatalf("offset[%d] = %v, want %v", i, offs[i], tt.offsets[i])
				}
			}
			checkStructInvariants(t, l, tt.members, offs)
		})
	}
}

func checkStructInvariants(t *testing.T, l Layout, members []Layout, offs []Pair) {
	t.Helper()
	if len(members) == 0 {
		return
	}
	last := len(members) - 1
	for _, r := range Regimes {
		for i, m := range members {
			if offs[i][r]%m.Align[r] != 0 {
				t.Fatalf("member %d misaligned in regime %s", i, r)
			}
		}
		if want := AlignUp(offs[last][r]+members[last].Size[r], l.Align[r]); l.Size[r] != want {
			t.Fatalf("regime %s: size %d, want %d", r, l.Size[r], want)
		}
	}
}

func TestStructUnsizedMember(t *testing.T) {
	_, _, err := Struct([]Layout{u8, Unsized()})
	var lerr *LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != LayoutErrUnsized || lerr.Index != 1 {
		t.Fatalf("expected unsized member error, got %v", err)
	}
}

func TestArrayLayout(t *testing.T) {
	l, err := Array(u16, 5)
	if err != nil || l.Size != Same(10) || l.Align != Same(2) || l.MachineDep {
		t.Fatalf("array of u16 = %v, %v", l, err)
	}
	l, err = Array(Pointer(), 3)
	if err != nil || l.Size != (Pair{12, 24}) || l.Align != (Pair{4, 8}) || !l.MachineDep {
		t.Fatalf("array of pointers = %v, %v", l, err)
	}
	l, err = Array(Pointer(), 0)
	if err != nil || l.Size != Same(0) || l.Align != Same(1) || l.MachineDep {
		t.Fatalf("empty array = %v, %v", l, err)
	}
	if _, err := Array(Unsized(), 2); err == nil {
		t.Fatal("array of void must fail")
	}
	_, err = Array(u64, math.MaxUint64)
	var lerr *LayoutError
	if !errors.As(err, &lerr) || (lerr.Kind != LayoutErrLengthConversion && lerr.Kind != LayoutErrOverflow) {
		t.Fatalf("expected conversion/overflow error, got %v", err)
	}
}

func TestUnionLayout(t *testing.T) {
	a, _, _ := Struct([]Layout{u32})
	b, _, _ := Struct([]Layout{u32, Pointer(), u32})
	l, err := Union([]Layout{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != (Pair{12, 24}) || l.Align != (Pair{4, 8}) || !l.MachineDep {
		t.Fatalf("union = %v", l)
	}
	for _, r := range Regimes {
		if l.Size[r] != max(a.Size[r], b.Size[r]) || l.Align[r] != max(a.Align[r], b.Align[r]) {
			t.Fatalf("union is not the max in regime %s", r)
		}
	}
	empty, _ := Union(nil)
	if empty.Size != Same(1) || empty.Align != Same(1) || empty.MachineDep {
		t.Fatalf("empty union = %v", empty)
	}
}

func TestFitsInAndString(t *testing.T) {
	if !u32.FitsIn(Pointer()) || u64.FitsIn(Pointer()) {
		t.Fatal("FitsIn mismatch")
	}
	if got := Pointer().String(); got != "size=(4,8) align=(4,8) machine-dep" {
		t.Fatalf("String() = %q", got)
	}
	if got := u16.String(); got != "size=2 align=2" {
		t.Fatalf("String() = %q", got)
	}
}
