package layout

// Regime indexes the two pointer-width configurations every layout is
// computed for.
type Regime int

const (
	Regime32 Regime = iota
	Regime64
)

// Regimes lists both regimes in index order.
var Regimes = [...]Regime{Regime32, Regime64}

func (r Regime) String() string {
	switch r {
	case Regime32:
		return "32"
	case Regime64:
		return "64"
	}
	return "?"
}

// Target describes the pointer properties of one regime.
type Target struct {
	Name     string // e.g. "ilp32"
	Regime   Regime
	PtrSize  int // bytes
	PtrAlign int // bytes
}

func ILP32() Target {
	return Target{Name: "ilp32", Regime: Regime32, PtrSize: 4, PtrAlign: 4}
}

func LP64() Target {
	return Target{Name: "lp64", Regime: Regime64, PtrSize: 8, PtrAlign: 8}
}

// Targets returns the descriptors of both regimes.
func Targets() [2]Target {
	return [2]Target{ILP32(), LP64()}
}
