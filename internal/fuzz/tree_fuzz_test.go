package fuzztests

import (
	"testing"

	"abigen/internal/itf"
	"abigen/internal/source"
	"abigen/internal/testkit"
)

func FuzzTreeSpans(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		id := fs.AddVirtual("fuzz.abi", input)
		nodes, err := itf.Read(fs, id)
		if err != nil {
			return
		}
		if err := testkit.CheckTreeSpans(nodes, fs.Get(id)); err != nil {
			t.Fatalf("span invariant violated: %v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}
