package itf_test

import (
	"path/filepath"
	"testing"

	"abigen/internal/itf"
	"abigen/internal/source"
	"abigen/internal/testkit"
)

func TestTestdataSpans(t *testing.T) {
	fs := source.NewFileSet()
	id, err := fs.Load(filepath.Join("..", "..", "testdata", "mini.abi"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	nodes, err := itf.Read(fs, id)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(nodes) == 0 {
		t.Fatalf("no nodes")
	}
	if err := testkit.CheckTreeSpans(nodes, fs.Get(id)); err != nil {
		t.Fatal(err)
	}
}
