package parser

import (
	"strings"
	"testing"

	"abigen/internal/abi"
	"abigen/internal/diag"
	"abigen/internal/itf"
)

// lines joins its arguments with newlines so that indentation stays visible
// in test tables.
func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func parseText(t *testing.T, text string, opts Options) (*abi.ABI, *diag.Bag, error) {
	t.Helper()
	nodes, _, err := itf.ReadString("test.abi", text)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	bag := diag.NewBag(100)
	if opts.Reporter == nil {
		opts.Reporter = diag.BagReporter{Bag: bag}
	}
	model, err := Parse(nodes, opts)
	return model, bag, err
}

func mustParse(t *testing.T, text string) *abi.ABI {
	t.Helper()
	model, _, err := parseText(t, text, Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return model
}

func mustType[T abi.NamedType](t *testing.T, model *abi.ABI, name string) T {
	t.Helper()
	typ, ok := model.Type(name)
	if !ok {
		t.Fatalf("type %s not found", name)
	}
	got, ok := typ.(T)
	if !ok {
		t.Fatalf("type %s is %T", name, typ)
	}
	return got
}
