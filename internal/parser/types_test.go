package parser

import (
	"testing"

	"abigen/internal/abi"
	"abigen/internal/diag"
)

func TestTypeExpressions(t *testing.T) {
	model := mustParse(t, lines(
		"struct inner",
		"  | Inner.",
		"  uint8 b",
		"    | B.",
		"struct s",
		"  | S.",
		"  array 0x10 char name",
		"    | Name.",
		"  cptr ptr void argv",
		"    | Args.",
		"  atomic uint32 lock",
		"    | Lock.",
		"  array 2 array 3 inner grid",
		"    | Grid.",
	))
	s := mustType[*abi.StructType](t, model, "s")
	want := []string{"array 16 char", "cptr ptr void", "atomic uint32", "array 2 array 3 inner"}
	for i, w := range want {
		m := s.Members[i].(*abi.SimpleMember)
		if got := abi.TypeString(m.Type); got != w {
			t.Errorf("member %s = %q, want %q", m.Name, got, w)
		}
	}
}

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		name string
		decl string
		code diag.Code
	}{
		{"unknown", "widget w", diag.SemaUnknownType},
		{"forward reference", "later l", diag.SemaUnknownType},
		{"dangling ptr", "ptr p", diag.SynInvalidType},
		{"array without element", "array 4 a", diag.SynInvalidType},
		{"bad count", "array four uint8 a", diag.SynInvalidInteger},
		{"negative count", "array -1 uint8 a", diag.SynInvalidInteger},
		{"array of void", "array 2 void a", diag.LayoutError},
		{"trailing words", "uint8 uint8 a", diag.SynInvalidType},
		{"single word", "lonely", diag.SynInvalidDecl},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseText(t, lines(
				"struct s",
				"  | S.",
				"  "+tt.decl,
				"    | Doc.",
				"struct later",
				"  | Later.",
			), Options{})
			if !diag.HasCode(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code.ID())
			}
		})
	}
}
