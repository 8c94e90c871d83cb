package parser

import (
	"reflect"
	"testing"
	"unicode/utf8"

	"abigen/internal/abi"
	"abigen/internal/itf"
)

func TestTokenizeMultibyte(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"uint8 voilà", []string{"uint8", "voilà"}},
		{"uint8 x", []string{"uint8", "x"}},
		{"ptr  cptr\tchar  naïve_é", []string{"ptr", "cptr", "char", "naïve_é"}},
	}
	for _, tt := range tests {
		nodes, fs, err := itf.ReadString("t.abi", tt.line+"\n")
		if err != nil {
			t.Fatalf("%q: read: %v", tt.line, err)
		}
		d := tokenize(nodes[0])
		var got []string
		content := fs.Get(nodes[0].Span.File).Content
		for _, tok := range d.toks {
			if !utf8.ValidString(tok.text) {
				t.Fatalf("%q: token %q is not valid UTF-8", tt.line, tok.text)
			}
			if s := string(content[tok.span.Start:tok.span.End]); s != tok.text {
				t.Fatalf("%q: span covers %q, token is %q", tt.line, s, tok.text)
			}
			got = append(got, tok.text)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%q: tokens = %q, want %q", tt.line, got, tt.want)
		}
	}

	model := mustParse(t, lines("struct s", "  | S.", "  uint8 voilà", "    | V."))
	st := mustType[*abi.StructType](t, model, "s")
	if _, ok := st.Member("voilà"); !ok {
		t.Fatalf("member voilà missing, members = %v", st.RawMembers)
	}
}

func TestIntegerLiterals(t *testing.T) {
	tests := []struct {
		text string
		want uint64
		neg  bool
		ok   bool
	}{
		{"0", 0, false, true},
		{"00", 0, false, true},
		{"10", 10, false, true},
		{"0x10", 16, false, true},
		{"0o10", 8, false, true},
		{"0b10", 2, false, true},
		{"-1", 0xffffffffffffffff, true, true},
		{"010", 0, false, false},
		{"-010", 0, false, false},
		{"08", 0, false, false},
	}
	for _, tt := range tests {
		v, neg, err := parseInteger(token{text: tt.text})
		if (err == nil) != tt.ok {
			t.Fatalf("%s: err = %v", tt.text, err)
		}
		if tt.ok && (v != tt.want || neg != tt.neg) {
			t.Fatalf("%s = %d (neg %v), want %d (neg %v)", tt.text, v, neg, tt.want, tt.neg)
		}
	}
}
