package parser

import (
	"reflect"
	"testing"

	"abigen/internal/abi"
	"abigen/internal/diag"
	"abigen/internal/layout"
)

func TestSimpleEnum(t *testing.T) {
	model := mustParse(t, lines(
		"enum uint8 color",
		"  | Colors.",
		"  0 red",
		"    | Red.",
		"  1 green",
		"    | Green.",
	))
	color := mustType[*abi.IntLikeType](t, model, "color")
	if color.Kind() != abi.KindEnum || color.Int.Name != "uint8" {
		t.Fatalf("color = %s over %s", color.Kind(), color.Int.Name)
	}
	var got []string
	for _, v := range color.Values {
		got = append(got, v.Name+"="+v.Literal())
	}
	if !reflect.DeepEqual(got, []string{"red=0", "green=1"}) {
		t.Fatalf("values = %v", got)
	}
	l := color.Layout()
	if l.Size != layout.Same(1) || l.Align != layout.Same(1) || l.MachineDep {
		t.Fatalf("layout = %s", l)
	}
	if color.Doc != "Colors." || color.Values[1].Doc != "Green." {
		t.Fatalf("docs = %q, %q", color.Doc, color.Values[1].Doc)
	}
}

func TestIntLikeValues(t *testing.T) {
	model := mustParse(t, lines(
		"flags uint16 mode",
		"  | Mode bits.",
		"  @cprefix __M_",
		"  0x01 read",
		"    | R.",
		"  0o2 write",
		"    | W.",
		"  0b100 exec",
		"    | X.",
		"opaque int32 fd",
		"  | Descriptor.",
		"  @cprefix",
		"  -1 invalid",
		"    | None.",
		"alias uint64 timestamp",
		"  | Time.",
	))
	mode := mustType[*abi.IntLikeType](t, model, "mode")
	if mode.CPrefix != "__M_" {
		t.Fatalf("cprefix = %q", mode.CPrefix)
	}
	var vals []uint64
	for _, v := range mode.Values {
		vals = append(vals, v.Value)
	}
	if !reflect.DeepEqual(vals, []uint64{1, 2, 4}) {
		t.Fatalf("values = %v", vals)
	}
	fd := mustType[*abi.IntLikeType](t, model, "fd")
	if fd.CPrefix != "" || fd.Kind() != abi.KindOpaque {
		t.Fatalf("fd = %s prefix %q", fd.Kind(), fd.CPrefix)
	}
	if v := fd.Values[0]; !v.Negative || v.Int64() != -1 {
		t.Fatalf("invalid = %s", v.Literal())
	}
	ts := mustType[*abi.IntLikeType](t, model, "timestamp")
	if ts.CPrefix != "TIMESTAMP_" || len(ts.Values) != 0 {
		t.Fatalf("timestamp = %q %d", ts.CPrefix, len(ts.Values))
	}
}

func TestRangeExpansion(t *testing.T) {
	model := mustParse(t, lines(
		"struct iovec",
		"  | A buffer.",
		"  crange uint8 buf buf_len data",
		"    | The data.",
	))
	s := mustType[*abi.StructType](t, model, "iovec")
	if len(s.Members) != 1 || len(s.RawMembers) != 2 {
		t.Fatalf("members = %d, raw = %d", len(s.Members), len(s.RawMembers))
	}
	r := s.Members[0].(*abi.RangeMember)
	if r.Name != "data" || !r.Const || r.Doc != "The data." {
		t.Fatalf("range = %+v", r)
	}
	base := s.RawMembers[0].(*abi.SimpleMember)
	length := s.RawMembers[1].(*abi.SimpleMember)
	if base.Name != "buf" || abi.TypeString(base.Type) != "cptr uint8" || base.Doc != "The data." {
		t.Fatalf("base = %s %s", abi.TypeString(base.Type), base.Name)
	}
	if length.Name != "buf_len" || abi.TypeString(length.Type) != "size" {
		t.Fatalf("len = %s %s", abi.TypeString(length.Type), length.Name)
	}
	if s.Layout().Size != (layout.Pair{8, 16}) {
		t.Fatalf("size = %s", s.Layout().Size)
	}
}

func TestRangeForms(t *testing.T) {
	model := mustParse(t, lines(
		"struct s",
		"  | S.",
		"  range char path",
		"    | Path.",
		"  range array 4 ptr uint32 tbl tbl_n table",
		"    | Table.",
	))
	s := mustType[*abi.StructType](t, model, "s")
	var raw []string
	for _, m := range s.RawMembers {
		sm := m.(*abi.SimpleMember)
		raw = append(raw, abi.TypeString(sm.Type)+" "+sm.Name)
	}
	want := []string{"ptr char path", "size path_len", "ptr array 4 ptr uint32 tbl", "size tbl_n"}
	if !reflect.DeepEqual(raw, want) {
		t.Fatalf("raw = %q", raw)
	}
}

func TestVariantLayout(t *testing.T) {
	model := mustParse(t, lines(
		"enum uint8 kind",
		"  | Kind.",
		"  0 small",
		"    | S.",
		"  1 large",
		"    | L.",
		"  2 huge",
		"    | H.",
		"struct event",
		"  | Event.",
		"  kind status",
		"    | Tag.",
		"  variant status",
		"    small",
		"      uint32 a",
		"        | A.",
		"    large huge",
		"      struct big",
		"        | Big arm.",
		"        uint32 x",
		"          | X.",
		"        uint32 y",
		"          | Y.",
		"        size n",
		"          | N.",
	))
	s := mustType[*abi.StructType](t, model, "event")
	v := s.Members[1].(*abi.VariantMember)
	if v.Tag != s.Members[0] {
		t.Fatal("variant tag is not the status member")
	}
	if len(v.Arms) != 2 || v.Arms[0].Name != "" || v.Arms[1].Name != "big" {
		t.Fatalf("arms = %+v", v.Arms)
	}
	if v.Arms[1].Doc != "Big arm." || len(v.Arms[1].TagValues) != 2 {
		t.Fatalf("big arm = %q %d", v.Arms[1].Doc, len(v.Arms[1].TagValues))
	}
	if got := v.Arms[0].Type.Layout().Size; got != layout.Same(4) {
		t.Fatalf("small arm = %s", got)
	}
	if got := v.Arms[1].Type.Layout().Size; got != (layout.Pair{12, 16}) {
		t.Fatalf("big arm = %s", got)
	}
	if got := v.Layout(); got.Size != (layout.Pair{12, 16}) || got.Align != (layout.Pair{4, 8}) {
		t.Fatalf("union = %s", got)
	}
	if s.Offsets[1] != (layout.Pair{4, 8}) || s.Layout().Size != (layout.Pair{16, 24}) {
		t.Fatalf("struct = %s, variant at %s", s.Layout(), s.Offsets[1])
	}
}

func TestSpecialValues(t *testing.T) {
	model := mustParse(t, lines(
		"opaque uint32 fd",
		"  | Fd.",
		"  0xffffffff none",
		"    | No fd.",
		"struct event",
		"  | Event.",
		"  fd target",
		"    none",
		"      | No target.",
	))
	s := mustType[*abi.StructType](t, model, "event")
	m := s.Members[0].(*abi.SimpleMember)
	if len(m.SpecialValues) != 1 || m.SpecialValues[0].Value != 0xffffffff || m.SpecialValues[0].Doc != "No target." {
		t.Fatalf("special values = %+v", m.SpecialValues)
	}
	if m.Doc != "" {
		t.Fatalf("member doc = %q", m.Doc)
	}
}

func TestFunction(t *testing.T) {
	model := mustParse(t, lines(
		"alias uint32 exitcode",
		"  | Code.",
		"function threadentry",
		"  | Entry point.",
		"  in",
		"    uint32 tid",
		"      | Thread.",
		"    ptr void aux",
		"      | Argument.",
		"  out",
		"    | Exit code.",
		"    exitcode",
		"function hook",
		"  | Nothing.",
	))
	f := mustType[*abi.FunctionType](t, model, "threadentry")
	if len(f.Params.Members) != 2 || f.Return.Ident() != "exitcode" || f.ReturnDoc != "Exit code." {
		t.Fatalf("function = %d params, returns %s (%q)", len(f.Params.Members), f.Return.Ident(), f.ReturnDoc)
	}
	if !f.Layout().MachineDep || f.Layout().Sized() {
		t.Fatalf("function layout = %s", f.Layout())
	}
	if got := f.Dependencies(); len(got) != 1 || got[0].Ident() != "exitcode" {
		t.Fatalf("deps = %v", got)
	}
	hook := mustType[*abi.FunctionType](t, model, "hook")
	if hook.Return != abi.Void || len(hook.Params.Members) != 0 {
		t.Fatalf("hook = %+v", hook)
	}
}

func TestSyscalls(t *testing.T) {
	text := lines(
		"| The ABI.",
		"opaque uint32 fd",
		"  | Fd.",
		"syscall read",
		"  | Read.",
		"  in",
		"    fd fd",
		"      | From.",
		"    range uint8 buf",
		"      | Into.",
		"  out",
		"    size nread",
		"      | Count.",
		"syscall open",
		"  | Open.",
		"syscall close",
		"  | Close.",
		"  in",
		"    fd fd",
		"      | Fd.",
		"syscall proc_exit",
		"  | Exit.",
		"  noreturn",
		"syscall fd",
		"  | Same name as a type.",
	)
	model := mustParse(t, text)
	if model.Doc != "The ABI." {
		t.Fatalf("ABI doc = %q", model.Doc)
	}
	want := map[string]int{"close": 0, "fd": 1, "open": 2, "proc_exit": 3, "read": 4}
	for i := 0; i < 2; i++ {
		for name, n := range want {
			if got, ok := model.SyscallNumber(name); !ok || got != n {
				t.Fatalf("SyscallNumber(%s) = %d, want %d", name, got, n)
			}
		}
		model = mustParse(t, text)
	}
	read, _ := model.Syscall("read")
	if len(read.Input.RawMembers) != 3 || len(read.Output.RawMembers) != 1 || read.NoReturn {
		t.Fatalf("read = %d in, %d out", len(read.Input.RawMembers), len(read.Output.RawMembers))
	}
	if exit, _ := model.Syscall("proc_exit"); !exit.NoReturn {
		t.Fatal("proc_exit returns")
	}
	fd, _ := model.Type("fd")
	var users []string
	for _, u := range model.UsedBy(fd) {
		users = append(users, u.Ident())
	}
	if !reflect.DeepEqual(users, []string{"close", "read"}) {
		t.Fatalf("used by = %v", users)
	}
}

func TestWarnings(t *testing.T) {
	model, bag, err := parseText(t, lines(
		"enum uint8 color",
		"  0 red",
		"    | Red.",
		"bogus declaration",
		"  | Ignored.",
		"undocumented bogus",
	), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := model.Type("color"); !ok {
		t.Fatal("color missing")
	}
	var codes []diag.Code
	for _, d := range bag.Items() {
		if d.Severity != diag.SevWarning {
			t.Fatalf("severity = %s", d.Severity)
		}
		codes = append(codes, d.Code)
	}
	if !reflect.DeepEqual(codes, []diag.Code{diag.SemaMissingDoc, diag.SynUnknownTopLevel, diag.SynUnknownTopLevel}) {
		t.Fatalf("codes = %v", codes)
	}

	// unknown declarations are skipped before their docs are looked at
	if _, _, err := parseText(t, lines("undocumented bogus"), Options{RequireDocs: true}); err != nil {
		t.Fatalf("RequireDocs on an unknown declaration: %v", err)
	}
}

func TestRequireDocs(t *testing.T) {
	_, _, err := parseText(t, lines(
		"enum uint8 color",
		"  | Colors.",
		"  0 red",
	), Options{RequireDocs: true})
	if !diag.HasCode(err, diag.SemaMissingDoc) {
		t.Fatalf("err = %v", err)
	}
}
