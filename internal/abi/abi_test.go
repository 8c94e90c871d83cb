package abi

import (
	"errors"
	"reflect"
	"testing"

	"abigen/internal/layout"
)

func mustStruct(t *testing.T, name string, members ...StructMember) *StructType {
	t.Helper()
	s, err := NewStruct(name, members)
	if err != nil {
		t.Fatalf("NewStruct(%q): %v", name, err)
	}
	return s
}

func simple(name string, typ Type) *SimpleMember {
	return &SimpleMember{Name: name, Type: typ}
}

func names[T Entity](es []T) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Ident()
	}
	return out
}

func TestIntLikeDefaults(t *testing.T) {
	color := NewIntLike("color", KindEnum, Primitive("uint8"), []*Value{
		{Name: "red", Value: 0},
		{Name: "green", Value: 1},
	}, nil)
	if color.CPrefix != "COLOR_" {
		t.Fatalf("CPrefix = %q", color.CPrefix)
	}
	l := color.Layout()
	if l.Size != layout.Same(1) || l.Align != layout.Same(1) || l.MachineDep {
		t.Fatalf("layout = %s", l)
	}
	if v, ok := color.Value("green"); !ok || v.Value != 1 {
		t.Fatalf("Value(green) = %v, %v", v, ok)
	}
	empty := ""
	if c := NewIntLike("errno", KindEnum, Primitive("uint16"), nil, &empty); c.CPrefix != "" {
		t.Fatalf("explicit empty prefix lost: %q", c.CPrefix)
	}
}

func TestIntTypeFits(t *testing.T) {
	tests := []struct {
		typ  string
		val  Value
		want bool
	}{
		{"uint8", Value{Value: 255}, true},
		{"uint8", Value{Value: 256}, false},
		{"uint8", Value{Value: ^uint64(0), Negative: true}, false},
		{"int8", Value{Value: uint64(0xff)}, true},
		{"int8", Value{Value: uint64(^uint64(127)), Negative: true}, true},
		{"int8", Value{Value: uint64(^uint64(128)), Negative: true}, false},
		{"uint64", Value{Value: ^uint64(0)}, true},
		{"size", Value{Value: 1 << 32}, false},
	}
	for _, tt := range tests {
		v := tt.val
		if got := Primitive(tt.typ).Fits(&v); got != tt.want {
			t.Errorf("%s.Fits(%s) = %v, want %v", tt.typ, v.Literal(), got, tt.want)
		}
	}
}

func TestPrimitivesMachineDep(t *testing.T) {
	for _, p := range Primitives() {
		want := p.Name == "size"
		if p.Layout().MachineDep != want {
			t.Errorf("%s machine-dep = %v", p.Name, p.Layout().MachineDep)
		}
	}
}

func TestPointerInvariance(t *testing.T) {
	big, err := NewArray(100, Primitive("uint64"))
	if err != nil {
		t.Fatal(err)
	}
	targets := []Type{Void, Primitive("uint8"), Primitive("size"), big}
	for _, target := range targets {
		l := (&PointerType{Target: target}).Layout()
		if l.Size != (layout.Pair{4, 8}) || l.Align != (layout.Pair{4, 8}) || !l.MachineDep {
			t.Errorf("ptr %s layout = %s", TypeString(target), l)
		}
	}
}

func TestRangeExpansion(t *testing.T) {
	r, err := NewRangeMember("data", "buf", "buf_len", true, Primitive("uint8"))
	if err != nil {
		t.Fatal(err)
	}
	s := mustStruct(t, "iovec", r)
	if got := len(s.RawMembers); got != 2 {
		t.Fatalf("raw members = %d", got)
	}
	base := s.RawMembers[0].(*SimpleMember)
	length := s.RawMembers[1].(*SimpleMember)
	p, ok := base.Type.(*PointerType)
	if base.Name != "buf" || !ok || !p.Const || p.Target != Primitive("uint8") {
		t.Fatalf("base member = %s %s", base.Name, TypeString(base.Type))
	}
	if length.Name != "buf_len" || length.Type != Primitive("size") {
		t.Fatalf("length member = %s %s", length.Name, TypeString(length.Type))
	}
	if s.Layout().Size != (layout.Pair{8, 16}) {
		t.Fatalf("size = %s", s.Layout().Size)
	}
	if !reflect.DeepEqual(s.Offsets, []layout.Pair{{0, 0}, {4, 8}}) {
		t.Fatalf("offsets = %v", s.Offsets)
	}
}

func TestRangeDefaultsAndErrors(t *testing.T) {
	r, err := NewRangeMember("path", "", "", false, Primitive("char"))
	if err != nil {
		t.Fatal(err)
	}
	if r.BaseName != "path" || r.LenName != "path_len" {
		t.Fatalf("names = %s, %s", r.BaseName, r.LenName)
	}
	if _, err := NewRangeMember("x", "", "", false, Void); !errors.Is(err, ErrRangeOfUnsized) {
		t.Fatalf("range of void: %v", err)
	}
}

func TestDuplicateMember(t *testing.T) {
	r, err := NewRangeMember("data", "buf", "buf_len", false, Primitive("uint8"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewStruct("s", []StructMember{simple("buf_len", Primitive("uint32")), r})
	if !errors.Is(err, ErrDuplicateMember) {
		t.Fatalf("err = %v", err)
	}
}

func variantFixture(t *testing.T) (*IntLikeType, *StructType) {
	t.Helper()
	tag := NewIntLike("kind", KindEnum, Primitive("uint8"), []*Value{
		{Name: "small", Value: 0},
		{Name: "large", Value: 1},
	}, nil)
	small := mustStruct(t, "", simple("a", Primitive("uint32")))
	large := mustStruct(t, "",
		simple("x", Primitive("uint32")),
		simple("y", Primitive("uint32")),
		simple("n", Primitive("size")),
	)
	if small.Layout().Size != layout.Same(4) || large.Layout().Size != (layout.Pair{12, 16}) {
		t.Fatalf("arm sizes = %s, %s", small.Layout().Size, large.Layout().Size)
	}
	status := simple("status", tag)
	v, err := NewVariant(status, []*VariantArm{
		{TagValues: tag.Values[:1], Type: small},
		{Name: "big", TagValues: tag.Values[1:], Type: large},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tag, mustStruct(t, "event", status, v)
}

func TestVariantLayout(t *testing.T) {
	_, s := variantFixture(t)
	v := s.RawMembers[1].(*VariantMember)
	if v.Layout().Size != (layout.Pair{12, 16}) {
		t.Fatalf("union size = %s", v.Layout().Size)
	}
	if v.Layout().Align != (layout.Pair{4, 8}) {
		t.Fatalf("union align = %s", v.Layout().Align)
	}
	if s.Offsets[1] != (layout.Pair{4, 8}) {
		t.Fatalf("variant offset = %s", s.Offsets[1])
	}
	if s.Layout().Size != (layout.Pair{16, 24}) {
		t.Fatalf("struct size = %s", s.Layout().Size)
	}
}

func TestVariantTagKind(t *testing.T) {
	f := NewIntLike("f", KindFlags, Primitive("uint8"), nil, nil)
	_, err := NewVariant(simple("tag", f), nil)
	if !errors.Is(err, ErrBadVariantTag) {
		t.Fatalf("err = %v", err)
	}
}

func TestMachineDepPropagation(t *testing.T) {
	plain := mustStruct(t, "plain", simple("a", Primitive("uint32")), simple("b", Primitive("uint64")))
	if plain.Layout().MachineDep {
		t.Fatal("plain struct is machine-dependent")
	}
	withSize := mustStruct(t, "sized", simple("a", Primitive("uint32")), simple("n", Primitive("size")))
	if !withSize.Layout().MachineDep {
		t.Fatal("size member did not propagate")
	}
	arr, err := NewArray(3, withSize)
	if err != nil {
		t.Fatal(err)
	}
	if !arr.Layout().MachineDep {
		t.Fatal("array of machine-dependent struct")
	}
	outer := mustStruct(t, "outer", simple("inner", plain))
	if outer.Layout().MachineDep {
		t.Fatal("outer of plain struct")
	}
}

func TestSyscallMachineDep(t *testing.T) {
	plain := mustStruct(t, "plain", simple("a", Primitive("uint32")))
	sized := mustStruct(t, "sized", simple("n", Primitive("size")))

	in := mustStruct(t, "", simple("buf", &PointerType{Target: plain}))
	if NewSyscall("a", in, nil, false).MachineDep() {
		t.Fatal("pointer to plain struct")
	}
	in = mustStruct(t, "", simple("buf", &PointerType{Target: sized}))
	if !NewSyscall("b", in, nil, false).MachineDep() {
		t.Fatal("pointer to sized struct")
	}
	// a size argument by value does not need translation
	in = mustStruct(t, "", simple("n", Primitive("size")))
	if NewSyscall("c", in, nil, false).MachineDep() {
		t.Fatal("size by value")
	}
	out := mustStruct(t, "", simple("n", &PointerType{Target: Primitive("size")}))
	if !NewSyscall("d", nil, out, false).MachineDep() {
		t.Fatal("pointer to size in output")
	}
}

func TestDependencies(t *testing.T) {
	fd := NewIntLike("fd", KindAlias, Primitive("uint32"), nil, nil)
	rights := NewIntLike("rights", KindFlags, Primitive("uint64"), nil, nil)
	stat := mustStruct(t, "fdstat", simple("fs_rights_base", rights))
	arr, err := NewArray(2, stat)
	if err != nil {
		t.Fatal(err)
	}
	anon := mustStruct(t, "", simple("fd", fd))
	holder := mustStruct(t, "holder",
		simple("stats", arr),
		simple("fdp", &PointerType{Target: &AtomicType{Target: fd}}),
		simple("anon", anon),
	)
	if got := names(holder.Dependencies()); !reflect.DeepEqual(got, []string{"fd", "fdstat"}) {
		t.Fatalf("holder deps = %v", got)
	}
	if got := names(stat.Dependencies()); !reflect.DeepEqual(got, []string{"rights"}) {
		t.Fatalf("fdstat deps = %v", got)
	}
	cb := NewFunction("callback", mustStruct(t, "", simple("h", &PointerType{Target: holder})), fd)
	if got := names(cb.Dependencies()); !reflect.DeepEqual(got, []string{"fd", "holder"}) {
		t.Fatalf("function deps = %v", got)
	}
	sc := NewSyscall("poll", mustStruct(t, "", simple("cb", &PointerType{Target: cb})), nil, false)
	if got := names(sc.Dependencies()); !reflect.DeepEqual(got, []string{"callback"}) {
		t.Fatalf("syscall deps = %v", got)
	}
}

func TestFunctionLayout(t *testing.T) {
	f := NewFunction("f", nil, nil)
	if f.Return != Void || f.Layout().Sized() || f.Layout().MachineDep {
		t.Fatalf("empty function = %s", f.Layout())
	}
	g := NewFunction("g", mustStruct(t, "", simple("n", Primitive("size"))), nil)
	if !g.Layout().MachineDep {
		t.Fatal("function with size parameter")
	}
}

func buildFixture(t *testing.T) *ABI {
	t.Helper()
	b := NewBuilder()
	fd := NewIntLike("fd", KindAlias, Primitive("uint32"), nil, nil)
	errno := NewIntLike("errno", KindEnum, Primitive("uint16"), []*Value{{Name: "success"}}, nil)
	stat := mustStruct(t, "fdstat", simple("fd", fd))
	stat.Doc = "Status of [fd]. See [fdstat.fd] and [guide](http://example)."
	for _, typ := range []NamedType{fd, errno, stat} {
		if err := b.AddType(typ); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"read", "close", "open"} {
		in := mustStruct(t, "", simple("fd", fd))
		if err := b.AddSyscall(NewSyscall(name, in, nil, false)); err != nil {
			t.Fatal(err)
		}
	}
	b.SetDoc("The ABI uses [errno.success] everywhere.")
	return b.Build()
}

func TestSyscallNumbering(t *testing.T) {
	a := buildFixture(t)
	want := map[string]int{"close": 0, "open": 1, "read": 2}
	for name, n := range want {
		got, ok := a.SyscallNumber(name)
		if !ok || got != n {
			t.Errorf("SyscallNumber(%s) = %d, %v; want %d", name, got, ok, n)
		}
	}
	if _, ok := a.SyscallNumber("write"); ok {
		t.Fatal("unknown syscall numbered")
	}
	if got := names(a.Syscalls()); !reflect.DeepEqual(got, []string{"close", "open", "read"}) {
		t.Fatalf("Syscalls() = %v", got)
	}
	again := buildFixture(t)
	for name := range want {
		x, _ := a.SyscallNumber(name)
		y, _ := again.SyscallNumber(name)
		if x != y {
			t.Fatalf("numbering of %s differs between builds", name)
		}
	}
}

func TestDuplicates(t *testing.T) {
	b := NewBuilder()
	fd := NewIntLike("fd", KindAlias, Primitive("uint32"), nil, nil)
	if err := b.AddType(fd); err != nil {
		t.Fatal(err)
	}
	if err := b.AddType(NewIntLike("fd", KindOpaque, Primitive("uint32"), nil, nil)); !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("duplicate type: %v", err)
	}
	if err := b.AddSyscall(NewSyscall("fd", nil, nil, false)); err != nil {
		t.Fatalf("syscall sharing a type name: %v", err)
	}
	if err := b.AddSyscall(NewSyscall("fd", nil, nil, true)); !errors.Is(err, ErrDuplicateSyscall) {
		t.Fatalf("duplicate syscall: %v", err)
	}
}

func TestUsedBy(t *testing.T) {
	a := buildFixture(t)
	fd, _ := a.Type("fd")
	if got := names(a.UsedBy(fd)); !reflect.DeepEqual(got, []string{"fdstat", "close", "open", "read"}) {
		t.Fatalf("UsedBy(fd) = %v", got)
	}
	errno, _ := a.Type("errno")
	if got := a.UsedBy(errno); got != nil {
		t.Fatalf("UsedBy(errno) = %v", names(got))
	}
}

func TestEmissionOrder(t *testing.T) {
	fd := NewIntLike("zfd", KindAlias, Primitive("uint32"), nil, nil)
	inner := mustStruct(t, "b_inner", simple("fd", fd))
	outer := mustStruct(t, "a_outer", simple("in", inner))
	cb := NewFunction("a_cb", mustStruct(t, "", simple("o", &PointerType{Target: outer})), nil)
	types := []Type{cb, outer, inner, fd}

	order, err := EmissionOrder(types)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(order); !reflect.DeepEqual(got, []string{"zfd", "b_inner", "a_outer", "a_cb"}) {
		t.Fatalf("order = %v", got)
	}
	pos := make(map[Type]int)
	for i, typ := range order {
		if _, dup := pos[typ]; dup {
			t.Fatalf("%s emitted twice", typ.Ident())
		}
		pos[typ] = i
	}
	for _, typ := range order {
		for _, dep := range typ.Dependencies() {
			if pos[dep] >= pos[typ] {
				t.Fatalf("%s emitted before its dependency %s", typ.Ident(), dep.Ident())
			}
		}
	}
}

func TestEmissionOrderStall(t *testing.T) {
	fd := NewIntLike("fd", KindAlias, Primitive("uint32"), nil, nil)
	s := mustStruct(t, "s", simple("fd", fd))
	_, err := EmissionOrder([]Type{s})
	var cycle *CycleError
	if !errors.As(err, &cycle) || !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("err = %v", err)
	}
	if got := names(cycle.Stuck); !reflect.DeepEqual(got, []string{"s"}) {
		t.Fatalf("stuck = %v", got)
	}
}

func TestResolvePath(t *testing.T) {
	a := buildFixture(t)
	tests := []struct {
		path string
		want []string
	}{
		{"fd", []string{"fd"}},
		{"fdstat.fd", []string{"fdstat", "fd"}},
		{"errno.success", []string{"errno", "success"}},
		{"open.fd", []string{"open", "fd"}},
		{"fdstat.missing", nil},
		{"nothing", nil},
	}
	for _, tt := range tests {
		got := a.ResolvePath(tt.path)
		if tt.want == nil {
			if got != nil {
				t.Errorf("ResolvePath(%q) = %v, want nil", tt.path, names(got))
			}
			continue
		}
		if !reflect.DeepEqual(names(got), tt.want) {
			t.Errorf("ResolvePath(%q) = %v, want %v", tt.path, names(got), tt.want)
		}
	}
}

func TestResolveVariantArms(t *testing.T) {
	_, s := variantFixture(t)
	b := NewBuilder()
	if err := b.AddType(s); err != nil {
		t.Fatal(err)
	}
	a := b.Build()
	if got := names(a.ResolvePath("event.a")); !reflect.DeepEqual(got, []string{"event", "a"}) {
		t.Fatalf("anonymous arm member = %v", got)
	}
	if got := names(a.ResolvePath("event.big.n")); !reflect.DeepEqual(got, []string{"event", "big", "n"}) {
		t.Fatalf("named arm member = %v", got)
	}
	if got := a.ResolvePath("event.n"); got != nil {
		t.Fatalf("named arm members leaked: %v", names(got))
	}
}

func TestDocLinks(t *testing.T) {
	got := DocLinks("see [fd] and [fdstat.fd], not [x](http://y) or [a b]")
	if !reflect.DeepEqual(got, []string{"fd", "fdstat.fd"}) {
		t.Fatalf("DocLinks = %v", got)
	}
	a := buildFixture(t)
	if errs := a.CheckDocLinks(); len(errs) != 0 {
		t.Fatalf("unexpected link errors: %v", errs)
	}
	st, _ := a.Type("fdstat")
	st.(*StructType).Doc = "Refers to [fdstat.nope]."
	errs := a.CheckDocLinks()
	if len(errs) != 1 || errs[0].Link != "fdstat.nope" || errs[0].Owner != "fdstat" {
		t.Fatalf("errs = %v", errs)
	}
}
