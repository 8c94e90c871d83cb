package abifmt

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"abigen/internal/abi"
	"abigen/internal/itf"
	"abigen/internal/layout"
	"abigen/internal/parser"
)

const fixture = `| The ABI.
opaque uint32 fd
  | Descriptor.
struct iovec
  | Buffer.
  crange uint8 buf buf_len data
    | Data.
syscall write
  | Write.
  in
    fd fd
      | To.
    range iovec iovs
      | Vectors.
  out
    size n
      | Written.
`

func summarize(t *testing.T) *Summary {
	t.Helper()
	nodes, _, err := itf.ReadString("fixture.abi", fixture)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	model, err := parser.Parse(nodes, parser.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	order, err := model.Order()
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	return Summarize(model, order)
}

func TestSummarize(t *testing.T) {
	s := summarize(t)
	if !reflect.DeepEqual(s.Order, []string{"fd", "iovec"}) {
		t.Fatalf("order = %v", s.Order)
	}
	fd, ok := s.Type("fd")
	if !ok {
		t.Fatal("fd missing")
	}
	if fd.Kind != abi.KindOpaque.String() || fd.Size != layout.Same(4) || fd.MachineDep {
		t.Fatalf("fd = %+v", fd)
	}
	if !reflect.DeepEqual(fd.UsedBy, []string{"write"}) {
		t.Fatalf("fd used by %v", fd.UsedBy)
	}
	iov, _ := s.Type("iovec")
	if !iov.MachineDep || iov.Size != (layout.Pair{8, 16}) {
		t.Fatalf("iovec = %+v", iov)
	}
	var members []string
	for _, m := range iov.Members {
		members = append(members, m.Name+"@"+m.Offset.String())
	}
	if !reflect.DeepEqual(members, []string{"buf@0", "buf_len@(4,8)"}) {
		t.Fatalf("members = %v", members)
	}
	if len(s.Syscalls) != 1 {
		t.Fatalf("syscalls = %d", len(s.Syscalls))
	}
	w := s.Syscalls[0]
	if w.Name != "write" || w.Number != 0 || !w.MachineDep || w.NoReturn {
		t.Fatalf("write = %+v", w)
	}
	if !reflect.DeepEqual(w.Deps, []string{"fd", "iovec"}) {
		t.Fatalf("write deps = %v", w.Deps)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := summarize(t).WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var back Summary
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), `"machine_dep": true`) {
		t.Fatalf("json = %s", buf.String())
	}
	if len(back.Types) != 2 || back.Types[1].Size != (layout.Pair{8, 16}) {
		t.Fatalf("back = %+v", back.Types)
	}
}

// rows splits rendered output into whitespace-separated fields per line.
func rows(out string) [][]string {
	var rs [][]string
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		rs = append(rs, strings.Fields(line))
	}
	return rs
}

func TestWriteLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := summarize(t).WriteLayout(&buf, Options{}); err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"type", "kind", "size32", "size64", "align32", "align64", "md"},
		{"fd", "opaque", "4", "4", "4", "4", "-"},
		{"iovec", "struct", "8", "16", "4", "8", "yes"},
	}
	if got := rows(buf.String()); !reflect.DeepEqual(got, want) {
		t.Fatalf("layout table:\n%s", buf.String())
	}
}

func TestWriteTypeDetail(t *testing.T) {
	s := summarize(t)
	iov, _ := s.Type("iovec")
	var buf bytes.Buffer
	if err := iov.Write(&buf, Options{}); err != nil {
		t.Fatal(err)
	}
	got := rows(buf.String())
	if len(got) != 4 {
		t.Fatalf("detail:\n%s", buf.String())
	}
	if !reflect.DeepEqual(got[3], []string{"buf_len", "size", "(4,8)", "(4,8)"}) {
		t.Fatalf("buf_len row = %v", got[3])
	}
}

func TestWriteDeps(t *testing.T) {
	s := summarize(t)
	var buf bytes.Buffer
	if err := s.WriteDeps(&buf, "fd", Options{}); err != nil {
		t.Fatal(err)
	}
	want := "fd\n  depends on: none\n  used by:\n    write\n"
	if buf.String() != want {
		t.Fatalf("deps = %q", buf.String())
	}
	if err := s.WriteDeps(&buf, "nope", Options{}); err == nil {
		t.Fatal("expected error for unknown name")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"averylongname", 8, "avery..."},
		{"abcdef", 3, "abc"},
		{"ширина", 0, "ширина"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestWritePath(t *testing.T) {
	nodes, _, err := itf.ReadString("fixture.abi", fixture)
	if err != nil {
		t.Fatal(err)
	}
	model, err := parser.Parse(nodes, parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	path := model.ResolvePath("write.iovs_len")
	if len(path) != 2 {
		t.Fatalf("path = %v", path)
	}
	var buf bytes.Buffer
	if err := WritePath(&buf, path, Options{}); err != nil {
		t.Fatal(err)
	}
	want := "write  syscall\n  iovs_len  member size\n"
	if buf.String() != want {
		t.Fatalf("path = %q", buf.String())
	}
}
