package abifmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"abigen/internal/abi"
)

// Options controls terminal rendering.
type Options struct {
	Color bool
	// Width truncates the name column; 0 means no limit.
	Width int
}

type styles struct {
	header lipgloss.Style
	name   lipgloss.Style
	dep    lipgloss.Style // machine-dependent values
	dim    lipgloss.Style
}

func newStyles(opts Options) styles {
	if !opts.Color {
		plain := lipgloss.NewStyle()
		return styles{header: plain, name: plain, dep: plain, dim: plain}
	}
	return styles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		name:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		dep:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Cells are padded before styling so escape sequences do not disturb
// alignment.
type table struct {
	head  []string
	rows  [][]string
	style [][]lipgloss.Style
}

func (t *table) add(cells []string, st []lipgloss.Style) {
	t.rows = append(t.rows, cells)
	t.style = append(t.style, st)
}

func (t *table) render(w io.Writer, s styles, limit int) error {
	widths := make([]int, len(t.head))
	for i, h := range t.head {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i == 0 && limit > 0 {
				c = truncate(c, limit)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	var b strings.Builder
	for i, h := range t.head {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(s.header.Render(pad(h, widths[i], i > 0)))
	}
	b.WriteString("\n")
	for r, row := range t.rows {
		for i, c := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == 0 && limit > 0 {
				c = truncate(c, limit)
			}
			b.WriteString(t.style[r][i].Render(pad(c, widths[i], i > 0)))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func pad(s string, width int, right bool) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

// WriteLayout prints one row per named type with its size and alignment in
// both regimes.
func (s *Summary) WriteLayout(w io.Writer, opts Options) error {
	st := newStyles(opts)
	t := &table{head: []string{"type", "kind", "size32", "size64", "align32", "align64", "md"}}
	for _, ts := range s.Types {
		size32, size64, align32, align64 := "-", "-", "-", "-"
		if ts.Sized {
			size32, size64 = fmt.Sprint(ts.Size[0]), fmt.Sprint(ts.Size[1])
			align32, align64 = fmt.Sprint(ts.Align[0]), fmt.Sprint(ts.Align[1])
		}
		md := st.dim
		if ts.MachineDep {
			md = st.dep
		}
		t.add(
			[]string{ts.Name, ts.Kind, size32, size64, align32, align64, yesNo(ts.MachineDep)},
			[]lipgloss.Style{st.name, st.dim, md, md, md, md, md},
		)
	}
	return t.render(w, st, opts.Width)
}

// Write prints the members (or values) of one type.
func (ts *TypeSummary) Write(w io.Writer, opts Options) error {
	st := newStyles(opts)
	head := fmt.Sprintf("%s %s", ts.Kind, ts.Name)
	if ts.Sized {
		head += fmt.Sprintf("  size %s align %s", ts.Size, ts.Align)
	}
	if _, err := fmt.Fprintln(w, st.header.Render(head)); err != nil {
		return err
	}
	switch {
	case len(ts.Members) > 0:
		t := &table{head: []string{"member", "type", "offset", "size"}}
		for _, m := range ts.Members {
			off := st.dim
			if !m.Offset.Uniform() {
				off = st.dep
			}
			t.add(
				[]string{m.Name, m.Type, m.Offset.String(), m.Size.String()},
				[]lipgloss.Style{st.name, st.dim, off, off},
			)
		}
		return t.render(w, st, opts.Width)
	case len(ts.Values) > 0:
		t := &table{head: []string{"value", "literal"}}
		for _, v := range ts.Values {
			t.add([]string{v.Name, v.Literal}, []lipgloss.Style{st.name, st.dim})
		}
		return t.render(w, st, opts.Width)
	}
	return nil
}

// WriteSyscalls prints the syscall table in numbering order.
func (s *Summary) WriteSyscalls(w io.Writer, opts Options) error {
	st := newStyles(opts)
	t := &table{head: []string{"name", "number", "md", "noreturn"}}
	for _, sc := range s.Syscalls {
		md := st.dim
		if sc.MachineDep {
			md = st.dep
		}
		t.add(
			[]string{sc.Name, fmt.Sprint(sc.Number), yesNo(sc.MachineDep), yesNo(sc.NoReturn)},
			[]lipgloss.Style{st.name, st.dim, md, st.dim},
		)
	}
	return t.render(w, st, opts.Width)
}

// WriteOrder prints the emission order, one type per line.
func (s *Summary) WriteOrder(w io.Writer) error {
	for _, name := range s.Order {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

// WriteDeps prints what a type or syscall depends on and, for types, what
// uses it.
func (s *Summary) WriteDeps(w io.Writer, name string, opts Options) error {
	st := newStyles(opts)
	var deps, users []string
	if ts, ok := s.Type(name); ok {
		deps, users = ts.Deps, ts.UsedBy
	} else if sc, ok := s.syscall(name); ok {
		deps = sc.Deps
	} else {
		return fmt.Errorf("no type or syscall named %q", name)
	}
	var b strings.Builder
	b.WriteString(st.header.Render(name))
	b.WriteString("\n")
	section := func(title string, names []string) {
		b.WriteString("  " + title + ":")
		if len(names) == 0 {
			b.WriteString(" " + st.dim.Render("none") + "\n")
			return
		}
		b.WriteString("\n")
		for _, n := range names {
			b.WriteString("    " + st.name.Render(n) + "\n")
		}
	}
	section("depends on", deps)
	if _, ok := s.Type(name); ok {
		section("used by", users)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (s *Summary) syscall(name string) (*SyscallSummary, bool) {
	for i := range s.Syscalls {
		if s.Syscalls[i].Name == name {
			return &s.Syscalls[i], true
		}
	}
	return nil, false
}

// Describe names the kind of a resolved entity, e.g. "member uint32" or
// "syscall".
func Describe(e abi.Entity) string {
	switch ee := e.(type) {
	case *abi.IntLikeType:
		return ee.Class.String() + " " + ee.Int.Name
	case *abi.StructType:
		return "struct"
	case *abi.FunctionType:
		return "function"
	case *abi.Syscall:
		return "syscall"
	case *abi.Value:
		return "value " + ee.Literal()
	case *abi.SimpleMember:
		return "member " + abi.TypeString(ee.Type)
	case *abi.RangeMember:
		if ee.Const {
			return "crange " + abi.TypeString(ee.Target)
		}
		return "range " + abi.TypeString(ee.Target)
	case *abi.VariantArm:
		return "variant arm"
	}
	return fmt.Sprintf("%T", e)
}

// WritePath prints one line per component of a resolved path.
func WritePath(w io.Writer, path []abi.Entity, opts Options) error {
	st := newStyles(opts)
	for i, e := range path {
		indent := strings.Repeat("  ", i)
		if _, err := fmt.Fprintf(w, "%s%s  %s\n", indent, st.name.Render(e.Ident()), st.dim.Render(Describe(e))); err != nil {
			return err
		}
	}
	return nil
}
