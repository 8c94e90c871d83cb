package observ

import (
	"bytes"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("parse")
	timer.End(idx, "3 types")
	timer.End(99, "ignored")

	report := timer.Report()
	if len(report.Phases) != 1 || report.Phases[0].Name != "parse" || report.Phases[0].Note != "3 types" {
		t.Fatalf("report = %+v", report)
	}
	var buf bytes.Buffer
	if err := report.Fprint(&buf, "a.abi"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "timings a.abi:\n") || !strings.Contains(out, "// 3 types") || !strings.Contains(out, "total") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	if idx := timer.Begin("x"); idx != -1 {
		t.Fatalf("Begin = %d", idx)
	}
	if d := timer.End(0, ""); d != 0 {
		t.Fatalf("End = %v", d)
	}
	if r := timer.Report(); len(r.Phases) != 0 {
		t.Fatalf("Report = %+v", r)
	}
}
