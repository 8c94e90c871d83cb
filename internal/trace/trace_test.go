package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeDecl, false},
		{LevelDebug, ScopeDecl, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("ParseLevel accepted an unknown level")
	}
}

func TestStreamSpans(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Mode: ModeStream, Format: FormatText, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithTracer(context.Background(), tr)

	root := Begin(FromContext(ctx), ScopeDriver, "check", 0)
	file := Begin(FromContext(ctx), ScopeFile, "file:a.abi", root.ID()).WithExtra("types", "3")
	Begin(FromContext(ctx), ScopeDecl, "struct s", file.ID()).End("")
	file.End("ok")
	root.End("")

	out := buf.String()
	for _, want := range []string{"→ check", "→ file:a.abi", "← file:a.abi (ok) {types=3}", "← check"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "struct s") {
		t.Fatalf("decl event emitted at detail level:\n%s", out)
	}
}

func TestRingDump(t *testing.T) {
	ring := NewRingTracer(2, LevelError)
	for _, name := range []string{"read", "parse", "links"} {
		Begin(ring, ScopePass, name, 0).End("")
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "links" || events[1].Name != "links" {
		t.Fatalf("snapshot = %+v", events)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Fatalf("dump lines = %d", got)
	}
}

func TestNopFromEmptyContext(t *testing.T) {
	if FromContext(context.Background()).Enabled() {
		t.Fatal("default tracer is enabled")
	}
	span := Begin(Nop, ScopeDriver, "x", 0)
	if span.End("") != 0 || span.ID() != 0 {
		t.Fatal("nop span recorded something")
	}
}

func TestFindRing(t *testing.T) {
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	ring, ok := FindRing(tr)
	if !ok {
		t.Fatal("ring not found in both mode")
	}
	Begin(tr, ScopePass, "parse", 0).End("")
	if n := len(ring.Snapshot()); n != 2 {
		t.Fatalf("ring holds %d events", n)
	}
	if _, ok := FindRing(Nop); ok {
		t.Fatal("nop tracer has no ring")
	}
}

func TestParentPropagation(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if ParentFrom(ctx) != 0 || ParentFrom(nil) != 0 {
		t.Fatal("root context has a parent")
	}
	root := Begin(FromContext(ctx), ScopeDriver, "check", ParentFrom(ctx))
	ctx = WithParent(ctx, root.ID())
	child := Begin(FromContext(ctx), ScopeFile, "file:a.abi", ParentFrom(ctx))
	child.End("")
	root.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[1].ParentID != root.ID() || events[1].SpanID != child.ID() {
		t.Fatalf("child span %+v not under root %d", events[1], root.ID())
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatalf("seq not increasing: %d after %d", events[i].Seq, events[i-1].Seq)
		}
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelPhase)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopePass, name, "")
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Fatalf("ring kept %q, want c,d,e", got)
	}
	Point(ring, ScopeDecl, "hidden", "")
	if n := len(ring.Snapshot()); n != 3 || ring.Snapshot()[2].Name != "e" {
		t.Fatal("decl point recorded at phase level")
	}
}

func TestHeartbeat(t *testing.T) {
	if h := StartHeartbeat(Nop, time.Millisecond); h != nil {
		t.Fatal("heartbeat started for a disabled tracer")
	}
	if h := StartHeartbeat(NewRingTracer(4, LevelPhase), 0); h != nil {
		t.Fatal("heartbeat started with a zero interval")
	}
	var none *Heartbeat
	none.Stop()

	ring := NewRingTracer(16, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	events := ring.Snapshot()
	if len(events) == 0 {
		t.Fatal("no heartbeat within 2s")
	}
	if ev := events[0]; ev.Kind != KindHeartbeat || ev.Detail != "#1" || ev.Scope != ScopeDriver {
		t.Fatalf("first heartbeat = %+v", ev)
	}
	n := len(events)
	time.Sleep(5 * time.Millisecond)
	if len(ring.Snapshot()) != n {
		t.Fatal("heartbeat kept running after Stop")
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"stream", "RING", "Both"} {
		m, err := ParseMode(s)
		if err != nil || !strings.EqualFold(m.String(), s) {
			t.Fatalf("ParseMode(%q) = %v, %v", s, m, err)
		}
	}
	if _, err := ParseMode("file"); err == nil {
		t.Fatal("ParseMode accepted an unknown mode")
	}
	if _, err := New(Config{Level: LevelPhase, Mode: StorageMode(9)}); err == nil {
		t.Fatal("New accepted an unknown mode")
	}
}
