package ui

import (
	"strings"
	"testing"

	"abigen/internal/driver"
)

func TestApplyEventTracksStatus(t *testing.T) {
	events := make(chan driver.PhaseEvent)
	m := NewProgressModel("check", []string{"a.abi", "b.abi"}, events).(*progressModel)

	m.applyEvent(driver.PhaseEvent{File: "a.abi", Name: "parse", Status: driver.PhaseStart})
	m.applyEvent(driver.PhaseEvent{File: "b.abi", Status: driver.PhaseFailed})
	m.applyEvent(driver.PhaseEvent{File: "unknown.abi", Status: driver.PhaseDone})

	if got := m.items[0].status; got != "parsing" {
		t.Fatalf("a.abi status = %q", got)
	}
	if got := m.items[1].status; got != "error" {
		t.Fatalf("b.abi status = %q", got)
	}
	view := m.View()
	if !strings.Contains(view, "a.abi") || !strings.Contains(view, "error") {
		t.Fatalf("view:\n%s", view)
	}
}

func TestDoneMessageQuits(t *testing.T) {
	m := NewProgressModel("check", []string{"a.abi"}, nil).(*progressModel)
	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatal("done message did not finish the model")
	}
	if !strings.Contains(m.View(), "done: check") {
		t.Fatalf("view:\n%s", m.View())
	}
}
