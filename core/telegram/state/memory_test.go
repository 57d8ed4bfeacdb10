package state

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

const testState State = "awaiting_input"

func TestStateLifecycle(t *testing.T) {
	m := NewMemoryManager()

	if m.HasState(42) {
		t.Fatal("fresh user must have no state")
	}
	if got := m.GetState(42); got != StateIdle {
		t.Fatalf("GetState = %q, want idle", got)
	}

	m.SetState(42, testState)
	if !m.InProgress(42) {
		t.Fatal("InProgress must report the active state")
	}
	if got := m.GetState(42); got != testState {
		t.Fatalf("GetState = %q, want %q", got, testState)
	}

	// Another user is unaffected.
	if m.HasState(43) {
		t.Fatal("state leaked to another user")
	}

	m.ClearState(42)
	if m.HasState(42) {
		t.Fatal("ClearState must reset to idle")
	}
}

func TestTempData(t *testing.T) {
	m := NewMemoryManager()

	m.SetTemp(42, "job_id", int64(7))
	if v, ok := m.GetTempInt64(42, "job_id"); !ok || v != 7 {
		t.Fatalf("GetTempInt64 = (%d, %v), want (7, true)", v, ok)
	}

	// Values that crossed a JSON round-trip come back as float64.
	m.SetTemp(42, "page", float64(3))
	if v, ok := m.GetTempInt64(42, "page"); !ok || v != 3 {
		t.Fatalf("GetTempInt64 float64 = (%d, %v), want (3, true)", v, ok)
	}

	m.SetTemp(42, "nickname", "miner_1")
	if _, ok := m.GetTempInt64(42, "nickname"); ok {
		t.Fatal("string must not convert to int64")
	}
	if v, ok := m.GetTemp(42, "nickname"); !ok || v != "miner_1" {
		t.Fatalf("GetTemp = (%v, %v)", v, ok)
	}

	m.ClearTemp(42, "nickname")
	if _, ok := m.GetTemp(42, "nickname"); ok {
		t.Fatal("ClearTemp must remove the key")
	}
}

func TestClearDropsEverything(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(42, testState)
	m.SetTemp(42, "job_id", int64(7))

	m.Clear(42)

	if m.HasState(42) {
		t.Fatal("Clear must reset state")
	}
	if _, ok := m.GetTemp(42, "job_id"); ok {
		t.Fatal("Clear must drop temp data")
	}
}

func TestRegisterHandlerRejectsInvalid(t *testing.T) {
	r := newHandlerRegistry()
	noop := func(c tele.Context) error { return nil }

	r.RegisterHandler(StateIdle, noop)
	r.RegisterHandler("", noop)
	r.RegisterHandler(testState, nil)
	if len(r.handlers) != 0 {
		t.Fatalf("invalid registrations accepted: %d", len(r.handlers))
	}

	r.RegisterHandler(testState, noop)
	if _, ok := r.handler(testState); !ok {
		t.Fatal("valid registration missing")
	}
}
