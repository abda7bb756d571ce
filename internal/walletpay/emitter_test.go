package walletpay

import (
	"testing"
)

func TestEmitterDeliversInOrder(t *testing.T) {
	e := &emitter{}

	var got []string
	e.On("a", func(ev Event) { got = append(got, "a") })
	e.On("b", func(ev Event) { got = append(got, "b") })

	e.emit(Event{Name: "a"})
	e.emit(Event{Name: "b"})
	e.emit(Event{Name: "a"})

	want := []string{"a", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %d deliveries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestEmitterQueuesReentrantEmits(t *testing.T) {
	e := &emitter{}

	var got []string
	e.On("first", func(ev Event) {
		got = append(got, "first")
		e.emit(Event{Name: "second"})
		got = append(got, "first-done")
	})
	e.On("second", func(ev Event) { got = append(got, "second") })

	e.emit(Event{Name: "first"})

	want := []string{"first", "first-done", "second"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEmitterStickyReplaysToLateListeners(t *testing.T) {
	e := &emitter{}
	e.emitSticky(Event{Name: EventReady})

	fired := 0
	e.On(EventReady, func(ev Event) { fired++ })

	if fired != 1 {
		t.Fatalf("expected sticky event replayed once, got %d", fired)
	}
}

func TestEmitterNonStickyNotReplayed(t *testing.T) {
	e := &emitter{}
	e.emit(Event{Name: EventCancel})

	fired := 0
	e.On(EventCancel, func(ev Event) { fired++ })

	if fired != 0 {
		t.Fatalf("expected no replay for plain events, got %d", fired)
	}
}
