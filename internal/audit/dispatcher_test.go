package audit

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversAndDrains(t *testing.T) {
	sink := &MemorySink{}
	d := NewDispatcher(sink, 10)

	id := uint(9)
	d.Dispatch(Event{BarbershopID: 1, Action: "booking_created", Entity: "booking", EntityID: &id, Metadata: map[string]string{"status": "pending"}})
	d.Dispatch(Event{BarbershopID: 1, Action: "booking_confirmed", Entity: "booking", EntityID: &id})
	d.Close()

	logs := sink.Logs()
	if len(logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(logs))
	}
	if logs[0].Metadata != `{"status":"pending"}` {
		t.Fatalf("metadata = %q", logs[0].Metadata)
	}
	if logs[1].Action != "booking_confirmed" {
		t.Fatalf("action = %q", logs[1].Action)
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Record(context.Context, Event) error {
	f.calls++
	return errors.New("db down")
}

func TestDispatcherSurvivesSinkErrors(t *testing.T) {
	sink := &failingSink{}
	d := NewDispatcher(sink, 4)

	d.Dispatch(Event{Action: "a"})
	d.Dispatch(Event{Action: "b"})
	d.Close()

	if sink.calls != 2 {
		t.Fatalf("calls = %d, want 2", sink.calls)
	}
}

func TestNilDispatcher(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: "ignored"})
	d.Close()
}
