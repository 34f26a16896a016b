package events

import (
	"errors"
	"testing"
)

func TestBus_DispatchOrderAndIsolation(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(EventOrderPlaced, func(e Event) error {
		got = append(got, "first")
		return errors.New("boom")
	})
	bus.Subscribe(EventOrderPlaced, func(e Event) error {
		got = append(got, "second")
		return nil
	})
	bus.Subscribe(EventOrderFailed, func(e Event) error {
		got = append(got, "failed")
		return nil
	})

	bus.Publish(New(EventOrderPlaced, "1.207303789", nil))

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("unexpected dispatch: %v", got)
	}
}

func TestBus_NilPublishIsNoop(t *testing.T) {
	var bus *Bus
	bus.Publish(New(EventOrderFailed, "1.1", nil))
}

func TestNew_StampsEvent(t *testing.T) {
	a := New(EventOrderPlaced, "1.1", OrderOutcome{})
	b := New(EventOrderPlaced, "1.1", OrderOutcome{})
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected unique ids, got %q and %q", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() || a.MarketID != "1.1" {
		t.Fatalf("event not stamped: %+v", a)
	}
	if _, ok := a.Payload.(OrderOutcome).Instruction(); ok {
		t.Fatal("empty request should have no instruction")
	}
}
