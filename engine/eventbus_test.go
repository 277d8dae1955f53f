package engine

import (
	"context"
	"testing"

	"crewscore/core"
)

func TestEventBusSyncDispatch(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	defer bus.Close()

	got := 0
	unsub := bus.Subscribe(core.EventActionScored, func(_ context.Context, e core.Event) { got++ })
	bus.Publish(context.Background(), core.NewActionScored("ana", "e1", core.ActionReviewWritten, 25, 25))
	if got != 1 {
		t.Fatalf("got %d deliveries", got)
	}

	// other event types are not delivered
	bus.Publish(context.Background(), core.NewLevelUp("ana", "explorer", 100))
	if got != 1 {
		t.Fatalf("wrong-type delivery: %d", got)
	}

	unsub()
	bus.Publish(context.Background(), core.NewActionScored("ana", "e2", core.ActionReviewWritten, 25, 50))
	if got != 1 {
		t.Fatalf("delivered after unsubscribe: %d", got)
	}
}

func TestEventBusAsyncDispatch(t *testing.T) {
	bus := NewEventBus(DispatchAsync)

	done := make(chan core.Event, 1)
	bus.Subscribe(core.EventBadgeEarned, func(_ context.Context, e core.Event) { done <- e })
	bus.Publish(context.Background(), core.NewBadgeEarned("ana", "first_layover"))

	ev := <-done
	if ev.Badge != "first_layover" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	bus.Close()
}
