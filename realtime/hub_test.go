package realtime

import (
	"context"
	"testing"

	"crewscore/core"
)

func TestHubBroadcastAndUnsubscribe(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(4)

	h.Broadcast(context.Background(), core.NewLevelUp("ana", "explorer", 120))
	ev := <-ch
	if ev.Type != core.EventLevelUp || ev.LevelID != "explorer" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	h.Unsubscribe(id)
	if _, open := <-ch; open {
		t.Fatal("channel should be closed after unsubscribe")
	}
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub()
	_, ch := h.Subscribe(1)

	h.Broadcast(context.Background(), core.NewBadgeEarned("ana", "a"))
	h.Broadcast(context.Background(), core.NewBadgeEarned("ana", "b")) // dropped

	ev := <-ch
	if ev.Badge != "a" {
		t.Fatalf("got %q", ev.Badge)
	}
	select {
	case ev := <-ch:
		t.Fatalf("expected drop, got %+v", ev)
	default:
	}
}
