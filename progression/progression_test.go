package progression

import (
	"context"
	"testing"
	"time"

	"crewscore/core"
	"crewscore/engine"
	"crewscore/leaderboard"
	"crewscore/realtime"
)

func TestNewDefaultsAndOptions(t *testing.T) {
	hub := realtime.NewHub()
	board := leaderboard.NewSkipList()
	svc := New(
		WithRealtime(hub),
		WithLeaderboard(board),
		WithDispatchMode(engine.DispatchSync),
	)
	defer svc.Close()

	_, ch := hub.Subscribe(8)
	ev := core.ActionEvent{ID: "e1", UserID: "ana", Type: core.ActionSpotCheckIn, OccurredAt: time.Now(), Context: core.ActionContext{CityID: "CLT"}}
	res, err := svc.Process(context.Background(), ev, core.StatusFlags{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Points != 15 {
		t.Fatalf("points=%d", res.Points)
	}

	// realtime bridge received the scored event
	got := <-ch
	if got.Type != core.EventActionScored || got.UserID != "ana" {
		t.Fatalf("unexpected event: %+v", got)
	}

	// leaderboard tracked the new total
	entry, ok := board.Get("ana")
	if !ok || entry.CMS != 15 {
		t.Fatalf("board entry: %+v ok=%v", entry, ok)
	}
}

func TestNewMemoryFallback(t *testing.T) {
	svc := New(WithDispatchMode(engine.DispatchSync))
	defer svc.Close()

	ev := core.ActionEvent{ID: "e1", UserID: "bo", Type: core.ActionConnectionAccepted}
	if _, err := svc.Process(context.Background(), ev, core.StatusFlags{}); err != nil {
		t.Fatal(err)
	}
	p, err := svc.Profile(context.Background(), "bo")
	if err != nil || p.CMS != 5 {
		t.Fatalf("cms=%d err=%v", p.CMS, err)
	}
}
