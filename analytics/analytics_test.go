package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"crewscore/core"
	"crewscore/engine"
)

func TestAggregatorCounts(t *testing.T) {
	a := NewAggregator()
	ctx := context.Background()

	a.OnEvent(ctx, core.NewActionScored("ana", "e1", core.ActionReviewWritten, 25, 25))
	a.OnEvent(ctx, core.NewActionScored("bo", "e2", core.ActionReviewWritten, 25, 25))
	a.OnEvent(ctx, core.NewActionScored("ana", "e3", core.ActionPlanHosted, 100, 125))
	a.OnEvent(ctx, core.NewLevelUp("ana", "explorer", 125))
	a.OnEvent(ctx, core.NewBadgeEarned("ana", "review_rookie_1"))

	snap := a.Snapshot()
	if snap.EventsScored != 3 || snap.PointsAwarded != 150 {
		t.Fatalf("events=%d points=%d", snap.EventsScored, snap.PointsAwarded)
	}
	if snap.ByAction[core.ActionReviewWritten] != 2 {
		t.Fatalf("reviews=%d", snap.ByAction[core.ActionReviewWritten])
	}
	if snap.PointsByAction[core.ActionPlanHosted] != 100 {
		t.Fatalf("hosted points=%d", snap.PointsByAction[core.ActionPlanHosted])
	}
	if snap.LevelUps != 1 || snap.BadgesEarned != 1 || snap.BadgesByID["review_rookie_1"] != 1 {
		t.Fatalf("levels=%d badges=%d", snap.LevelUps, snap.BadgesEarned)
	}
	// two distinct users today
	for _, active := range snap.DailyActive {
		if active != 2 {
			t.Fatalf("daily active=%d", active)
		}
	}
}

func TestAggregatorAttachedToBus(t *testing.T) {
	a := NewAggregator()
	bus := engine.NewEventBus(engine.DispatchSync)
	defer bus.Close()

	detach := Attach(a, bus.Subscribe)
	bus.Publish(context.Background(), core.NewActionScored("ana", "e1", core.ActionSpotCheckIn, 15, 15))
	if snap := a.Snapshot(); snap.EventsScored != 1 {
		t.Fatalf("events=%d", snap.EventsScored)
	}

	detach()
	bus.Publish(context.Background(), core.NewActionScored("ana", "e2", core.ActionSpotCheckIn, 15, 30))
	if snap := a.Snapshot(); snap.EventsScored != 1 {
		t.Fatal("aggregator still attached after detach")
	}
}

func TestExportJSON(t *testing.T) {
	a := NewAggregator()
	a.OnEvent(context.Background(), core.NewActionScored("ana", "e1", core.ActionReviewWritten, 25, 25))

	var buf bytes.Buffer
	if err := a.ExportJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.PointsAwarded != 25 {
		t.Fatalf("points=%d", snap.PointsAwarded)
	}
}
