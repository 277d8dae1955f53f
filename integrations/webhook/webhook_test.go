package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crewscore/core"
	"crewscore/engine"
)

func TestSinkPostsEvents(t *testing.T) {
	received := make(chan core.Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e core.Event
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			t.Errorf("decode: %v", err)
		}
		received <- e
	}))
	defer srv.Close()

	sink := New([]string{srv.URL})
	sink.OnEvent(context.Background(), core.NewLevelUp("ana", "explorer", 120))

	e := <-received
	if e.Type != core.EventLevelUp || e.LevelID != "explorer" {
		t.Fatalf("got %+v", e)
	}
}

func TestAttachBridgesBus(t *testing.T) {
	received := make(chan core.Event, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e core.Event
		_ = json.NewDecoder(r.Body).Decode(&e)
		received <- e
	}))
	defer srv.Close()

	bus := engine.NewEventBus(engine.DispatchSync)
	defer bus.Close()
	detach := Attach(New([]string{srv.URL}), bus.Subscribe)

	bus.Publish(context.Background(), core.NewBadgeEarned("ana", "first_layover"))
	if e := <-received; e.Badge != "first_layover" {
		t.Fatalf("got %+v", e)
	}

	detach()
	bus.Publish(context.Background(), core.NewBadgeEarned("ana", "spot_scout_5"))
	select {
	case e := <-received:
		t.Fatalf("received after detach: %+v", e)
	default:
	}
}
