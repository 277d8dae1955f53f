package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"crewscore/core"
	"crewscore/realtime"
)

func TestHandlerStreamsEvents(t *testing.T) {
	hub := realtime.NewHub()
	srv := httptest.NewServer(Handler(hub))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// allow the handler goroutine to subscribe before broadcasting
	deadline := time.Now().Add(2 * time.Second)
	var got core.Event
	for time.Now().Before(deadline) {
		hub.Broadcast(context.Background(), core.NewBadgeEarned("ana", "first_layover"))
		_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatal(err)
		}
		break
	}
	if got.Badge != "first_layover" {
		t.Fatalf("got %+v", got)
	}
}
