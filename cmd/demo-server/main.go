package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	ws "crewscore/adapters/websocket"
	"crewscore/core"
	"crewscore/engine"
	"crewscore/leaderboard"
	"crewscore/progression"
	"crewscore/realtime"
)

func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	ctx := context.Background()
	hub := realtime.NewHub()
	board := leaderboard.NewSkipList()
	svc := progression.New(
		progression.WithRealtime(hub),
		progression.WithLeaderboard(board),
		progression.WithDispatchMode(engine.DispatchAsync),
	)
	defer svc.Close()

	http.Handle("/ws", ws.Handler(hub))
	http.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, board.TopN(10))
	})
	http.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		// routes: POST /users/{id}/actions (JSON body), GET /users/{id}
		parts := split(r.URL.Path, '/')
		if len(parts) < 2 {
			http.NotFound(w, r)
			return
		}
		user := core.UserID(parts[1])
		switch r.Method {
		case http.MethodPost:
			if len(parts) >= 3 && parts[2] == "actions" {
				var body struct {
					ID      string             `json:"id"`
					Type    core.ActionType    `json:"type"`
					Context core.ActionContext `json:"context"`
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					http.Error(w, err.Error(), 400)
					return
				}
				ev := core.ActionEvent{
					ID:         body.ID,
					UserID:     user,
					Type:       body.Type,
					OccurredAt: time.Now().UTC(),
					Context:    body.Context,
				}
				res, err := svc.Process(ctx, ev, core.StatusFlags{})
				writeJSON(w, map[string]any{"result": res, "err": errString(err)})
				return
			}
		case http.MethodGet:
			p, err := svc.Profile(ctx, user)
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			writeJSON(w, p)
			return
		}
		http.NotFound(w, r)
	})

	slog.Info("starting demo server on :8080")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func errString(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

func split(p string, sep rune) []string {
	var parts []string
	current := make([]rune, 0, len(p))

	for _, r := range p {
		if r == sep {
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = current[:0]
			}
			continue
		}
		current = append(current, r)
	}

	if len(current) > 0 {
		parts = append(parts, string(current))
	}

	return parts
}
