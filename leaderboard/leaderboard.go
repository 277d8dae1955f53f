// Package leaderboard maintains an in-memory ranking of users by cumulative
// CrewMate Score, fed from action_scored events.
package leaderboard

import (
	"context"

	"crewscore/core"
)

// Entry is one ranked row.
type Entry struct {
	User core.UserID `json:"user"`
	CMS  int64       `json:"cms"`
}

// Board abstracts leaderboard operations.
type Board interface {
	Update(user core.UserID, cms int64)
	Remove(user core.UserID)
	TopN(n int) []Entry
	Get(user core.UserID) (Entry, bool)
}

// Feed subscribes the board to score totals on the bus. The returned function
// unsubscribes.
func Feed(board Board, subscribe func(core.EventType, func(context.Context, core.Event)) func()) func() {
	return subscribe(core.EventActionScored, func(_ context.Context, e core.Event) {
		board.Update(e.UserID, e.TotalCMS)
	})
}
