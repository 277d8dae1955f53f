package core

import "time"

// EventType enumerates domain events emitted after a committed progression.
type EventType string

const (
	EventActionScored EventType = "action_scored"
	EventLevelUp      EventType = "level_up"
	EventBadgeEarned  EventType = "badge_earned"
)

// Event represents an immutable domain event.
type Event struct {
	Type     EventType      `json:"type"`
	Time     time.Time      `json:"time"`
	UserID   UserID         `json:"user_id"`
	EventID  string         `json:"event_id,omitempty"`
	Action   ActionType     `json:"action,omitempty"`
	Points   int            `json:"points,omitempty"`
	TotalCMS int64          `json:"total_cms,omitempty"`
	LevelID  string         `json:"level_id,omitempty"`
	Badge    BadgeID        `json:"badge,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func NewActionScored(user UserID, eventID string, action ActionType, points int, total int64) Event {
	return Event{Type: EventActionScored, Time: time.Now().UTC(), UserID: user, EventID: eventID, Action: action, Points: points, TotalCMS: total}
}

func NewLevelUp(user UserID, levelID string, total int64) Event {
	return Event{Type: EventLevelUp, Time: time.Now().UTC(), UserID: user, LevelID: levelID, TotalCMS: total}
}

func NewBadgeEarned(user UserID, badge BadgeID) Event {
	return Event{Type: EventBadgeEarned, Time: time.Now().UTC(), UserID: user, Badge: badge}
}
