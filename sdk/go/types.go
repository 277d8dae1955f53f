package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"crewscore/core"
)

// Action is the request body for submitting an action event.
type Action struct {
	ID         string             `json:"id"`
	Type       core.ActionType    `json:"type"`
	OccurredAt time.Time          `json:"occurred_at,omitempty"`
	Context    core.ActionContext `json:"context,omitempty"`
	Status     core.StatusFlags   `json:"status,omitempty"`
}

// LeaderboardEntry mirrors the public JSON surface of leaderboard.Entry.
type LeaderboardEntry struct {
	User string `json:"user"`
	CMS  int64  `json:"cms"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Code != "" {
			return fmt.Errorf("request failed: %s (%s)", apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("request failed: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyUserID is returned when user id is empty.
var ErrEmptyUserID = errors.New("user id is required")
