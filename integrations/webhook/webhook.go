// Package webhook posts progression events to configured HTTP endpoints so
// the surrounding app can trigger push notifications and UI animations.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"crewscore/core"
)

// Sink posts domain events to configured HTTP endpoints.
// It is synchronous for determinism; keep handlers fast or wrap with buffering if needed.
type Sink struct {
	client    *http.Client
	endpoints []string
}

// Option configures a Sink.
type Option func(*Sink)

// WithClient overrides the HTTP client (defaults to 2s timeout).
func WithClient(c *http.Client) Option {
	return func(s *Sink) {
		if c != nil {
			s.client = c
		}
	}
}

// New creates a webhook sink.
func New(endpoints []string, opts ...Option) *Sink {
	s := &Sink{
		client: &http.Client{Timeout: 2 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.endpoints = append([]string{}, endpoints...)
	return s
}

// OnEvent posts the event JSON to all endpoints; delivery is best-effort and
// errors are dropped. Callers that need guarantees should reconcile from the
// ledger instead.
func (s *Sink) OnEvent(ctx context.Context, e core.Event) {
	if len(s.endpoints) == 0 {
		return
	}
	body, err := json.Marshal(e)
	if err != nil {
		return
	}
	for _, ep := range s.endpoints {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep, bytes.NewReader(body))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.client.Do(req)
		if err != nil {
			continue
		}
		_ = resp.Body.Close()
	}
}

// Attach subscribes the sink to every progression event type on the bus and
// returns a function that detaches it.
func Attach(s *Sink, subscribe func(core.EventType, func(context.Context, core.Event)) func()) func() {
	var unsubs []func()
	for _, typ := range []core.EventType{core.EventActionScored, core.EventLevelUp, core.EventBadgeEarned} {
		unsubs = append(unsubs, subscribe(typ, s.OnEvent))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
