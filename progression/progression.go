// Package progression is the builder facade for the scoring engine. It wires
// a ledger, catalog, event bus, and optional delivery surfaces into a ready
// engine.Service.
package progression

import (
	"context"

	mem "crewscore/adapters/memory"
	"crewscore/catalog"
	"crewscore/core"
	"crewscore/engine"
	"crewscore/leaderboard"
	"crewscore/realtime"
)

// Option configures the progression service builder.
type Option func(*config)

type config struct {
	ledger engine.Ledger
	cat    *catalog.Catalog
	mode   engine.DispatchMode
	hub    *realtime.Hub
	board  leaderboard.Board
}

// WithLedger sets the persistence adapter.
func WithLedger(l engine.Ledger) Option { return func(c *config) { c.ledger = l } }

// WithCatalog sets the tier/badge configuration (defaults to catalog.Default).
func WithCatalog(cat *catalog.Catalog) Option { return func(c *config) { c.cat = cat } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all engine events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithLeaderboard feeds a board from committed score totals.
func WithLeaderboard(b leaderboard.Board) Option { return func(c *config) { c.board = b } }

// New builds a configured Service. Defaults: in-memory ledger, built-in
// catalog, async dispatch.
func New(opts ...Option) *engine.Service {
	cfg := &config{mode: engine.DispatchAsync}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.ledger == nil {
		cfg.ledger = mem.New()
	}
	if cfg.cat == nil {
		cfg.cat = catalog.Default()
	}
	bus := engine.NewEventBus(cfg.mode)
	svc := engine.NewService(cfg.ledger, cfg.cat, bus)
	if cfg.hub != nil {
		for _, typ := range []core.EventType{core.EventActionScored, core.EventLevelUp, core.EventBadgeEarned} {
			typ := typ
			bus.Subscribe(typ, func(ctx context.Context, e core.Event) { cfg.hub.Broadcast(ctx, e) })
		}
	}
	if cfg.board != nil {
		leaderboard.Feed(cfg.board, bus.Subscribe)
	}
	return svc
}
