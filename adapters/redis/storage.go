// Package redis implements the Ledger on Redis. The commit runs as a Lua
// script so the dedupe check, version compare-and-swap, and both writes are a
// single atomic step.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crewscore/core"
	"crewscore/engine"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr         string        `json:"addr"`
	Password     string        `json:"password,omitempty"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// DefaultConfig returns sensible defaults for Redis configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store implements engine.Ledger using Redis as the backend.
// Data layout:
//   - cms:profile:{user_id} -> JSON ScoreProfile (version field inside)
//   - cms:event:{event_id}  -> JSON ProgressionResult (dedupe record)
type Store struct {
	client *redis.Client
}

// New creates a Redis-backed ledger and verifies connectivity.
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Store{client: client}, nil
}

// NewWithClient creates a Store using an existing client (useful for testing).
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func profileKey(user core.UserID) string { return fmt.Sprintf("cms:profile:%s", user) }
func eventKey(eventID string) string     { return fmt.Sprintf("cms:event:%s", eventID) }

// commitScript performs dedupe check + version CAS + writes atomically.
// Returns "duplicate", "conflict", or "ok".
var commitScript = redis.NewScript(`
	local profile_key = KEYS[1]
	local event_key = KEYS[2]
	local expected = tonumber(ARGV[1])

	if redis.call('EXISTS', event_key) == 1 then
		return 'duplicate'
	end

	local stored = 0
	local cur = redis.call('GET', profile_key)
	if cur then
		stored = tonumber(cjson.decode(cur)['version'])
	end
	if stored ~= expected then
		return 'conflict'
	end

	redis.call('SET', profile_key, ARGV[2])
	redis.call('SET', event_key, ARGV[3])
	return 'ok'
`)

func (s *Store) GetProfile(ctx context.Context, user core.UserID) (core.ScoreProfile, error) {
	data, err := s.client.Get(ctx, profileKey(user)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.NewProfile(user), nil
	}
	if err != nil {
		return core.ScoreProfile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	var p core.ScoreProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return core.ScoreProfile{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	if p.Badges == nil {
		p.Badges = map[core.BadgeID]struct{}{}
	}
	if p.Counters == nil {
		p.Counters = map[string]int64{}
	}
	if p.PerEntity == nil {
		p.PerEntity = map[string]map[string]int64{}
	}
	return p, nil
}

func (s *Store) CommitProgression(ctx context.Context, eventID string, updated core.ScoreProfile, result core.ProgressionResult) error {
	profileJSON, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	keys := []string{profileKey(updated.UserID), eventKey(eventID)}
	out, err := commitScript.Run(ctx, s.client, keys, updated.Version-1, profileJSON, resultJSON).Result()
	if err != nil {
		return fmt.Errorf("failed to commit progression: %w", err)
	}
	switch out {
	case "ok":
		return nil
	case "duplicate":
		return engine.ErrDuplicateEvent
	case "conflict":
		return engine.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected commit result %v", out)
	}
}

func (s *Store) LookupResult(ctx context.Context, eventID string) (core.ProgressionResult, bool, error) {
	data, err := s.client.Get(ctx, eventKey(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.ProgressionResult{}, false, nil
	}
	if err != nil {
		return core.ProgressionResult{}, false, fmt.Errorf("failed to read event record: %w", err)
	}
	var res core.ProgressionResult
	if err := json.Unmarshal(data, &res); err != nil {
		return core.ProgressionResult{}, false, fmt.Errorf("failed to decode event record: %w", err)
	}
	return res, true, nil
}

var _ engine.Ledger = (*Store)(nil)
