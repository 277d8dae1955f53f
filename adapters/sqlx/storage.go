// Package sqlx implements the Ledger on a SQL database via jmoiron/sqlx.
// Profiles are versioned rows; the commit transaction couples the dedupe
// insert with a version-guarded profile write.
package sqlx

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// database drivers registered for Config-based construction
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"crewscore/core"
	"crewscore/engine"
)

// Driver selects the SQL dialect.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds SQL connection configuration.
type Config struct {
	Driver          Driver        `json:"driver"`
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DefaultConfig returns sensible defaults for the given driver.
func DefaultConfig(driver Driver) Config {
	return Config{
		Driver:          driver,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store implements engine.Ledger over two tables:
//
//	score_profiles(user_id PK, cms, level_id, version, badges, counters, per_entity, updated_at)
//	processed_events(event_id PK, user_id, result, created_at)
//
// Map-shaped columns are stored as JSON text.
type Store struct {
	db     *sqlx.DB
	driver Driver
}

// New opens a connection per Config and verifies it.
func New(cfg Config) (*Store, error) {
	db, err := sqlx.Open(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{db: db, driver: cfg.Driver}, nil
}

// NewWithDB wraps an existing connection (useful for testing).
func NewWithDB(db *sqlx.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the ledger tables when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS score_profiles (
			user_id    VARCHAR(128) PRIMARY KEY,
			cms        BIGINT NOT NULL,
			level_id   VARCHAR(64) NOT NULL,
			version    BIGINT NOT NULL,
			badges     TEXT NOT NULL,
			counters   TEXT NOT NULL,
			per_entity TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS processed_events (
			event_id   VARCHAR(128) PRIMARY KEY,
			user_id    VARCHAR(128) NOT NULL,
			result     TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

type profileRow struct {
	UserID    string    `db:"user_id"`
	CMS       int64     `db:"cms"`
	LevelID   string    `db:"level_id"`
	Version   int64     `db:"version"`
	Badges    []byte    `db:"badges"`
	Counters  []byte    `db:"counters"`
	PerEntity []byte    `db:"per_entity"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r profileRow) toProfile() (core.ScoreProfile, error) {
	p := core.NewProfile(core.UserID(r.UserID))
	p.CMS = r.CMS
	p.LevelID = r.LevelID
	p.Version = r.Version
	p.Updated = r.UpdatedAt

	var badges []core.BadgeID
	if err := json.Unmarshal(r.Badges, &badges); err != nil {
		return core.ScoreProfile{}, fmt.Errorf("failed to decode badges: %w", err)
	}
	for _, b := range badges {
		p.Badges[b] = struct{}{}
	}
	if err := json.Unmarshal(r.Counters, &p.Counters); err != nil {
		return core.ScoreProfile{}, fmt.Errorf("failed to decode counters: %w", err)
	}
	if err := json.Unmarshal(r.PerEntity, &p.PerEntity); err != nil {
		return core.ScoreProfile{}, fmt.Errorf("failed to decode per-entity counters: %w", err)
	}
	return p, nil
}

func encodeProfile(p core.ScoreProfile) (badges, counters, perEntity []byte, err error) {
	ids := make([]core.BadgeID, 0, len(p.Badges))
	for b := range p.Badges {
		ids = append(ids, b)
	}
	if badges, err = json.Marshal(ids); err != nil {
		return nil, nil, nil, err
	}
	if counters, err = json.Marshal(p.Counters); err != nil {
		return nil, nil, nil, err
	}
	if perEntity, err = json.Marshal(p.PerEntity); err != nil {
		return nil, nil, nil, err
	}
	return badges, counters, perEntity, nil
}

func (s *Store) GetProfile(ctx context.Context, user core.UserID) (core.ScoreProfile, error) {
	var row profileRow
	query := s.db.Rebind(`SELECT user_id, cms, level_id, version, badges, counters, per_entity, updated_at FROM score_profiles WHERE user_id = ?`)
	err := s.db.GetContext(ctx, &row, query, user)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewProfile(user), nil
	}
	if err != nil {
		return core.ScoreProfile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	return row.toProfile()
}

func (s *Store) CommitProgression(ctx context.Context, eventID string, updated core.ScoreProfile, result core.ProgressionResult) error {
	badges, counters, perEntity, err := encodeProfile(updated)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var dup bool
	dupQuery := tx.Rebind(`SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = ?)`)
	if err := tx.GetContext(ctx, &dup, dupQuery, eventID); err != nil {
		return fmt.Errorf("failed to check dedupe record: %w", err)
	}
	if dup {
		return engine.ErrDuplicateEvent
	}

	now := time.Now().UTC()
	if updated.Version == 1 {
		insert := tx.Rebind(`INSERT INTO score_profiles (user_id, cms, level_id, version, badges, counters, per_entity, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, insert, updated.UserID, updated.CMS, updated.LevelID, updated.Version, badges, counters, perEntity, now); err != nil {
			// primary-key violation means another writer created the row first
			return engine.ErrVersionConflict
		}
	} else {
		update := tx.Rebind(`UPDATE score_profiles SET cms = ?, level_id = ?, version = ?, badges = ?, counters = ?, per_entity = ?, updated_at = ? WHERE user_id = ? AND version = ?`)
		res, err := tx.ExecContext(ctx, update, updated.CMS, updated.LevelID, updated.Version, badges, counters, perEntity, now, updated.UserID, updated.Version-1)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return engine.ErrVersionConflict
		}
	}

	insertEvent := tx.Rebind(`INSERT INTO processed_events (event_id, user_id, result, created_at) VALUES (?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insertEvent, eventID, updated.UserID, resultJSON, now); err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) LookupResult(ctx context.Context, eventID string) (core.ProgressionResult, bool, error) {
	var raw []byte
	query := s.db.Rebind(`SELECT result FROM processed_events WHERE event_id = ?`)
	err := s.db.GetContext(ctx, &raw, query, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ProgressionResult{}, false, nil
	}
	if err != nil {
		return core.ProgressionResult{}, false, fmt.Errorf("failed to read event record: %w", err)
	}
	var res core.ProgressionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return core.ProgressionResult{}, false, fmt.Errorf("failed to decode event record: %w", err)
	}
	return res, true, nil
}

var _ engine.Ledger = (*Store)(nil)
