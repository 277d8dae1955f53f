package sqlx_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	storage "crewscore/adapters/sqlx"
	"crewscore/core"
	"crewscore/engine"
)

func newMockStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	store := storage.NewWithDB(libsqlx.NewDb(db, "postgres"), storage.DriverPostgres)
	cleanup := func() {
		_ = db.Close()
	}
	return store, mock, cleanup
}

func TestSQLMock_GetProfile_NoRows(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT user_id, cms, level_id, version`).
		WithArgs(core.UserID("ana")).
		WillReturnError(sql.ErrNoRows)

	p, err := store.GetProfile(context.Background(), "ana")
	require.NoError(t, err)
	require.Equal(t, int64(0), p.Version)
	require.NotNil(t, p.Counters)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_GetProfile_Decodes(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT user_id, cms, level_id, version`).
		WithArgs(core.UserID("ana")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "cms", "level_id", "version", "badges", "counters", "per_entity", "updated_at"}).
			AddRow("ana", int64(120), "explorer", int64(4),
				[]byte(`["review_rookie_1"]`),
				[]byte(`{"reviews": 3}`),
				[]byte(`{"city_checkins": {"CLT": 2}}`),
				time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	p, err := store.GetProfile(context.Background(), "ana")
	require.NoError(t, err)
	require.Equal(t, int64(120), p.CMS)
	require.True(t, p.HasBadge("review_rookie_1"))
	require.Equal(t, int64(3), p.Counters["reviews"])
	require.Equal(t, int64(2), p.PerEntity["city_checkins"]["CLT"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Commit_InsertFirstVersion(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	p := core.NewProfile("ana")
	p.CMS = 25
	p.LevelID = "rookie"
	p.Version = 1

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO score_profiles`).
		WithArgs(core.UserID("ana"), int64(25), "rookie", int64(1),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO processed_events`).
		WithArgs("e1", core.UserID("ana"), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.CommitProgression(context.Background(), "e1", p, core.ProgressionResult{EventID: "e1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Commit_DuplicateEvent(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	p := core.NewProfile("ana")
	p.Version = 1

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := store.CommitProgression(context.Background(), "e1", p, core.ProgressionResult{})
	require.ErrorIs(t, err, engine.ErrDuplicateEvent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Commit_VersionConflict(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	p := core.NewProfile("ana")
	p.Version = 3 // update path

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("e9").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE score_profiles`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.CommitProgression(context.Background(), "e9", p, core.ProgressionResult{})
	require.ErrorIs(t, err, engine.ErrVersionConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_LookupResult(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT result FROM processed_events`).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"result"}).
			AddRow([]byte(`{"event_id":"e1","points":25,"new_cms":25}`)))

	res, ok, err := store.LookupResult(context.Background(), "e1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 25, res.Points)
	require.NoError(t, mock.ExpectationsWereMet())
}
