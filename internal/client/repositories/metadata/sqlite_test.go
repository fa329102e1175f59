package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  expires_at INTEGER
);`)
	require.NoError(t, err)
	return db
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}, time.Time{}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_UpsertOverwritesValueAndExpiry(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	r := NewSQLiteRepository(setupDB(t)).WithClock(c.now)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old"), c.t.Add(time.Hour)))
	require.NoError(t, r.Set(ctx, "k", []byte("new"), time.Time{}))

	c.t = c.t.Add(48 * time.Hour)
	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v, "upsert must also clear the old expiry")
}

func TestGet_ExpiredKeyIsAbsentAndPurged(t *testing.T) {
	db := setupDB(t)
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	r := NewSQLiteRepository(db).WithClock(c.now)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "token", []byte("abc"), c.t.Add(7*24*time.Hour)))

	c.t = c.t.Add(7*24*time.Hour - time.Second)
	v, err := r.Get(ctx, "token")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), v)

	c.t = c.t.Add(time.Second)
	v, err = r.Get(ctx, "token")
	require.NoError(t, err)
	require.Nil(t, v)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	assert.Zero(t, n, "expired row must be purged on read")
}

func TestList_SkipsExpired(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	r := NewSQLiteRepository(setupDB(t)).WithClock(c.now)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}, time.Time{}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB}, c.t.Add(-time.Second)))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": {0xAA}}, m)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}, time.Time{}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}, time.Time{}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}, time.Time{}))
	require.NoError(t, r.Clear(ctx))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestRepository_DBErrorsWrapped(t *testing.T) {
	ctx := context.Background()
	driverErr := errors.New("driver down")

	tests := []struct {
		name   string
		expect func(m sqlmock.Sqlmock)
		call   func(r *SQLiteRepository) error
		want   string
	}{
		{
			name:   "get",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery("SELECT value, expires_at").WillReturnError(driverErr) },
			call:   func(r *SQLiteRepository) error { _, err := r.Get(ctx, "k"); return err },
			want:   "failed to get metadata[k]",
		},
		{
			name:   "set",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec("INSERT INTO metadata").WillReturnError(driverErr) },
			call:   func(r *SQLiteRepository) error { return r.Set(ctx, "k", []byte("v"), time.Time{}) },
			want:   "failed to set metadata[k]",
		},
		{
			name:   "delete",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec("DELETE FROM metadata WHERE key").WillReturnError(driverErr) },
			call:   func(r *SQLiteRepository) error { return r.Delete(ctx, "k") },
			want:   "failed to delete metadata[k]",
		},
		{
			name:   "clear",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec("DELETE FROM metadata").WillReturnError(driverErr) },
			call:   func(r *SQLiteRepository) error { return r.Clear(ctx) },
			want:   "failed to clear metadata",
		},
		{
			name:   "list",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery("SELECT key, value, expires_at").WillReturnError(driverErr) },
			call:   func(r *SQLiteRepository) error { _, err := r.List(ctx); return err },
			want:   "failed to list metadata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.expect(mock)
			err = tt.call(NewSQLiteRepository(db))
			require.ErrorIs(t, err, driverErr)
			require.ErrorContains(t, err, tt.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
