package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, SharedMemoryDSN, DefaultConfig().DSN)

	t.Setenv("CARDMIRROR_DB_DSN", "/tmp/override.db")
	assert.Equal(t, "/tmp/override.db", DefaultConfig().DSN)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open(Config{DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	_, err = db.Exec(`INSERT INTO cards (id, name) VALUES (1, 'x')`)
	assert.NoError(t, err)
}

func TestKeepAlivePinsConnection(t *testing.T) {
	db, err := Open(Config{DSN: "file:keepalive_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	defer db.Close()

	conn, err := KeepAlive(context.Background(), db)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(db))

	_, err = db.Exec(`INSERT INTO cards (id, name) VALUES (2, 'y')`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&n))
	assert.Equal(t, 1, n)
}
