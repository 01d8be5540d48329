package database

import (
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("staging database keeps its data between calls", func(t *testing.T) {
		db, err := New(Staging(":memory:")...)
		require.NoError(t, err)
		defer db.Close()

		_, err = db.Exec("CREATE TABLE t (v INTEGER)")
		require.NoError(t, err)
		_, err = db.Exec("INSERT INTO t VALUES (1)")
		require.NoError(t, err)

		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})

	t.Run("empty driver", func(t *testing.T) {
		_, err := New(WithDriver(""))
		assert.ErrorContains(t, err, "driver cannot be empty")
	})

	t.Run("empty data source", func(t *testing.T) {
		_, err := New(WithDataSource(""))
		assert.ErrorContains(t, err, "data source cannot be empty")
	})

	t.Run("unknown driver exhausts retries", func(t *testing.T) {
		_, err := New(WithDriver("nope"), WithRetry(2, time.Millisecond))
		assert.ErrorContains(t, err, "after 2 attempts")
	})

	t.Run("failing init statement", func(t *testing.T) {
		_, err := New(WithInitStatements("NOT SQL"))
		assert.ErrorContains(t, err, "init statement")
	})
}
