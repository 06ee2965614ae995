package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	m, err := OpenSQLite(path)
	require.NoError(t, err)
	defer m.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		m, err := OpenSQLite(path)
		require.NoError(t, err, "Open() iteration %d", i)
		m.Close()
	}

	m, err := OpenSQLite(path)
	require.NoError(t, err)
	defer m.Close()

	var name string
	err = m.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='collections'").Scan(&name)
	assert.NoError(t, err)
}

func TestOpenSQLite_Pragmas(t *testing.T) {
	m, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer m.Close()

	assert.NoError(t, m.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, m.verifyPragma("synchronous", "1"))
	assert.NoError(t, m.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, m.verifyPragma("user_version", "1"))
}

func TestOpenSQLite_MigratesV0Database(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE collections (name TEXT PRIMARY KEY, payload TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO collections(name, payload) VALUES('cart', '[{"id":7,"name":"Lamp","price":10}]')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	m, err := OpenSQLite(path)
	require.NoError(t, err)
	defer m.Close()

	has, err := hasColumn(m.DB(), "collections", "revision")
	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, m.verifyPragma("user_version", "1"))

	v, ok, err := m.Get(t.Context(), "cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(v), "Lamp")
}

func TestOpenSQLitePure_SharesFileWithCgoDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")

	cgo, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, cgo.Apply(t.Context(), []Mutation{{Key: "cart", Value: []byte(`[]`)}}))
	require.NoError(t, cgo.Close())

	pure, err := OpenSQLitePure(path)
	require.NoError(t, err)
	defer pure.Close()

	v, ok, err := pure.Get(t.Context(), "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(v))
}
