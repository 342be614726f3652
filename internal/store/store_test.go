package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 0, countRows(t, s.db, "lists"))
	assert.Equal(t, 0, countRows(t, s.db, "todos"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO lists (name) VALUES ('Survivor')`)
	require.NoError(t, err)
	s.Close()

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		s.Close()
	}

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"lists", "todos"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found after idempotent opens", table)
	}
	assert.Equal(t, 1, countRows(t, s.db, "lists"), "existing rows must survive reopen")
}

func TestOpen_CreatesOnlyMissingTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`DROP TABLE todos`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO lists (name) VALUES ('Kept')`)
	require.NoError(t, err)
	s.Close()

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 1, countRows(t, s.db, "lists"))
	assert.Equal(t, 0, countRows(t, s.db, "todos"))
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	require.NotNil(t, db)
	assert.NoError(t, db.Ping())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		pragma   string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.pragma, func(t *testing.T) {
			assert.NoError(t, s.verifyPragma(tt.pragma, tt.expected))
		})
	}
}

func TestSchema_Columns(t *testing.T) {
	s := createTestStore(t)

	assert.Equal(t, []string{"id", "name"}, getTableColumns(t, s.db, "lists"))
	assert.Equal(t, []string{"id", "name", "completed", "list_id"}, getTableColumns(t, s.db, "todos"))
}

func TestSchema_ForeignKeyEnforced(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO todos (name, list_id) VALUES ('orphan', 42)`)
	assert.Error(t, err)
}
