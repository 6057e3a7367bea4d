package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_OrdersAndSkips(t *testing.T) {
	files := fstest.MapFS{
		"migrations/010_later.sql":   {Data: []byte("SELECT 10;")},
		"migrations/002_second.sql":  {Data: []byte("SELECT 2;")},
		"migrations/README.md":       {Data: []byte("notes")},
		"migrations/draft_table.sql": {Data: []byte("SELECT 0;")},
	}

	migrations, err := LoadMigrations(files)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 2, migrations[0].Version)
	assert.Equal(t, "002_second.sql", migrations[0].Name)
	assert.Equal(t, 10, migrations[1].Version)
	assert.Equal(t, "SELECT 10;", migrations[1].SQL)
}

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := LoadMigrations(migrationFiles)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE")
	assert.Contains(t, migrations[1].SQL, "locations")
}
