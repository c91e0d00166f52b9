package postgres

import (
	"math"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_add_index.sql":  {Data: []byte("CREATE INDEX ...")},
		"migrations/001_create_run.sql": {Data: []byte("CREATE TABLE ...")},
		"migrations/003_later.sql":      {Data: []byte("ALTER TABLE ...")},
		"migrations/README.md":          {Data: []byte("notes")},
	}

	pending, err := pendingMigrations(fsys, map[string]bool{"001_create_run.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_add_index.sql", "003_later.sql"}, pending)
}

func TestPendingMigrations_Embedded(t *testing.T) {
	pending, err := pendingMigrations(migrationsFS, nil)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Equal(t, "001_create_runs.sql", pending[0])
}

func TestPendingMigrations_MissingDir(t *testing.T) {
	_, err := pendingMigrations(fstest.MapFS{}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read migrations directory")
}

func TestSeedRoundTrip(t *testing.T) {
	for _, seed := range []uint64{1, 42, math.MaxInt64 + 1, math.MaxUint64} {
		got, err := parseSeed(formatSeed(seed))
		require.NoError(t, err)
		assert.Equal(t, seed, got)
	}

	_, err := parseSeed("-1")
	assert.Error(t, err)
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	require.NotNil(t, nullable("s1"))
	assert.Equal(t, "s1", *nullable("s1"))
}
