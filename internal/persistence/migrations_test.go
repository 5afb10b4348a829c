package persistence

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsPresent(t *testing.T) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Contains(t, names, "migrations/001_init.sql")
}

func TestInitMigrationCoversSchema(t *testing.T) {
	content, err := migrationFS.ReadFile("migrations/001_init.sql")
	require.NoError(t, err)

	schema := string(content)
	for _, table := range []string{"actors", "role_assignments", "price_entries", "orders", "tickets", "ticket_replies"} {
		assert.Contains(t, schema, table)
	}
	// Re-runnable without a version table.
	assert.Contains(t, schema, "IF NOT EXISTS")
}
