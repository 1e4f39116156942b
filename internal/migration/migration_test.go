package migration

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestApplySQLiteSchemaIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, ApplySQLiteSchema(db))
	require.NoError(t, ApplySQLiteSchema(db))

	var tables []string
	require.NoError(t, db.Raw(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`).Scan(&tables).Error)
	for _, name := range []string{"areas", "audit_logs", "cars", "customers", "debts", "deleted_records", "drivers", "fillings", "operators", "requests", "tank_types"} {
		assert.Contains(t, tables, name)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, entry := range entries {
		switch {
		case strings.HasSuffix(entry.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(entry.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
	assert.GreaterOrEqual(t, ups, 2)
}

func TestApplySQLiteSchemaRequiresHandle(t *testing.T) {
	assert.Error(t, ApplySQLiteSchema(nil))
	assert.Error(t, RunMigrations(nil))
}
