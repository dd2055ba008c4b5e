package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/keepsake?sslmode=disable", migrateURL("postgres://u:p@db:5432/keepsake?sslmode=disable"))
	assert.Equal(t, "pgx5://db/keepsake", migrateURL("postgresql://db/keepsake"))
	assert.Equal(t, "pgx5://db/keepsake", migrateURL("pgx5://db/keepsake"))
}
