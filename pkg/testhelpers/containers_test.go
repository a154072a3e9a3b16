//go:build integration

package testhelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestDB_SchemaApplied(t *testing.T) {
	testDB := GetTestDB(t)
	ctx := context.Background()

	var tableCount int
	err := testDB.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('employees', 'employee_skills', 'employee_assignments', 'projects')`).
		Scan(&tableCount)
	require.NoError(t, err)
	assert.Equal(t, 4, tableCount)
}

func TestTestRedis_Ping(t *testing.T) {
	client := GetTestRedis(t)
	assert.NoError(t, client.Ping(context.Background()).Err())
}
