package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/gym_site/internal/models"
)

func TestOpen_SQLiteMigrates(t *testing.T) {
	ctx := context.Background()

	gdb, err := Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	for _, m := range []any{&models.User{}, &models.ContentRecord{}, &models.ContactMessage{}} {
		assert.True(t, gdb.Migrator().HasTable(m))
	}
	assert.True(t, gdb.Migrator().HasTable("content"))
	assert.NoError(t, Ping(ctx, gdb))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "postgres", "")
	require.Error(t, err)

	_, err = Open(context.Background(), "mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}
