package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/recipe-costing/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "ingredients", "recipes", "recipe_ingredients"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	// Running it twice is harmless.
	require.NoError(t, Migrate(db))
}

func TestSeedAdmin(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedAdmin(db, "", ""))
	assert.Error(t, SeedAdmin(db, "chef@example.com", ""))

	require.NoError(t, SeedAdmin(db, " Chef@Example.com ", "secret123"))
	require.NoError(t, SeedAdmin(db, "chef@example.com", "other-password"))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "chef@example.com", users[0].Email)
	assert.Equal(t, "admin", users[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("secret123")))
}
