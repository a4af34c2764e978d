package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/recipe-costing/database"
	"github.com/yeremiapane/recipe-costing/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	utils.InitLogger(logrus.ErrorLevel.String(), "text")
}

// newTestDB opens a private in-memory database with foreign keys on and the
// schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared&_foreign_keys=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func mustIngredient(t *testing.T, svc *IngredientService, name string, cost float64) uint {
	t.Helper()
	ing, err := svc.Create(context.Background(), IngredientPayload{
		Name:     name,
		Cost:     utils.NewNumber(cost),
		Unit:     "kg",
		Category: "Vegetables",
	})
	require.NoError(t, err)
	return ing.ID
}

func line(id uint, qty float64) RecipeIngredientInput {
	return RecipeIngredientInput{ID: utils.NewNumber(float64(id)), Quantity: utils.NewNumber(qty)}
}

func recipePayload(name, category string, price, sales float64, lines ...RecipeIngredientInput) RecipePayload {
	return RecipePayload{
		Name:         name,
		Category:     category,
		SellingPrice: utils.NewNumber(price),
		MonthlySales: utils.NewNumber(sales),
		Overhead:     utils.NewNumber(10),
		Ingredients:  lines,
	}
}

// rawNumber builds a Number without the range check ParseNumber applies, the
// way a caller inside the module could.
func rawNumber(s string) utils.Number {
	return utils.Number{Value: decimal.RequireFromString(s), Set: true}
}

// failLineInserts makes every insert into recipe_ingredients fail.
func failLineInserts(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_recipe_ingredients", func(tx *gorm.DB) {
		if tx.Statement.Table == "recipe_ingredients" {
			tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)
}
