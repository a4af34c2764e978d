package database

import (
	"github.com/yeremiapane/recipe-costing/models"
	"github.com/yeremiapane/recipe-costing/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema and repairs rows written before the
// overhead column had a default.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
	)
	if err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	res := db.Model(&models.Recipe{}).
		Where("overhead IS NULL").
		Update("overhead", models.DefaultOverhead)
	if res.Error != nil {
		utils.ErrorLogger.Printf("Error backfilling recipe overhead: %v", res.Error)
	} else if res.RowsAffected > 0 {
		utils.InfoLogger.Printf("Backfilled overhead on %d recipes", res.RowsAffected)
	}
	return nil
}
