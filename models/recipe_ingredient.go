package models

// RecipeIngredient is the join row between a recipe and an ingredient. Rows
// are owned by the recipe and rewritten in full whenever the recipe is saved.
type RecipeIngredient struct {
	RecipeID     uint       `gorm:"primaryKey;autoIncrement:false" json:"recipe_id"`
	IngredientID uint       `gorm:"primaryKey;autoIncrement:false;index" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"ingredient"`
	Quantity     float64    `gorm:"type:decimal(10,3);not null" json:"quantity"`
}
