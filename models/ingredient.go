package models

import (
	"strings"
	"time"
)

// Units of measure accepted for an ingredient's cost basis.
var IngredientUnits = []string{"kg", "g", "L", "ml", "pcs", "dozen", "pack", "box"}

// IngredientCategories is the fixed list used by the ingredient form.
var IngredientCategories = []string{
	"Meat",
	"Poultry",
	"Seafood",
	"Vegetables",
	"Fruits",
	"Dairy",
	"Grains",
	"Spices",
	"Oils",
	"Sauces",
	"Bakery",
	"Beverages",
	"Other",
}

type Ingredient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Cost      float64   `gorm:"type:decimal(10,2);not null" json:"cost"`
	Unit      string    `gorm:"type:varchar(20);not null" json:"unit"`
	Category  string    `gorm:"type:varchar(50);not null" json:"category"`
	Supplier  string    `gorm:"type:varchar(255)" json:"supplier,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// CanonicalUnit returns the stored spelling of unit, or "" when unknown.
func CanonicalUnit(unit string) string {
	unit = strings.TrimSpace(unit)
	for _, u := range IngredientUnits {
		if strings.EqualFold(u, unit) {
			return u
		}
	}
	return ""
}

// CanonicalCategory returns the stored spelling of an ingredient category, or "".
func CanonicalCategory(category string) string {
	category = strings.TrimSpace(category)
	for _, c := range IngredientCategories {
		if strings.EqualFold(c, category) {
			return c
		}
	}
	return ""
}
