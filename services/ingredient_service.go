package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/recipe-costing/models"
	"github.com/yeremiapane/recipe-costing/utils"
	"gorm.io/gorm"
)

type IngredientPayload struct {
	Name     string       `json:"name"`
	Cost     utils.Number `json:"cost"`
	Unit     string       `json:"unit"`
	Category string       `json:"category"`
	Supplier string       `json:"supplier"`
}

func (p IngredientPayload) normalize() (models.Ingredient, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return models.Ingredient{}, ValidationError("name", "name is required")
	}
	cost, err := costColumn.fit("cost", p.Cost)
	if err != nil {
		return models.Ingredient{}, err
	}
	if !cost.Set || !cost.Value.IsPositive() {
		return models.Ingredient{}, ValidationError("cost", "cost must be at least 0.01")
	}
	unit := models.CanonicalUnit(p.Unit)
	if unit == "" {
		return models.Ingredient{}, ValidationError("unit", fmt.Sprintf("unit must be one of %s", strings.Join(models.IngredientUnits, ", ")))
	}
	category := models.CanonicalCategory(p.Category)
	if category == "" {
		return models.Ingredient{}, ValidationError("category", fmt.Sprintf("category must be one of %s", strings.Join(models.IngredientCategories, ", ")))
	}
	return models.Ingredient{
		Name:     name,
		Cost:     cost.Float(),
		Unit:     unit,
		Category: category,
		Supplier: strings.TrimSpace(p.Supplier),
	}, nil
}

type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

func (s *IngredientService) List(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, PersistenceError("list ingredients", err)
	}
	return ingredients, nil
}

func (s *IngredientService) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("ingredient %d not found", id)
		}
		return nil, PersistenceError("get ingredient", err)
	}
	return &ingredient, nil
}

func (s *IngredientService) Create(ctx context.Context, payload IngredientPayload) (*models.Ingredient, error) {
	ingredient, err := payload.normalize()
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, ingredient.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&ingredient).Error; err != nil {
			return PersistenceError("create ingredient", err)
		}
		return nil
	})
	if err != nil {
		return nil, wrap("create ingredient", err)
	}

	utils.InfoLogger.Printf("Ingredient created: %d %q (%.2f/%s)", ingredient.ID, ingredient.Name, ingredient.Cost, ingredient.Unit)
	return &ingredient, nil
}

// Update replaces the ingredient's fields and refreshes the stored figures of
// every recipe that uses it, in the same transaction.
func (s *IngredientService) Update(ctx context.Context, id uint, payload IngredientPayload) (*models.Ingredient, error) {
	ingredient, err := payload.normalize()
	if err != nil {
		return nil, err
	}

	var refreshed int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Ingredient
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("ingredient %d not found", id)
			}
			return PersistenceError("load ingredient", err)
		}
		if err := ensureUniqueName(tx, ingredient.Name, id); err != nil {
			return err
		}

		ingredient.ID = existing.ID
		ingredient.CreatedAt = existing.CreatedAt
		if err := tx.Save(&ingredient).Error; err != nil {
			return PersistenceError("update ingredient", err)
		}

		users := tx.Model(&models.RecipeIngredient{}).Select("recipe_id").Where("ingredient_id = ?", id)
		n, err := refreshDerived(tx, tx.Where("id IN (?)", users))
		refreshed = n
		return err
	})
	if err != nil {
		return nil, wrap("update ingredient", err)
	}

	utils.InfoLogger.Printf("Ingredient updated: %d %q, %d recipes re-costed", ingredient.ID, ingredient.Name, refreshed)
	return &ingredient, nil
}

// Delete refuses to remove an ingredient that a recipe still uses.
func (s *IngredientService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("ingredient %d not found", id)
			}
			return PersistenceError("load ingredient", err)
		}

		var uses int64
		if err := tx.Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", id).Count(&uses).Error; err != nil {
			return PersistenceError("count ingredient uses", err)
		}
		if uses > 0 {
			return ConflictError("ingredient %q is used by %d recipe(s)", ingredient.Name, uses)
		}

		if err := tx.Delete(&models.Ingredient{}, id).Error; err != nil {
			return PersistenceError("delete ingredient", err)
		}
		return nil
	})
	if err != nil {
		return wrap("delete ingredient", err)
	}

	utils.InfoLogger.Printf("Ingredient deleted: %d", id)
	return nil
}

// FindByName looks an ingredient up ignoring case. It returns nil, nil when
// there is none.
func (s *IngredientService) FindByName(ctx context.Context, name string) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&ingredient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, PersistenceError("find ingredient", err)
	}
	return &ingredient, nil
}

func ensureUniqueName(tx *gorm.DB, name string, exceptID uint) error {
	q := tx.Model(&models.Ingredient{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return PersistenceError("check ingredient name", err)
	}
	if count > 0 {
		return ValidationError("name", fmt.Sprintf("an ingredient named %q already exists", name))
	}
	return nil
}
