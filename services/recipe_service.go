package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/recipe-costing/costing"
	"github.com/yeremiapane/recipe-costing/models"
	"github.com/yeremiapane/recipe-costing/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sort orders accepted by RecipeService.List.
const (
	SortUpdated = "updated"
	SortName    = "name"
)

// RecipeService owns recipes and their ingredient lines. Every write runs in
// a single transaction and recomputes the derived financial fields first.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

func withIngredients(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_id") }).
		Preload("Ingredients.Ingredient")
}

func (s *RecipeService) List(ctx context.Context, sort string) ([]RecipeView, error) {
	order := "updated_at DESC, id DESC"
	if sort == SortName {
		order = "name ASC, id ASC"
	}

	var recipes []models.Recipe
	if err := withIngredients(s.db.WithContext(ctx)).Order(order).Find(&recipes).Error; err != nil {
		return nil, PersistenceError("list recipes", err)
	}
	return newRecipeViews(recipes), nil
}

func (s *RecipeService) Get(ctx context.Context, id uint) (*RecipeView, error) {
	var recipe models.Recipe
	if err := withIngredients(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("recipe %d not found", id)
		}
		return nil, PersistenceError("get recipe", err)
	}
	view := NewRecipeView(recipe)
	return &view, nil
}

func (s *RecipeService) Create(ctx context.Context, payload RecipePayload) (*RecipeView, error) {
	draft, err := payload.normalize()
	if err != nil {
		return nil, err
	}

	recipe := draft.recipe
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines, err := loadLines(tx, draft.lines)
		if err != nil {
			return err
		}
		recipe.Ingredients = lines
		applyCosting(&recipe, costing.Compute(costingInput(&recipe)))
		if err := checkDerived(&recipe); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return PersistenceError("create recipe", err)
		}
		return insertLines(tx, recipe.ID, lines)
	})
	if err != nil {
		return nil, wrap("create recipe", err)
	}

	utils.InfoLogger.Printf("Recipe created: %d %q (%d ingredients, total cost %.2f)",
		recipe.ID, recipe.Name, len(draft.lines), recipe.TotalCost)
	return s.Get(ctx, recipe.ID)
}

// Update replaces every field of recipe id and its whole ingredient list.
func (s *RecipeService) Update(ctx context.Context, id uint, payload RecipePayload) (*RecipeView, error) {
	draft, err := payload.normalize()
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Recipe
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("recipe %d not found", id)
			}
			return PersistenceError("load recipe", err)
		}

		lines, err := loadLines(tx, draft.lines)
		if err != nil {
			return err
		}

		recipe := draft.recipe
		recipe.ID = existing.ID
		recipe.CreatedAt = existing.CreatedAt
		recipe.Ingredients = lines
		applyCosting(&recipe, costing.Compute(costingInput(&recipe)))
		if err := checkDerived(&recipe); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&recipe).Error; err != nil {
			return PersistenceError("update recipe", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return PersistenceError("clear recipe ingredients", err)
		}
		return insertLines(tx, id, lines)
	})
	if err != nil {
		return nil, wrap("update recipe", err)
	}

	utils.InfoLogger.Printf("Recipe updated: %d (%d ingredients)", id, len(draft.lines))
	return s.Get(ctx, id)
}

// Delete removes the recipe's ingredient lines and then the recipe.
func (s *RecipeService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return PersistenceError("delete recipe ingredients", err)
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return PersistenceError("delete recipe", res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFoundError("recipe %d not found", id)
		}
		return nil
	})
	if err != nil {
		return wrap("delete recipe", err)
	}

	utils.InfoLogger.Printf("Recipe deleted: %d", id)
	return nil
}

// SetAvailability changes menu flags only. Derived fields are left as they are.
func (s *RecipeService) SetAvailability(ctx context.Context, id uint, payload AvailabilityPayload) (*RecipeView, error) {
	updates := payload.updates()
	if len(updates) == 0 {
		return nil, ValidationError("", "no availability fields supplied")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return PersistenceError("update availability", res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFoundError("recipe %d not found", id)
		}
		return nil
	})
	if err != nil {
		return nil, wrap("update availability", err)
	}
	return s.Get(ctx, id)
}

// ListMenu returns the recipes flagged ready for channel, grouped by category.
func (s *RecipeService) ListMenu(ctx context.Context, channel string) ([]RecipeView, error) {
	column, ok := models.ChannelColumn(channel)
	if !ok {
		return nil, ValidationError("channel", fmt.Sprintf("unknown menu channel %q", channel))
	}

	var recipes []models.Recipe
	err := withIngredients(s.db.WithContext(ctx)).
		Where(column+" = ?", true).
		Order("category ASC, name ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, PersistenceError("list menu", err)
	}
	return newRecipeViews(recipes), nil
}

// RecomputeAll rewrites the stored derived fields of every recipe from the
// current ingredient costs and returns how many recipes changed.
func (s *RecipeService) RecomputeAll(ctx context.Context) (int, error) {
	var changed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := refreshDerived(tx, tx)
		changed = n
		return err
	})
	if err != nil {
		return 0, wrap("recompute recipes", err)
	}
	utils.InfoLogger.Printf("Recomputed derived fields: %d recipes changed", changed)
	return changed, nil
}

// refreshDerived recomputes the recipes selected by scope and writes back the
// ones whose stored figures differ. updated_at is left alone.
func refreshDerived(tx *gorm.DB, scope *gorm.DB) (int, error) {
	var recipes []models.Recipe
	if err := withIngredients(scope).Find(&recipes).Error; err != nil {
		return 0, PersistenceError("load recipes", err)
	}

	changed := 0
	for i := range recipes {
		r := &recipes[i]
		before := *r
		applyCosting(r, costing.Compute(costingInput(r)))
		if sameDerived(&before, r) {
			continue
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", r.ID).UpdateColumns(derivedColumns(r)).Error; err != nil {
			return changed, PersistenceError("store derived fields", err)
		}
		changed++
	}
	return changed, nil
}

// loadLines resolves ingredient references, failing validation on the first
// id that does not exist.
func loadLines(tx *gorm.DB, lines []lineInput) ([]models.RecipeIngredient, error) {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.IngredientID)
	}

	var ingredients []models.Ingredient
	if err := tx.Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, PersistenceError("load ingredients", err)
	}
	byID := make(map[uint]models.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}

	out := make([]models.RecipeIngredient, 0, len(lines))
	for i, l := range lines {
		ing, ok := byID[l.IngredientID]
		if !ok {
			return nil, ValidationError(fmt.Sprintf("ingredients[%d].id", i), fmt.Sprintf("ingredient %d does not exist", l.IngredientID))
		}
		out = append(out, models.RecipeIngredient{
			IngredientID: ing.ID,
			Ingredient:   ing,
			Quantity:     l.Quantity,
		})
	}
	return out, nil
}

func insertLines(tx *gorm.DB, recipeID uint, lines []models.RecipeIngredient) error {
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: l.IngredientID,
			Quantity:     l.Quantity,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return PersistenceError("insert recipe ingredients", err)
	}
	return nil
}

// FindByName returns the id of the first recipe with name, ignoring case, or
// 0 when there is none.
func (s *RecipeService) FindByName(ctx context.Context, name string) (uint, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Select("id").
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("id ASC").
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, PersistenceError("find recipe", err)
	}
	return recipe.ID, nil
}
