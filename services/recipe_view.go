package services

import (
	"github.com/yeremiapane/recipe-costing/costing"
	"github.com/yeremiapane/recipe-costing/models"
)

type RecipeIngredientView struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
	Quantity float64 `json:"quantity"`
	LineCost float64 `json:"line_cost"`
}

// RecipeView is a recipe joined with its ingredients, with every derived
// field recomputed from current ingredient costs.
type RecipeView struct {
	models.Recipe
	IngredientsCost float64                `json:"ingredients_cost"`
	Ingredients     []RecipeIngredientView `json:"ingredients"`
}

// costingInput expects r.Ingredients to be loaded with their Ingredient.
func costingInput(r *models.Recipe) costing.Input {
	in := costing.Input{
		Overhead:     r.Overhead,
		SellingPrice: r.SellingPrice,
		SalesVolume:  r.MonthlySales,
	}
	for _, ri := range r.Ingredients {
		in.Lines = append(in.Lines, costing.Line{UnitCost: ri.Ingredient.Cost, Quantity: ri.Quantity})
	}
	return in
}

func applyCosting(r *models.Recipe, res costing.Result) {
	r.TotalCost = res.TotalCost
	r.ProfitMargin = res.ProfitMargin
	r.MonthlyRevenue = res.Revenue
	r.MonthlyProfit = res.Profit
	r.MarkupFactor = res.MarkupFactor
}

func derivedColumns(r *models.Recipe) map[string]interface{} {
	return map[string]interface{}{
		"total_cost":      r.TotalCost,
		"profit_margin":   r.ProfitMargin,
		"monthly_revenue": r.MonthlyRevenue,
		"monthly_profit":  r.MonthlyProfit,
		"markup_factor":   r.MarkupFactor,
	}
}

func sameDerived(a, b *models.Recipe) bool {
	return a.TotalCost == b.TotalCost &&
		a.ProfitMargin == b.ProfitMargin &&
		a.MonthlyRevenue == b.MonthlyRevenue &&
		a.MonthlyProfit == b.MonthlyProfit &&
		a.MarkupFactor == b.MarkupFactor
}

func NewRecipeView(r models.Recipe) RecipeView {
	res := costing.Compute(costingInput(&r))
	applyCosting(&r, res)

	view := RecipeView{
		Recipe:          r,
		IngredientsCost: res.IngredientsCost,
		Ingredients:     make([]RecipeIngredientView, 0, len(r.Ingredients)),
	}
	for _, ri := range r.Ingredients {
		line := costing.Compute(costing.Input{Lines: []costing.Line{{UnitCost: ri.Ingredient.Cost, Quantity: ri.Quantity}}})
		view.Ingredients = append(view.Ingredients, RecipeIngredientView{
			ID:       ri.IngredientID,
			Name:     ri.Ingredient.Name,
			Cost:     ri.Ingredient.Cost,
			Unit:     ri.Ingredient.Unit,
			Category: ri.Ingredient.Category,
			Quantity: ri.Quantity,
			LineCost: line.IngredientsCost,
		})
	}
	return view
}

func newRecipeViews(recipes []models.Recipe) []RecipeView {
	views := make([]RecipeView, 0, len(recipes))
	for _, r := range recipes {
		views = append(views, NewRecipeView(r))
	}
	return views
}
