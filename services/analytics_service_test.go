package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/recipe-costing/models"
)

func costedRecipe(id uint, name, category string, unitCost, price, sales float64) models.Recipe {
	return models.Recipe{
		ID:           id,
		Name:         name,
		Category:     category,
		SellingPrice: price,
		MonthlySales: sales,
		Ingredients: []models.RecipeIngredient{{
			RecipeID:     id,
			IngredientID: 1,
			Ingredient:   models.Ingredient{ID: 1, Name: "Base", Cost: unitCost},
			Quantity:     1,
		}},
	}
}

func TestBuildReportCategoryRollup(t *testing.T) {
	recipes := []models.Recipe{
		costedRecipe(1, "Lean", "Mains", 40, 100, 10),
		costedRecipe(2, "Rich", "Mains", 60, 100, 10),
		costedRecipe(3, "Cake", "Desserts", 10, 50, 20),
	}

	report := BuildReport(recipes, AnalyticsOptions{TargetMarkup: 4, PeriodMonths: 1})

	require.Len(t, report.Categories, 2)
	assert.Equal(t, "Desserts", report.Categories[0].Category)
	mains := report.Categories[1]
	assert.Equal(t, "Mains", mains.Category)
	assert.Equal(t, 2, mains.RecipeCount)

	// Margins of 60% and 40% on equal revenue.
	assert.Greater(t, mains.WeightedMargin, 40.0)
	assert.Less(t, mains.WeightedMargin, 60.0)
	assert.Equal(t, 50.0, mains.WeightedMargin)
	assert.Greater(t, mains.AverageMarkup, 100.0/60.0)
	assert.Less(t, mains.AverageMarkup, 2.5)

	assert.Equal(t, 2000.0, mains.Revenue)
	assert.Equal(t, 1000.0, mains.Cost)
	assert.Equal(t, 1000.0, mains.GrossProfit)
	assert.Equal(t, 2, mains.BelowTarget)

	assert.Equal(t, 3, report.Portfolio.RecipeCount)
	assert.Equal(t, 3000.0, report.Portfolio.TotalRevenue)
	assert.Equal(t, 1200.0, report.Portfolio.TotalCost)
	assert.Equal(t, 60.0, report.Portfolio.GrossMargin)
	assert.InDelta(t, 100.0, report.Categories[0].RevenueShare+mains.RevenueShare, 0.011)
}

func TestBuildReportPrioritiesAndPeriod(t *testing.T) {
	recipes := []models.Recipe{
		costedRecipe(1, "Lean", "Mains", 40, 100, 10),
		costedRecipe(2, "Rich", "Mains", 60, 100, 10),
		costedRecipe(3, "Cake", "Desserts", 10, 50, 20),
	}

	report := BuildReport(recipes, AnalyticsOptions{TargetMarkup: 4, PeriodMonths: 3})
	assert.Equal(t, "quarterly", report.Period)

	// Cake sits at a markup of 5 and never needs repricing.
	require.Len(t, report.Priorities, 2)
	assert.Equal(t, "Rich", report.Priorities[0].Name)
	assert.Equal(t, 4200.0, report.Priorities[0].GrossProfitImpact)
	assert.Equal(t, 240.0, report.Priorities[0].TargetPrice)
	assert.Equal(t, "Lean", report.Priorities[1].Name)
	assert.Equal(t, 1800.0, report.Priorities[1].GrossProfitImpact)

	assert.Equal(t, 6000.0, report.Categories[1].Revenue)
}

func TestBuildReportExclusions(t *testing.T) {
	noIngredients := models.Recipe{ID: 4, Name: "Water", Category: "Drinks", SellingPrice: 1, MonthlySales: 5}
	free := costedRecipe(5, "Freebie", "Drinks", 0, 2, 5)
	unpriced := costedRecipe(6, "Draft", "Drinks", 3, 0, 5)
	ok := costedRecipe(7, "Lemonade", "Drinks", 1, 4, 5)

	report := BuildReport([]models.Recipe{noIngredients, free, unpriced, ok}, AnalyticsOptions{})

	assert.Equal(t, DefaultTargetMarkup, report.TargetMarkup)
	assert.Equal(t, "monthly", report.Period)
	require.Len(t, report.Excluded, 3)
	reasons := map[string]string{}
	for _, e := range report.Excluded {
		reasons[e.Name] = e.Reason
	}
	assert.Equal(t, "no ingredients", reasons["Water"])
	assert.Equal(t, "total cost is zero", reasons["Freebie"])
	assert.Equal(t, "selling price is not set", reasons["Draft"])

	require.Len(t, report.Recipes, 1)
	assert.Equal(t, "Lemonade", report.Recipes[0].Name)
	assert.Equal(t, 1, report.Portfolio.RecipeCount)
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil, AnalyticsOptions{})
	assert.Empty(t, report.Categories)
	assert.Empty(t, report.Priorities)
	assert.Zero(t, report.Portfolio.AverageMarkup)
	assert.Zero(t, report.Portfolio.GrossMargin)
}

func TestParsePeriod(t *testing.T) {
	for name, want := range map[string]int{"": 1, "monthly": 1, "Quarterly": 3, " yearly ": 12} {
		got, err := ParsePeriod(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParsePeriod("weekly")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAnalyticsServiceReport(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ingredients := NewIngredientService(db)
	recipes := NewRecipeService(db)
	id := mustIngredient(t, ingredients, "Coffee", 2)

	_, err := recipes.Create(ctx, recipePayload("Espresso", "Drinks", 3, 500, line(id, 0.5)))
	require.NoError(t, err)
	_, err = recipes.Create(ctx, recipePayload("Latte", "Drinks", 20, 200, line(id, 0.5)))
	require.NoError(t, err)

	svc := NewAnalyticsService(db, 0)
	assert.Equal(t, DefaultTargetMarkup, svc.DefaultTarget())

	report, err := svc.Report(ctx, AnalyticsOptions{PeriodMonths: 1})
	require.NoError(t, err)
	assert.Equal(t, 4.0, report.TargetMarkup)
	assert.Len(t, report.Recipes, 2)

	top, err := svc.Priorities(ctx, AnalyticsOptions{}, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Espresso", top[0].Name)
}
