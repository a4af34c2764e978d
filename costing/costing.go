// Package costing derives a recipe's financial figures from its ingredient
// lines, overhead percentage, selling price and sales volume.
//
// Everything here is a pure function of its input. Sums are carried out in
// decimal arithmetic and rounded to two places only when a Result is built,
// so a recipe costed twice from the same input always yields the same figures.
package costing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MaxOverhead is the largest overhead percentage accepted by Validate.
const MaxOverhead = 100

var (
	hundred = decimal.NewFromInt(100)

	ErrNoIngredients = errors.New("at least one ingredient is required")
)

// Line is one ingredient of a recipe: the ingredient's cost per unit and the
// quantity of that unit the recipe uses.
type Line struct {
	UnitCost float64
	Quantity float64
}

type Input struct {
	Lines        []Line
	Overhead     float64 // percent added on top of the ingredient cost
	SellingPrice float64
	SalesVolume  float64 // units sold per period
}

type Result struct {
	IngredientsCost float64 `json:"ingredients_cost"`
	TotalCost       float64 `json:"total_cost"`
	ProfitMargin    float64 `json:"profit_margin"`
	Revenue         float64 `json:"revenue"`
	Profit          float64 `json:"profit"`
	MarkupFactor    float64 `json:"markup_factor"`
}

// InputError describes the first field of an Input that cannot be costed.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate reports whether in describes a recipe that may be saved. An empty
// ingredient list returns ErrNoIngredients; other problems return *InputError.
func (in Input) Validate() error {
	if len(in.Lines) == 0 {
		return ErrNoIngredients
	}
	for i, l := range in.Lines {
		if !finite(l.Quantity) {
			return &InputError{Field: fmt.Sprintf("ingredients[%d].quantity", i), Reason: "must be a finite number"}
		}
		if !finite(l.UnitCost) {
			return &InputError{Field: fmt.Sprintf("ingredients[%d].cost", i), Reason: "must be a finite number"}
		}
		if l.Quantity <= 0 {
			return &InputError{Field: fmt.Sprintf("ingredients[%d].quantity", i), Reason: "must be greater than 0"}
		}
		if l.UnitCost < 0 {
			return &InputError{Field: fmt.Sprintf("ingredients[%d].cost", i), Reason: "must not be negative"}
		}
	}
	for _, f := range []struct {
		field string
		value float64
	}{
		{"overhead", in.Overhead},
		{"selling_price", in.SellingPrice},
		{"monthly_sales", in.SalesVolume},
	} {
		if !finite(f.value) {
			return &InputError{Field: f.field, Reason: "must be a finite number"}
		}
	}
	if in.Overhead < 0 || in.Overhead > MaxOverhead {
		return &InputError{Field: "overhead", Reason: fmt.Sprintf("must be between 0 and %d", MaxOverhead)}
	}
	if in.SellingPrice < 0 {
		return &InputError{Field: "selling_price", Reason: "must not be negative"}
	}
	if in.SalesVolume < 0 {
		return &InputError{Field: "monthly_sales", Reason: "must not be negative"}
	}
	return nil
}

// Compute costs in. It never fails: an input Validate would reject still
// yields finite figures, with non-finite values counted as 0 and margin and
// markup reported as 0 whenever the selling price or total cost is not positive.
func Compute(in Input) Result {
	ingredients := decimal.Zero
	for _, l := range in.Lines {
		ingredients = ingredients.Add(dec(l.UnitCost).Mul(dec(l.Quantity)))
	}

	overhead := dec(in.Overhead)
	total := ingredients.Mul(decimal.NewFromInt(1).Add(overhead.Div(hundred)))

	price := dec(in.SellingPrice)
	sales := dec(in.SalesVolume)

	margin := decimal.Zero
	markup := decimal.Zero
	if total.IsPositive() {
		markup = price.Div(total)
		if price.IsPositive() {
			margin = price.Sub(total).Div(price).Mul(hundred)
		}
	}

	return Result{
		IngredientsCost: round(ingredients),
		TotalCost:       round(total),
		ProfitMargin:    round(margin),
		Revenue:         round(price.Mul(sales)),
		Profit:          round(price.Sub(total).Mul(sales)),
		MarkupFactor:    round(markup),
	}
}

// TargetPrice is the selling price at which totalCost is marked up by target.
func TargetPrice(totalCost, target float64) float64 {
	if totalCost <= 0 || target <= 0 {
		return 0
	}
	return round(dec(totalCost).Mul(dec(target)))
}

// GrossProfitImpact is the extra profit over salesVolume units from repricing
// a recipe to TargetPrice. Recipes already at or above target return 0.
func GrossProfitImpact(totalCost, sellingPrice, salesVolume, target float64) float64 {
	if totalCost <= 0 || target <= 0 || salesVolume <= 0 {
		return 0
	}
	gap := dec(totalCost).Mul(dec(target)).Sub(dec(sellingPrice))
	if !gap.IsPositive() {
		return 0
	}
	return round(gap.Mul(dec(salesVolume)))
}

func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func dec(f float64) decimal.Decimal {
	if !finite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
