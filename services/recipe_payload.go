package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/recipe-costing/costing"
	"github.com/yeremiapane/recipe-costing/models"
	"github.com/yeremiapane/recipe-costing/utils"
)

// RecipeIngredientInput is one ingredient line of a recipe request. Older
// clients send the ingredient as ingredient_id instead of id.
type RecipeIngredientInput struct {
	ID           utils.Number `json:"id"`
	IngredientID utils.Number `json:"ingredient_id"`
	Quantity     utils.Number `json:"quantity"`
}

// RecipePayload is the body of a create or update. Derived financial fields
// are not part of it; anything a client sends for them is dropped on decode.
type RecipePayload struct {
	Name                string `json:"name"`
	Category            string `json:"category"`
	Description         string `json:"description"`
	PreparationSteps    string `json:"preparation_steps"`
	CookingMethod       string `json:"cooking_method"`
	PlatingInstructions string `json:"plating_instructions"`
	ChefsNotes          string `json:"chefs_notes"`

	SellingPrice utils.Number `json:"selling_price"`
	MonthlySales utils.Number `json:"monthly_sales"`
	Sales        utils.Number `json:"sales"`
	Overhead     utils.Number `json:"overhead"`

	PrintMenuReady       bool   `json:"print_menu_ready"`
	QRMenuReady          bool   `json:"qr_menu_ready"`
	WebsiteMenuReady     bool   `json:"website_menu_ready"`
	AvailableForDelivery bool   `json:"available_for_delivery"`
	ImageURL             string `json:"image_url"`
	DeliveryImageURL     string `json:"delivery_image_url"`

	Ingredients []RecipeIngredientInput `json:"ingredients"`
}

// column is the decimal(precision, scale) type a number is stored in.
type column struct {
	precision int32
	scale     int32
}

var (
	costColumn     = column{10, 2}
	priceColumn    = column{10, 2}
	salesColumn    = column{12, 2}
	overheadColumn = column{5, 2}
	quantityColumn = column{10, 3}

	totalCostColumn = column{12, 2}
	ratioColumn     = column{8, 2}
	amountColumn    = column{14, 2}
)

func (c column) limit() decimal.Decimal {
	return decimal.New(1, c.precision-c.scale)
}

// fit rounds n to the column's scale so that what is costed is what gets
// stored, and rejects values the column cannot hold.
func (c column) fit(field string, n utils.Number) (utils.Number, error) {
	n = n.Round(c.scale)
	if n.Set && n.Value.Abs().GreaterThanOrEqual(c.limit()) {
		return n, ValidationError(field, fmt.Sprintf("must be less than %s", c.limit()))
	}
	return n, nil
}

func (c column) holds(v float64) bool {
	return decimal.NewFromFloat(v).Abs().LessThan(c.limit())
}

// checkDerived rejects a costed recipe whose figures overflow their columns.
func checkDerived(r *models.Recipe) error {
	switch {
	case !totalCostColumn.holds(r.TotalCost):
		return ValidationError("ingredients", "total cost is too large to store")
	case !ratioColumn.holds(r.ProfitMargin), !ratioColumn.holds(r.MarkupFactor):
		return ValidationError("selling_price", "selling price is too far from the total cost to store margin and markup")
	case !amountColumn.holds(r.MonthlyRevenue), !amountColumn.holds(r.MonthlyProfit):
		return ValidationError("monthly_sales", "monthly revenue is too large to store")
	}
	return nil
}

type lineInput struct {
	IngredientID uint
	Quantity     float64
}

// recipeDraft is a payload that passed validation.
type recipeDraft struct {
	recipe models.Recipe
	lines  []lineInput
}

func (p RecipePayload) normalize() (*recipeDraft, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ValidationError("name", "name is required")
	}
	category := strings.TrimSpace(p.Category)
	if category == "" {
		return nil, ValidationError("category", "category is required")
	}

	sales := p.MonthlySales
	if !sales.Set {
		sales = p.Sales
	}
	price, err := priceColumn.fit("selling_price", p.SellingPrice)
	if err != nil {
		return nil, err
	}
	if sales, err = salesColumn.fit("monthly_sales", sales); err != nil {
		return nil, err
	}
	overhead, err := overheadColumn.fit("overhead", p.Overhead)
	if err != nil {
		return nil, err
	}

	d := &recipeDraft{
		recipe: models.Recipe{
			Name:                 name,
			Category:             category,
			Description:          strings.TrimSpace(p.Description),
			PreparationSteps:     strings.TrimSpace(p.PreparationSteps),
			CookingMethod:        strings.TrimSpace(p.CookingMethod),
			PlatingInstructions:  strings.TrimSpace(p.PlatingInstructions),
			ChefsNotes:           strings.TrimSpace(p.ChefsNotes),
			SellingPrice:         price.Float(),
			MonthlySales:         sales.Float(),
			Overhead:             overhead.FloatOr(models.DefaultOverhead),
			PrintMenuReady:       p.PrintMenuReady,
			QRMenuReady:          p.QRMenuReady,
			WebsiteMenuReady:     p.WebsiteMenuReady,
			AvailableForDelivery: p.AvailableForDelivery,
			ImageURL:             strings.TrimSpace(p.ImageURL),
			DeliveryImageURL:     strings.TrimSpace(p.DeliveryImageURL),
		},
	}

	seen := make(map[uint]bool, len(p.Ingredients))
	for i, in := range p.Ingredients {
		ref := in.ID
		if !ref.Set {
			ref = in.IngredientID
		}
		id, ok := ref.Uint()
		if !ok {
			return nil, ValidationError(fmt.Sprintf("ingredients[%d].id", i), "ingredient id must be a positive integer")
		}
		if seen[id] {
			return nil, ValidationError(fmt.Sprintf("ingredients[%d].id", i), fmt.Sprintf("ingredient %d is listed more than once", id))
		}
		seen[id] = true
		field := fmt.Sprintf("ingredients[%d].quantity", i)
		if !in.Quantity.Set {
			return nil, ValidationError(field, "quantity is required")
		}
		qty, err := quantityColumn.fit(field, in.Quantity)
		if err != nil {
			return nil, err
		}
		d.lines = append(d.lines, lineInput{IngredientID: id, Quantity: qty.Float()})
	}

	// Unit costs are not known until the ingredients are loaded; ranges on
	// everything else can be checked now.
	probe := costing.Input{
		Overhead:     d.recipe.Overhead,
		SellingPrice: d.recipe.SellingPrice,
		SalesVolume:  d.recipe.MonthlySales,
	}
	for _, l := range d.lines {
		probe.Lines = append(probe.Lines, costing.Line{Quantity: l.Quantity})
	}
	if err := probe.Validate(); err != nil {
		return nil, costingValidationError(err)
	}
	return d, nil
}

func costingValidationError(err error) error {
	if errors.Is(err, costing.ErrNoIngredients) {
		return ValidationError("ingredients", "at least one ingredient is required")
	}
	var inputErr *costing.InputError
	if errors.As(err, &inputErr) {
		return ValidationError(inputErr.Field, inputErr.Reason)
	}
	return ValidationError("", err.Error())
}

// AvailabilityPayload toggles menu flags without touching the ingredient list.
type AvailabilityPayload struct {
	PrintMenuReady       *bool   `json:"print_menu_ready"`
	QRMenuReady          *bool   `json:"qr_menu_ready"`
	WebsiteMenuReady     *bool   `json:"website_menu_ready"`
	AvailableForDelivery *bool   `json:"available_for_delivery"`
	DeliveryImageURL     *string `json:"delivery_image_url"`
}

func (p AvailabilityPayload) updates() map[string]interface{} {
	out := map[string]interface{}{}
	if p.PrintMenuReady != nil {
		out["print_menu_ready"] = *p.PrintMenuReady
	}
	if p.QRMenuReady != nil {
		out["qr_menu_ready"] = *p.QRMenuReady
	}
	if p.WebsiteMenuReady != nil {
		out["website_menu_ready"] = *p.WebsiteMenuReady
	}
	if p.AvailableForDelivery != nil {
		out["available_for_delivery"] = *p.AvailableForDelivery
	}
	if p.DeliveryImageURL != nil {
		out["delivery_image_url"] = strings.TrimSpace(*p.DeliveryImageURL)
	}
	return out
}

// PayloadFromView rebuilds the request that would reproduce v. Callers use it
// to change a few fields of a stored recipe through Update.
func PayloadFromView(v *RecipeView) RecipePayload {
	p := RecipePayload{
		Name:                 v.Name,
		Category:             v.Category,
		Description:          v.Description,
		PreparationSteps:     v.PreparationSteps,
		CookingMethod:        v.CookingMethod,
		PlatingInstructions:  v.PlatingInstructions,
		ChefsNotes:           v.ChefsNotes,
		SellingPrice:         utils.NewNumber(v.SellingPrice),
		MonthlySales:         utils.NewNumber(v.MonthlySales),
		Overhead:             utils.NewNumber(v.Overhead),
		PrintMenuReady:       v.PrintMenuReady,
		QRMenuReady:          v.QRMenuReady,
		WebsiteMenuReady:     v.WebsiteMenuReady,
		AvailableForDelivery: v.AvailableForDelivery,
		ImageURL:             v.ImageURL,
		DeliveryImageURL:     v.DeliveryImageURL,
	}
	for _, ing := range v.Ingredients {
		p.Ingredients = append(p.Ingredients, RecipeIngredientInput{
			ID:       utils.NewNumber(float64(ing.ID)),
			Quantity: utils.NewNumber(ing.Quantity),
		})
	}
	return p
}
