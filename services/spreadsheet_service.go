package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"
	"github.com/yeremiapane/recipe-costing/utils"
)

const (
	SheetRecipes     = "Recipes"
	SheetIngredients = "Ingredients"
)

var (
	ingredientHeaders = []string{"Name", "Cost", "Unit", "Category", "Supplier"}
	recipeHeaders     = []string{
		"Name", "Category", "Description", "Selling Price", "Monthly Sales", "Overhead", "Ingredients",
		"Total Cost", "Profit Margin", "Markup Factor", "Monthly Revenue", "Monthly Profit",
	}
)

type ImportRowError struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportSummary struct {
	IngredientsCreated int              `json:"ingredients_created"`
	IngredientsUpdated int              `json:"ingredients_updated"`
	RecipesCreated     int              `json:"recipes_created"`
	RecipesUpdated     int              `json:"recipes_updated"`
	Skipped            int              `json:"skipped"`
	Errors             []ImportRowError `json:"errors"`
}

func (s *ImportSummary) skip(sheet string, row int, err error) {
	s.Skipped++
	s.Errors = append(s.Errors, ImportRowError{Sheet: sheet, Row: row, Error: err.Error()})
}

// SpreadsheetService reads and writes the two-sheet workbook used to move
// recipes and ingredients in and out of the system.
type SpreadsheetService struct {
	ingredients *IngredientService
	recipes     *RecipeService
}

func NewSpreadsheetService(ingredients *IngredientService, recipes *RecipeService) *SpreadsheetService {
	return &SpreadsheetService{ingredients: ingredients, recipes: recipes}
}

func (s *SpreadsheetService) Export(ctx context.Context, w io.Writer) error {
	ingredients, err := s.ingredients.List(ctx)
	if err != nil {
		return err
	}
	recipes, err := s.recipes.List(ctx, SortName)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	recipeSheet, err := file.AddSheet(SheetRecipes)
	if err != nil {
		return err
	}
	ingredientSheet, err := file.AddSheet(SheetIngredients)
	if err != nil {
		return err
	}

	addHeader(recipeSheet, recipeHeaders)
	for _, r := range recipes {
		row := recipeSheet.AddRow()
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(r.Category)
		row.AddCell().SetString(r.Description)
		row.AddCell().SetFloat(r.SellingPrice)
		row.AddCell().SetFloat(r.MonthlySales)
		row.AddCell().SetFloat(r.Overhead)
		row.AddCell().SetString(formatLines(r.Ingredients))
		row.AddCell().SetFloat(r.TotalCost)
		row.AddCell().SetFloat(r.ProfitMargin)
		row.AddCell().SetFloat(r.MarkupFactor)
		row.AddCell().SetFloat(r.MonthlyRevenue)
		row.AddCell().SetFloat(r.MonthlyProfit)
	}

	addHeader(ingredientSheet, ingredientHeaders)
	for _, ing := range ingredients {
		row := ingredientSheet.AddRow()
		row.AddCell().SetString(ing.Name)
		row.AddCell().SetFloat(ing.Cost)
		row.AddCell().SetString(ing.Unit)
		row.AddCell().SetString(ing.Category)
		row.AddCell().SetString(ing.Supplier)
	}

	utils.InfoLogger.Printf("Exported %d recipes and %d ingredients", len(recipes), len(ingredients))
	return file.Write(w)
}

// Import loads a workbook in the Export layout. Ingredients are imported
// first so recipes can reference them by name. A bad row is skipped and
// reported; it never aborts the rest of the file.
func (s *SpreadsheetService) Import(ctx context.Context, data []byte) (*ImportSummary, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, ValidationError("file", "file is not a readable .xlsx workbook")
	}
	ingredientSheet := findSheet(file, SheetIngredients)
	recipeSheet := findSheet(file, SheetRecipes)
	if ingredientSheet == nil && recipeSheet == nil {
		return nil, ValidationError("file", fmt.Sprintf("workbook has neither a %q nor an %q sheet", SheetRecipes, SheetIngredients))
	}

	summary := &ImportSummary{Errors: []ImportRowError{}}
	if ingredientSheet != nil {
		if err := s.importIngredients(ctx, ingredientSheet, summary); err != nil {
			return nil, err
		}
	}
	if recipeSheet != nil {
		if err := s.importRecipes(ctx, recipeSheet, summary); err != nil {
			return nil, err
		}
	}

	utils.InfoLogger.Printf("Import finished: %d/%d ingredients created/updated, %d/%d recipes created/updated, %d rows skipped",
		summary.IngredientsCreated, summary.IngredientsUpdated, summary.RecipesCreated, summary.RecipesUpdated, summary.Skipped)
	return summary, nil
}

func (s *SpreadsheetService) importIngredients(ctx context.Context, sheet *xlsx.Sheet, summary *ImportSummary) error {
	return eachRow(sheet, func(rowNum int, get func(string) string) error {
		cost, err := utils.ParseNumber(get("Cost"))
		if err != nil {
			summary.skip(SheetIngredients, rowNum, err)
			return nil
		}
		payload := IngredientPayload{
			Name:     get("Name"),
			Cost:     cost,
			Unit:     get("Unit"),
			Category: get("Category"),
			Supplier: get("Supplier"),
		}

		existing, err := s.ingredients.FindByName(ctx, payload.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			_, err = s.ingredients.Update(ctx, existing.ID, payload)
		} else {
			_, err = s.ingredients.Create(ctx, payload)
		}
		switch {
		case err != nil && KindOf(err) == KindPersistence:
			return err
		case err != nil:
			summary.skip(SheetIngredients, rowNum, err)
		case existing != nil:
			summary.IngredientsUpdated++
		default:
			summary.IngredientsCreated++
		}
		return nil
	})
}

func (s *SpreadsheetService) importRecipes(ctx context.Context, sheet *xlsx.Sheet, summary *ImportSummary) error {
	return eachRow(sheet, func(rowNum int, get func(string) string) error {
		name := get("Name")
		id, err := s.recipes.FindByName(ctx, name)
		if err != nil {
			return err
		}

		var payload RecipePayload
		if id != 0 {
			current, err := s.recipes.Get(ctx, id)
			if err != nil {
				return err
			}
			payload = PayloadFromView(current)
		}
		if err := s.fillRecipePayload(ctx, &payload, get); err != nil {
			if KindOf(err) == KindPersistence {
				return err
			}
			summary.skip(SheetRecipes, rowNum, err)
			return nil
		}

		if id != 0 {
			_, err = s.recipes.Update(ctx, id, payload)
		} else {
			_, err = s.recipes.Create(ctx, payload)
		}
		switch {
		case err != nil && KindOf(err) == KindPersistence:
			return err
		case err != nil:
			summary.skip(SheetRecipes, rowNum, err)
		case id != 0:
			summary.RecipesUpdated++
		default:
			summary.RecipesCreated++
		}
		return nil
	})
}

// fillRecipePayload overlays the spreadsheet columns on p. Blank numeric
// cells keep the value already in p.
func (s *SpreadsheetService) fillRecipePayload(ctx context.Context, p *RecipePayload, get func(string) string) error {
	p.Name = get("Name")
	if v := get("Category"); v != "" {
		p.Category = v
	}
	if v := get("Description"); v != "" {
		p.Description = v
	}

	numbers := []struct {
		column string
		dst    *utils.Number
	}{
		{"Selling Price", &p.SellingPrice},
		{"Monthly Sales", &p.MonthlySales},
		{"Overhead", &p.Overhead},
	}
	for _, n := range numbers {
		v, err := utils.ParseNumber(get(n.column))
		if err != nil {
			return ValidationError(n.column, err.Error())
		}
		if v.Set {
			*n.dst = v
		}
	}

	lines, err := parseLines(get("Ingredients"))
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	p.Ingredients = p.Ingredients[:0]
	for _, l := range lines {
		ing, err := s.ingredients.FindByName(ctx, l.name)
		if err != nil {
			return err
		}
		if ing == nil {
			return ValidationError("Ingredients", fmt.Sprintf("unknown ingredient %q", l.name))
		}
		p.Ingredients = append(p.Ingredients, RecipeIngredientInput{
			ID:       utils.NewNumber(float64(ing.ID)),
			Quantity: l.quantity,
		})
	}
	return nil
}

type namedLine struct {
	name     string
	quantity utils.Number
}

// parseLines reads "Tomato:2; Basil:0.5".
func parseLines(s string) ([]namedLine, error) {
	var out []namedLine
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.LastIndex(part, ":")
		if idx <= 0 {
			return nil, ValidationError("Ingredients", fmt.Sprintf("expected name:quantity, got %q", part))
		}
		qty, err := utils.ParseNumber(part[idx+1:])
		if err != nil || !qty.Set {
			return nil, ValidationError("Ingredients", fmt.Sprintf("bad quantity in %q", part))
		}
		out = append(out, namedLine{name: strings.TrimSpace(part[:idx]), quantity: qty})
	}
	return out, nil
}

func formatLines(lines []RecipeIngredientView) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s:%s", l.Name, utils.NewNumber(l.Quantity).Value.String()))
	}
	return strings.Join(parts, "; ")
}

func addHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetString(h)
	}
}

func findSheet(file *xlsx.File, name string) *xlsx.Sheet {
	for _, sheet := range file.Sheets {
		if strings.EqualFold(strings.TrimSpace(sheet.Name), name) {
			return sheet
		}
	}
	return nil
}

// eachRow calls fn for every non-blank data row, with a getter keyed by the
// header text of row 1. rowNum is the 1-based row number shown in a
// spreadsheet program.
func eachRow(sheet *xlsx.Sheet, fn func(rowNum int, get func(string) string) error) error {
	if len(sheet.Rows) == 0 {
		return nil
	}
	columns := map[string]int{}
	for i, cell := range sheet.Rows[0].Cells {
		columns[strings.ToLower(strings.TrimSpace(cell.String()))] = i
	}

	for i := 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if row == nil || blankRow(row) {
			continue
		}
		get := func(header string) string {
			idx, ok := columns[strings.ToLower(header)]
			if !ok || idx >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[idx].String())
		}
		if err := fn(i+1, get); err != nil {
			return err
		}
	}
	return nil
}

func blankRow(row *xlsx.Row) bool {
	for _, cell := range row.Cells {
		if strings.TrimSpace(cell.String()) != "" {
			return false
		}
	}
	return true
}
