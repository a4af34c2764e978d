package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/recipe-costing/costing"
	"github.com/yeremiapane/recipe-costing/models"
	"github.com/yeremiapane/recipe-costing/utils"
	"gorm.io/gorm"
)

const DefaultTargetMarkup = 4.0

var periods = map[string]int{
	"monthly":   1,
	"quarterly": 3,
	"yearly":    12,
}

// ParsePeriod maps a period name to a number of months. Empty means monthly.
func ParsePeriod(name string) (int, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 1, nil
	}
	if months, ok := periods[name]; ok {
		return months, nil
	}
	return 0, ValidationError("period", fmt.Sprintf("unknown period %q (want monthly, quarterly or yearly)", name))
}

func periodName(months int) string {
	for name, m := range periods {
		if m == months {
			return name
		}
	}
	return fmt.Sprintf("%d months", months)
}

type AnalyticsOptions struct {
	TargetMarkup float64
	PeriodMonths int
}

type RecipeMetrics struct {
	ID                uint    `json:"id"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	SellingPrice      float64 `json:"selling_price"`
	MonthlySales      float64 `json:"monthly_sales"`
	TotalCost         float64 `json:"total_cost"`
	ProfitMargin      float64 `json:"profit_margin"`
	MarkupFactor      float64 `json:"markup_factor"`
	Revenue           float64 `json:"revenue"`
	Cost              float64 `json:"cost"`
	Profit            float64 `json:"profit"`
	TargetPrice       float64 `json:"target_price"`
	GrossProfitImpact float64 `json:"gross_profit_impact"`
	BelowTarget       bool    `json:"below_target"`
}

type CategorySummary struct {
	Category         string  `json:"category"`
	RecipeCount      int     `json:"recipe_count"`
	AverageMarkup    float64 `json:"average_markup"`
	WeightedMargin   float64 `json:"weighted_margin"`
	BelowTarget      int     `json:"below_target"`
	Revenue          float64 `json:"revenue"`
	Cost             float64 `json:"cost"`
	GrossProfit      float64 `json:"gross_profit"`
	RevenueShare     float64 `json:"revenue_share"`
	CostShare        float64 `json:"cost_share"`
	GrossProfitShare float64 `json:"gross_profit_share"`
}

type PortfolioSummary struct {
	RecipeCount      int     `json:"recipe_count"`
	AverageMarkup    float64 `json:"average_markup"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalCost        float64 `json:"total_cost"`
	TotalGrossProfit float64 `json:"total_gross_profit"`
	GrossMargin      float64 `json:"gross_margin"`
	BelowTarget      int     `json:"below_target"`
}

type ExcludedRecipe struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Report struct {
	TargetMarkup float64           `json:"target_markup"`
	Period       string            `json:"period"`
	PeriodMonths int               `json:"period_months"`
	Portfolio    PortfolioSummary  `json:"portfolio"`
	Categories   []CategorySummary `json:"categories"`
	Recipes      []RecipeMetrics   `json:"recipes"`
	Priorities   []RecipeMetrics   `json:"priorities"`
	Excluded     []ExcludedRecipe  `json:"excluded"`
}

// categoryTotals accumulates one category before rounding.
type categoryTotals struct {
	count, below          int
	markup                decimal.Decimal
	revenue, cost, profit decimal.Decimal
	marginXRevenue        decimal.Decimal
	margin                decimal.Decimal
}

// BuildReport aggregates recipes, which must have their ingredients loaded.
// Persisted derived fields are ignored: each recipe is costed again.
func BuildReport(recipes []models.Recipe, opts AnalyticsOptions) Report {
	if opts.TargetMarkup <= 0 {
		opts.TargetMarkup = DefaultTargetMarkup
	}
	if opts.PeriodMonths <= 0 {
		opts.PeriodMonths = 1
	}
	months := decimal.NewFromInt(int64(opts.PeriodMonths))

	report := Report{
		TargetMarkup: opts.TargetMarkup,
		Period:       periodName(opts.PeriodMonths),
		PeriodMonths: opts.PeriodMonths,
		Categories:   []CategorySummary{},
		Recipes:      []RecipeMetrics{},
		Priorities:   []RecipeMetrics{},
		Excluded:     []ExcludedRecipe{},
	}

	totals := map[string]*categoryTotals{}
	var all categoryTotals

	for i := range recipes {
		r := &recipes[i]
		res := costing.Compute(costingInput(r))

		if reason := exclusionReason(r, res); reason != "" {
			utils.InfoLogger.WithFields(logrus.Fields{
				"recipe_id": r.ID,
				"recipe":    r.Name,
				"reason":    reason,
			}).Warn("Recipe excluded from analytics")
			report.Excluded = append(report.Excluded, ExcludedRecipe{ID: r.ID, Name: r.Name, Reason: reason})
			continue
		}

		sales := decimal.NewFromFloat(r.MonthlySales).Mul(months)
		revenue := decimal.NewFromFloat(r.SellingPrice).Mul(sales)
		cost := decimal.NewFromFloat(res.TotalCost).Mul(sales)
		profit := revenue.Sub(cost)
		salesF := sales.InexactFloat64()

		m := RecipeMetrics{
			ID:                r.ID,
			Name:              r.Name,
			Category:          r.Category,
			SellingPrice:      r.SellingPrice,
			MonthlySales:      r.MonthlySales,
			TotalCost:         res.TotalCost,
			ProfitMargin:      res.ProfitMargin,
			MarkupFactor:      res.MarkupFactor,
			Revenue:           round2(revenue),
			Cost:              round2(cost),
			Profit:            round2(profit),
			TargetPrice:       costing.TargetPrice(res.TotalCost, opts.TargetMarkup),
			GrossProfitImpact: costing.GrossProfitImpact(res.TotalCost, r.SellingPrice, salesF, opts.TargetMarkup),
			BelowTarget:       res.MarkupFactor < opts.TargetMarkup,
		}
		report.Recipes = append(report.Recipes, m)
		if m.GrossProfitImpact > 0 {
			report.Priorities = append(report.Priorities, m)
		}

		ct := totals[r.Category]
		if ct == nil {
			ct = &categoryTotals{}
			totals[r.Category] = ct
		}
		for _, t := range []*categoryTotals{ct, &all} {
			t.count++
			if m.BelowTarget {
				t.below++
			}
			t.markup = t.markup.Add(decimal.NewFromFloat(res.MarkupFactor))
			t.margin = t.margin.Add(decimal.NewFromFloat(res.ProfitMargin))
			t.marginXRevenue = t.marginXRevenue.Add(decimal.NewFromFloat(res.ProfitMargin).Mul(revenue))
			t.revenue = t.revenue.Add(revenue)
			t.cost = t.cost.Add(cost)
			t.profit = t.profit.Add(profit)
		}
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := totals[name]
		report.Categories = append(report.Categories, CategorySummary{
			Category:         name,
			RecipeCount:      t.count,
			AverageMarkup:    round2(mean(t.markup, t.count)),
			WeightedMargin:   round2(weightedMargin(t)),
			BelowTarget:      t.below,
			Revenue:          round2(t.revenue),
			Cost:             round2(t.cost),
			GrossProfit:      round2(t.profit),
			RevenueShare:     round2(percentOf(t.revenue, all.revenue)),
			CostShare:        round2(percentOf(t.cost, all.cost)),
			GrossProfitShare: round2(percentOf(t.profit, all.profit)),
		})
	}

	report.Portfolio = PortfolioSummary{
		RecipeCount:      all.count,
		AverageMarkup:    round2(mean(all.markup, all.count)),
		TotalRevenue:     round2(all.revenue),
		TotalCost:        round2(all.cost),
		TotalGrossProfit: round2(all.profit),
		GrossMargin:      round2(percentOf(all.profit, all.revenue)),
		BelowTarget:      all.below,
	}

	sort.Slice(report.Recipes, func(i, j int) bool {
		return report.Recipes[i].Name < report.Recipes[j].Name
	})
	sort.SliceStable(report.Priorities, func(i, j int) bool {
		a, b := report.Priorities[i], report.Priorities[j]
		if a.GrossProfitImpact != b.GrossProfitImpact {
			return a.GrossProfitImpact > b.GrossProfitImpact
		}
		return a.Name < b.Name
	})
	return report
}

func exclusionReason(r *models.Recipe, res costing.Result) string {
	switch {
	case len(r.Ingredients) == 0:
		return "no ingredients"
	case res.TotalCost <= 0:
		return "total cost is zero"
	case r.SellingPrice <= 0:
		return "selling price is not set"
	}
	return ""
}

func mean(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

// weightedMargin weights each recipe's margin by its revenue, falling back to
// the plain mean when the category has no revenue.
func weightedMargin(t *categoryTotals) decimal.Decimal {
	if t.revenue.IsPositive() {
		return t.marginXRevenue.Div(t.revenue)
	}
	return mean(t.margin, t.count)
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

type AnalyticsService struct {
	db            *gorm.DB
	defaultTarget float64
}

func NewAnalyticsService(db *gorm.DB, defaultTarget float64) *AnalyticsService {
	if defaultTarget <= 0 {
		defaultTarget = DefaultTargetMarkup
	}
	return &AnalyticsService{db: db, defaultTarget: defaultTarget}
}

func (s *AnalyticsService) DefaultTarget() float64 {
	return s.defaultTarget
}

func (s *AnalyticsService) Report(ctx context.Context, opts AnalyticsOptions) (*Report, error) {
	if opts.TargetMarkup <= 0 {
		opts.TargetMarkup = s.defaultTarget
	}

	var recipes []models.Recipe
	if err := withIngredients(s.db.WithContext(ctx)).Order("id ASC").Find(&recipes).Error; err != nil {
		return nil, PersistenceError("load recipes", err)
	}
	report := BuildReport(recipes, opts)
	return &report, nil
}

// Priorities returns at most limit recipes ranked by gross profit impact.
// A limit of zero or less returns them all.
func (s *AnalyticsService) Priorities(ctx context.Context, opts AnalyticsOptions, limit int) ([]RecipeMetrics, error) {
	report, err := s.Report(ctx, opts)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(report.Priorities) > limit {
		return report.Priorities[:limit], nil
	}
	return report.Priorities, nil
}
