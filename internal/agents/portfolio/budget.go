package portfolio

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Reference expense ratios as a share of income. Categories not listed use
// the default ratio.
var referenceRatios = map[string]float64{
	"housing":        0.28,
	"transportation": 0.15,
	"food":           0.12,
	"utilities":      0.10,
	"entertainment":  0.05,
	"healthcare":     0.05,
	"savings":        0.20,
}

const (
	defaultReferenceRatio = 0.05
	targetSavingsRate     = 0.20
	overspendTolerance    = 1.2
)

// BudgetRecommendation flags categories that exceed their reference ratio by
// more than the tolerance.
type BudgetRecommendation struct {
	Category    string `json:"category"`
	Current     string `json:"current"`
	Recommended string `json:"recommended"`
	Action      string `json:"action"`
}

// BudgetAnalysis is the outcome of a budget review.
type BudgetAnalysis struct {
	Income          float64                `json:"income"`
	TotalExpenses   float64                `json:"total_expenses"`
	SavingsRate     float64                `json:"savings_rate"`
	ExpenseRatios   map[string]float64     `json:"expense_ratios"`
	Recommendations []BudgetRecommendation `json:"recommendations"`
	Advice          string                 `json:"advice,omitempty"`
	Health          string                 `json:"budget_health"`
	GeneratedAt     time.Time              `json:"generated_at"`
}

// AnalyzeBudget reviews monthly expenses against reference ratios.
// Categories are visited in sorted order so recommendations are
// deterministic. A category spending more than 1.2 times its reference ratio
// is flagged; a savings rate under twenty percent adds a savings
// recommendation and marks the budget "needs improvement".
func AnalyzeBudget(income float64, expenses map[string]float64) BudgetAnalysis {
	var total float64
	for _, amount := range expenses {
		total += amount
	}

	var savingsRate float64
	if income > 0 {
		savingsRate = (income - total) / income
	}

	analysis := BudgetAnalysis{
		Income:        income,
		TotalExpenses: round2(total),
		SavingsRate:   round3(savingsRate),
		ExpenseRatios: map[string]float64{},
		GeneratedAt:   time.Now().UTC(),
	}

	var categories []string
	for category := range expenses {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		if income <= 0 {
			break
		}
		ratio := expenses[category] / income
		analysis.ExpenseRatios[category] = round3(ratio)

		reference, ok := referenceRatios[category]
		if !ok {
			reference = defaultReferenceRatio
		}
		if ratio > reference*overspendTolerance {
			analysis.Recommendations = append(analysis.Recommendations, BudgetRecommendation{
				Category:    category,
				Current:     percent(ratio),
				Recommended: percent(reference),
				Action:      fmt.Sprintf("Consider reducing %s spending", category),
			})
		}
	}

	if savingsRate < targetSavingsRate {
		analysis.Recommendations = append(analysis.Recommendations, BudgetRecommendation{
			Category:    "savings",
			Current:     percent(savingsRate),
			Recommended: "20.0%",
			Action:      "Increase savings rate to build emergency fund",
		})
		analysis.Health = "needs improvement"
	} else {
		analysis.Health = "good"
	}

	return analysis
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
