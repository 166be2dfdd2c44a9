package portfolio

import (
	"context"
	"math"
	"testing"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/market"
	"github.com/HLKC779/financial-agents/internal/inference"
)

type staticQuotes map[string]market.Quote

func (s staticQuotes) StockQuote(symbol string) market.Quote {
	return s[symbol]
}

func TestAnalyzeAggregates(t *testing.T) {
	quotes := staticQuotes{
		"AAPL": {Symbol: "AAPL", Price: 200, Change: 2},
		"MSFT": {Symbol: "MSFT", Price: 300, Change: -1},
	}
	engine := inference.NewRuleBased()
	svc := New(quotes, engine, nil)

	analysis, err := svc.Analyze(context.Background(), []string{"AAPL", "MSFT"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis.PortfolioValue != 500 {
		t.Errorf("value = %v, want 500", analysis.PortfolioValue)
	}
	if analysis.TotalChange != 1 {
		t.Errorf("change = %v, want 1", analysis.TotalChange)
	}
	// Change percent is computed against the prior value (500 - 1).
	want := math.Round(1.0/499*100*100) / 100
	if analysis.ChangePercent != want {
		t.Errorf("change percent = %v, want %v", analysis.ChangePercent, want)
	}
	if len(analysis.Holdings) != 2 || analysis.Holdings[0].Symbol != "AAPL" {
		t.Errorf("unexpected holdings: %+v", analysis.Holdings)
	}
	if analysis.Insights == "" {
		t.Error("expected insights")
	}
}

func TestAnalyzeRequiresSymbols(t *testing.T) {
	svc := New(staticQuotes{}, nil, nil)

	if _, err := svc.Analyze(context.Background(), nil); !fault.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecommendBudgetFlagsOverspending(t *testing.T) {
	svc := New(staticQuotes{}, nil, nil)

	analysis, err := svc.RecommendBudget(context.Background(), 5000, map[string]float64{
		"housing": 2000, // 40% vs 28% reference
		"food":    500,  // 10%, within tolerance
	})
	if err != nil {
		t.Fatalf("RecommendBudget: %v", err)
	}

	if analysis.SavingsRate != 0.5 {
		t.Errorf("savings rate = %v, want 0.5", analysis.SavingsRate)
	}
	if analysis.Health != "good" {
		t.Errorf("health = %q, want good", analysis.Health)
	}
	if len(analysis.Recommendations) != 1 {
		t.Fatalf("recommendations = %+v, want exactly one", analysis.Recommendations)
	}
	rec := analysis.Recommendations[0]
	if rec.Category != "housing" {
		t.Errorf("flagged category = %q, want housing", rec.Category)
	}
	if rec.Current != "40.0%" || rec.Recommended != "28.0%" {
		t.Errorf("ratios = %q/%q", rec.Current, rec.Recommended)
	}
}

func TestRecommendBudgetLowSavings(t *testing.T) {
	svc := New(staticQuotes{}, nil, nil)

	analysis, err := svc.RecommendBudget(context.Background(), 4000, map[string]float64{
		"housing": 1100, // 27.5%, within 28% * 1.2
		"food":    500,
		"other":   2000,
	})
	if err != nil {
		t.Fatalf("RecommendBudget: %v", err)
	}

	if analysis.Health != "needs improvement" {
		t.Errorf("health = %q, want needs improvement", analysis.Health)
	}
	last := analysis.Recommendations[len(analysis.Recommendations)-1]
	if last.Category != "savings" {
		t.Errorf("last recommendation = %+v, want savings", last)
	}
}

func TestRecommendBudgetUnknownCategoryUsesDefault(t *testing.T) {
	svc := New(staticQuotes{}, nil, nil)

	// 8% on an unknown category exceeds the 5% default by more than 20%.
	analysis, err := svc.RecommendBudget(context.Background(), 10000, map[string]float64{
		"hobbies": 800,
	})
	if err != nil {
		t.Fatalf("RecommendBudget: %v", err)
	}
	found := false
	for _, rec := range analysis.Recommendations {
		if rec.Category == "hobbies" {
			found = true
		}
	}
	if !found {
		t.Errorf("hobbies not flagged: %+v", analysis.Recommendations)
	}
}

func TestRecommendBudgetValidation(t *testing.T) {
	svc := New(staticQuotes{}, nil, nil)
	ctx := context.Background()

	if _, err := svc.RecommendBudget(ctx, 0, nil); !fault.IsValidation(err) {
		t.Errorf("expected validation error for zero income, got %v", err)
	}
	if _, err := svc.RecommendBudget(ctx, 1000, map[string]float64{"food": -1}); !fault.IsValidation(err) {
		t.Errorf("expected validation error for negative expense, got %v", err)
	}
}

func TestPlanRetirementProjection(t *testing.T) {
	plan, err := PlanRetirement(RetirementInput{
		CurrentAge:          30,
		RetirementAge:       65,
		CurrentSavings:      50000,
		MonthlyContribution: 1000,
	})
	if err != nil {
		t.Fatalf("PlanRetirement: %v", err)
	}

	if plan.ExpectedReturn != DefaultExpectedReturn {
		t.Errorf("return = %v, want default", plan.ExpectedReturn)
	}
	if plan.YearsToRetirement != 35 {
		t.Errorf("years = %d, want 35", plan.YearsToRetirement)
	}

	// 50000 * 1.07^35 plus annuity of 1000/month over 420 months.
	fvCurrent := 50000 * math.Pow(1.07, 35)
	monthly := 0.07 / 12
	fvContrib := 1000 * ((math.Pow(1+monthly, 420) - 1) / monthly)
	want := math.Round((fvCurrent+fvContrib)*100) / 100
	if plan.ProjectedSavings != want {
		t.Errorf("projected = %v, want %v", plan.ProjectedSavings, want)
	}
	if got := math.Round(plan.ProjectedSavings*0.04*100) / 100; plan.AnnualIncome != got {
		t.Errorf("annual income = %v, want %v", plan.AnnualIncome, got)
	}
	if !plan.OnTrack || plan.SavingsGap != 0 {
		t.Errorf("plan without income target should be on track: %+v", plan)
	}
}

func TestPlanRetirementIncomeTarget(t *testing.T) {
	short, err := PlanRetirement(RetirementInput{
		CurrentAge:          55,
		RetirementAge:       60,
		CurrentSavings:      100000,
		MonthlyContribution: 500,
		DesiredAnnualIncome: 80000,
	})
	if err != nil {
		t.Fatalf("PlanRetirement: %v", err)
	}
	if short.OnTrack {
		t.Error("expected plan to be off track")
	}
	if short.SavingsGap <= 0 {
		t.Errorf("gap = %v, want positive", short.SavingsGap)
	}
}

func TestPlanRetirementValidation(t *testing.T) {
	cases := []struct {
		name string
		in   RetirementInput
	}{
		{"zero age", RetirementInput{RetirementAge: 65}},
		{"retirement before now", RetirementInput{CurrentAge: 65, RetirementAge: 60}},
		{"negative savings", RetirementInput{CurrentAge: 30, RetirementAge: 65, CurrentSavings: -1}},
		{"negative contribution", RetirementInput{CurrentAge: 30, RetirementAge: 65, MonthlyContribution: -1}},
	}
	for _, tc := range cases {
		if _, err := PlanRetirement(tc.in); !fault.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}
