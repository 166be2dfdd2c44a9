package portfolio

import (
	"math"
	"time"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
)

// DefaultExpectedReturn is the assumed annual return when none is given.
const DefaultExpectedReturn = 7.0

// Withdrawal rate used to estimate sustainable retirement income.
const withdrawalRate = 0.04

// RetirementInput carries the projection inputs. ExpectedReturn zero takes
// the default; DesiredAnnualIncome zero means "whatever the projection
// sustains", in which case the plan is on track by definition.
type RetirementInput struct {
	CurrentAge          int
	RetirementAge       int
	CurrentSavings      float64
	MonthlyContribution float64
	ExpectedReturn      float64
	DesiredAnnualIncome float64
}

// RetirementPlan is the projection result.
type RetirementPlan struct {
	CurrentAge         int       `json:"current_age"`
	RetirementAge      int       `json:"retirement_age"`
	YearsToRetirement  int       `json:"years_to_retirement"`
	CurrentSavings     float64   `json:"current_savings"`
	MonthlyContrib     float64   `json:"monthly_contribution"`
	ExpectedReturn     float64   `json:"expected_annual_return"`
	ProjectedSavings   float64   `json:"projected_retirement_savings"`
	AnnualIncome       float64   `json:"estimated_annual_retirement_income"`
	MonthlyIncome      float64   `json:"estimated_monthly_retirement_income"`
	OnTrack            bool      `json:"on_track"`
	SavingsGap         float64   `json:"savings_gap"`
	CalculatedAt       time.Time `json:"calculated_at"`
}

// PlanRetirement projects savings growth to retirement age: current savings
// compound annually, contributions compound monthly, and sustainable income
// follows the four percent rule.
func PlanRetirement(in RetirementInput) (RetirementPlan, error) {
	if in.CurrentAge <= 0 {
		return RetirementPlan{}, fault.Invalid("current_age", "must be positive")
	}
	if in.RetirementAge <= in.CurrentAge {
		return RetirementPlan{}, fault.Invalid("retirement_age", "must be greater than current_age")
	}
	if in.CurrentSavings < 0 {
		return RetirementPlan{}, fault.Invalid("current_savings", "must not be negative")
	}
	if in.MonthlyContribution < 0 {
		return RetirementPlan{}, fault.Invalid("monthly_contribution", "must not be negative")
	}
	if in.ExpectedReturn < 0 {
		return RetirementPlan{}, fault.Invalid("expected_return", "must not be negative")
	}
	if in.ExpectedReturn == 0 {
		in.ExpectedReturn = DefaultExpectedReturn
	}

	years := in.RetirementAge - in.CurrentAge
	months := years * 12
	monthlyReturn := in.ExpectedReturn / 12 / 100

	fvCurrent := in.CurrentSavings * math.Pow(1+in.ExpectedReturn/100, float64(years))

	var fvContributions float64
	if monthlyReturn > 0 {
		fvContributions = in.MonthlyContribution * ((math.Pow(1+monthlyReturn, float64(months)) - 1) / monthlyReturn)
	} else {
		fvContributions = in.MonthlyContribution * float64(months)
	}

	projected := fvCurrent + fvContributions
	annualIncome := projected * withdrawalRate

	plan := RetirementPlan{
		CurrentAge:        in.CurrentAge,
		RetirementAge:     in.RetirementAge,
		YearsToRetirement: years,
		CurrentSavings:    in.CurrentSavings,
		MonthlyContrib:    in.MonthlyContribution,
		ExpectedReturn:    in.ExpectedReturn,
		ProjectedSavings:  round2(projected),
		AnnualIncome:      round2(annualIncome),
		MonthlyIncome:     round2(annualIncome / 12),
		OnTrack:           true,
		CalculatedAt:      time.Now().UTC(),
	}

	if in.DesiredAnnualIncome > 0 {
		target := in.DesiredAnnualIncome / withdrawalRate
		gap := target - projected
		plan.OnTrack = gap <= 0
		if !plan.OnTrack {
			plan.SavingsGap = round2(gap)
		}
	}

	return plan, nil
}
