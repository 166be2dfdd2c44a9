package lending

import (
	"math"

	"github.com/HLKC779/financial-agents/internal/domain/lending"
)

// Fallback ratios used when the denominator is missing: an applicant with no
// income is treated as maximally loan-burdened, and a loan with no property
// value as fully leveraged.
const (
	loanToIncomeFallback = 999
	loanToValueFallback  = 1
)

// AssessRisk scores an application with additive rules. Rules are evaluated
// in a fixed order (credit score, debt-to-income, loan-to-value,
// loan-to-income) and each appends its factor label when it fires.
func AssessRisk(app lending.Application) lending.RiskAssessment {
	loanToIncome := float64(loanToIncomeFallback)
	if app.Income > 0 {
		loanToIncome = app.LoanAmount / app.Income
	}
	loanToValue := float64(loanToValueFallback)
	if app.PropertyValue > 0 {
		loanToValue = app.LoanAmount / app.PropertyValue
	}

	var (
		score   int
		factors []string
	)

	switch {
	case app.CreditScore < 580:
		factors = append(factors, "Poor credit score")
		score += 40
	case app.CreditScore < 670:
		factors = append(factors, "Fair credit score")
		score += 20
	case app.CreditScore > 740:
		score -= 10
	}

	if app.DebtToIncome > 0.43 {
		factors = append(factors, "High debt-to-income ratio")
		score += 30
	} else if app.DebtToIncome < 0.28 {
		score -= 5
	}

	if loanToValue > 0.95 {
		factors = append(factors, "High loan-to-value ratio")
		score += 25
	} else if loanToValue < 0.8 {
		score -= 5
	}

	if loanToIncome > 5 {
		factors = append(factors, "High loan-to-income ratio")
		score += 20
	} else if loanToIncome < 3 {
		score -= 5
	}

	level := lending.RiskHigh
	switch {
	case score <= 20:
		level = lending.RiskLow
	case score <= 50:
		level = lending.RiskMedium
	}

	return lending.RiskAssessment{
		Score:        score,
		Level:        level,
		Factors:      factors,
		LoanToIncome: round2(loanToIncome),
		LoanToValue:  round2(loanToValue),
	}
}

// StatusForRisk maps a risk level to the initial application status.
func StatusForRisk(level string) string {
	switch level {
	case lending.RiskLow:
		return lending.StatusPreApproved
	case lending.RiskHigh:
		return lending.StatusRejected
	default:
		return lending.StatusUnderReview
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
