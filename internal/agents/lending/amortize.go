package lending

import (
	"math"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/lending"
)

// Amortize computes the level monthly payment for a loan and the first year
// of its amortization schedule. The schedule evolves the balance with the
// unrounded payment; every reported figure is rounded to cents at the
// boundary. Total payment is the rounded monthly payment times the number of
// payments, so the headline figures agree with what a borrower actually pays.
func Amortize(principal, annualRate float64, termYears int) (lending.Amortization, error) {
	if principal <= 0 {
		return lending.Amortization{}, fault.Invalid("principal", "must be positive")
	}
	if annualRate < 0 {
		return lending.Amortization{}, fault.Invalid("interest_rate", "must not be negative")
	}
	if termYears <= 0 {
		return lending.Amortization{}, fault.Invalid("loan_term_years", "must be positive")
	}

	monthlyRate := annualRate / 12 / 100
	numPayments := termYears * 12

	var payment float64
	if monthlyRate > 0 {
		pow := math.Pow(1+monthlyRate, float64(numPayments))
		payment = principal * (monthlyRate * pow) / (pow - 1)
	} else {
		payment = principal / float64(numPayments)
	}

	monthly := round2(payment)
	total := round2(monthly * float64(numPayments))

	result := lending.Amortization{
		Principal:      principal,
		AnnualRate:     annualRate,
		TermYears:      termYears,
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  round2(total - principal),
	}

	balance := principal
	months := numPayments
	if months > 12 {
		months = 12
	}
	for month := 1; month <= months; month++ {
		interest := balance * monthlyRate
		principalPart := payment - interest
		balance -= principalPart

		result.Schedule = append(result.Schedule, lending.Entry{
			Month:     month,
			Payment:   monthly,
			Principal: round2(principalPart),
			Interest:  round2(interest),
			Balance:   round2(balance),
		})
	}

	return result, nil
}
