package lending

import (
	"math"
	"testing"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
)

func TestAmortizeThirtyYearFixed(t *testing.T) {
	result, err := Amortize(300000, 4.5, 30)
	if err != nil {
		t.Fatalf("Amortize: %v", err)
	}

	if result.MonthlyPayment != 1520.06 {
		t.Errorf("MonthlyPayment = %v, want 1520.06", result.MonthlyPayment)
	}
	if result.TotalPayment != 547221.60 {
		t.Errorf("TotalPayment = %v, want 547221.60", result.TotalPayment)
	}
	if result.TotalInterest != 247221.60 {
		t.Errorf("TotalInterest = %v, want 247221.60", result.TotalInterest)
	}
	if len(result.Schedule) != 12 {
		t.Fatalf("schedule length = %d, want 12", len(result.Schedule))
	}

	first := result.Schedule[0]
	if first.Month != 1 {
		t.Errorf("first month = %d, want 1", first.Month)
	}
	if first.Interest != 1125.00 {
		t.Errorf("first interest = %v, want 1125.00", first.Interest)
	}
	// Payment splits into principal plus interest within a cent.
	if math.Abs(first.Principal+first.Interest-first.Payment) > 0.01 {
		t.Errorf("split %v + %v != %v", first.Principal, first.Interest, first.Payment)
	}

	// Balance decreases every month.
	balance := 300000.0
	for _, entry := range result.Schedule {
		if entry.Balance >= balance {
			t.Fatalf("balance did not decrease at month %d: %v >= %v", entry.Month, entry.Balance, balance)
		}
		balance = entry.Balance
	}
}

func TestAmortizeZeroRate(t *testing.T) {
	result, err := Amortize(120000, 0, 10)
	if err != nil {
		t.Fatalf("Amortize: %v", err)
	}
	if result.MonthlyPayment != 1000 {
		t.Errorf("MonthlyPayment = %v, want 1000", result.MonthlyPayment)
	}
	if result.TotalInterest != 0 {
		t.Errorf("TotalInterest = %v, want 0", result.TotalInterest)
	}
	for _, entry := range result.Schedule {
		if entry.Interest != 0 {
			t.Errorf("month %d interest = %v, want 0", entry.Month, entry.Interest)
		}
	}
}

func TestAmortizeOneYearLoanPaysOff(t *testing.T) {
	result, err := Amortize(6000, 6, 1)
	if err != nil {
		t.Fatalf("Amortize: %v", err)
	}
	if len(result.Schedule) != 12 {
		t.Fatalf("schedule length = %d, want 12", len(result.Schedule))
	}
	last := result.Schedule[len(result.Schedule)-1]
	if math.Abs(last.Balance) > 0.05 {
		t.Errorf("final balance = %v, want ~0", last.Balance)
	}
}

func TestAmortizeValidation(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		rate      float64
		years     int
	}{
		{"zero principal", 0, 4.5, 30},
		{"negative principal", -1, 4.5, 30},
		{"negative rate", 100000, -0.1, 30},
		{"zero term", 100000, 4.5, 0},
	}
	for _, tc := range cases {
		if _, err := Amortize(tc.principal, tc.rate, tc.years); !fault.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}
