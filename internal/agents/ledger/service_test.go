package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/inference"
	"github.com/HLKC779/financial-agents/internal/storage/memory"
)

func newTestService() *Service {
	engine := inference.NewRuleBased()
	return New(memory.New(), engine, engine, nil)
}

func TestCreateTransactionValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, CreateTransactionInput{Type: "transfer", Amount: 10})
	if !fault.IsValidation(err) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}

	_, err = svc.CreateTransaction(ctx, CreateTransactionInput{Type: "expense", Amount: 0})
	if !fault.IsValidation(err) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}

func TestCreateTransactionDefaultsAndClassification(t *testing.T) {
	svc := newTestService()

	tx, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		Type:        "expense",
		Amount:      12.50,
		Description: "coffee at the corner shop",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.Currency != "USD" {
		t.Errorf("currency = %q, want USD", tx.Currency)
	}
	if tx.AccountID != DefaultAccountID {
		t.Errorf("account = %q, want %q", tx.AccountID, DefaultAccountID)
	}
	if tx.Category != "food" {
		t.Errorf("category = %q, want food", tx.Category)
	}
}

func TestReportEmptyWindow(t *testing.T) {
	svc := newTestService()

	report, err := svc.Report(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.TransactionCount != 0 || report.TotalIncome != 0 || report.TotalExpenses != 0 {
		t.Fatalf("expected zero summary, got %+v", report)
	}
}

func TestReportSummary(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	seed := []CreateTransactionInput{
		{Type: "income", Amount: 5000, Category: "salary"},
		{Type: "expense", Amount: 1500, Category: "housing"},
		{Type: "expense", Amount: 500, Category: "food"},
	}
	for _, in := range seed {
		if _, err := svc.CreateTransaction(ctx, in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	report, err := svc.Report(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.TotalIncome != 5000 {
		t.Errorf("TotalIncome = %v, want 5000", report.TotalIncome)
	}
	if report.TotalExpenses != 2000 {
		t.Errorf("TotalExpenses = %v, want 2000", report.TotalExpenses)
	}
	if report.NetIncome != 3000 {
		t.Errorf("NetIncome = %v, want 3000", report.NetIncome)
	}
	if report.SavingsRate != 60 {
		t.Errorf("SavingsRate = %v, want 60", report.SavingsRate)
	}
	if got := report.ExpensePercentages["housing"]; got != 75 {
		t.Errorf("housing share = %v, want 75", got)
	}
	if report.Insights == "" {
		t.Error("expected non-empty insights")
	}
}

func TestReportRejectsInvertedPeriod(t *testing.T) {
	svc := newTestService()

	now := time.Now().UTC()
	_, err := svc.Report(context.Background(), now, now.Add(-time.Hour))
	if !fault.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBalanceSignsByType(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateTransaction(ctx, CreateTransactionInput{Type: "income", Amount: 100, AccountID: "a1", Category: "salary"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTransaction(ctx, CreateTransactionInput{Type: "expense", Amount: 30, AccountID: "a1", Category: "food"}); err != nil {
		t.Fatal(err)
	}

	balance, err := svc.Balance(ctx, "a1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance.Balance != 70 {
		t.Errorf("balance = %v, want 70", balance.Balance)
	}
	if balance.TransactionCount != 2 {
		t.Errorf("count = %d, want 2", balance.TransactionCount)
	}
}

func TestBalanceUnknownAccountIsZero(t *testing.T) {
	svc := newTestService()

	balance, err := svc.Balance(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance.Balance != 0 || balance.TransactionCount != 0 {
		t.Fatalf("expected zero balance, got %+v", balance)
	}
}

func TestReconcileSplitsAssetsAndLiabilities(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateTransaction(ctx, CreateTransactionInput{Type: "income", Amount: 1000, AccountID: "checking", Category: "salary"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTransaction(ctx, CreateTransactionInput{Type: "expense", Amount: 400, AccountID: "credit", Category: "shopping"}); err != nil {
		t.Fatal(err)
	}

	rec, err := svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rec.TotalAssets != 1000 {
		t.Errorf("assets = %v, want 1000", rec.TotalAssets)
	}
	if rec.TotalLiabilities != 400 {
		t.Errorf("liabilities = %v, want 400", rec.TotalLiabilities)
	}
	if rec.NetWorth != 600 {
		t.Errorf("net worth = %v, want 600", rec.NetWorth)
	}
	if len(rec.Accounts) != 2 {
		t.Errorf("accounts = %d, want 2", len(rec.Accounts))
	}
}
