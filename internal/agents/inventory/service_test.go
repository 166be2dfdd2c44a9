package inventory

import (
	"context"
	"testing"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/storage/memory"
)

func newTestService() *Service {
	return New(memory.New(), nil, nil)
}

func TestAddItemValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   AddItemInput
	}{
		{"empty name", AddItemInput{Quantity: 1, UnitPrice: 1}},
		{"negative quantity", AddItemInput{Name: "widget", Quantity: -1}},
		{"negative price", AddItemInput{Name: "widget", UnitPrice: -0.01}},
		{"negative minimum", AddItemInput{Name: "widget", MinimumStock: -5}},
	}
	for _, tc := range cases {
		if _, err := svc.AddItem(ctx, tc.in); !fault.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestAddItemDefaultsCategory(t *testing.T) {
	svc := newTestService()

	item, err := svc.AddItem(context.Background(), AddItemInput{Name: "widget", Quantity: 5, UnitPrice: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.Category != "general" {
		t.Errorf("category = %q, want general", item.Category)
	}
	if item.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestAdjustQuantity(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	item, err := svc.AddItem(ctx, AddItemInput{Name: "widget", Quantity: 10, UnitPrice: 2, MinimumStock: 3})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	item, err = svc.AdjustQuantity(ctx, item.ID, -4)
	if err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	if item.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", item.Quantity)
	}
}

func TestAdjustQuantityInsufficientStock(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	item, err := svc.AddItem(ctx, AddItemInput{Name: "widget", Quantity: 3, UnitPrice: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if _, err := svc.AdjustQuantity(ctx, item.ID, -5); !fault.IsBusinessRule(err) {
		t.Fatalf("expected business-rule error, got %v", err)
	}

	// Quantity must be unchanged after the rejected adjustment.
	got, err := svc.store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", got.Quantity)
	}
}

func TestAdjustQuantityUnknownItem(t *testing.T) {
	svc := newTestService()

	if _, err := svc.AdjustQuantity(context.Background(), "missing", 1); !fault.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestLowStockOrdering(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	seed := []AddItemInput{
		{Name: "bolts", Quantity: 1, UnitPrice: 0.1, MinimumStock: 10}, // shortage 9
		{Name: "nuts", Quantity: 8, UnitPrice: 0.1, MinimumStock: 10},  // shortage 2
		{Name: "screws", Quantity: 50, UnitPrice: 0.1, MinimumStock: 10},
		{Name: "nails", Quantity: 0, UnitPrice: 0.1}, // no minimum, never low
	}
	for _, in := range seed {
		if _, err := svc.AddItem(ctx, in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	low, err := svc.LowStockItems(ctx)
	if err != nil {
		t.Fatalf("LowStockItems: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("low stock count = %d, want 2", len(low))
	}
	if low[0].Name != "bolts" || low[1].Name != "nuts" {
		t.Errorf("unexpected ordering: %s, %s", low[0].Name, low[1].Name)
	}
}

func TestReport(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	seed := []AddItemInput{
		{Name: "bolts", Quantity: 100, UnitPrice: 0.5, Category: "hardware", MinimumStock: 200},
		{Name: "paint", Quantity: 10, UnitPrice: 25, Category: "supplies"},
	}
	for _, in := range seed {
		if _, err := svc.AddItem(ctx, in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	report, err := svc.Report(ctx)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.TotalItems != 2 {
		t.Errorf("TotalItems = %d, want 2", report.TotalItems)
	}
	if report.TotalValue != 300 {
		t.Errorf("TotalValue = %v, want 300", report.TotalValue)
	}
	if report.LowStockCount != 1 {
		t.Errorf("LowStockCount = %d, want 1", report.LowStockCount)
	}
	if hw := report.Categories["hardware"]; hw.Count != 1 || hw.TotalValue != 50 || hw.TotalQuantity != 100 {
		t.Errorf("hardware summary = %+v", hw)
	}
}

func TestReportEmpty(t *testing.T) {
	svc := newTestService()

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.TotalItems != 0 || report.TotalValue != 0 || len(report.LowStockItems) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestSearch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, AddItemInput{Name: "Copper Wire", Quantity: 5, UnitPrice: 3, Supplier: "Acme"}); err != nil {
		t.Fatal(err)
	}

	items, err := svc.Search(ctx, "copper")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("matches = %d, want 1", len(items))
	}

	if _, err := svc.Search(ctx, "  "); !fault.IsValidation(err) {
		t.Fatalf("expected validation error for blank query, got %v", err)
	}
}
