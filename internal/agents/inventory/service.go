// Package inventory implements the stock-keeping agent: item registration,
// quantity adjustments, low-stock alerting, reporting, and search.
package inventory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/inventory"
	"github.com/HLKC779/financial-agents/internal/inference"
	"github.com/HLKC779/financial-agents/internal/storage"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// Service is the inventory agent.
type Service struct {
	store   storage.InventoryStore
	advisor inference.Advisor
	log     *logger.Logger
}

// New constructs an inventory service.
func New(store storage.InventoryStore, advisor inference.Advisor, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("inventory")
	}
	return &Service{
		store:   store,
		advisor: advisor,
		log:     log,
	}
}

// AddItemInput carries the fields of a new inventory item.
type AddItemInput struct {
	Name         string
	Quantity     int
	UnitPrice    float64
	Supplier     string
	Category     string
	MinimumStock int
	Metadata     map[string]string
}

// AddItem validates and registers a new item. An item registered at or below
// its minimum stock logs a low-stock warning immediately.
func (s *Service) AddItem(ctx context.Context, in AddItemInput) (inventory.Item, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)

	if in.Name == "" {
		return inventory.Item{}, fault.Required("name")
	}
	if in.Quantity < 0 {
		return inventory.Item{}, fault.Invalid("quantity", "must not be negative")
	}
	if in.UnitPrice < 0 {
		return inventory.Item{}, fault.Invalid("unit_price", "must not be negative")
	}
	if in.MinimumStock < 0 {
		return inventory.Item{}, fault.Invalid("minimum_stock", "must not be negative")
	}
	if in.Category == "" {
		in.Category = "general"
	}

	item, err := s.store.CreateItem(ctx, inventory.Item{
		Name:         in.Name,
		Quantity:     in.Quantity,
		UnitPrice:    in.UnitPrice,
		Supplier:     strings.TrimSpace(in.Supplier),
		Category:     in.Category,
		MinimumStock: in.MinimumStock,
		Metadata:     in.Metadata,
	})
	if err != nil {
		return inventory.Item{}, fmt.Errorf("create item: %w", err)
	}

	s.log.WithField("item_id", item.ID).WithField("name", item.Name).Info("inventory item added")
	if item.LowStock() {
		s.log.WithField("item_id", item.ID).
			WithField("quantity", item.Quantity).
			WithField("minimum_stock", item.MinimumStock).
			Warn("low stock alert")
	}
	return item, nil
}

// AdjustQuantity applies a signed delta to an item's quantity. A delta that
// would drive the quantity negative is rejected as a business-rule error and
// leaves the item unchanged.
func (s *Service) AdjustQuantity(ctx context.Context, itemID string, delta int) (inventory.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return inventory.Item{}, err
	}

	next := item.Quantity + delta
	if next < 0 {
		return inventory.Item{}, fault.Rejected("insufficient inventory for item %s: %d available, %d requested", item.Name, item.Quantity, -delta)
	}

	previous := item.Quantity
	item.Quantity = next
	item, err = s.store.UpdateItem(ctx, item)
	if err != nil {
		return inventory.Item{}, fmt.Errorf("update item: %w", err)
	}

	s.log.WithField("item_id", item.ID).
		WithField("from", previous).
		WithField("to", item.Quantity).
		Info("inventory quantity updated")
	if item.LowStock() {
		s.log.WithField("item_id", item.ID).
			WithField("quantity", item.Quantity).
			WithField("minimum_stock", item.MinimumStock).
			Warn("low stock alert")
	}
	return item, nil
}

// LowStockItems returns items at or below their minimum stock, most critical
// first (largest shortage).
func (s *Service) LowStockItems(ctx context.Context) ([]inventory.Item, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	var low []inventory.Item
	for _, item := range items {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	sort.Slice(low, func(i, j int) bool {
		return low[i].Shortage() > low[j].Shortage()
	})
	return low, nil
}

// Report summarizes the whole inventory. An empty inventory yields a
// zero-valued report.
func (s *Service) Report(ctx context.Context) (inventory.Report, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return inventory.Report{}, fmt.Errorf("list items: %w", err)
	}

	report := inventory.Report{
		Categories:  map[string]inventory.CategorySummary{},
		GeneratedAt: time.Now().UTC(),
	}
	for _, item := range items {
		value := float64(item.Quantity) * item.UnitPrice
		report.TotalItems++
		report.TotalValue += value
		if item.LowStock() {
			report.LowStockCount++
		}

		summary := report.Categories[item.Category]
		summary.Count++
		summary.TotalValue = round2(summary.TotalValue + value)
		summary.TotalQuantity += item.Quantity
		report.Categories[item.Category] = summary
	}
	report.TotalValue = round2(report.TotalValue)

	low, err := s.LowStockItems(ctx)
	if err != nil {
		return inventory.Report{}, err
	}
	if len(low) > 10 {
		low = low[:10]
	}
	report.LowStockItems = low

	return report, nil
}

// Search finds items whose name, category, or supplier contains the query.
func (s *Service) Search(ctx context.Context, query string) ([]inventory.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fault.Required("query")
	}
	items, err := s.store.SearchItems(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
